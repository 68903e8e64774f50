// Package vmlog is the VM's diagnostic logger: a thin slog wrapper so
// call sites log structured fields (opcode, ip, group) without each
// one constructing its own attr list.
package vmlog

import (
	"log/slog"
	"os"
)

// Logger wraps *slog.Logger with the handful of fields the execution
// loop and split/merge engine want attached to every line.
type Logger struct {
	*slog.Logger
}

// New builds a Logger writing text-formatted lines to w at the given
// level. A nil w defaults to os.Stderr.
func New(level slog.Level, w *os.File) *Logger {
	if w == nil {
		w = os.Stderr
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(h)}
}

// Discard is a Logger that drops everything — used by default so a
// VM embedded as a library stays silent unless a caller opts in.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 100}))}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// Step logs one opcode dispatch at debug level.
func (l *Logger) Step(ip int, op string, group string) {
	l.Debug("step", "ip", ip, "op", op, "group", group)
}

// Merge logs one split/merge pass outcome at debug level.
func (l *Logger) Merge(candidates, groups, spawned int) {
	l.Debug("merge", "candidates", candidates, "groups", groups, "spawned", spawned)
}

// Split logs a context fork at debug level.
func (l *Logger) Split(ip int, arms int) {
	l.Debug("split", "ip", ip, "arms", arms)
}
