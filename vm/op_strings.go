package vm

import (
	"encoding/base64"
	"strings"

	"github.com/wudi/triggervm/opcode"
	"github.com/wudi/triggervm/value"
	"github.com/wudi/triggervm/vmerr"
)

func (v *VM) execStrings(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP

	switch inst.Op {
	case opcode.OpApplyStringFlag:
		return v.applyStringFlag(inst)
	case opcode.OpToString:
		v.bind(inst.B, value.StrFromGo(value.Display(v.get(inst.A))), ip)
	}
	return nil
}

func (v *VM) applyStringFlag(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP
	src := v.get(inst.A)
	if src.Kind != value.KindString {
		return vmerr.TypeMismatch(v.area(ip), v.callStack(), src.Kind.String(), "string", "apply-string-flag")
	}
	runes := src.Data.([]rune)

	switch inst.StrFlag {
	case opcode.StringFlagByteString:
		bs := []byte(string(runes))
		elems := make([]*value.Cell, len(bs))
		for i, b := range bs {
			elems[i] = value.NewCell(value.Int(int64(b)).WithArea(v.area(ip)))
		}
		v.writeInPlace(inst.A, value.Array(elems), ip)

	case opcode.StringFlagUnindent:
		v.writeInPlace(inst.A, value.StrFromGo(unindent(string(runes))), ip)

	case opcode.StringFlagBase64:
		v.writeInPlace(inst.A, value.StrFromGo(base64.URLEncoding.EncodeToString([]byte(string(runes)))), ip)
	}
	return nil
}

// unindent strips the longest common leading whitespace run shared by
// every non-blank line, matching how the source language's multi-line
// string literals dedent themselves.
func unindent(s string) string {
	lines := strings.Split(s, "\n")
	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if common == -1 || n < common {
			common = n
		}
	}
	if common <= 0 {
		return s
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if len(line) >= common {
			out[i] = line[common:]
		} else {
			out[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(out, "\n")
}
