// Package execctx implements the VM's context stack: one logical
// execution path (Context), a call activation's frontier of sibling
// paths (FullContext), and the stack of call activations
// (ContextStack) — spec.md §3 "Context forest", §4.D.
package execctx

import (
	"github.com/wudi/triggervm/bytecode"
	"github.com/wudi/triggervm/ids"
	"github.com/wudi/triggervm/value"
)

// TryCatchEntry is one entry on a context's try/catch stack: the jump
// target for the handler and the register the caught error (or
// rethrown user value) is bound to.
type TryCatchEntry struct {
	JumpTarget int
	Dest       uint8
}

// Context is one logical execution path: its own register file,
// instruction pointer, symbolic group, and try/catch stack (spec.md
// §3, §4.D). Register-file nesting across calls is modelled by
// pushing a new FullContext per call (see CallInfo) rather than by a
// stack of register files inside Context itself — this implementation's
// resolution of an ambiguity in the upstream design the retrieved
// `original_source` leaves partially unspecified (see DESIGN.md).
type Context struct {
	Registers  []*value.Cell
	IP         int
	Group      ids.Id
	PrevGroup  ids.Id // the group held before the most recent SetContextGroup; backs MakeTriggerFunc's "prev-context group"
	TryCatches []TryCatchEntry
}

func NewContext(regsUsed int, group ids.Id, src bytecode.SourceHandle) *Context {
	regs := make([]*value.Cell, regsUsed)
	for i := range regs {
		regs[i] = value.NewCell(value.Empty().WithArea(bytecode.CodeArea{Span: bytecode.InternalSpan, Src: src}))
	}
	return &Context{Registers: regs, Group: group}
}

// CallInfo names the call a FullContext is executing: which function,
// and (if any) the register in the *calling* frame that should
// receive the return value (spec.md §3, §6).
type CallInfo struct {
	Func       bytecode.FuncCoord
	ReturnDest *uint8
	ArgCount   int // number of arguments bound to this call; backs the ArgAmount opcode
}

// FullContext is one call activation: the call it is running, whether
// it has explicitly returned (spec.md §4.E's implicit-return
// protocol consults this to detect a disallowed post-split implicit
// return), and the frontier queue of sibling Contexts. The frontier
// is modelled as a stack (append/pop from the end) rather than a
// FIFO queue, following `original_source/src/interpreting/vm.rs`'s
// `try_merge_contexts` (pop-from-end while IP matches) and
// `run_function` (push-to-end on split, re-enqueue, and return
// reinstatement) — ground truth for the exact ordering spec.md §4.F
// only describes abstractly as "queue order".
type FullContext struct {
	CallInfo     CallInfo
	HaveReturned bool
	Frontier     []*Context
}

func NewFullContext(initial *Context, call CallInfo) *FullContext {
	return &FullContext{CallInfo: call, Frontier: []*Context{initial}}
}

// Current returns the head of the frontier — the context the VM
// executes next.
func (fc *FullContext) Current() *Context {
	return fc.Frontier[len(fc.Frontier)-1]
}

// Push adds a sibling context to the frontier.
func (fc *FullContext) Push(c *Context) {
	fc.Frontier = append(fc.Frontier, c)
}

// Pop removes and returns the head of the frontier.
func (fc *FullContext) Pop() *Context {
	n := len(fc.Frontier)
	c := fc.Frontier[n-1]
	fc.Frontier = fc.Frontier[:n-1]
	return c
}

func (fc *FullContext) Empty() bool { return len(fc.Frontier) == 0 }

// Clone produces a sibling context for a branch split: a new register
// slice and try/catch stack (so rebinding a register or pushing a
// handler in one sibling never affects another), but the same cells
// and group the original held at the moment of the split (spec.md
// §4.F: "Each clone keeps its own register file (shallow: value-cells
// are shared ...)").
func (c *Context) Clone() *Context {
	regs := make([]*value.Cell, len(c.Registers))
	copy(regs, c.Registers)
	tc := make([]TryCatchEntry, len(c.TryCatches))
	copy(tc, c.TryCatches)
	return &Context{Registers: regs, IP: c.IP, Group: c.Group, PrevGroup: c.PrevGroup, TryCatches: tc}
}

// ContextStack is the VM's stack of full contexts (spec.md §3, §4.D).
type ContextStack struct {
	Frames []*FullContext
}

// Valid reports whether execution should continue: there is at least
// one full context, and (by construction — see the execution loop)
// its frontier is always non-empty while it remains on the stack.
func (cs *ContextStack) Valid() bool { return len(cs.Frames) > 0 }

func (cs *ContextStack) Top() *FullContext { return cs.Frames[len(cs.Frames)-1] }

func (cs *ContextStack) PushFull(fc *FullContext) { cs.Frames = append(cs.Frames, fc) }

// PopFull removes and returns the top full context.
func (cs *ContextStack) PopFull() *FullContext {
	n := len(cs.Frames)
	fc := cs.Frames[n-1]
	cs.Frames = cs.Frames[:n-1]
	return fc
}

// Current returns the currently executing context: the head of the
// top full context's frontier.
func (cs *ContextStack) Current() *Context { return cs.Top().Current() }

func (cs *ContextStack) JumpCurrent(ip int) { cs.Current().IP = ip }

// YeetCurrent removes and returns the head of the top full context's
// frontier, without popping the full context itself (the caller
// decides whether an emptied full context should be popped).
func (cs *ContextStack) YeetCurrent() *Context { return cs.Top().Pop() }

// CallStack returns call-info snapshots innermost-first (spec.md §6).
func (cs *ContextStack) CallStack() []CallInfo {
	out := make([]CallInfo, len(cs.Frames))
	for i, fc := range cs.Frames {
		out[len(cs.Frames)-1-i] = fc.CallInfo
	}
	return out
}
