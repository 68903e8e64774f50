// Package vm implements the execution engine: opcode dispatch, error
// propagation and try/catch, and the split/merge engine that gives
// this VM its name (spec.md §4.E, §4.F).
package vm

import (
	"fmt"

	"github.com/wudi/triggervm/bytecode"
	"github.com/wudi/triggervm/config"
	"github.com/wudi/triggervm/execctx"
	"github.com/wudi/triggervm/ids"
	"github.com/wudi/triggervm/opcode"
	"github.com/wudi/triggervm/trigger"
	"github.com/wudi/triggervm/value"
	"github.com/wudi/triggervm/vmerr"
	"github.com/wudi/triggervm/vmlog"
)

// VM owns all execution state for one run: the program, the context
// forest, the id allocator, and the trigger emitter. Nothing here is
// shared across runs — spec.md §9: "VM-scoped, not process-scoped."
type VM struct {
	Program  *bytecode.Program
	Config   config.RunConfig
	Ids      ids.Allocator
	Contexts execctx.ContextStack
	Emitter  *trigger.Emitter
	Builtins *Builtins
	Log      *vmlog.Logger

	// TypeImpls maps a custom type id to its attached methods and
	// operator overloads (populated by Impl/AddOperatorOverload,
	// consulted by Associated/TypeMember).
	TypeImpls map[uint32]map[string]*value.Cell

	mismatchIDCount uint64
	result          value.Value
	halted          bool
}

// New builds a VM ready to run prog starting at function index 0,
// with no return destination (spec.md §6's "initial call").
func New(prog *bytecode.Program, cfg config.RunConfig) *VM {
	v := &VM{
		Program:   prog,
		Config:    cfg,
		Emitter:   trigger.NewEmitter(),
		Builtins:  NewBuiltins(),
		Log:       vmlog.Discard(),
		TypeImpls: make(map[uint32]map[string]*value.Cell),
	}
	fn := prog.GetFunction(0)
	initial := execctx.NewContext(int(fn.RegsUsed), ids.Arb(0), prog.Src)
	fc := execctx.NewFullContext(initial, execctx.CallInfo{Func: bytecode.FuncCoord{Program: prog, Func: 0}})
	v.Contexts.PushFull(fc)
	return v
}

// Result reports the value the VM's outermost call returned, once Run
// has completed successfully.
func (v *VM) Result() value.Value { return v.result }

// Triggers reports every trigger object emitted during the run, in
// emission order (spec.md §6's "trigger output").
func (v *VM) Triggers() []trigger.Object { return v.Emitter.Objects() }

func (v *VM) currentFunc() (*bytecode.Function, bytecode.FuncCoord) {
	fc := v.Contexts.Top().CallInfo.Func
	return fc.Program.GetFunction(fc.Func), fc
}

func (v *VM) area(ip int) bytecode.CodeArea {
	fn, coord := v.currentFunc()
	if ip < 0 || ip >= len(fn.Spans) {
		return bytecode.CodeArea{Span: fn.EntrySpan, Src: coord.Program.Src}
	}
	return bytecode.CodeArea{Span: fn.Spans[ip], Src: coord.Program.Src}
}

func (v *VM) callStack() []vmerr.CallStackEntry {
	cs := v.Contexts.CallStack()
	out := make([]vmerr.CallStackEntry, len(cs))
	for i, c := range cs {
		out[i] = vmerr.CallStackEntry{Func: c.Func, ReturnDest: c.ReturnDest}
	}
	return out
}

func (v *VM) cell(r opcode.Register) *value.Cell {
	return v.Contexts.Current().Registers[r]
}

func (v *VM) get(r opcode.Register) value.Value {
	return v.cell(r).Value()
}

// bind rebinds register r's slot to a new cell (used by operations
// that produce a fresh value: LoadConst, arithmetic results, new
// allocations). Aliasing an existing cell goes through bindCell.
func (v *VM) bind(r opcode.Register, val value.Value, ip int) {
	v.Contexts.Current().Registers[r] = value.NewCell(val.WithArea(v.area(ip)))
}

func (v *VM) bindCell(r opcode.Register, c *value.Cell) {
	v.Contexts.Current().Registers[r] = c
}

// writeInPlace mutates register r's existing cell, preserving its
// identity (backs Write, AssignDeep, and the *-eq compound ops).
func (v *VM) writeInPlace(r opcode.Register, val value.Value, ip int) {
	v.cell(r).Set(val.WithArea(v.area(ip)))
}

// Run drives the execution loop (spec.md §4.E) until the context
// forest empties or a fatal error escapes every try/catch handler.
func (v *VM) Run() error {
	for v.Contexts.Valid() {
		if err := v.step(); err != nil {
			return err
		}
		if v.halted {
			return nil
		}
	}
	return nil
}

// step runs exactly one opcode dispatch + merge pass.
func (v *VM) step() error {
	ctx := v.Contexts.Current()
	fn, _ := v.currentFunc()

	if ctx.IP >= len(fn.Opcodes) {
		return v.implicitReturn()
	}

	inst := fn.Opcodes[ctx.IP]
	v.Log.Step(ctx.IP, opcodeName(inst.Op), ctx.Group.String())

	err := v.dispatch(inst)
	if err != nil {
		if handled := v.handleError(err); handled {
			return nil
		}
		return err
	}

	if !inst.IsBranch() {
		ctx.IP++
	}

	v.tryMergeContexts()
	return nil
}

// handleError consults the current context's try/catch stack. It
// returns true if an entry handled the error (execution continues),
// false if the error must propagate out of the VM.
func (v *VM) handleError(err error) bool {
	ctx := v.Contexts.Current()
	n := len(ctx.TryCatches)
	if n == 0 {
		return false
	}
	entry := ctx.TryCatches[n-1]
	ctx.TryCatches = ctx.TryCatches[:n-1]

	var bound value.Value
	if ve, ok := err.(*vmerr.Error); ok && ve.Kind == vmerr.KindThrownError {
		bound, _ = ve.Thrown.(value.Value)
	} else if ve, ok := err.(*vmerr.Error); ok {
		bound = value.Error(string(ve.Kind))
	} else {
		bound = value.Error("unknown")
	}
	v.bind(opcode.Register(entry.Dest), bound, ctx.IP)
	ctx.IP = entry.JumpTarget
	return true
}

// implicitReturn runs the protocol spec.md §4.E specifies for IP
// running off the end of a function: the context implicitly returns
// unit, subject to the split-mode check (Open Question #2:
// explicit-returns-only — `have_returned` is set only by the Return
// opcode, never here, so this path never itself trips the disallow
// check beyond what an earlier explicit Return already recorded).
func (v *VM) implicitReturn() error {
	full := v.Contexts.Top()
	if v.Config.Split == config.SplitDisallow && full.HaveReturned {
		return vmerr.ContextSplitDisallowed(v.entryArea(), v.callStack())
	}
	return v.finishCurrentContext(value.Empty())
}

func (v *VM) entryArea() bytecode.CodeArea {
	fn, coord := v.currentFunc()
	return bytecode.CodeArea{Span: fn.EntrySpan, Src: coord.Program.Src}
}

// finishCurrentContext removes the current context (by Return or
// implicit return; YeetContext uses finishYeetedContext instead) and,
// if it is the last context in its full
// context, pops the full context and reinstates the caller, per
// spec.md §4.D.
func (v *VM) finishCurrentContext(retVal value.Value) error {
	full := v.Contexts.Top()
	returning := full.CallInfo.ReturnDest
	ip := v.Contexts.Current().IP
	_ = ip
	v.Contexts.YeetCurrent()

	if !full.Empty() {
		// Other sibling paths are still live in this call; nothing
		// more to do until they finish too.
		return nil
	}

	v.Contexts.PopFull()
	if !v.Contexts.Valid() {
		v.result = retVal
		v.halted = true
		return nil
	}

	parent := v.Contexts.Top()
	parentCtx := parent.Current()
	if returning != nil {
		v.bind(opcode.Register(*returning), retVal, parentCtx.IP)
	}
	parentCtx.IP++
	return nil
}

func opcodeName(op opcode.Opcode) string {
	return fmt.Sprintf("op(%d)", op)
}
