package vm

import (
	"github.com/wudi/triggervm/ids"
	"github.com/wudi/triggervm/opcode"
	"github.com/wudi/triggervm/value"
)

// groupID extracts the symbolic id SetContextGroup should adopt. Any
// of the four id-carrying Kinds is accepted — the language lets a
// context's group be set from a group, channel, block, or item literal
// interchangeably (spec.md §3's Group/Channel/Block/Item variants all
// wrap the same ids.Id shape).
func groupID(v value.Value) (ids.Id, bool) {
	switch v.Kind {
	case value.KindGroup, value.KindChannel, value.KindBlock, value.KindItem:
		return v.Data.(ids.Id), true
	default:
		return ids.Id{}, false
	}
}

func (v *VM) execCtxControl(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP

	switch inst.Op {
	case opcode.OpEnterArrowStatement:
		// An arrow statement's body always runs as its own sibling
		// context, alongside (not instead of) the statement following
		// it — unconditional, unlike JumpIfFalse/JumpIfTrue's
		// compiler-controlled Diverges flag (spec.md §4.F).
		v.split([]int{ip + 1, int(inst.Imm)})

	case opcode.OpYeetContext:
		v.Contexts.YeetCurrent()
		v.finishYeetedContext()

	case opcode.OpReturn:
		v.Contexts.Top().HaveReturned = true
		return v.finishCurrentContext(v.get(inst.A))

	case opcode.OpSetContextGroup:
		v.setContextGroup(inst)

	case opcode.OpIncMismatchIDCount:
		v.mismatchIDCount++

	case opcode.OpDbg:
		v.Log.Debug("dbg", "value", value.Display(v.get(inst.A)))

	case opcode.OpImport:
		// Module resolution is out of scope (spec.md §1); binding Dest
		// to an empty module keeps callers that merely probe an
		// import's shape from crashing on a missing Kind.
		v.bind(inst.A, value.Module(value.ModuleData{Exports: map[string]value.DictEntry{}}), ip)
	}
	return nil
}

func (v *VM) setContextGroup(inst opcode.Instruction) {
	ctx := v.Contexts.Current()
	id, ok := groupID(v.get(inst.A))
	if !ok {
		return
	}
	ctx.PrevGroup = ctx.Group
	ctx.Group = id
}

// finishYeetedContext pops the enclosing full context once its last
// sibling is gone, without delivering any return value to the caller
// — YeetContext silently discards a path rather than returning from
// it (spec.md §4.D: distinct from Return).
func (v *VM) finishYeetedContext() {
	full := v.Contexts.Top()
	if !full.Empty() {
		return
	}
	v.Contexts.PopFull()
	if !v.Contexts.Valid() {
		v.result = value.Empty()
		v.halted = true
		return
	}
	v.Contexts.Top().Current().IP++
}
