package vm

import (
	"github.com/wudi/triggervm/ids"
	"github.com/wudi/triggervm/opcode"
	"github.com/wudi/triggervm/value"
)

func (v *VM) execLoad(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	switch inst.Op {
	case opcode.OpLoadConst:
		c := v.Program.GetConstant(inst.Const)
		v.bind(inst.A, value.FromConstant(c), ctx.IP)
	case opcode.OpLoadEmpty:
		v.bind(inst.A, value.Empty(), ctx.IP)
	case opcode.OpLoadNone:
		v.bind(inst.A, value.Maybe(nil), ctx.IP)
	case opcode.OpLoadBuiltins:
		v.bind(inst.A, value.Builtins(), ctx.IP)
	case opcode.OpLoadEpsilon:
		v.bind(inst.A, value.Epsilon(), ctx.IP)
	case opcode.OpLoadArbitraryID:
		class := fromIDClass(inst.IDClass)
		v.bind(inst.A, value.FromIDClass(class, v.Ids.Next(class)), ctx.IP)

	case opcode.OpCopyDeep:
		v.bindCell(inst.B, value.DeepClone(v.cell(inst.A)))
	case opcode.OpCopyRef:
		v.bindCell(inst.B, v.cell(inst.A))

	case opcode.OpWrite:
		v.writeInPlace(inst.A, v.get(inst.B), ctx.IP)
	case opcode.OpAssignRef:
		v.bindCell(inst.A, v.cell(inst.B))
	case opcode.OpAssignDeep:
		v.writeInPlace(inst.A, value.DeepClone(v.cell(inst.B)).Value(), ctx.IP)
	}
	return nil
}

func fromIDClass(c opcode.IDClass) ids.Class {
	switch c {
	case opcode.IDGroup:
		return ids.Group
	case opcode.IDChannel:
		return ids.Channel
	case opcode.IDBlock:
		return ids.Block
	case opcode.IDItem:
		return ids.Item
	default:
		return ids.Group
	}
}
