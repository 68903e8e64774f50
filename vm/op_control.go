package vm

import (
	"github.com/wudi/triggervm/opcode"
	"github.com/wudi/triggervm/value"
	"github.com/wudi/triggervm/value/ops"
)

// execControl runs the jump family. Diverges (set by the compiler
// whenever the language's semantics require both arms of a
// conditional to run under distinct symbolic groups) forks both arms
// as sibling contexts instead of picking one via the check register's
// value — spec.md §4.F: "when the VM cannot statically choose one
// branch". A non-diverging jump behaves as an ordinary conditional.
func (v *VM) execControl(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP

	switch inst.Op {
	case opcode.OpJump:
		ctx.IP = int(inst.Imm)
		return nil

	case opcode.OpJumpIfFalse, opcode.OpJumpIfTrue:
		if inst.Diverges {
			v.split([]int{ip + 1, int(inst.Imm)})
			return nil
		}
		cond, err := ops.ToBool(v.get(inst.A), v.opsCtx(ip))
		if err != nil {
			return err
		}
		taken := cond
		if inst.Op == opcode.OpJumpIfFalse {
			taken = !cond
		}
		if taken {
			ctx.IP = int(inst.Imm)
		} else {
			ctx.IP = ip + 1
		}
		return nil

	case opcode.OpUnwrapOrJump:
		if inst.Diverges {
			v.split([]int{ip + 1, int(inst.Imm)})
			return nil
		}
		val := v.get(inst.A)
		if val.Kind != value.KindMaybe {
			ctx.IP = int(inst.Imm)
			return nil
		}
		inner, _ := val.Data.(*value.Cell)
		if inner == nil {
			ctx.IP = int(inst.Imm)
			return nil
		}
		v.bindCell(inst.A, inner)
		ctx.IP = ip + 1
		return nil
	}
	return nil
}
