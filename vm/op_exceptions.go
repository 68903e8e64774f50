package vm

import (
	"github.com/wudi/triggervm/execctx"
	"github.com/wudi/triggervm/opcode"
	"github.com/wudi/triggervm/value"
	"github.com/wudi/triggervm/vmerr"
)

func (v *VM) execExceptions(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP

	switch inst.Op {
	case opcode.OpPushTryCatch:
		ctx.TryCatches = append(ctx.TryCatches, execctx.TryCatchEntry{
			JumpTarget: int(inst.Imm),
			Dest:       uint8(inst.A),
		})

	case opcode.OpPopTryCatch:
		n := len(ctx.TryCatches)
		if n > 0 {
			ctx.TryCatches = ctx.TryCatches[:n-1]
		}

	case opcode.OpThrow:
		return vmerr.Thrown(v.area(ip), v.callStack(), v.get(inst.A))

	case opcode.OpMismatchThrowIfFalse:
		check := v.get(inst.A)
		if check.Kind != value.KindBool || !check.Data.(bool) {
			return vmerr.PatternMismatch(v.area(ip), v.callStack(), "pattern match failed")
		}
	}
	return nil
}
