package vm

import (
	"github.com/wudi/triggervm/opcode"
	"github.com/wudi/triggervm/value"
	"github.com/wudi/triggervm/value/ops"
	"github.com/wudi/triggervm/vmerr"
)

func (v *VM) opsCtx(ip int) ops.Ctx {
	return ops.Ctx{Area: v.area(ip), CallStack: v.callStack()}
}

func (v *VM) execArith(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP
	oc := v.opsCtx(ip)

	switch inst.Op {
	case opcode.OpNot:
		r, err := ops.Not(v.get(inst.A), oc)
		if err != nil {
			return err
		}
		v.bind(inst.B, r, ip)
		return nil
	case opcode.OpNegate:
		r, err := ops.Negate(v.get(inst.A), oc)
		if err != nil {
			return err
		}
		v.bind(inst.B, r, ip)
		return nil
	case opcode.OpAs:
		left := v.get(inst.A)
		target := v.get(inst.B)
		if target.Kind != value.KindType {
			return vmerr.TypeMismatch(oc.Area, oc.CallStack, left.Kind.String(), target.Kind.String(), "as")
		}
		tr := target.Data.(value.TypeRef)
		r, err := ops.As(left, tr.Builtin, oc)
		if err != nil {
			return err
		}
		v.bind(inst.C, r, ip)
		return nil
	}

	// Compound assignment: A := A op B, in place, A's cell identity
	// preserved (spec.md §4.C).
	if fn, ok := compoundOpTable[inst.Op]; ok {
		r, err := fn(v.get(inst.A), v.get(inst.B), oc)
		if err != nil {
			return err
		}
		v.writeInPlace(inst.A, r, ip)
		return nil
	}

	fn, ok := binOpTable[inst.Op]
	if !ok {
		return nil
	}
	r, err := fn(v.get(inst.A), v.get(inst.B), oc)
	if err != nil {
		return err
	}
	v.bind(inst.C, r, ip)
	return nil
}

type binFn func(value.Value, value.Value, ops.Ctx) (value.Value, *vmerr.Error)

var binOpTable = map[opcode.Opcode]binFn{
	opcode.OpPlus:       ops.Plus,
	opcode.OpMinus:      ops.Minus,
	opcode.OpMult:       ops.Mult,
	opcode.OpDiv:        ops.Div,
	opcode.OpMod:        ops.Mod,
	opcode.OpPow:        ops.Pow,
	opcode.OpBWAnd:      ops.BWAnd,
	opcode.OpBWOr:       ops.BWOr,
	opcode.OpShiftLeft:  ops.ShiftLeft,
	opcode.OpShiftRight: ops.ShiftRight,
	opcode.OpEq:         ops.Eq,
	opcode.OpNeq:        ops.Neq,
	opcode.OpEqStrict:   ops.EqStrict,
	opcode.OpNeqStrict:  ops.NeqStrict,
	opcode.OpGt:         ops.Gt,
	opcode.OpGte:        ops.Gte,
	opcode.OpLt:         ops.Lt,
	opcode.OpLte:        ops.Lte,
	opcode.OpRange:      ops.RangeOp,
	opcode.OpIn:         ops.In,
}

var compoundOpTable = map[opcode.Opcode]binFn{
	opcode.OpPlusEq:       ops.Plus,
	opcode.OpMinusEq:      ops.Minus,
	opcode.OpMultEq:       ops.Mult,
	opcode.OpDivEq:        ops.Div,
	opcode.OpModEq:        ops.Mod,
	opcode.OpPowEq:        ops.Pow,
	opcode.OpBWAndEq:      ops.BWAnd,
	opcode.OpBWOrEq:       ops.BWOr,
	opcode.OpShiftLeftEq:  ops.ShiftLeft,
	opcode.OpShiftRightEq: ops.ShiftRight,
}
