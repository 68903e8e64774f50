package vm

import (
	"github.com/wudi/triggervm/opcode"
	"github.com/wudi/triggervm/vmerr"
)

// dispatch runs one instruction. It returns an error only on a
// failure the VM's own try/catch consult (see handleError) should
// see; anything it returns unwrapped escapes the run entirely.
func (v *VM) dispatch(inst opcode.Instruction) error {
	switch inst.Op {
	case opcode.OpLoadConst, opcode.OpLoadEmpty, opcode.OpLoadNone, opcode.OpLoadBuiltins,
		opcode.OpLoadEpsilon, opcode.OpLoadArbitraryID,
		opcode.OpCopyDeep, opcode.OpCopyRef, opcode.OpWrite, opcode.OpAssignRef, opcode.OpAssignDeep:
		return v.execLoad(inst)

	case opcode.OpPlus, opcode.OpMinus, opcode.OpMult, opcode.OpDiv, opcode.OpMod, opcode.OpPow,
		opcode.OpBWAnd, opcode.OpBWOr, opcode.OpShiftLeft, opcode.OpShiftRight,
		opcode.OpEq, opcode.OpNeq, opcode.OpEqStrict, opcode.OpNeqStrict,
		opcode.OpGt, opcode.OpGte, opcode.OpLt, opcode.OpLte,
		opcode.OpRange, opcode.OpIn, opcode.OpAs, opcode.OpNot, opcode.OpNegate,
		opcode.OpPlusEq, opcode.OpMinusEq, opcode.OpMultEq, opcode.OpDivEq, opcode.OpModEq, opcode.OpPowEq,
		opcode.OpBWAndEq, opcode.OpBWOrEq, opcode.OpShiftLeftEq, opcode.OpShiftRightEq:
		return v.execArith(inst)

	case opcode.OpJump, opcode.OpJumpIfFalse, opcode.OpJumpIfTrue, opcode.OpUnwrapOrJump:
		return v.execControl(inst)

	case opcode.OpAllocArray, opcode.OpPushArrayElem, opcode.OpAllocDict, opcode.OpInsertDictElem,
		opcode.OpInsertPrivDictElem, opcode.OpAllocObject, opcode.OpPushObjectElemChecked,
		opcode.OpPushObjectElemUnchecked, opcode.OpAllocTrigger, opcode.OpIndex,
		opcode.OpMember, opcode.OpMemberMut, opcode.OpAssociated, opcode.OpTypeMember,
		opcode.OpTypeOf, opcode.OpLen, opcode.OpArgAmount:
		return v.execCollections(inst)

	case opcode.OpIntoIterator, opcode.OpIterNext:
		return v.execIter(inst)

	case opcode.OpApplyStringFlag, opcode.OpToString:
		return v.execStrings(inst)

	case opcode.OpCreateMacro, opcode.OpPushMacroDefault, opcode.OpMarkMacroMethod,
		opcode.OpCall, opcode.OpRunBuiltin, opcode.OpMakeTriggerFunc, opcode.OpCallTriggerFunc:
		return v.execFuncs(inst)

	case opcode.OpMakeInstance, opcode.OpImpl, opcode.OpAddOperatorOverload:
		return v.execTypes(inst)

	case opcode.OpPushTryCatch, opcode.OpPopTryCatch, opcode.OpThrow, opcode.OpMismatchThrowIfFalse:
		return v.execExceptions(inst)

	case opcode.OpEnterArrowStatement, opcode.OpYeetContext, opcode.OpReturn, opcode.OpSetContextGroup,
		opcode.OpIncMismatchIDCount, opcode.OpDbg, opcode.OpImport:
		return v.execCtxControl(inst)

	default:
		return vmerr.New(vmerr.KindTypeMismatch, v.area(v.Contexts.Current().IP), v.callStack())
	}
}
