package opcode

// Instruction is the generic operand shape every Opcode is encoded
// into. Not every field is meaningful for every opcode; the per-op
// comments in opcode.go and the ReadSet/WriteSet/Successors methods
// below are the authoritative operand contract.
type Instruction struct {
	Op Opcode

	A, B, C Register // primary register operands; meaning is per-opcode
	Regs    []Register // variable-length register list (e.g. CreateMacro's captures)

	Imm   int64  // immediate: capacities, jump targets, operator tags, flags
	Const uint32 // constant-pool index
	Func  uint32 // function-table index
	Call  uint32 // call-expression-table index

	IDClass  IDClass     // for LoadArbitraryID
	StrFlag  StringFlag  // for ApplyStringFlag
	Diverges bool        // branch produces group-divergent siblings (set by the compiler; spec.md §4.F)
}

// IDClass mirrors ids.Class without importing the ids package, so
// that opcode stays a leaf package with no dependency on the value
// model or id allocator.
type IDClass byte

const (
	IDGroup IDClass = iota
	IDChannel
	IDBlock
	IDItem
)

// StringFlag names the ApplyStringFlag transform.
type StringFlag byte

const (
	StringFlagByteString StringFlag = iota // expand to an array of byte-valued ints
	StringFlagUnindent                      // strip common leading whitespace
	StringFlagBase64                        // base64 (URL-safe) encode
)

func reg(r Register) []Register { return []Register{r} }

// ReadSet returns the registers this instruction observes.
func (i Instruction) ReadSet() []Register {
	switch i.Op {
	case OpLoadConst, OpLoadEmpty, OpLoadNone, OpLoadBuiltins, OpLoadEpsilon, OpLoadArbitraryID:
		return nil
	case OpCopyDeep, OpCopyRef:
		return reg(i.A)
	case OpWrite, OpAssignRef, OpAssignDeep:
		return reg(i.B)
	case OpPlus, OpMinus, OpMult, OpDiv, OpMod, OpPow, OpBWAnd, OpBWOr,
		OpShiftLeft, OpShiftRight, OpEq, OpNeq, OpEqStrict, OpNeqStrict,
		OpGt, OpGte, OpLt, OpLte, OpRange, OpIn, OpAs:
		return []Register{i.A, i.B}
	case OpNot, OpNegate:
		return reg(i.A)
	case OpPlusEq, OpMinusEq, OpMultEq, OpDivEq, OpModEq, OpPowEq,
		OpBWAndEq, OpBWOrEq, OpShiftLeftEq, OpShiftRightEq:
		return []Register{i.A, i.B}
	case OpJump:
		return nil
	case OpJumpIfFalse, OpJumpIfTrue, OpUnwrapOrJump:
		return reg(i.A)
	case OpAllocArray, OpAllocDict, OpAllocObject:
		return nil
	case OpPushArrayElem:
		return []Register{i.A, i.B}
	case OpInsertDictElem, OpInsertPrivDictElem:
		return []Register{i.A, i.B, i.C}
	case OpPushObjectElemChecked, OpPushObjectElemUnchecked:
		return []Register{i.A, i.B, i.C}
	case OpAllocTrigger:
		return reg(i.A)
	case OpIndex:
		return []Register{i.A, i.C}
	case OpMember, OpMemberMut, OpAssociated, OpTypeMember:
		return reg(i.A)
	case OpTypeOf, OpLen:
		return reg(i.A)
	case OpArgAmount:
		return nil
	case OpIntoIterator, OpIterNext:
		return reg(i.A)
	case OpApplyStringFlag:
		return reg(i.A)
	case OpToString:
		return reg(i.A)
	case OpCreateMacro:
		return append([]Register{}, i.Regs...)
	case OpPushMacroDefault:
		return []Register{i.A, i.C}
	case OpMarkMacroMethod:
		return reg(i.A)
	case OpCall:
		return reg(i.A)
	case OpRunBuiltin:
		return append([]Register{}, i.Regs...)
	case OpMakeTriggerFunc:
		return nil
	case OpCallTriggerFunc:
		return reg(i.A)
	case OpMakeInstance:
		return []Register{i.A, i.B}
	case OpImpl:
		return []Register{i.A, i.B}
	case OpAddOperatorOverload:
		return []Register{i.A, i.C}
	case OpPushTryCatch, OpPopTryCatch:
		return nil
	case OpThrow:
		return reg(i.A)
	case OpMismatchThrowIfFalse:
		return reg(i.A)
	case OpEnterArrowStatement, OpYeetContext:
		return nil
	case OpReturn:
		return reg(i.A)
	case OpSetContextGroup:
		return reg(i.A)
	case OpIncMismatchIDCount:
		return nil
	case OpDbg:
		return reg(i.A)
	case OpImport:
		return nil
	default:
		return nil
	}
}

// WriteSet returns the registers this instruction assigns.
func (i Instruction) WriteSet() []Register {
	switch i.Op {
	case OpLoadConst, OpLoadEmpty, OpLoadNone, OpLoadBuiltins, OpLoadEpsilon, OpLoadArbitraryID:
		return reg(i.A)
	case OpCopyDeep, OpCopyRef:
		return reg(i.B)
	case OpWrite, OpAssignRef, OpAssignDeep:
		return reg(i.A)
	case OpPlus, OpMinus, OpMult, OpDiv, OpMod, OpPow, OpBWAnd, OpBWOr,
		OpShiftLeft, OpShiftRight, OpEq, OpNeq, OpEqStrict, OpNeqStrict,
		OpGt, OpGte, OpLt, OpLte, OpRange, OpIn, OpAs:
		return reg(i.C)
	case OpNot, OpNegate:
		return reg(i.B)
	case OpPlusEq, OpMinusEq, OpMultEq, OpDivEq, OpModEq, OpPowEq,
		OpBWAndEq, OpBWOrEq, OpShiftLeftEq, OpShiftRightEq:
		return reg(i.A)
	case OpJump, OpJumpIfFalse, OpJumpIfTrue:
		return nil
	case OpUnwrapOrJump:
		return reg(i.A)
	case OpAllocArray, OpAllocDict, OpAllocObject:
		return reg(i.A)
	case OpPushArrayElem:
		return reg(i.B)
	case OpInsertDictElem, OpInsertPrivDictElem, OpPushObjectElemChecked, OpPushObjectElemUnchecked:
		return reg(i.B)
	case OpAllocTrigger:
		return nil
	case OpIndex:
		return reg(i.B)
	case OpMember, OpMemberMut, OpAssociated, OpTypeMember:
		return reg(i.B)
	case OpTypeOf, OpLen:
		return reg(i.B)
	case OpArgAmount:
		return reg(i.A)
	case OpIntoIterator, OpIterNext:
		return reg(i.B)
	case OpApplyStringFlag:
		return reg(i.A)
	case OpToString:
		return reg(i.B)
	case OpCreateMacro:
		return reg(i.B)
	case OpPushMacroDefault, OpMarkMacroMethod:
		return reg(i.A)
	case OpCall:
		return reg(i.B)
	case OpRunBuiltin:
		return reg(i.A)
	case OpMakeTriggerFunc:
		return reg(i.A)
	case OpCallTriggerFunc:
		return nil
	case OpMakeInstance:
		return reg(i.C)
	case OpImpl, OpAddOperatorOverload:
		return nil
	case OpPushTryCatch, OpPopTryCatch:
		return nil
	case OpThrow:
		return nil
	case OpMismatchThrowIfFalse:
		return nil
	case OpEnterArrowStatement, OpYeetContext:
		return nil
	case OpReturn:
		return nil
	case OpSetContextGroup:
		return nil
	case OpIncMismatchIDCount:
		return nil
	case OpDbg:
		return nil
	case OpImport:
		return reg(i.A)
	default:
		return nil
	}
}

// Successors returns the set of opcode indices that may follow this
// instruction, given its own index ip. Branch opcodes set IP
// themselves and are excluded from the automatic idx+1 advance the
// execution loop otherwise performs (spec.md §4.E step 3).
func (i Instruction) Successors(ip int) []int {
	switch i.Op {
	case OpJump:
		return []int{int(i.Imm)}
	case OpJumpIfFalse, OpJumpIfTrue, OpUnwrapOrJump:
		return []int{ip + 1, int(i.Imm)}
	case OpEnterArrowStatement:
		return []int{ip + 1, int(i.Imm)}
	case OpReturn, OpYeetContext:
		return nil
	default:
		return []int{ip + 1}
	}
}

// IsBranch reports whether this opcode sets IP itself (and thus must
// skip the execution loop's automatic post-advance). Call is included
// despite not being a jump: its call-site context stays parked, alive,
// at the call-site IP while the callee runs, and is advanced exactly
// once — by the return protocol, not by the dispatch loop — when the
// callee eventually finishes (spec.md §4.D).
func (i Instruction) IsBranch() bool {
	switch i.Op {
	case OpJump, OpJumpIfFalse, OpJumpIfTrue, OpUnwrapOrJump, OpCall:
		return true
	default:
		return false
	}
}
