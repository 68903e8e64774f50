// Package opcode defines the VM's instruction set: the Opcode enum,
// the generic Instruction operand shape every opcode is encoded into,
// and the three static queries (ReadSet, WriteSet, Successors) the
// execution loop and the split/merge engine rely on (spec.md §4.C).
package opcode

// Opcode names one bytecode instruction kind. Grouped into iota blocks
// by category, mirroring the Zend-style catalogue the teacher's own
// opcode packages use.
type Opcode byte

// Register is a register file slot index. A function's register file
// holds at most 256 slots (spec.md §3).
type Register uint8

// Load / move (0-19)
const (
	OpLoadConst     Opcode = iota // LoadConst Const,To: build a value from constant pool entry Const into To
	OpLoadEmpty                   // LoadEmpty To: unit value
	OpLoadNone                    // LoadNone To: maybe-absent
	OpLoadBuiltins                // LoadBuiltins To
	OpLoadEpsilon                 // LoadEpsilon To
	OpLoadArbitraryID             // LoadArbitraryID Class,To: allocate a fresh id of the given class

	OpCopyDeep    // CopyDeep From,To: To gets a new cell holding a deep clone of From
	OpCopyRef     // CopyRef From,To: To's register now aliases From's cell (also covers spec's "copy-shallow", a synonym — see DESIGN.md)
	OpWrite       // Write To,From: mutate To's existing cell in place with From's value (identity preserved)
	OpAssignRef   // AssignRef To,From: rebind To's register to alias From's cell
	OpAssignDeep  // AssignDeep To,From: deep clone From's value into To's existing cell (identity preserved, contents disjoint)
)

// Arithmetic / logical (20-52)
const (
	OpPlus Opcode = iota + 20 // Plus A,B,To
	OpMinus
	OpMult
	OpDiv
	OpMod
	OpPow
	OpBWAnd
	OpBWOr
	OpShiftLeft
	OpShiftRight
	OpEq
	OpNeq
	OpEqStrict // strict equality: no int/float coercion
	OpNeqStrict
	OpGt
	OpGte
	OpLt
	OpLte
	OpRange
	OpIn
	OpAs // type coercion
	OpNot
	OpNegate

	// Compound assignment: read A, compute A := A op B, write A in
	// place (A's cell identity is preserved).
	OpPlusEq
	OpMinusEq
	OpMultEq
	OpDivEq
	OpModEq
	OpPowEq
	OpBWAndEq
	OpBWOrEq
	OpShiftLeftEq
	OpShiftRightEq
)

// Control flow (53-59)
const (
	OpJump Opcode = iota + 53 // Jump To: unconditional
	OpJumpIfFalse             // JumpIfFalse Check,To
	OpJumpIfTrue              // JumpIfTrue Check,To
	OpUnwrapOrJump            // UnwrapOrJump Check,To: if Check holds Some(v), replace Check with v; else jump to To
)

// Collections (60-79)
const (
	OpAllocArray Opcode = iota + 60 // AllocArray Dest,Imm(capacity)
	OpPushArrayElem                  // PushArrayElem Elem,Dest: deep-clone Elem and append
	OpAllocDict                      // AllocDict Dest,Imm(capacity)
	OpInsertDictElem                 // InsertDictElem Elem,Dest,Key(string-valued register): public entry
	OpInsertPrivDictElem              // InsertPrivDictElem Elem,Dest,Key: private-to-source entry
	OpAllocObject                     // AllocObject Dest: a dict keyed by object-key rather than string
	OpPushObjectElemChecked           // PushObjectElemChecked Elem,Dest,Key: error if Key already present
	OpPushObjectElemUnchecked         // PushObjectElemUnchecked Elem,Dest,Key: overwrite silently
	OpAllocTrigger                    // AllocTrigger Obj: emit an object trigger from the built object dict, tagged with the current context's group
	OpIndex                           // Index Base,Dest,Index(C operand)
	OpMember                          // Member From,Dest,Const(member name): immutable read
	OpMemberMut                       // MemberMut From,Dest,Const(member name): mutable (write-through) read
	OpAssociated                      // Associated From,Dest,Const(member name): type-associated member
	OpTypeMember                      // TypeMember From,Dest,Const(member name): member on a Type value
	OpTypeOf                          // TypeOf Src,Dest
	OpLen                             // Len Src,Dest
	OpArgAmount                       // ArgAmount Dest: number of arguments bound to the current call
)

// Iteration (80-84)
const (
	OpIntoIterator Opcode = iota + 80 // IntoIterator Src,Dest: wrap Src as an iterator value
	OpIterNext                         // IterNext Src,Dest: Dest := next maybe-value from iterator Src
)

// Strings (85-89)
const (
	OpApplyStringFlag Opcode = iota + 85 // ApplyStringFlag Flag,Reg: transform Reg's string in place
	OpToString                            // ToString From,Dest: runtime display of From
)

// Functions / macros (90-109)
const (
	OpCreateMacro Opcode = iota + 90 // CreateMacro Func,Dest,Regs(captured register list)
	OpPushMacroDefault                // PushMacroDefault Dest(macro reg),Const(param name),From(default value reg)
	OpMarkMacroMethod                  // MarkMacroMethod Dest: tag the macro at Dest as a bound method
	OpCall                             // Call Call(call-expr idx),Callee,Dest
	OpRunBuiltin                       // RunBuiltin Const(name),Regs(arg registers),Dest
	OpMakeTriggerFunc                  // MakeTriggerFunc Dest: group + prev-context group from the current context
	OpCallTriggerFunc                  // CallTriggerFunc Src: invoke a trigger-function value, forking a context into its group
)

// Types (110-119)
const (
	OpMakeInstance Opcode = iota + 110 // MakeInstance Base(type reg),Items(dict reg),Dest
	OpImpl                              // Impl Base(type reg),Methods(dict reg)
	OpAddOperatorOverload                // AddOperatorOverload Base(type reg),Imm(operator tag),From(macro reg)
)

// Exceptions (120-129)
const (
	OpPushTryCatch Opcode = iota + 120 // PushTryCatch Dest(error reg),Imm(jump target)
	OpPopTryCatch                       // PopTryCatch
	OpThrow                             // Throw From
	OpMismatchThrowIfFalse              // MismatchThrowIfFalse Check: pattern-match failure if Check is false
)

// Context control (130-144)
const (
	OpEnterArrowStatement Opcode = iota + 130 // EnterArrowStatement Imm(skip target)
	OpYeetContext                              // YeetContext: silently end the current context
	OpReturn                                    // Return From,Imm(1 if module return)
	OpSetContextGroup                           // SetContextGroup From: change the current context's symbolic group
	OpIncMismatchIDCount                        // IncMismatchIDCount
	OpDbg                                        // Dbg From
	OpImport                                     // Import Const(path/name),Dest
)
