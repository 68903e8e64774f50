package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wudi/triggervm/bytecode"
	"github.com/wudi/triggervm/opcode"
)

// jsonProgram is the on-disk fixture format this demonstration CLI
// loads: a flat, human-writable stand-in for what a real compiler's
// bytecode emitter would produce (spec.md §1 places compilation out of
// scope, so this loader is the one piece of "front end" this repo
// owns, and it is intentionally thin).
type jsonProgram struct {
	SourcePath string          `json:"sourcePath"`
	Constants  []jsonConstant  `json:"constants"`
	Functions  []jsonFunction  `json:"functions"`
	Calls      []jsonCallExpr  `json:"calls"`
}

type jsonConstant struct {
	Kind   string  `json:"kind"`
	Int    int64   `json:"int,omitempty"`
	Float  float64 `json:"float,omitempty"`
	Bool   bool    `json:"bool,omitempty"`
	String string  `json:"string,omitempty"`
}

type jsonFunction struct {
	Name     string   `json:"name"`
	RegsUsed uint8    `json:"regsUsed"`
	Params   []string `json:"params,omitempty"`
	Captures []uint8  `json:"captures,omitempty"`
	IsMethod bool     `json:"isMethod,omitempty"`
	Opcodes  []jsonOp `json:"opcodes"`
}

type jsonOp struct {
	Op       string  `json:"op"`
	A        uint8   `json:"a,omitempty"`
	B        uint8   `json:"b,omitempty"`
	C        uint8   `json:"c,omitempty"`
	Regs     []uint8 `json:"regs,omitempty"`
	Imm      int64   `json:"imm,omitempty"`
	Const    uint32  `json:"const,omitempty"`
	Func     uint32  `json:"func,omitempty"`
	Call     uint32  `json:"call,omitempty"`
	IDClass  string  `json:"idClass,omitempty"`
	StrFlag  string  `json:"strFlag,omitempty"`
	Diverges bool    `json:"diverges,omitempty"`
}

type jsonArg struct {
	Name  string `json:"name,omitempty"`
	Reg   uint8  `json:"reg"`
	AsRef bool   `json:"asRef,omitempty"`
}

type jsonCallExpr struct {
	Positional []jsonArg `json:"positional,omitempty"`
	Named      []jsonArg `json:"named,omitempty"`
}

func loadProgram(path string) (*bytecode.Program, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var jp jsonProgram
	if err := json.Unmarshal(raw, &jp); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return buildProgram(jp)
}

func buildProgram(jp jsonProgram) (*bytecode.Program, error) {
	src := bytecode.SourceHandle{Kind: "file", Path: jp.SourcePath}
	prog := &bytecode.Program{Src: src}

	for _, c := range jp.Constants {
		prog.Constants = append(prog.Constants, buildConstant(c))
	}
	for _, ce := range jp.Calls {
		prog.Calls = append(prog.Calls, bytecode.CallExpr{
			Positional: buildArgs(ce.Positional),
			Named:      buildNamedArgs(ce.Named),
		})
	}
	for _, fn := range jp.Functions {
		built, err := buildFunction(fn)
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, built)
	}
	return prog, nil
}

func buildConstant(c jsonConstant) bytecode.Constant {
	switch c.Kind {
	case "int":
		return bytecode.Constant{Kind: bytecode.ConstInt, Int: c.Int}
	case "float":
		return bytecode.Constant{Kind: bytecode.ConstFloat, Float: c.Float}
	case "bool":
		return bytecode.Constant{Kind: bytecode.ConstBool, Bool: c.Bool}
	case "string":
		return bytecode.Constant{Kind: bytecode.ConstString, String: c.String}
	case "objectKey":
		return bytecode.Constant{Kind: bytecode.ConstObjectKey, String: c.String}
	default:
		return bytecode.Constant{Kind: bytecode.ConstEmpty}
	}
}

func buildArgs(in []jsonArg) []bytecode.ArgExpr {
	out := make([]bytecode.ArgExpr, len(in))
	for i, a := range in {
		out[i] = bytecode.ArgExpr{Reg: a.Reg, AsRef: a.AsRef}
	}
	return out
}

func buildNamedArgs(in []jsonArg) []bytecode.NamedArgExpr {
	out := make([]bytecode.NamedArgExpr, len(in))
	for i, a := range in {
		out[i] = bytecode.NamedArgExpr{Name: a.Name, Reg: a.Reg, AsRef: a.AsRef}
	}
	return out
}

func buildFunction(fn jsonFunction) (bytecode.Function, error) {
	captures := make([]bytecode.CapturedRegister, len(fn.Captures))
	for i, r := range fn.Captures {
		captures[i] = bytecode.CapturedRegister{Reg: r}
	}

	opcodes := make([]opcode.Instruction, len(fn.Opcodes))
	spans := make([]bytecode.CodeSpan, len(fn.Opcodes))
	for i, jo := range fn.Opcodes {
		op, ok := opcodeByName[jo.Op]
		if !ok {
			return bytecode.Function{}, fmt.Errorf("function %s: unknown opcode %q at index %d", fn.Name, jo.Op, i)
		}
		regs := make([]opcode.Register, len(jo.Regs))
		for j, r := range jo.Regs {
			regs[j] = opcode.Register(r)
		}
		opcodes[i] = opcode.Instruction{
			Op:       op,
			A:        opcode.Register(jo.A),
			B:        opcode.Register(jo.B),
			C:        opcode.Register(jo.C),
			Regs:     regs,
			Imm:      jo.Imm,
			Const:    jo.Const,
			Func:     jo.Func,
			Call:     jo.Call,
			IDClass:  idClassByName[jo.IDClass],
			StrFlag:  strFlagByName[jo.StrFlag],
			Diverges: jo.Diverges,
		}
		spans[i] = bytecode.CodeSpan{Start: i, End: i + 1}
	}

	return bytecode.Function{
		Name:      fn.Name,
		Opcodes:   opcodes,
		Spans:     spans,
		RegsUsed:  fn.RegsUsed,
		Captures:  captures,
		EntrySpan: bytecode.CodeSpan{Start: 0, End: len(opcodes)},
		Attrs:     bytecode.FuncAttrs{IsMethod: fn.IsMethod},
		Params:    fn.Params,
	}, nil
}

var idClassByName = map[string]opcode.IDClass{
	"group":   opcode.IDGroup,
	"channel": opcode.IDChannel,
	"block":   opcode.IDBlock,
	"item":    opcode.IDItem,
}

var strFlagByName = map[string]opcode.StringFlag{
	"byteString": opcode.StringFlagByteString,
	"unindent":   opcode.StringFlagUnindent,
	"base64":     opcode.StringFlagBase64,
}

var opcodeByName = map[string]opcode.Opcode{
	"LoadConst":             opcode.OpLoadConst,
	"LoadEmpty":              opcode.OpLoadEmpty,
	"LoadNone":                opcode.OpLoadNone,
	"LoadBuiltins":             opcode.OpLoadBuiltins,
	"LoadEpsilon":               opcode.OpLoadEpsilon,
	"LoadArbitraryID":             opcode.OpLoadArbitraryID,
	"CopyDeep":                      opcode.OpCopyDeep,
	"CopyRef":                        opcode.OpCopyRef,
	"Write":                           opcode.OpWrite,
	"AssignRef":                        opcode.OpAssignRef,
	"AssignDeep":                        opcode.OpAssignDeep,
	"Plus":                               opcode.OpPlus,
	"Minus":                              opcode.OpMinus,
	"Mult":                               opcode.OpMult,
	"Div":                                opcode.OpDiv,
	"Mod":                                opcode.OpMod,
	"Pow":                                opcode.OpPow,
	"BWAnd":                              opcode.OpBWAnd,
	"BWOr":                               opcode.OpBWOr,
	"ShiftLeft":                          opcode.OpShiftLeft,
	"ShiftRight":                         opcode.OpShiftRight,
	"Eq":                                 opcode.OpEq,
	"Neq":                                opcode.OpNeq,
	"EqStrict":                          opcode.OpEqStrict,
	"NeqStrict":                         opcode.OpNeqStrict,
	"Gt":                                opcode.OpGt,
	"Gte":                               opcode.OpGte,
	"Lt":                                opcode.OpLt,
	"Lte":                               opcode.OpLte,
	"Range":                             opcode.OpRange,
	"In":                                opcode.OpIn,
	"As":                                opcode.OpAs,
	"Not":                               opcode.OpNot,
	"Negate":                            opcode.OpNegate,
	"PlusEq":                            opcode.OpPlusEq,
	"MinusEq":                           opcode.OpMinusEq,
	"MultEq":                            opcode.OpMultEq,
	"DivEq":                             opcode.OpDivEq,
	"ModEq":                             opcode.OpModEq,
	"PowEq":                             opcode.OpPowEq,
	"BWAndEq":                           opcode.OpBWAndEq,
	"BWOrEq":                            opcode.OpBWOrEq,
	"ShiftLeftEq":                       opcode.OpShiftLeftEq,
	"ShiftRightEq":                      opcode.OpShiftRightEq,
	"Jump":                              opcode.OpJump,
	"JumpIfFalse":                       opcode.OpJumpIfFalse,
	"JumpIfTrue":                        opcode.OpJumpIfTrue,
	"UnwrapOrJump":                      opcode.OpUnwrapOrJump,
	"AllocArray":                        opcode.OpAllocArray,
	"PushArrayElem":                     opcode.OpPushArrayElem,
	"AllocDict":                         opcode.OpAllocDict,
	"InsertDictElem":                    opcode.OpInsertDictElem,
	"InsertPrivDictElem":                opcode.OpInsertPrivDictElem,
	"AllocObject":                       opcode.OpAllocObject,
	"PushObjectElemChecked":             opcode.OpPushObjectElemChecked,
	"PushObjectElemUnchecked":           opcode.OpPushObjectElemUnchecked,
	"AllocTrigger":                      opcode.OpAllocTrigger,
	"Index":                             opcode.OpIndex,
	"Member":                            opcode.OpMember,
	"MemberMut":                         opcode.OpMemberMut,
	"Associated":                        opcode.OpAssociated,
	"TypeMember":                        opcode.OpTypeMember,
	"TypeOf":                            opcode.OpTypeOf,
	"Len":                               opcode.OpLen,
	"ArgAmount":                         opcode.OpArgAmount,
	"IntoIterator":                      opcode.OpIntoIterator,
	"IterNext":                          opcode.OpIterNext,
	"ApplyStringFlag":                   opcode.OpApplyStringFlag,
	"ToString":                          opcode.OpToString,
	"CreateMacro":                       opcode.OpCreateMacro,
	"PushMacroDefault":                  opcode.OpPushMacroDefault,
	"MarkMacroMethod":                   opcode.OpMarkMacroMethod,
	"Call":                              opcode.OpCall,
	"RunBuiltin":                        opcode.OpRunBuiltin,
	"MakeTriggerFunc":                   opcode.OpMakeTriggerFunc,
	"CallTriggerFunc":                   opcode.OpCallTriggerFunc,
	"MakeInstance":                      opcode.OpMakeInstance,
	"Impl":                              opcode.OpImpl,
	"AddOperatorOverload":               opcode.OpAddOperatorOverload,
	"PushTryCatch":                      opcode.OpPushTryCatch,
	"PopTryCatch":                       opcode.OpPopTryCatch,
	"Throw":                             opcode.OpThrow,
	"MismatchThrowIfFalse":              opcode.OpMismatchThrowIfFalse,
	"EnterArrowStatement":               opcode.OpEnterArrowStatement,
	"YeetContext":                       opcode.OpYeetContext,
	"Return":                            opcode.OpReturn,
	"SetContextGroup":                   opcode.OpSetContextGroup,
	"IncMismatchIDCount":                opcode.OpIncMismatchIDCount,
	"Dbg":                               opcode.OpDbg,
	"Import":                            opcode.OpImport,
}
