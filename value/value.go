// Package value implements the VM's tagged-union value model: Value,
// the shared interior-mutable Cell, and the per-value CodeArea
// (spec.md §3, §4.A).
package value

import (
	"github.com/wudi/triggervm/bytecode"
	"github.com/wudi/triggervm/ids"
)

// Kind discriminates the Value variants spec.md §3 enumerates.
type Kind byte

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindString
	KindArray
	KindDict
	KindGroup
	KindChannel
	KindBlock
	KindItem
	KindBuiltins
	KindRange
	KindMaybe
	KindEmpty
	KindMacro
	KindType
	KindModule
	KindTriggerFunction
	KindError
	KindObjectKey
	KindEpsilon
	KindChroma
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindDict:
		return "dict"
	case KindGroup:
		return "group"
	case KindChannel:
		return "channel"
	case KindBlock:
		return "block"
	case KindItem:
		return "item"
	case KindBuiltins:
		return "builtins"
	case KindRange:
		return "range"
	case KindMaybe:
		return "maybe"
	case KindEmpty:
		return "empty"
	case KindMacro:
		return "macro"
	case KindType:
		return "type"
	case KindModule:
		return "module"
	case KindTriggerFunction:
		return "trigger_function"
	case KindError:
		return "error"
	case KindObjectKey:
		return "object_key"
	case KindEpsilon:
		return "epsilon"
	case KindChroma:
		return "chroma"
	case KindInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// Value is the tagged union payload, with no code area attached (a
// bare Value is produced by value operations mid-expression; it only
// gains an area when it is stored into a Cell — see StoredValue).
type Value struct {
	Kind Kind
	Data any
}

// StoredValue is a Value plus the code area it was produced at
// (spec.md §3: "Each value carries a code area").
type StoredValue struct {
	Value Value
	Area  bytecode.CodeArea
}

func (v Value) WithArea(area bytecode.CodeArea) StoredValue {
	return StoredValue{Value: v, Area: area}
}

// Cell is the VM's only reference mechanism: a shared, interior
// mutable container. Two Cell handles are equal iff they are the same
// container (identity, not structural equality) — spec.md §3.
type Cell struct {
	stored StoredValue
}

func NewCell(sv StoredValue) *Cell {
	return &Cell{stored: sv}
}

func (c *Cell) Get() StoredValue    { return c.stored }
func (c *Cell) Value() Value        { return c.stored.Value }
func (c *Cell) Area() bytecode.CodeArea { return c.stored.Area }

// Set mutates this cell's contents in place, preserving its identity.
// This backs the Write and AssignDeep opcodes.
func (c *Cell) Set(sv StoredValue) {
	c.stored = sv
}

// SameCell reports whether a and b are the same underlying container
// (spec.md invariant 2/4): Go pointer identity is exactly spec.md's
// cell identity.
func SameCell(a, b *Cell) bool { return a == b }

// --- constructors ---

func Int(n int64) Value     { return Value{Kind: KindInt, Data: n} }
func Float(f float64) Value { return Value{Kind: KindFloat, Data: f} }
func Bool(b bool) Value     { return Value{Kind: KindBool, Data: b} }
func Str(s []rune) Value    { return Value{Kind: KindString, Data: s} }
func StrFromGo(s string) Value {
	return Value{Kind: KindString, Data: []rune(s)}
}
func Empty() Value    { return Value{Kind: KindEmpty} }
func Builtins() Value { return Value{Kind: KindBuiltins} }
func Epsilon() Value  { return Value{Kind: KindEpsilon} }

func Array(elems []*Cell) Value { return Value{Kind: KindArray, Data: elems} }

func Group(id ids.Id) Value   { return Value{Kind: KindGroup, Data: id} }
func Channel(id ids.Id) Value { return Value{Kind: KindChannel, Data: id} }
func Block(id ids.Id) Value   { return Value{Kind: KindBlock, Data: id} }
func Item(id ids.Id) Value    { return Value{Kind: KindItem, Data: id} }

// FromIDClass builds the right Kind of id value for an ids.Class.
func FromIDClass(c ids.Class, id ids.Id) Value {
	switch c {
	case ids.Group:
		return Group(id)
	case ids.Channel:
		return Channel(id)
	case ids.Block:
		return Block(id)
	case ids.Item:
		return Item(id)
	default:
		return Group(id)
	}
}

// DictEntry is one dict/instance value entry: a cell plus a
// visibility tag.
type DictEntry struct {
	Cell    *Cell
	Private bool
	Source  bytecode.SourceHandle // meaningful only if Private
}

// VisibleFrom reports whether code loaded from `caller` may observe
// this entry (spec.md §5: private entries compare source handles by
// identity — Go struct `==` is that identity here).
func (e DictEntry) VisibleFrom(caller bytecode.SourceHandle) bool {
	return !e.Private || e.Source == caller
}

func Dict(entries map[string]DictEntry) Value {
	return Value{Kind: KindDict, Data: entries}
}

func Range(start, end int64, step uint64) Value {
	return Value{Kind: KindRange, Data: RangeData{Start: start, End: end, Step: step}}
}

type RangeData struct {
	Start int64
	End   int64
	Step  uint64
}

// Maybe wraps a present cell, or nil for "None".
func Maybe(inner *Cell) Value { return Value{Kind: KindMaybe, Data: inner} }

// TypeRef is a reference to a value-type: either one of the builtin
// Kinds, or a compiler-assigned custom type id.
type TypeRef struct {
	Builtin    Kind
	IsCustom   bool
	CustomID   uint32
	CustomName string
}

func Type(t TypeRef) Value { return Value{Kind: KindType, Data: t} }

type ModuleData struct {
	Exports map[string]DictEntry
	Types   []TypeRef
}

func Module(m ModuleData) Value { return Value{Kind: KindModule, Data: m} }

type TriggerFunctionData struct {
	Group       ids.Id
	PrevContext ids.Id
}

func TriggerFunction(t TriggerFunctionData) Value {
	return Value{Kind: KindTriggerFunction, Data: t}
}

func Error(discriminant string) Value {
	return Value{Kind: KindError, Data: discriminant}
}

func ObjectKey(key string) Value { return Value{Kind: KindObjectKey, Data: key} }

type ChromaData struct{ R, G, B, A byte }

func Chroma(r, g, b, a byte) Value {
	return Value{Kind: KindChroma, Data: ChromaData{R: r, G: g, B: b, A: a}}
}

type InstanceData struct {
	Type  TypeRef
	Items map[string]DictEntry
}

func Instance(i InstanceData) Value { return Value{Kind: KindInstance, Data: i} }

// MacroData is a user function closure: the function it points to,
// the registers it captured from its defining frame, and any default
// argument bindings.
type MacroData struct {
	Func     bytecode.FuncCoord
	Captures []*Cell
	Defaults map[string]*Cell
	IsMethod bool
}

func Macro(m MacroData) Value { return Value{Kind: KindMacro, Data: m} }

// FromConstant builds a fresh Value from a constant-pool entry
// (spec.md §4.A).
func FromConstant(c *bytecode.Constant) Value {
	switch c.Kind {
	case bytecode.ConstInt:
		return Int(c.Int)
	case bytecode.ConstFloat:
		return Float(c.Float)
	case bytecode.ConstBool:
		return Bool(c.Bool)
	case bytecode.ConstString:
		return StrFromGo(c.String)
	case bytecode.ConstObjectKey:
		return ObjectKey(c.String)
	case bytecode.ConstEmpty:
		return Empty()
	default:
		return Empty()
	}
}
