// Package vmerr defines the VM's structured runtime errors (spec.md
// §7). Every error carries the failing operation's code area and the
// call stack at the point of failure.
package vmerr

import (
	"fmt"

	"github.com/wudi/triggervm/bytecode"
)

// Kind discriminates the error variants spec.md §7 enumerates.
type Kind string

const (
	KindTypeMismatch           Kind = "type-mismatch"
	KindInvalidCast            Kind = "invalid-cast"
	KindIndexOutOfBounds       Kind = "index-out-of-bounds"
	KindInvalidIndex           Kind = "invalid-index"
	KindNonexistentMember      Kind = "nonexistent-member"
	KindContextSplitDisallowed Kind = "context-split-disallowed"
	KindThrownError            Kind = "thrown-error"
	KindPatternMismatch        Kind = "pattern-mismatch"
	KindArgMismatch            Kind = "arg-mismatch"
	KindUnknownBuiltin         Kind = "unknown-builtin"
	KindArithmetic             Kind = "arithmetic" // division/modulo by zero
)

// CallStackEntry snapshots one call-info record for a fatal error's
// call stack, innermost-first (spec.md §6).
type CallStackEntry struct {
	Func       bytecode.FuncCoord
	ReturnDest *uint8
}

// Error is the VM's structured runtime error. Kind-specific details
// live in the typed fields below; only the ones relevant to Kind are
// populated.
type Error struct {
	Kind      Kind
	Area      bytecode.CodeArea
	CallStack []CallStackEntry

	// type-mismatch / arithmetic
	LeftType  string
	RightType string
	Operator  string

	// invalid-cast
	FromType string
	ToType   string

	// index-out-of-bounds
	Len       int
	Index     int64
	ValueType string

	// invalid-index
	BaseType  string
	BaseArea  bytecode.CodeArea
	IndexType string
	IndexArea bytecode.CodeArea

	// nonexistent-member
	Member string

	// thrown-error: the thrown user value (a value.Value), typed as any
	// to avoid an import cycle with the value package; the VM's catch
	// handler type-asserts it back (see VM.handleError).
	Thrown any

	// pattern-mismatch / arg-mismatch / unknown-builtin
	Detail string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTypeMismatch, KindArithmetic:
		return fmt.Sprintf("%s: %s %s %s", e.Kind, e.LeftType, e.Operator, e.RightType)
	case KindInvalidCast:
		return fmt.Sprintf("%s: %s as %s", e.Kind, e.FromType, e.ToType)
	case KindIndexOutOfBounds:
		return fmt.Sprintf("%s: index %d out of bounds for %s of length %d", e.Kind, e.Index, e.ValueType, e.Len)
	case KindInvalidIndex:
		return fmt.Sprintf("%s: cannot index %s with %s", e.Kind, e.BaseType, e.IndexType)
	case KindNonexistentMember:
		return fmt.Sprintf("%s: %q on %s", e.Kind, e.Member, e.BaseType)
	case KindContextSplitDisallowed:
		return string(e.Kind)
	case KindThrownError:
		return fmt.Sprintf("%s: %v", e.Kind, e.Thrown)
	default:
		if e.Detail != "" {
			return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
		}
		return string(e.Kind)
	}
}

func New(kind Kind, area bytecode.CodeArea, callStack []CallStackEntry) *Error {
	return &Error{Kind: kind, Area: area, CallStack: callStack}
}

func TypeMismatch(area bytecode.CodeArea, cs []CallStackEntry, left, right, op string) *Error {
	return &Error{Kind: KindTypeMismatch, Area: area, CallStack: cs, LeftType: left, RightType: right, Operator: op}
}

func Arithmetic(area bytecode.CodeArea, cs []CallStackEntry, op, reason string) *Error {
	return &Error{Kind: KindArithmetic, Area: area, CallStack: cs, Operator: op, Detail: reason}
}

func InvalidCast(area bytecode.CodeArea, cs []CallStackEntry, from, to string) *Error {
	return &Error{Kind: KindInvalidCast, Area: area, CallStack: cs, FromType: from, ToType: to}
}

func IndexOutOfBounds(area bytecode.CodeArea, cs []CallStackEntry, length int, index int64, typ string) *Error {
	return &Error{Kind: KindIndexOutOfBounds, Area: area, CallStack: cs, Len: length, Index: index, ValueType: typ}
}

func InvalidIndex(area bytecode.CodeArea, cs []CallStackEntry, baseType string, baseArea bytecode.CodeArea, indexType string, indexArea bytecode.CodeArea) *Error {
	return &Error{Kind: KindInvalidIndex, Area: area, CallStack: cs, BaseType: baseType, BaseArea: baseArea, IndexType: indexType, IndexArea: indexArea}
}

func NonexistentMember(area bytecode.CodeArea, cs []CallStackEntry, member, baseType string) *Error {
	return &Error{Kind: KindNonexistentMember, Area: area, CallStack: cs, Member: member, BaseType: baseType}
}

func ContextSplitDisallowed(area bytecode.CodeArea, cs []CallStackEntry) *Error {
	return &Error{Kind: KindContextSplitDisallowed, Area: area, CallStack: cs}
}

func Thrown(area bytecode.CodeArea, cs []CallStackEntry, value any) *Error {
	return &Error{Kind: KindThrownError, Area: area, CallStack: cs, Thrown: value}
}

func PatternMismatch(area bytecode.CodeArea, cs []CallStackEntry, detail string) *Error {
	return &Error{Kind: KindPatternMismatch, Area: area, CallStack: cs, Detail: detail}
}

func ArgMismatch(area bytecode.CodeArea, cs []CallStackEntry, detail string) *Error {
	return &Error{Kind: KindArgMismatch, Area: area, CallStack: cs, Detail: detail}
}

func UnknownBuiltin(area bytecode.CodeArea, cs []CallStackEntry, name string) *Error {
	return &Error{Kind: KindUnknownBuiltin, Area: area, CallStack: cs, Detail: name}
}
