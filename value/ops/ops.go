package ops

import (
	"math"
	"strconv"
	"strings"

	"github.com/wudi/triggervm/bytecode"
	"github.com/wudi/triggervm/value"
	"github.com/wudi/triggervm/vmerr"
)

// Ctx carries the diagnostic context every value operation needs to
// build an error: the opcode's code area and the current call stack
// (spec.md §4.G: "a total function from (left, right, span, ...)").
type Ctx struct {
	Area      bytecode.CodeArea
	CallStack []vmerr.CallStackEntry
}

func (c Ctx) mismatch(left, right value.Value, op string) *vmerr.Error {
	return vmerr.TypeMismatch(c.Area, c.CallStack, left.Kind.String(), right.Kind.String(), op)
}

func isNum(v value.Value) bool { return v.Kind == value.KindInt || v.Kind == value.KindFloat }

func bothInt(a, b value.Value) bool { return a.Kind == value.KindInt && b.Kind == value.KindInt }

// numPair coerces two numeric values to a common domain: if both are
// int, returns them as int64 with asFloat=false; otherwise as
// float64 with asFloat=true (spec.md §4.G: "arithmetic coerces
// int+float to float").
func numPair(a, b value.Value) (ai, bi int64, af, bf float64, asFloat bool) {
	if bothInt(a, b) {
		return a.Data.(int64), b.Data.(int64), 0, 0, false
	}
	return 0, 0, numericValue(a), numericValue(b), true
}

func Plus(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	switch {
	case isNum(a) && isNum(b):
		ai, bi, af, bf, asFloat := numPair(a, b)
		if asFloat {
			return value.Float(af + bf), nil
		}
		return value.Int(ai + bi), nil
	case a.Kind == value.KindString && b.Kind == value.KindString:
		return value.Str(append(append([]rune{}, a.Data.([]rune)...), b.Data.([]rune)...)), nil
	case a.Kind == value.KindArray && b.Kind == value.KindArray:
		aa, bb := a.Data.([]*value.Cell), b.Data.([]*value.Cell)
		out := make([]*value.Cell, 0, len(aa)+len(bb))
		out = append(out, aa...)
		out = append(out, bb...)
		return value.Array(out), nil
	default:
		return value.Value{}, c.mismatch(a, b, "+")
	}
}

func Minus(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	if !isNum(a) || !isNum(b) {
		return value.Value{}, c.mismatch(a, b, "-")
	}
	ai, bi, af, bf, asFloat := numPair(a, b)
	if asFloat {
		return value.Float(af - bf), nil
	}
	return value.Int(ai - bi), nil
}

func Mult(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	switch {
	case isNum(a) && isNum(b):
		ai, bi, af, bf, asFloat := numPair(a, b)
		if asFloat {
			return value.Float(af * bf), nil
		}
		return value.Int(ai * bi), nil
	case a.Kind == value.KindString && b.Kind == value.KindInt:
		n := b.Data.(int64)
		if n < 0 {
			return value.Value{}, c.mismatch(a, b, "*")
		}
		return value.Str(repeatRunes(a.Data.([]rune), int(n))), nil
	case a.Kind == value.KindInt && b.Kind == value.KindString:
		return Mult(b, a, c)
	default:
		return value.Value{}, c.mismatch(a, b, "*")
	}
}

func repeatRunes(r []rune, n int) []rune {
	out := make([]rune, 0, len(r)*n)
	for i := 0; i < n; i++ {
		out = append(out, r...)
	}
	return out
}

func Div(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	if !isNum(a) || !isNum(b) {
		return value.Value{}, c.mismatch(a, b, "/")
	}
	_, _, af, bf, _ := numPair(a, b)
	if bf == 0 {
		return value.Value{}, vmerr.Arithmetic(c.Area, c.CallStack, "/", "division by zero")
	}
	if bothInt(a, b) && a.Data.(int64)%b.Data.(int64) == 0 {
		return value.Int(a.Data.(int64) / b.Data.(int64)), nil
	}
	return value.Float(af / bf), nil
}

func Mod(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	if !isNum(a) || !isNum(b) {
		return value.Value{}, c.mismatch(a, b, "%")
	}
	if bothInt(a, b) {
		bi := b.Data.(int64)
		if bi == 0 {
			return value.Value{}, vmerr.Arithmetic(c.Area, c.CallStack, "%", "modulo by zero")
		}
		return value.Int(a.Data.(int64) % bi), nil
	}
	_, _, af, bf, _ := numPair(a, b)
	if bf == 0 {
		return value.Value{}, vmerr.Arithmetic(c.Area, c.CallStack, "%", "modulo by zero")
	}
	return value.Float(math.Mod(af, bf)), nil
}

func Pow(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	if !isNum(a) || !isNum(b) {
		return value.Value{}, c.mismatch(a, b, "**")
	}
	_, _, af, bf, _ := numPair(a, b)
	r := math.Pow(af, bf)
	if bothInt(a, b) && b.Data.(int64) >= 0 {
		return value.Int(int64(r)), nil
	}
	return value.Float(r), nil
}

func bwInts(a, b value.Value, c Ctx, op string) (int64, int64, *vmerr.Error) {
	if a.Kind != value.KindInt || b.Kind != value.KindInt {
		return 0, 0, c.mismatch(a, b, op)
	}
	return a.Data.(int64), b.Data.(int64), nil
}

func BWAnd(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	ai, bi, err := bwInts(a, b, c, "&")
	if err != nil {
		return value.Value{}, err
	}
	return value.Int(ai & bi), nil
}

func BWOr(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	ai, bi, err := bwInts(a, b, c, "|")
	if err != nil {
		return value.Value{}, err
	}
	return value.Int(ai | bi), nil
}

func ShiftLeft(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	ai, bi, err := bwInts(a, b, c, "<<")
	if err != nil {
		return value.Value{}, err
	}
	return value.Int(ai << uint64(bi)), nil
}

func ShiftRight(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	ai, bi, err := bwInts(a, b, c, ">>")
	if err != nil {
		return value.Value{}, err
	}
	return value.Int(ai >> uint64(bi)), nil
}

func Eq(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	return value.Bool(StructuralEqual(a, b, true)), nil
}

func Neq(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	return value.Bool(!StructuralEqual(a, b, true)), nil
}

func EqStrict(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	return value.Bool(StructuralEqual(a, b, false)), nil
}

func NeqStrict(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	return value.Bool(!StructuralEqual(a, b, false)), nil
}

// compareDomain returns -1/0/1 for numeric-domain or lexicographic
// string comparison, or an error for any other pair (spec.md §4.G).
func compareDomain(a, b value.Value, c Ctx, op string) (int, *vmerr.Error) {
	switch {
	case isNum(a) && isNum(b):
		_, _, af, bf, _ := numPair(a, b)
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	case a.Kind == value.KindString && b.Kind == value.KindString:
		return strings.Compare(string(a.Data.([]rune)), string(b.Data.([]rune))), nil
	default:
		return 0, c.mismatch(a, b, op)
	}
}

func Gt(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	r, err := compareDomain(a, b, c, ">")
	if err != nil {
		return value.Value{}, err
	}
	return value.Bool(r > 0), nil
}

func Gte(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	r, err := compareDomain(a, b, c, ">=")
	if err != nil {
		return value.Value{}, err
	}
	return value.Bool(r >= 0), nil
}

func Lt(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	r, err := compareDomain(a, b, c, "<")
	if err != nil {
		return value.Value{}, err
	}
	return value.Bool(r < 0), nil
}

func Lte(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	r, err := compareDomain(a, b, c, "<=")
	if err != nil {
		return value.Value{}, err
	}
	return value.Bool(r <= 0), nil
}

// RangeOp constructs a two-operand range with step 1. Three-operand
// (stepped) ranges are resolved by the (out-of-scope) compiler at
// compile time per spec.md §4.G and are not represented here.
func RangeOp(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	if a.Kind != value.KindInt || b.Kind != value.KindInt {
		return value.Value{}, c.mismatch(a, b, "..")
	}
	return value.Range(a.Data.(int64), b.Data.(int64), 1), nil
}

func In(a, b value.Value, c Ctx) (value.Value, *vmerr.Error) {
	switch b.Kind {
	case value.KindArray:
		for _, el := range b.Data.([]*value.Cell) {
			if StructuralEqual(a, el.Value(), true) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case value.KindDict:
		if a.Kind != value.KindString {
			return value.Value{}, c.mismatch(a, b, "in")
		}
		_, ok := b.Data.(map[string]value.DictEntry)[string(a.Data.([]rune))]
		return value.Bool(ok), nil
	case value.KindString:
		if a.Kind != value.KindString {
			return value.Value{}, c.mismatch(a, b, "in")
		}
		return value.Bool(strings.Contains(string(b.Data.([]rune)), string(a.Data.([]rune)))), nil
	case value.KindRange:
		if a.Kind != value.KindInt {
			return value.Value{}, c.mismatch(a, b, "in")
		}
		r := b.Data.(value.RangeData)
		n := a.Data.(int64)
		if r.Step == 0 {
			return value.Bool(false), nil
		}
		if r.End >= r.Start {
			return value.Bool(n >= r.Start && n < r.End && (n-r.Start)%int64(r.Step) == 0), nil
		}
		return value.Bool(n <= r.Start && n > r.End && (r.Start-n)%int64(r.Step) == 0), nil
	default:
		return value.Value{}, c.mismatch(a, b, "in")
	}
}

// As coerces between a declared set of (from, to) pairs; any other
// pair fails with invalid-cast (spec.md §4.G).
func As(a value.Value, toKind value.Kind, c Ctx) (value.Value, *vmerr.Error) {
	switch {
	case a.Kind == toKind:
		return a, nil
	case a.Kind == value.KindInt && toKind == value.KindFloat:
		return value.Float(float64(a.Data.(int64))), nil
	case a.Kind == value.KindFloat && toKind == value.KindInt:
		return value.Int(int64(a.Data.(float64))), nil
	case a.Kind == value.KindInt && toKind == value.KindBool:
		return value.Bool(a.Data.(int64) != 0), nil
	case a.Kind == value.KindBool && toKind == value.KindInt:
		if a.Data.(bool) {
			return value.Int(1), nil
		}
		return value.Int(0), nil
	case a.Kind == value.KindInt && toKind == value.KindString:
		return value.StrFromGo(strconv.FormatInt(a.Data.(int64), 10)), nil
	case a.Kind == value.KindFloat && toKind == value.KindString:
		return value.StrFromGo(strconv.FormatFloat(a.Data.(float64), 'g', -1, 64)), nil
	case a.Kind == value.KindBool && toKind == value.KindString:
		return value.StrFromGo(strconv.FormatBool(a.Data.(bool))), nil
	case a.Kind == value.KindString && toKind == value.KindInt:
		n, err := strconv.ParseInt(string(a.Data.([]rune)), 10, 64)
		if err != nil {
			return value.Value{}, vmerr.InvalidCast(c.Area, c.CallStack, a.Kind.String(), toKind.String())
		}
		return value.Int(n), nil
	case a.Kind == value.KindString && toKind == value.KindFloat:
		f, err := strconv.ParseFloat(string(a.Data.([]rune)), 64)
		if err != nil {
			return value.Value{}, vmerr.InvalidCast(c.Area, c.CallStack, a.Kind.String(), toKind.String())
		}
		return value.Float(f), nil
	default:
		return value.Value{}, vmerr.InvalidCast(c.Area, c.CallStack, a.Kind.String(), toKind.String())
	}
}

func Not(a value.Value, c Ctx) (value.Value, *vmerr.Error) {
	if a.Kind != value.KindBool {
		return value.Value{}, vmerr.TypeMismatch(c.Area, c.CallStack, a.Kind.String(), "", "!")
	}
	return value.Bool(!a.Data.(bool)), nil
}

func Negate(a value.Value, c Ctx) (value.Value, *vmerr.Error) {
	switch a.Kind {
	case value.KindInt:
		return value.Int(-a.Data.(int64)), nil
	case value.KindFloat:
		return value.Float(-a.Data.(float64)), nil
	default:
		return value.Value{}, vmerr.TypeMismatch(c.Area, c.CallStack, a.Kind.String(), "", "-")
	}
}

// ToBool reports a value's truthiness for JumpIfFalse/JumpIfTrue
// (only Bool is truthy/falsy in this language; any other kind is a
// type-mismatch at the branch).
func ToBool(v value.Value, c Ctx) (bool, *vmerr.Error) {
	if v.Kind != value.KindBool {
		return false, vmerr.TypeMismatch(c.Area, c.CallStack, v.Kind.String(), "", "bool-context")
	}
	return v.Data.(bool), nil
}
