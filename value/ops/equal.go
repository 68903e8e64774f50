package ops

import (
	"github.com/wudi/triggervm/ids"
	"github.com/wudi/triggervm/value"
)

// StructuralEqual reports whether a and b have the same observable
// state. With coerceNumeric, an int and a float compare equal when
// numerically equal (backs the non-strict Eq opcode and the
// split/merge engine's post-hash confirmation); without it, Kind must
// match exactly (backs EqStrict).
func StructuralEqual(a, b value.Value, coerceNumeric bool) bool {
	if coerceNumeric && isNumeric(a.Kind) && isNumeric(b.Kind) {
		return numericValue(a) == numericValue(b)
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case value.KindInt:
		return a.Data.(int64) == b.Data.(int64)
	case value.KindFloat:
		return a.Data.(float64) == b.Data.(float64)
	case value.KindBool:
		return a.Data.(bool) == b.Data.(bool)
	case value.KindString:
		return string(a.Data.([]rune)) == string(b.Data.([]rune))
	case value.KindArray:
		aa, bb := a.Data.([]*value.Cell), b.Data.([]*value.Cell)
		if len(aa) != len(bb) {
			return false
		}
		for i := range aa {
			if !StructuralEqual(aa[i].Value(), bb[i].Value(), coerceNumeric) {
				return false
			}
		}
		return true
	case value.KindDict:
		return dictEqual(a.Data.(map[string]value.DictEntry), b.Data.(map[string]value.DictEntry), coerceNumeric)
	case value.KindGroup, value.KindChannel, value.KindBlock, value.KindItem:
		return a.Data.(ids.Id).Tag == b.Data.(ids.Id).Tag
	case value.KindBuiltins, value.KindEmpty, value.KindModule, value.KindEpsilon:
		return true
	case value.KindRange:
		ra, rb := a.Data.(value.RangeData), b.Data.(value.RangeData)
		return ra == rb
	case value.KindMaybe:
		ai, _ := a.Data.(*value.Cell)
		bi, _ := b.Data.(*value.Cell)
		if ai == nil || bi == nil {
			return ai == nil && bi == nil
		}
		return StructuralEqual(ai.Value(), bi.Value(), coerceNumeric)
	case value.KindType:
		return a.Data.(value.TypeRef) == b.Data.(value.TypeRef)
	case value.KindTriggerFunction:
		ta, tb := a.Data.(value.TriggerFunctionData), b.Data.(value.TriggerFunctionData)
		return ta.Group.Tag == tb.Group.Tag && ta.PrevContext.Tag == tb.PrevContext.Tag
	case value.KindError:
		return a.Data.(string) == b.Data.(string)
	case value.KindObjectKey:
		return a.Data.(string) == b.Data.(string)
	case value.KindChroma:
		return a.Data.(value.ChromaData) == b.Data.(value.ChromaData)
	case value.KindInstance:
		ia, ib := a.Data.(value.InstanceData), b.Data.(value.InstanceData)
		return ia.Type == ib.Type && dictEqual(ia.Items, ib.Items, coerceNumeric)
	default:
		return false
	}
}

func dictEqual(a, b map[string]value.DictEntry, coerceNumeric bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, ea := range a {
		eb, ok := b[k]
		if !ok || ea.Private != eb.Private || ea.Source != eb.Source {
			return false
		}
		if !StructuralEqual(ea.Cell.Value(), eb.Cell.Value(), coerceNumeric) {
			return false
		}
	}
	return true
}

func isNumeric(k value.Kind) bool { return k == value.KindInt || k == value.KindFloat }

func numericValue(v value.Value) float64 {
	if v.Kind == value.KindInt {
		return float64(v.Data.(int64))
	}
	return v.Data.(float64)
}
