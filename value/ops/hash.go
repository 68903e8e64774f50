// Package ops implements the VM's value operations: the binary
// operator dispatch table (spec.md §4.G) and the structural hash /
// equality used by the split/merge engine (spec.md §4.F).
package ops

import (
	"math"
	"sort"

	"github.com/wudi/triggervm/ids"
	"github.com/wudi/triggervm/value"
)

// hashState is a small FNV-1a-style accumulator. The exact bit
// pattern it produces is an implementation detail; what spec.md §8
// requires is that it be deterministic and that structurally equal
// values hash equal (hash(deep-clone(v)) == hash(v)).
type hashState struct{ h uint64 }

const (
	fnvOffset = 14695981039346656037
	fnvPrime  = 1099511628211
)

func newHashState() *hashState { return &hashState{h: fnvOffset} }

func (s *hashState) writeByte(b byte) {
	s.h ^= uint64(b)
	s.h *= fnvPrime
}

func (s *hashState) writeUint64(n uint64) {
	for i := 0; i < 8; i++ {
		s.writeByte(byte(n >> (8 * i)))
	}
}

func (s *hashState) writeInt64(n int64)     { s.writeUint64(uint64(n)) }
func (s *hashState) writeBool(b bool) {
	if b {
		s.writeByte(1)
	} else {
		s.writeByte(0)
	}
}
func (s *hashState) writeString(str string) {
	for i := 0; i < len(str); i++ {
		s.writeByte(str[i])
	}
	s.writeByte(0)
}

// StructuralHash implements spec.md §4.F's state hash: integers hash
// as though converted to float (so 1 and 1.0 collide), the variant
// discriminant is mixed in before the payload (mixing in the Float
// discriminant for ints, to match the int/float merge above), dicts
// hash by ascending key order, and a handful of variants (module,
// builtins, empty, epsilon) contribute only their discriminant.
func StructuralHash(v value.Value) uint64 {
	s := newHashState()
	hashInto(s, v)
	return s.h
}

func hashInto(s *hashState, v value.Value) {
	if v.Kind == value.KindInt {
		s.writeByte(byte(value.KindFloat))
		s.writeUint64(math.Float64bits(float64(v.Data.(int64))))
		return
	}

	s.writeByte(byte(v.Kind))

	switch v.Kind {
	case value.KindFloat:
		s.writeUint64(math.Float64bits(v.Data.(float64)))
	case value.KindBool:
		s.writeBool(v.Data.(bool))
	case value.KindString:
		s.writeString(string(v.Data.([]rune)))
	case value.KindArray:
		for _, c := range v.Data.([]*value.Cell) {
			hashInto(s, c.Value())
		}
	case value.KindDict:
		hashDict(s, v.Data.(map[string]value.DictEntry))
	case value.KindGroup, value.KindChannel, value.KindBlock, value.KindItem:
		s.writeUint64(uint64(v.Data.(ids.Id).Tag))
	case value.KindBuiltins:
		// discriminant only
	case value.KindRange:
		r := v.Data.(value.RangeData)
		s.writeInt64(r.Start)
		s.writeInt64(r.End)
		s.writeUint64(r.Step)
	case value.KindMaybe:
		inner, _ := v.Data.(*value.Cell)
		if inner == nil {
			s.writeByte(0)
		} else {
			s.writeByte(1)
			hashInto(s, inner.Value())
		}
	case value.KindEmpty:
		// discriminant only
	case value.KindMacro:
		// macros are not mergeable state in practice; hash by their
		// function index as a cheap, deterministic stand-in.
		m := v.Data.(value.MacroData)
		s.writeUint64(uint64(m.Func.Func))
	case value.KindType:
		t := v.Data.(value.TypeRef)
		s.writeBool(t.IsCustom)
		s.writeUint64(uint64(t.CustomID))
		s.writeByte(byte(t.Builtin))
	case value.KindModule:
		// discriminant only
	case value.KindTriggerFunction:
		tf := v.Data.(value.TriggerFunctionData)
		s.writeUint64(uint64(tf.Group.Tag))
		s.writeUint64(uint64(tf.PrevContext.Tag))
	case value.KindError:
		s.writeString(v.Data.(string))
	case value.KindObjectKey:
		s.writeString(v.Data.(string))
	case value.KindEpsilon:
		// discriminant only
	case value.KindChroma:
		c := v.Data.(value.ChromaData)
		s.writeByte(c.R)
		s.writeByte(c.G)
		s.writeByte(c.B)
		s.writeByte(c.A)
	case value.KindInstance:
		i := v.Data.(value.InstanceData)
		s.writeUint64(uint64(i.Type.CustomID))
		hashDict(s, i.Items)
	}
}

func hashDict(s *hashState, entries map[string]value.DictEntry) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e := entries[k]
		hashInto(s, e.Cell.Value())
		s.writeBool(e.Private)
		s.writeString(e.Source.Kind + "\x00" + e.Source.Path)
		s.writeString(k)
	}
}
