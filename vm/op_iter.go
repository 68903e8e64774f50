package vm

import (
	"sort"

	"github.com/wudi/triggervm/bytecode"
	"github.com/wudi/triggervm/opcode"
	"github.com/wudi/triggervm/value"
	"github.com/wudi/triggervm/vmerr"
)

// iteratorTypeRef is a reserved synthetic TypeRef the 23-variant closed
// Value model has no dedicated Kind for: an iterator is represented as
// an Instance of this type, carrying "idx" and "data" items (spec.md
// §4.C's IntoIterator/IterNext pair).
var iteratorTypeRef = value.TypeRef{IsCustom: true, CustomID: ^uint32(0), CustomName: "__iterator"}

func (v *VM) execIter(inst opcode.Instruction) error {
	switch inst.Op {
	case opcode.OpIntoIterator:
		return v.intoIterator(inst)
	case opcode.OpIterNext:
		return v.iterNext(inst)
	}
	return nil
}

func (v *VM) intoIterator(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP
	src := v.get(inst.A)

	data := src
	if src.Kind == value.KindDict {
		data = dictToSortedPairs(src)
	}

	items := map[string]value.DictEntry{
		"idx":  {Cell: value.NewCell(value.Int(0).WithArea(v.area(ip)))},
		"data": {Cell: value.NewCell(data.WithArea(v.area(ip)))},
	}
	v.bind(inst.B, value.Instance(value.InstanceData{Type: iteratorTypeRef, Items: items}), ip)
	return nil
}

func dictToSortedPairs(d value.Value) value.Value {
	entries := d.Data.(map[string]value.DictEntry)
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]*value.Cell, 0, len(keys))
	for _, k := range keys {
		pair := value.Array([]*value.Cell{
			value.NewCell(value.StrFromGo(k).WithArea(entries[k].Cell.Area())),
			value.DeepClone(entries[k].Cell),
		})
		pairs = append(pairs, value.NewCell(pair.WithArea(entries[k].Cell.Area())))
	}
	return value.Array(pairs)
}

func (v *VM) iterNext(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP
	it := v.get(inst.A)
	if it.Kind != value.KindInstance {
		return vmerr.TypeMismatch(v.area(ip), v.callStack(), it.Kind.String(), "iterator", "iter-next")
	}
	inst2 := it.Data.(value.InstanceData)
	if !inst2.Type.IsCustom || inst2.Type.CustomID != iteratorTypeRef.CustomID {
		return vmerr.TypeMismatch(v.area(ip), v.callStack(), it.Kind.String(), "iterator", "iter-next")
	}
	idxCell := inst2.Items["idx"].Cell
	dataCell := inst2.Items["data"].Cell
	idx := idxCell.Value().Data.(int64)
	data := dataCell.Value()

	cell, ok := iterElemAt(data, idx, v.area(ip))
	idxCell.Set(value.Int(idx + 1).WithArea(v.area(ip)))
	if !ok {
		v.bind(inst.B, value.Maybe(nil), ip)
		return nil
	}
	v.bind(inst.B, value.Maybe(cell), ip)
	return nil
}

func iterElemAt(data value.Value, idx int64, area bytecode.CodeArea) (*value.Cell, bool) {
	switch data.Kind {
	case value.KindArray:
		arr := data.Data.([]*value.Cell)
		if idx < 0 || idx >= int64(len(arr)) {
			return nil, false
		}
		return arr[idx], true
	case value.KindString:
		runes := data.Data.([]rune)
		if idx < 0 || idx >= int64(len(runes)) {
			return nil, false
		}
		return value.NewCell(value.Str([]rune{runes[idx]}).WithArea(area)), true
	case value.KindRange:
		r := data.Data.(value.RangeData)
		n := rangeLen(r)
		if idx < 0 || idx >= n {
			return nil, false
		}
		return value.NewCell(value.Int(r.Start + idx*int64(r.Step)).WithArea(area)), true
	default:
		return nil, false
	}
}
