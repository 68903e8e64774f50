package vm

import (
	"github.com/wudi/triggervm/bytecode"
	"github.com/wudi/triggervm/opcode"
	"github.com/wudi/triggervm/trigger"
	"github.com/wudi/triggervm/value"
	"github.com/wudi/triggervm/vmerr"
)

func (v *VM) execCollections(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP

	switch inst.Op {
	case opcode.OpAllocArray:
		v.bind(inst.A, value.Array(make([]*value.Cell, 0, inst.Imm)), ip)

	case opcode.OpPushArrayElem:
		arrVal := v.get(inst.B)
		if arrVal.Kind != value.KindArray {
			return vmerr.TypeMismatch(v.area(ip), v.callStack(), arrVal.Kind.String(), "array", "push")
		}
		elem := value.DeepClone(v.cell(inst.A))
		arr := append(arrVal.Data.([]*value.Cell), elem)
		v.writeInPlace(inst.B, value.Array(arr), ip)

	case opcode.OpAllocDict:
		v.bind(inst.A, value.Dict(make(map[string]value.DictEntry, inst.Imm)), ip)

	case opcode.OpInsertDictElem, opcode.OpInsertPrivDictElem:
		return v.insertDictElem(inst)

	case opcode.OpAllocObject:
		v.bind(inst.A, value.Dict(map[string]value.DictEntry{}), ip)

	case opcode.OpPushObjectElemChecked, opcode.OpPushObjectElemUnchecked:
		return v.pushObjectElem(inst)

	case opcode.OpAllocTrigger:
		return v.allocTrigger(inst)

	case opcode.OpIndex:
		return v.execIndex(inst)

	case opcode.OpMember:
		return v.execMember(inst, false)
	case opcode.OpMemberMut:
		return v.execMember(inst, true)
	case opcode.OpAssociated, opcode.OpTypeMember:
		return v.execAssociated(inst)

	case opcode.OpTypeOf:
		v.bind(inst.B, value.Type(typeOf(v.get(inst.A))), ip)

	case opcode.OpLen:
		return v.execLen(inst)

	case opcode.OpArgAmount:
		v.bind(inst.A, value.Int(int64(v.Contexts.Top().CallInfo.ArgCount)), ip)
	}
	return nil
}

func (v *VM) insertDictElem(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP
	dictVal := v.get(inst.B)
	if dictVal.Kind != value.KindDict {
		return vmerr.TypeMismatch(v.area(ip), v.callStack(), dictVal.Kind.String(), "dict", "insert")
	}
	keyVal := v.get(inst.C)
	if keyVal.Kind != value.KindString {
		return vmerr.InvalidIndex(v.area(ip), v.callStack(), "dict", v.area(ip), keyVal.Kind.String(), v.area(ip))
	}
	key := string(keyVal.Data.([]rune))

	entries := dictVal.Data.(map[string]value.DictEntry)
	out := make(map[string]value.DictEntry, len(entries)+1)
	for k, e := range entries {
		out[k] = e
	}
	out[key] = value.DictEntry{
		Cell:    value.DeepClone(v.cell(inst.A)),
		Private: inst.Op == opcode.OpInsertPrivDictElem,
		Source:  v.currentSrc(),
	}
	v.writeInPlace(inst.B, value.Dict(out), ip)
	return nil
}

func (v *VM) pushObjectElem(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP
	objVal := v.get(inst.B)
	if objVal.Kind != value.KindDict {
		return vmerr.TypeMismatch(v.area(ip), v.callStack(), objVal.Kind.String(), "object", "push")
	}
	keyVal := v.get(inst.C)
	var key string
	switch keyVal.Kind {
	case value.KindObjectKey:
		key = keyVal.Data.(string)
	case value.KindString:
		key = string(keyVal.Data.([]rune))
	default:
		return vmerr.InvalidIndex(v.area(ip), v.callStack(), "object", v.area(ip), keyVal.Kind.String(), v.area(ip))
	}

	entries := objVal.Data.(map[string]value.DictEntry)
	if inst.Op == opcode.OpPushObjectElemChecked {
		if _, exists := entries[key]; exists {
			return vmerr.ArgMismatch(v.area(ip), v.callStack(), "duplicate object property "+key)
		}
	}
	out := make(map[string]value.DictEntry, len(entries)+1)
	for k, e := range entries {
		out[k] = e
	}
	out[key] = value.DictEntry{Cell: value.DeepClone(v.cell(inst.A))}
	v.writeInPlace(inst.B, value.Dict(out), ip)
	return nil
}

func (v *VM) allocTrigger(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	objVal := v.get(inst.A)
	if objVal.Kind != value.KindDict {
		return vmerr.TypeMismatch(v.area(ctx.IP), v.callStack(), objVal.Kind.String(), "object", "alloc-trigger")
	}
	entries := objVal.Data.(map[string]value.DictEntry)
	props := make(map[string]string, len(entries))
	for k, e := range entries {
		props[k] = value.Display(e.Cell.Value())
	}
	v.Emitter.EmitObject(trigger.ObjectTrigger{Props: props, Group: ctx.Group})
	return nil
}

func (v *VM) execIndex(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP
	base := v.get(inst.A)
	idx := v.get(inst.C)

	switch base.Kind {
	case value.KindArray:
		arr := base.Data.([]*value.Cell)
		if idx.Kind != value.KindInt {
			return vmerr.InvalidIndex(v.area(ip), v.callStack(), "array", v.area(ip), idx.Kind.String(), v.area(ip))
		}
		i := idx.Data.(int64)
		n := int64(len(arr))
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return vmerr.IndexOutOfBounds(v.area(ip), v.callStack(), len(arr), idx.Data.(int64), "array")
		}
		v.bindCell(inst.B, arr[i])
		return nil
	case value.KindDict:
		if idx.Kind != value.KindString {
			return vmerr.InvalidIndex(v.area(ip), v.callStack(), "dict", v.area(ip), idx.Kind.String(), v.area(ip))
		}
		key := string(idx.Data.([]rune))
		entries := base.Data.(map[string]value.DictEntry)
		entry, ok := entries[key]
		if !ok || !entry.VisibleFrom(v.currentSrc()) {
			return vmerr.NonexistentMember(v.area(ip), v.callStack(), key, "dict")
		}
		v.bindCell(inst.B, entry.Cell)
		return nil
	case value.KindString:
		if idx.Kind != value.KindInt {
			return vmerr.InvalidIndex(v.area(ip), v.callStack(), "string", v.area(ip), idx.Kind.String(), v.area(ip))
		}
		runes := base.Data.([]rune)
		i := idx.Data.(int64)
		n := int64(len(runes))
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return vmerr.IndexOutOfBounds(v.area(ip), v.callStack(), len(runes), idx.Data.(int64), "string")
		}
		v.bind(inst.B, value.Str([]rune{runes[i]}), ip)
		return nil
	default:
		return vmerr.InvalidIndex(v.area(ip), v.callStack(), base.Kind.String(), v.area(ip), idx.Kind.String(), v.area(ip))
	}
}

func (v *VM) execMember(inst opcode.Instruction, mutable bool) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP
	from := v.get(inst.A)
	name := v.Program.GetConstant(inst.Const).String

	entries, baseType, ok := memberEntries(from)
	if !ok {
		return vmerr.NonexistentMember(v.area(ip), v.callStack(), name, baseType)
	}
	entry, ok := entries[name]
	if !ok || !entry.VisibleFrom(v.currentSrc()) {
		return vmerr.NonexistentMember(v.area(ip), v.callStack(), name, baseType)
	}
	if mutable {
		v.bindCell(inst.B, entry.Cell)
	} else {
		v.bind(inst.B, entry.Cell.Value(), ip)
	}
	return nil
}

func memberEntries(v value.Value) (map[string]value.DictEntry, string, bool) {
	switch v.Kind {
	case value.KindDict:
		return v.Data.(map[string]value.DictEntry), "dict", true
	case value.KindInstance:
		inst := v.Data.(value.InstanceData)
		return inst.Items, "instance", true
	case value.KindModule:
		return v.Data.(value.ModuleData).Exports, "module", true
	default:
		return nil, v.Kind.String(), false
	}
}

func (v *VM) execAssociated(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP
	from := v.get(inst.A)
	name := v.Program.GetConstant(inst.Const).String

	custID, ok := customTypeID(from)
	if !ok {
		return vmerr.NonexistentMember(v.area(ip), v.callStack(), name, from.Kind.String())
	}
	methods := v.TypeImpls[custID]
	cell, ok := methods[name]
	if !ok {
		return vmerr.NonexistentMember(v.area(ip), v.callStack(), name, "type")
	}
	v.bindCell(inst.B, cell)
	return nil
}

func customTypeID(v value.Value) (uint32, bool) {
	switch v.Kind {
	case value.KindType:
		tr := v.Data.(value.TypeRef)
		if tr.IsCustom {
			return tr.CustomID, true
		}
	case value.KindInstance:
		inst := v.Data.(value.InstanceData)
		if inst.Type.IsCustom {
			return inst.Type.CustomID, true
		}
	}
	return 0, false
}

func typeOf(val value.Value) value.TypeRef {
	if val.Kind == value.KindInstance {
		return val.Data.(value.InstanceData).Type
	}
	return value.TypeRef{Builtin: val.Kind}
}

func (v *VM) execLen(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP
	src := v.get(inst.A)
	switch src.Kind {
	case value.KindArray:
		v.bind(inst.B, value.Int(int64(len(src.Data.([]*value.Cell)))), ip)
	case value.KindDict:
		v.bind(inst.B, value.Int(int64(len(src.Data.(map[string]value.DictEntry)))), ip)
	case value.KindString:
		v.bind(inst.B, value.Int(int64(len(src.Data.([]rune)))), ip)
	case value.KindRange:
		r := src.Data.(value.RangeData)
		v.bind(inst.B, value.Int(rangeLen(r)), ip)
	default:
		return vmerr.TypeMismatch(v.area(ip), v.callStack(), src.Kind.String(), "", "len")
	}
	return nil
}

func rangeLen(r value.RangeData) int64 {
	if r.Step == 0 {
		return 0
	}
	if r.End >= r.Start {
		return (r.End - r.Start + int64(r.Step) - 1) / int64(r.Step)
	}
	return (r.Start - r.End + int64(r.Step) - 1) / int64(r.Step)
}

func (v *VM) currentSrc() bytecode.SourceHandle {
	fn, coord := v.currentFunc()
	_ = fn
	return coord.Program.Src
}
