package vm

import (
	"fmt"

	"github.com/wudi/triggervm/opcode"
	"github.com/wudi/triggervm/value"
	"github.com/wudi/triggervm/vmerr"
)

func (v *VM) execTypes(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP

	switch inst.Op {
	case opcode.OpMakeInstance:
		return v.makeInstance(inst)

	case opcode.OpImpl:
		return v.implType(inst)

	case opcode.OpAddOperatorOverload:
		custID, ok := customTypeID(v.get(inst.A))
		if !ok {
			return vmerr.TypeMismatch(v.area(ip), v.callStack(), v.get(inst.A).Kind.String(), "type", "add-operator-overload")
		}
		v.typeImplsFor(custID)[operatorKey(inst.Imm)] = value.DeepClone(v.cell(inst.C))
	}
	return nil
}

func (v *VM) makeInstance(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP
	baseVal := v.get(inst.A)
	if baseVal.Kind != value.KindType {
		return vmerr.TypeMismatch(v.area(ip), v.callStack(), baseVal.Kind.String(), "type", "make-instance")
	}
	tr := baseVal.Data.(value.TypeRef)

	itemsVal := v.get(inst.B)
	if itemsVal.Kind != value.KindDict {
		return vmerr.TypeMismatch(v.area(ip), v.callStack(), itemsVal.Kind.String(), "dict", "make-instance")
	}
	src := itemsVal.Data.(map[string]value.DictEntry)
	items := make(map[string]value.DictEntry, len(src))
	for k, e := range src {
		items[k] = value.DictEntry{Cell: value.DeepClone(e.Cell), Private: e.Private, Source: e.Source}
	}
	v.bind(inst.C, value.Instance(value.InstanceData{Type: tr, Items: items}), ip)
	return nil
}

func (v *VM) implType(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP
	custID, ok := customTypeID(v.get(inst.A))
	if !ok {
		return vmerr.TypeMismatch(v.area(ip), v.callStack(), v.get(inst.A).Kind.String(), "type", "impl")
	}
	methodsVal := v.get(inst.B)
	if methodsVal.Kind != value.KindDict {
		return vmerr.TypeMismatch(v.area(ip), v.callStack(), methodsVal.Kind.String(), "dict", "impl")
	}
	target := v.typeImplsFor(custID)
	for name, e := range methodsVal.Data.(map[string]value.DictEntry) {
		target[name] = value.DeepClone(e.Cell)
	}
	return nil
}

func (v *VM) typeImplsFor(custID uint32) map[string]*value.Cell {
	m, ok := v.TypeImpls[custID]
	if !ok {
		m = make(map[string]*value.Cell)
		v.TypeImpls[custID] = m
	}
	return m
}

// operatorKey names the synthetic method-table slot an operator
// overload is stored under, distinct from any user-chosen method name.
func operatorKey(operatorTag int64) string {
	return fmt.Sprintf("__op%d", operatorTag)
}
