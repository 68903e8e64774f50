package value

// ShallowClone returns a new handle to the same underlying cell.
// Because Cell is already reference-shaped in Go, "a new handle" and
// "the same handle" are observationally identical: both let the
// caller bind a register to the exact storage `c` denotes, so
// mutating through either alias is visible through the other
// (spec.md invariant 4). This function exists as a named operation
// so call sites read as intent ("I want to alias", not "I forgot to
// clone"), matching the CopyRef/AssignRef opcodes' semantics.
func ShallowClone(c *Cell) *Cell {
	return c
}

// DeepClone recursively constructs new cells for compound values
// (array, dict, maybe, instance, module); every other variant is
// copied by value, since scalars carry no cell references of their
// own (spec.md §4.A).
func DeepClone(c *Cell) *Cell {
	return NewCell(deepCloneStored(c.Get()))
}

func deepCloneStored(sv StoredValue) StoredValue {
	return Value{Kind: sv.Value.Kind, Data: deepCloneData(sv.Value)}.WithArea(sv.Area)
}

func deepCloneData(v Value) any {
	switch v.Kind {
	case KindArray:
		src := v.Data.([]*Cell)
		out := make([]*Cell, len(src))
		for i, c := range src {
			out[i] = DeepClone(c)
		}
		return out
	case KindDict:
		src := v.Data.(map[string]DictEntry)
		out := make(map[string]DictEntry, len(src))
		for k, e := range src {
			out[k] = DictEntry{Cell: DeepClone(e.Cell), Private: e.Private, Source: e.Source}
		}
		return out
	case KindMaybe:
		inner, _ := v.Data.(*Cell)
		if inner == nil {
			return (*Cell)(nil)
		}
		return DeepClone(inner)
	case KindInstance:
		src := v.Data.(InstanceData)
		items := make(map[string]DictEntry, len(src.Items))
		for k, e := range src.Items {
			items[k] = DictEntry{Cell: DeepClone(e.Cell), Private: e.Private, Source: e.Source}
		}
		return InstanceData{Type: src.Type, Items: items}
	case KindModule:
		src := v.Data.(ModuleData)
		exports := make(map[string]DictEntry, len(src.Exports))
		for k, e := range src.Exports {
			exports[k] = DictEntry{Cell: DeepClone(e.Cell), Private: e.Private, Source: e.Source}
		}
		types := append([]TypeRef{}, src.Types...)
		return ModuleData{Exports: exports, Types: types}
	default:
		return v.Data
	}
}
