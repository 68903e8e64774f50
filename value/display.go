package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Display produces the canonical text form of a value (spec.md §4.A
// "runtime display"), used by debug output and the ToString opcode.
func Display(v Value) string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case KindFloat:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Data.(bool))
	case KindString:
		return string(v.Data.([]rune))
	case KindArray:
		elems := v.Data.([]*Cell)
		parts := make([]string, len(elems))
		for i, c := range elems {
			parts[i] = Display(c.Value())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindDict:
		entries := v.Data.(map[string]DictEntry)
		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, Display(entries[k].Cell.Value()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindGroup:
		return fmt.Sprintf("%vg", v.Data)
	case KindChannel:
		return fmt.Sprintf("%vc", v.Data)
	case KindBlock:
		return fmt.Sprintf("%vb", v.Data)
	case KindItem:
		return fmt.Sprintf("%vi", v.Data)
	case KindBuiltins:
		return "$"
	case KindRange:
		r := v.Data.(RangeData)
		return fmt.Sprintf("%d..%d..%d", r.Start, r.Step, r.End)
	case KindMaybe:
		inner, _ := v.Data.(*Cell)
		if inner == nil {
			return "?"
		}
		return Display(inner.Value()) + "?"
	case KindEmpty:
		return "()"
	case KindMacro:
		return "(macro)"
	case KindType:
		t := v.Data.(TypeRef)
		if t.IsCustom {
			return "@" + t.CustomName
		}
		return "@" + t.Builtin.String()
	case KindModule:
		return "(module)"
	case KindTriggerFunction:
		return "(trigger function)"
	case KindError:
		return fmt.Sprintf("error(%v)", v.Data)
	case KindObjectKey:
		return fmt.Sprintf("$.%s", v.Data)
	case KindEpsilon:
		return "ε"
	case KindChroma:
		c := v.Data.(ChromaData)
		return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
	case KindInstance:
		i := v.Data.(InstanceData)
		return "@" + i.Type.CustomName + "::instance"
	default:
		return "<unknown value>"
	}
}
