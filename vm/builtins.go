package vm

import (
	"github.com/wudi/triggervm/value"
	"github.com/wudi/triggervm/value/ops"
	"github.com/wudi/triggervm/vmerr"
)

// BuiltinFunc is one built-in function body. Built-in *bodies* are out
// of scope (spec.md §1: "part of a separate standard library"); the
// VM only needs somewhere to invoke them from, so Builtins is a
// pluggable registry a host wires up, seeded here with a handful of
// pure, dependency-free functions useful for exercising RunBuiltin in
// tests and the demonstration CLI.
type BuiltinFunc func(args []value.Value, c ops.Ctx) (value.Value, *vmerr.Error)

type Builtins struct {
	funcs map[string]BuiltinFunc
}

func NewBuiltins() *Builtins {
	b := &Builtins{funcs: make(map[string]BuiltinFunc)}
	b.Register("abs", builtinAbs)
	b.Register("min", builtinMin)
	b.Register("max", builtinMax)
	return b
}

func (b *Builtins) Register(name string, fn BuiltinFunc) {
	b.funcs[name] = fn
}

func (b *Builtins) Call(name string, args []value.Value, c ops.Ctx) (value.Value, *vmerr.Error) {
	fn, ok := b.funcs[name]
	if !ok {
		return value.Value{}, vmerr.UnknownBuiltin(c.Area, c.CallStack, name)
	}
	return fn(args, c)
}

func builtinAbs(args []value.Value, c ops.Ctx) (value.Value, *vmerr.Error) {
	if len(args) != 1 {
		return value.Value{}, vmerr.ArgMismatch(c.Area, c.CallStack, "abs takes 1 argument")
	}
	switch args[0].Kind {
	case value.KindInt:
		n := args[0].Data.(int64)
		if n < 0 {
			n = -n
		}
		return value.Int(n), nil
	case value.KindFloat:
		f := args[0].Data.(float64)
		if f < 0 {
			f = -f
		}
		return value.Float(f), nil
	default:
		return value.Value{}, vmerr.TypeMismatch(c.Area, c.CallStack, args[0].Kind.String(), "", "abs")
	}
}

func builtinMin(args []value.Value, c ops.Ctx) (value.Value, *vmerr.Error) {
	return foldCompare(args, c, ops.Lt)
}

func builtinMax(args []value.Value, c ops.Ctx) (value.Value, *vmerr.Error) {
	return foldCompare(args, c, ops.Gt)
}

func foldCompare(args []value.Value, c ops.Ctx, better func(a, b value.Value, c ops.Ctx) (value.Value, *vmerr.Error)) (value.Value, *vmerr.Error) {
	if len(args) == 0 {
		return value.Value{}, vmerr.ArgMismatch(c.Area, c.CallStack, "min/max takes at least 1 argument")
	}
	best := args[0]
	for _, a := range args[1:] {
		r, err := better(a, best, c)
		if err != nil {
			return value.Value{}, err
		}
		if r.Data.(bool) {
			best = a
		}
	}
	return best, nil
}
