package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/triggervm/bytecode"
	"github.com/wudi/triggervm/config"
	"github.com/wudi/triggervm/opcode"
	"github.com/wudi/triggervm/vm"
)

func buildProgram(fns []bytecode.Function, consts []bytecode.Constant, calls []bytecode.CallExpr) *bytecode.Program {
	for i := range fns {
		fns[i].Spans = make([]bytecode.CodeSpan, len(fns[i].Opcodes))
		fns[i].EntrySpan = bytecode.CodeSpan{Start: 0, End: len(fns[i].Opcodes)}
	}
	return &bytecode.Program{
		Src:       bytecode.SourceHandle{Kind: "test"},
		Constants: consts,
		Functions: fns,
		Calls:     calls,
	}
}

// main creates a macro closed over function 1 ("double"), calls it
// with one positional argument, and returns the callee's result — the
// call-site context stays parked at the Call instruction while the
// callee's own full context runs to completion.
func TestCallScenario(t *testing.T) {
	main := bytecode.Function{
		Name:     "main",
		RegsUsed: 3,
		Opcodes: []opcode.Instruction{
			{Op: opcode.OpCreateMacro, Func: 1, B: 0, Regs: []opcode.Register{}},
			{Op: opcode.OpLoadConst, A: 1, Const: 0},
			{Op: opcode.OpCall, Call: 0, A: 0, B: 2},
			{Op: opcode.OpReturn, A: 2},
		},
	}
	double := bytecode.Function{
		Name:     "double",
		RegsUsed: 2,
		Params:   []string{"x"},
		Opcodes: []opcode.Instruction{
			{Op: opcode.OpPlus, A: 0, B: 0, C: 1},
			{Op: opcode.OpReturn, A: 1},
		},
	}
	prog := buildProgram(
		[]bytecode.Function{main, double},
		[]bytecode.Constant{{Kind: bytecode.ConstInt, Int: 5}},
		[]bytecode.CallExpr{{Positional: []bytecode.ArgExpr{{Reg: 1}}}},
	)

	m := vm.New(prog, config.Default())
	require.Nil(t, m.Run())
	assert.Equal(t, int64(10), m.Result().Data.(int64))
}

// RunBuiltin dispatches by constant-pool name through the VM's builtin
// registry and binds its result like any other producing opcode.
func TestRunBuiltinScenario(t *testing.T) {
	main := bytecode.Function{
		Name:     "main",
		RegsUsed: 2,
		Opcodes: []opcode.Instruction{
			{Op: opcode.OpLoadConst, A: 0, Const: 0},
			{Op: opcode.OpRunBuiltin, Const: 1, Regs: []opcode.Register{0}, A: 1},
			{Op: opcode.OpReturn, A: 1},
		},
	}
	prog := buildProgram(
		[]bytecode.Function{main},
		[]bytecode.Constant{
			{Kind: bytecode.ConstInt, Int: -5},
			{Kind: bytecode.ConstString, String: "abs"},
		},
		nil,
	)

	m := vm.New(prog, config.Default())
	require.Nil(t, m.Run())
	assert.Equal(t, int64(5), m.Result().Data.(int64))
}

// A named argument resolves through the callee's Params table rather
// than positional order.
func TestCallWithNamedArgumentScenario(t *testing.T) {
	main := bytecode.Function{
		Name:     "main",
		RegsUsed: 3,
		Opcodes: []opcode.Instruction{
			{Op: opcode.OpCreateMacro, Func: 1, B: 0, Regs: []opcode.Register{}},
			{Op: opcode.OpLoadConst, A: 1, Const: 0},
			{Op: opcode.OpCall, Call: 0, A: 0, B: 2},
			{Op: opcode.OpReturn, A: 2},
		},
	}
	negate := bytecode.Function{
		Name:     "negate",
		RegsUsed: 2,
		Params:   []string{"n"},
		Opcodes: []opcode.Instruction{
			{Op: opcode.OpNegate, A: 0, B: 1},
			{Op: opcode.OpReturn, A: 1},
		},
	}
	prog := buildProgram(
		[]bytecode.Function{main, negate},
		[]bytecode.Constant{{Kind: bytecode.ConstInt, Int: 9}},
		[]bytecode.CallExpr{{Named: []bytecode.NamedArgExpr{{Name: "n", Reg: 1}}}},
	)

	m := vm.New(prog, config.Default())
	require.Nil(t, m.Run())
	assert.Equal(t, int64(-9), m.Result().Data.(int64))
}
