package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/triggervm/bytecode"
	"github.com/wudi/triggervm/config"
	"github.com/wudi/triggervm/opcode"
	"github.com/wudi/triggervm/value"
	"github.com/wudi/triggervm/vm"
)

func runProgram(t *testing.T, fn bytecode.Function, consts []bytecode.Constant, cfg config.RunConfig) (*vm.VM, error) {
	t.Helper()
	fn.Spans = make([]bytecode.CodeSpan, len(fn.Opcodes))
	fn.EntrySpan = bytecode.CodeSpan{Start: 0, End: len(fn.Opcodes)}
	prog := &bytecode.Program{
		Src:       bytecode.SourceHandle{Kind: "test"},
		Constants: consts,
		Functions: []bytecode.Function{fn},
	}
	m := vm.New(prog, cfg)
	err := m.Run()
	return m, err
}

// 10 + 32 == 42, via LoadConst/LoadConst/Plus/Return.
func TestArithmeticScenario(t *testing.T) {
	fn := bytecode.Function{
		Name:     "main",
		RegsUsed: 3,
		Opcodes: []opcode.Instruction{
			{Op: opcode.OpLoadConst, A: 0, Const: 0},
			{Op: opcode.OpLoadConst, A: 1, Const: 1},
			{Op: opcode.OpPlus, A: 0, B: 1, C: 2},
			{Op: opcode.OpReturn, A: 2},
		},
	}
	m, err := runProgram(t, fn, []bytecode.Constant{
		{Kind: bytecode.ConstInt, Int: 10},
		{Kind: bytecode.ConstInt, Int: 32},
	}, config.Default())
	require.Nil(t, err)
	assert.Equal(t, value.KindInt, m.Result().Kind)
	assert.Equal(t, int64(42), m.Result().Data.(int64))
}

// UnwrapOrJump on a present Maybe (produced here via IntoIterator +
// IterNext over a one-element array) replaces the check register with
// its inner value and falls through to the body.
func TestMaybeUnwrapScenario(t *testing.T) {
	fn := bytecode.Function{
		Name:     "main",
		RegsUsed: 7,
		Opcodes: []opcode.Instruction{
			{Op: opcode.OpLoadConst, A: 0, Const: 0},      // reg0 = 7
			{Op: opcode.OpAllocArray, A: 1, Imm: 1},        // reg1 = []
			{Op: opcode.OpPushArrayElem, A: 0, B: 1},       // reg1 = [7]
			{Op: opcode.OpIntoIterator, A: 1, B: 2},        // reg2 = iter(reg1)
			{Op: opcode.OpIterNext, A: 2, B: 3},             // reg3 = Some(7)
			{Op: opcode.OpUnwrapOrJump, A: 3, Imm: 8},      // reg3 := 7, fall through
			{Op: opcode.OpLoadConst, A: 5, Const: 1},       // reg5 = 1
			{Op: opcode.OpPlus, A: 3, B: 5, C: 6},           // reg6 = 7 + 1
			{Op: opcode.OpReturn, A: 6},
		},
	}
	m, err := runProgram(t, fn, []bytecode.Constant{
		{Kind: bytecode.ConstInt, Int: 7},
		{Kind: bytecode.ConstInt, Int: 1},
	}, config.Default())
	require.Nil(t, err)
	assert.Equal(t, int64(8), m.Result().Data.(int64))
}

// A Throw unwound to a PushTryCatch handler binds the thrown value to
// the handler's destination register and jumps to its target.
func TestTryCatchScenario(t *testing.T) {
	fn := bytecode.Function{
		Name:     "main",
		RegsUsed: 2,
		Opcodes: []opcode.Instruction{
			{Op: opcode.OpPushTryCatch, A: 1, Imm: 3},
			{Op: opcode.OpLoadConst, A: 0, Const: 0},
			{Op: opcode.OpThrow, A: 0},
			{Op: opcode.OpReturn, A: 1},
		},
	}
	m, err := runProgram(t, fn, []bytecode.Constant{
		{Kind: bytecode.ConstString, String: "boom"},
	}, config.Default())
	require.Nil(t, err)
	assert.Equal(t, value.KindString, m.Result().Kind)
}

// CopyRef aliases a cell, so mutating the original through Write is
// visible through the aliased register too; CopyDeep produces disjoint
// storage unaffected by the later mutation.
func TestDeepVsShallowCopyScenario(t *testing.T) {
	fn := bytecode.Function{
		Name:     "main",
		RegsUsed: 5,
		Opcodes: []opcode.Instruction{
			{Op: opcode.OpLoadConst, A: 0, Const: 0},  // reg0 = 1
			{Op: opcode.OpCopyRef, A: 0, B: 1},         // reg1 aliases reg0's cell
			{Op: opcode.OpCopyDeep, A: 0, B: 2},         // reg2 is an independent clone
			{Op: opcode.OpLoadConst, A: 4, Const: 1},    // reg4 = 99
			{Op: opcode.OpWrite, A: 0, B: 4},             // reg0's cell mutated in place to 99
			{Op: opcode.OpAllocArray, A: 3, Imm: 2},
			{Op: opcode.OpPushArrayElem, A: 1, B: 3},
			{Op: opcode.OpPushArrayElem, A: 2, B: 3},
			{Op: opcode.OpReturn, A: 3},
		},
	}
	m, err := runProgram(t, fn, []bytecode.Constant{
		{Kind: bytecode.ConstInt, Int: 1},
		{Kind: bytecode.ConstInt, Int: 99},
	}, config.Default())
	require.Nil(t, err)
	require.Equal(t, value.KindArray, m.Result().Kind)
	cells := m.Result().Data.([]*value.Cell)
	require.Len(t, cells, 2)
	assert.Equal(t, int64(99), cells[0].Value().Data.(int64), "CopyRef aliases the mutated cell")
	assert.Equal(t, int64(1), cells[1].Value().Data.(int64), "CopyDeep is unaffected by the later Write")
}

// With Split set to disallow, an implicit return on a frontier sibling
// that reconverges after a divergent split into a branch that already
// returned explicitly is a fatal context-split-disallowed error.
func TestContextSplitDisallowedScenario(t *testing.T) {
	fn := bytecode.Function{
		Name:     "main",
		RegsUsed: 1,
		Opcodes: []opcode.Instruction{
			{Op: opcode.OpLoadConst, A: 0, Const: 0},
			{Op: opcode.OpJumpIfTrue, A: 0, Imm: 3, Diverges: true},
			{Op: opcode.OpReturn, A: 0},
		},
	}
	cfg := config.Default()
	cfg.Split = config.SplitDisallow
	_, err := runProgram(t, fn, []bytecode.Constant{
		{Kind: bytecode.ConstBool, Bool: true},
	}, cfg)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "context-split-disallowed")
}

// With the default SplitAllow, the same program runs clean: the
// fallen-through sibling's implicit return is just unit, not an error.
func TestContextSplitAllowedScenario(t *testing.T) {
	fn := bytecode.Function{
		Name:     "main",
		RegsUsed: 1,
		Opcodes: []opcode.Instruction{
			{Op: opcode.OpLoadConst, A: 0, Const: 0},
			{Op: opcode.OpJumpIfTrue, A: 0, Imm: 3, Diverges: true},
			{Op: opcode.OpReturn, A: 0},
		},
	}
	_, err := runProgram(t, fn, []bytecode.Constant{
		{Kind: bytecode.ConstBool, Bool: true},
	}, config.Default())
	require.Nil(t, err)
}
