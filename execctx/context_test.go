package execctx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/triggervm/bytecode"
	"github.com/wudi/triggervm/execctx"
	"github.com/wudi/triggervm/ids"
	"github.com/wudi/triggervm/value"
)

func TestNewContextInitializesEmptyRegisters(t *testing.T) {
	ctx := execctx.NewContext(3, ids.Arb(1), bytecode.SourceHandle{})
	require.Len(t, ctx.Registers, 3)
	for _, c := range ctx.Registers {
		assert.Equal(t, value.KindEmpty, c.Value().Kind)
	}
}

func TestCloneIsIndependentRegisterSliceSharedCells(t *testing.T) {
	ctx := execctx.NewContext(2, ids.Arb(1), bytecode.SourceHandle{})
	clone := ctx.Clone()
	clone.Registers[0] = value.NewCell(value.Int(9).WithArea(bytecode.CodeArea{}))

	assert.False(t, value.SameCell(ctx.Registers[0], clone.Registers[0]))
	assert.Equal(t, value.KindEmpty, ctx.Registers[0].Value().Kind)

	// Mutating a cell shared by both clones is visible through either handle.
	ctx.Registers[1].Set(value.Int(5).WithArea(bytecode.CodeArea{}))
	assert.Equal(t, int64(5), clone.Registers[1].Value().Data.(int64))
}

func TestFullContextFrontierIsLIFO(t *testing.T) {
	a := execctx.NewContext(0, ids.Arb(1), bytecode.SourceHandle{})
	full := execctx.NewFullContext(a, execctx.CallInfo{})
	b := a.Clone()
	b.IP = 5
	full.Push(b)

	assert.Same(t, b, full.Current())
	popped := full.Pop()
	assert.Same(t, b, popped)
	assert.Same(t, a, full.Current())
	assert.True(t, !full.Empty())
}

func TestContextStackCallStackIsInnermostFirst(t *testing.T) {
	var cs execctx.ContextStack
	outer := execctx.NewContext(0, ids.Arb(0), bytecode.SourceHandle{})
	inner := execctx.NewContext(0, ids.Arb(0), bytecode.SourceHandle{})

	cs.PushFull(execctx.NewFullContext(outer, execctx.CallInfo{Func: bytecode.FuncCoord{Func: 0}}))
	cs.PushFull(execctx.NewFullContext(inner, execctx.CallInfo{Func: bytecode.FuncCoord{Func: 1}}))

	stack := cs.CallStack()
	require.Len(t, stack, 2)
	assert.Equal(t, uint32(1), stack[0].Func.Func)
	assert.Equal(t, uint32(0), stack[1].Func.Func)
}
