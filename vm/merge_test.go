package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/triggervm/bytecode"
	"github.com/wudi/triggervm/config"
	"github.com/wudi/triggervm/execctx"
	"github.com/wudi/triggervm/ids"
	"github.com/wudi/triggervm/opcode"
	"github.com/wudi/triggervm/trigger"
	"github.com/wudi/triggervm/value"
	"github.com/wudi/triggervm/vmlog"
)

func regCtx(vals ...value.Value) *execctx.Context {
	c := execctx.NewContext(len(vals), ids.Arb(0), bytecode.SourceHandle{})
	for i, v := range vals {
		c.Registers[i] = value.NewCell(v.WithArea(bytecode.CodeArea{}))
	}
	return c
}

func TestContextsEqualComparesRegistersStructurally(t *testing.T) {
	v := &VM{}
	a := regCtx(value.Int(1), value.StrFromGo("x"))
	b := regCtx(value.Int(1), value.StrFromGo("x"))
	assert.True(t, v.contextsEqual(a, b))

	c := regCtx(value.Int(2), value.StrFromGo("x"))
	assert.False(t, v.contextsEqual(a, c))
}

func TestContextsEqualCoercesNumericKinds(t *testing.T) {
	v := &VM{}
	a := regCtx(value.Int(5))
	b := regCtx(value.Float(5.0))
	assert.True(t, v.contextsEqual(a, b))
}

func TestContextHashMatchesForStructurallyEqualContexts(t *testing.T) {
	v := &VM{}
	a := regCtx(value.Int(1), value.Bool(true))
	b := regCtx(value.Int(1), value.Bool(true))
	assert.Equal(t, v.contextHash(a), v.contextHash(b))
}

func TestContextHashDiffersForDifferentRegisterCounts(t *testing.T) {
	v := &VM{}
	a := regCtx(value.Int(1))
	b := regCtx(value.Int(1), value.Int(1))
	assert.NotEqual(t, v.contextHash(a), v.contextHash(b))
}

// A Diverges-forced split whose two arms land on the very same IP with
// identical register state merges on the next pass: the frontier
// collapses back to one survivor and exactly one spawn trigger is
// emitted, even though the two arms never actually differed.
func TestMergeCollapsesIdenticalSiblingsAndEmitsSpawn(t *testing.T) {
	fn := bytecode.Function{
		Name:     "main",
		RegsUsed: 1,
		Opcodes: []opcode.Instruction{
			{Op: opcode.OpLoadConst, A: 0, Const: 0},
			{Op: opcode.OpJumpIfTrue, A: 0, Imm: 2, Diverges: true},
			{Op: opcode.OpReturn, A: 0},
		},
	}
	fn.Spans = make([]bytecode.CodeSpan, len(fn.Opcodes))
	fn.EntrySpan = bytecode.CodeSpan{Start: 0, End: len(fn.Opcodes)}
	prog := &bytecode.Program{
		Src:       bytecode.SourceHandle{Kind: "test"},
		Constants: []bytecode.Constant{{Kind: bytecode.ConstInt, Int: 5}},
		Functions: []bytecode.Function{fn},
	}

	m := New(prog, config.Default())
	err := m.Run()
	require.Nil(t, err)

	assert.Equal(t, int64(5), m.Result().Data.(int64))
	triggers := m.Triggers()
	require.Len(t, triggers, 1)
	spawn, ok := triggers[0].(trigger.Spawn)
	require.True(t, ok)
	assert.Equal(t, spawn.From, spawn.To, "both split arms inherited the same group, so this merge's spawn is a same-group no-op record")
}

// Two split arms that still disagree on an IP at merge time are left
// alone entirely: tryMergeContexts only ever looks at the head IP.
func TestMergeLeavesMismatchedIPsAlone(t *testing.T) {
	v := &VM{Emitter: trigger.NewEmitter(), Log: vmlog.Discard()}
	full := execctx.NewFullContext(regCtx(value.Int(1)), execctx.CallInfo{})
	full.Current().IP = 1
	sibling := regCtx(value.Int(1))
	sibling.IP = 2
	full.Push(sibling)
	v.Contexts.PushFull(full)

	v.tryMergeContexts()

	assert.Len(t, v.Contexts.Top().Frontier, 2)
	assert.Empty(t, v.Emitter.Objects())
}
