package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/triggervm/bytecode"
	"github.com/wudi/triggervm/ids"
	"github.com/wudi/triggervm/value"
)

func cell(v value.Value) *value.Cell {
	return value.NewCell(v.WithArea(bytecode.CodeArea{}))
}

func TestCellSetPreservesIdentity(t *testing.T) {
	c := cell(value.Int(1))
	before := c
	c.Set(value.Int(2).WithArea(bytecode.CodeArea{}))
	assert.True(t, value.SameCell(before, c))
	assert.Equal(t, int64(2), c.Value().Data.(int64))
}

func TestSameCellIsPointerIdentityNotStructuralEquality(t *testing.T) {
	a := cell(value.Int(5))
	b := cell(value.Int(5))
	assert.False(t, value.SameCell(a, b), "equal contents in distinct cells are not the same cell")
	assert.True(t, value.SameCell(a, a))
}

func TestDeepCloneArrayIsDisjointFromSource(t *testing.T) {
	elem := cell(value.Int(1))
	arr := value.Array([]*value.Cell{elem})
	src := cell(arr)

	clone := value.DeepClone(src)
	cloneElems := clone.Value().Data.([]*value.Cell)
	require.Len(t, cloneElems, 1)
	assert.False(t, value.SameCell(elem, cloneElems[0]))

	elem.Set(value.Int(99).WithArea(bytecode.CodeArea{}))
	assert.Equal(t, int64(1), cloneElems[0].Value().Data.(int64), "clone unaffected by mutating the original element")
}

func TestDeepCloneDictClonesEveryEntry(t *testing.T) {
	a := cell(value.Int(1))
	d := value.Dict(map[string]value.DictEntry{"a": {Cell: a}})
	src := cell(d)

	clone := value.DeepClone(src)
	entries := clone.Value().Data.(map[string]value.DictEntry)
	require.Contains(t, entries, "a")
	assert.False(t, value.SameCell(a, entries["a"].Cell))
}

func TestDeepCloneScalarCopiesByValue(t *testing.T) {
	src := cell(value.Int(42))
	clone := value.DeepClone(src)
	assert.False(t, value.SameCell(src, clone))
	assert.Equal(t, int64(42), clone.Value().Data.(int64))
}

func TestDeepCloneMaybeNoneStaysNone(t *testing.T) {
	src := cell(value.Maybe(nil))
	clone := value.DeepClone(src)
	assert.Nil(t, clone.Value().Data.(*value.Cell))
}

func TestDeepCloneMaybeSomeClonesInner(t *testing.T) {
	inner := cell(value.Int(7))
	src := cell(value.Maybe(inner))
	clone := value.DeepClone(src)
	clonedInner := clone.Value().Data.(*value.Cell)
	assert.False(t, value.SameCell(inner, clonedInner))
	assert.Equal(t, int64(7), clonedInner.Value().Data.(int64))
}

func TestDictEntryVisibleFromOwnSourceOnly(t *testing.T) {
	owner := bytecode.SourceHandle{Kind: "file", Path: "a.spwn"}
	other := bytecode.SourceHandle{Kind: "file", Path: "b.spwn"}
	entry := value.DictEntry{Cell: cell(value.Int(1)), Private: true, Source: owner}

	assert.True(t, entry.VisibleFrom(owner))
	assert.False(t, entry.VisibleFrom(other))
}

func TestDictEntryPublicVisibleFromAnySource(t *testing.T) {
	entry := value.DictEntry{Cell: cell(value.Int(1)), Private: false}
	assert.True(t, entry.VisibleFrom(bytecode.SourceHandle{Kind: "file", Path: "anything"}))
}

func TestFromConstantMapsEveryKind(t *testing.T) {
	tests := []struct {
		c    bytecode.Constant
		kind value.Kind
	}{
		{bytecode.Constant{Kind: bytecode.ConstInt, Int: 3}, value.KindInt},
		{bytecode.Constant{Kind: bytecode.ConstFloat, Float: 3.5}, value.KindFloat},
		{bytecode.Constant{Kind: bytecode.ConstBool, Bool: true}, value.KindBool},
		{bytecode.Constant{Kind: bytecode.ConstString, String: "hi"}, value.KindString},
		{bytecode.Constant{Kind: bytecode.ConstObjectKey, String: "k"}, value.KindObjectKey},
		{bytecode.Constant{Kind: bytecode.ConstEmpty}, value.KindEmpty},
	}
	for _, tt := range tests {
		got := value.FromConstant(&tt.c)
		assert.Equal(t, tt.kind, got.Kind)
	}
}

func TestFromIDClassPicksMatchingKind(t *testing.T) {
	id := ids.Arb(1)
	assert.Equal(t, value.KindGroup, value.FromIDClass(ids.Group, id).Kind)
	assert.Equal(t, value.KindChannel, value.FromIDClass(ids.Channel, id).Kind)
	assert.Equal(t, value.KindBlock, value.FromIDClass(ids.Block, id).Kind)
	assert.Equal(t, value.KindItem, value.FromIDClass(ids.Item, id).Kind)
}

func TestDisplayFormatsScalarsAndCompounds(t *testing.T) {
	assert.Equal(t, "42", value.Display(value.Int(42)))
	assert.Equal(t, "true", value.Display(value.Bool(true)))
	assert.Equal(t, "hi", value.Display(value.StrFromGo("hi")))
	assert.Equal(t, "()", value.Display(value.Empty()))
	assert.Equal(t, "?", value.Display(value.Maybe(nil)))
	assert.Equal(t, "7?", value.Display(value.Maybe(cell(value.Int(7)))))

	arr := value.Array([]*value.Cell{cell(value.Int(1)), cell(value.Int(2))})
	assert.Equal(t, "[1, 2]", value.Display(arr))
}

func TestDisplayDictIsKeySorted(t *testing.T) {
	d := value.Dict(map[string]value.DictEntry{
		"b": {Cell: cell(value.Int(2))},
		"a": {Cell: cell(value.Int(1))},
	})
	assert.Equal(t, "{a: 1, b: 2}", value.Display(d))
}
