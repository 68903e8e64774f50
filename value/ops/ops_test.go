package ops_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/triggervm/bytecode"
	"github.com/wudi/triggervm/value"
	"github.com/wudi/triggervm/value/ops"
)

func TestPlus(t *testing.T) {
	tests := []struct {
		name    string
		a, b    value.Value
		want    value.Value
		wantErr bool
	}{
		{"int+int", value.Int(2), value.Int(3), value.Int(5), false},
		{"int+float coerces to float", value.Int(2), value.Float(1.5), value.Float(3.5), false},
		{"string+string concatenates", value.StrFromGo("ab"), value.StrFromGo("cd"), value.StrFromGo("abcd"), false},
		{"bool+bool mismatches", value.Bool(true), value.Bool(false), value.Value{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ops.Plus(tt.a, tt.b, ops.Ctx{})
			if tt.wantErr {
				require.NotNil(t, err)
				return
			}
			require.Nil(t, err)
			assert.True(t, ops.StructuralEqual(tt.want, got, true))
		})
	}
}

func TestDivByZero(t *testing.T) {
	_, err := ops.Div(value.Int(1), value.Int(0), ops.Ctx{})
	require.NotNil(t, err)
	assert.Equal(t, "arithmetic", string(err.Kind))
}

func TestDivExactIntsStayInt(t *testing.T) {
	got, err := ops.Div(value.Int(10), value.Int(5), ops.Ctx{})
	require.Nil(t, err)
	assert.Equal(t, value.KindInt, got.Kind)
	assert.Equal(t, int64(2), got.Data.(int64))
}

func TestDivInexactIntsFloat(t *testing.T) {
	got, err := ops.Div(value.Int(10), value.Int(3), ops.Ctx{})
	require.Nil(t, err)
	assert.Equal(t, value.KindFloat, got.Kind)
}

func TestCompareStrings(t *testing.T) {
	got, err := ops.Lt(value.StrFromGo("abc"), value.StrFromGo("abd"), ops.Ctx{})
	require.Nil(t, err)
	assert.True(t, got.Data.(bool))
}

func TestEqCoercesNumericNeqStrictDoesNot(t *testing.T) {
	eq, err := ops.Eq(value.Int(2), value.Float(2.0), ops.Ctx{})
	require.Nil(t, err)
	assert.True(t, eq.Data.(bool))

	neqStrict, err := ops.NeqStrict(value.Int(2), value.Float(2.0), ops.Ctx{})
	require.Nil(t, err)
	assert.True(t, neqStrict.Data.(bool))
}

func TestAsIntToFloat(t *testing.T) {
	got, err := ops.As(value.Int(7), value.KindFloat, ops.Ctx{})
	require.Nil(t, err)
	assert.Equal(t, 7.0, got.Data.(float64))
}

func TestAsInvalidCast(t *testing.T) {
	_, err := ops.As(value.Bool(true), value.KindArray, ops.Ctx{})
	require.NotNil(t, err)
	assert.Equal(t, "invalid-cast", string(err.Kind))
}

func TestInArray(t *testing.T) {
	arr := value.Array([]*value.Cell{value.NewCell(value.Int(1).WithArea(bytecode.CodeArea{})), value.NewCell(value.Int(2).WithArea(bytecode.CodeArea{}))})
	got, err := ops.In(value.Int(2), arr, ops.Ctx{})
	require.Nil(t, err)
	assert.True(t, got.Data.(bool))
}

func TestInRange(t *testing.T) {
	r := value.Range(0, 10, 2)
	got, err := ops.In(value.Int(4), r, ops.Ctx{})
	require.Nil(t, err)
	assert.True(t, got.Data.(bool))

	got, err = ops.In(value.Int(5), r, ops.Ctx{})
	require.Nil(t, err)
	assert.False(t, got.Data.(bool))
}

func TestStructuralHashStableAcrossEqualValues(t *testing.T) {
	a := value.Int(5)
	b := value.Float(5.0)
	assert.Equal(t, ops.StructuralHash(a), ops.StructuralHash(b))
}

func TestStructuralHashDictOrderIndependent(t *testing.T) {
	c1 := value.NewCell(value.Int(1).WithArea(bytecode.CodeArea{}))
	c2 := value.NewCell(value.Int(2).WithArea(bytecode.CodeArea{}))
	d1 := value.Dict(map[string]value.DictEntry{"a": {Cell: c1}, "b": {Cell: c2}})
	d2 := value.Dict(map[string]value.DictEntry{"b": {Cell: c2}, "a": {Cell: c1}})
	assert.Equal(t, ops.StructuralHash(d1), ops.StructuralHash(d2))
	assert.True(t, ops.StructuralEqual(d1, d2, true))
}
