package meta

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueEqual(t *testing.T) {
	assert.True(t, Int32(5).Equal(Int32(5)))
	assert.False(t, Int32(5).Equal(Int64(5)), "kind is part of equality")
	assert.False(t, Uint8(1).Equal(Uint8(2)))
	assert.True(t, Null().Equal(Value{}))
	assert.True(t, Float64(math.NaN()).Equal(Float64(math.NaN())))
	assert.True(t, Array(String("a"), Bool(true)).Equal(Array(String("a"), Bool(true))))
	assert.False(t, Array(String("a")).Equal(TupleValue(String("a"))))

	obj := Object(map[string]Value{"x": Int32(1), "y": Array()})
	assert.True(t, obj.Equal(Object(map[string]Value{"y": Array(), "x": Int32(1)})))
	assert.False(t, obj.Equal(Object(map[string]Value{"x": Int32(1)})))
}

func TestValueGo(t *testing.T) {
	assert.Nil(t, Null().Go())
	assert.Equal(t, int8(-3), Int8(-3).Go())
	assert.Equal(t, uint16(9), Uint16(9).Go())
	assert.Equal(t, float32(1.5), Float32(1.5).Go())
	assert.Equal(t, []any{"a", int64(2)}, Array(String("a"), Int64(2)).Go())
	assert.Equal(t, map[string]any{"k": true}, Object(map[string]Value{"k": Bool(true)}).Go())
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "null", Null().String())
	assert.Equal(t, `"hi"`, String("hi").String())
	assert.Equal(t, "[1, 2]", Array(Int32(1), Int32(2)).String())
	assert.Equal(t, "(true, 3)", TupleValue(Bool(true), Uint64(3)).String())
	assert.Equal(t, "{a: 1, b: 2.5}", Object(map[string]Value{"b": Float64(2.5), "a": Int8(1)}).String())
}

func TestValueKindRoundTrip(t *testing.T) {
	for k := ValNull; k <= ValObject; k++ {
		parsed, err := ParseValueKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseValueKind("i128")
	assert.Error(t, err)
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, Int16(1).IsSigned())
	assert.False(t, Int16(1).IsUnsigned())
	assert.True(t, Uint32(1).IsUnsigned())
	assert.True(t, Null().IsNull())
}
