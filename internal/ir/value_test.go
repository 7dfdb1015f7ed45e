package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Float(4.2)
	var _ Value = Bool(true)
	var _ Value = List{String("a"), Int(1)}
	var _ Value = Object{"key": String("value")}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		value Value
		kind  Kind
	}{
		{Bool(true), KindBool},
		{Int(1), KindInt},
		{Float(1), KindFloat},
		{String("x"), KindString},
		{List{}, KindList},
		{Object{}, KindObject},
		{nil, KindInvalid},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.kind, KindOf(tt.value), "%#v", tt.value)
	}
}

func TestParseKindRoundTrip(t *testing.T) {
	for _, k := range []Kind{KindBool, KindInt, KindFloat, KindString, KindList, KindObject} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseKind("invalid")
	assert.Error(t, err)
	_, err = ParseKind("number")
	assert.Error(t, err)
}

func TestParseObjectKeepsIntFloatDistinction(t *testing.T) {
	obj, err := ParseObject([]byte(`{"i": 1, "f": 1.0, "e": 1e3, "n": {"b": true, "s": "x"}, "l": [1, 2.5]}`))
	require.NoError(t, err)

	assert.Equal(t, Int(1), obj["i"])
	assert.Equal(t, Float(1), obj["f"])
	assert.Equal(t, Float(1000), obj["e"])
	assert.Equal(t, Object{"b": Bool(true), "s": String("x")}, obj["n"])
	assert.Equal(t, List{Int(1), Float(2.5)}, obj["l"])
}

func TestParseObjectRejectsNullAndNonObjects(t *testing.T) {
	_, err := ParseObject([]byte(`{"a": null}`))
	assert.Error(t, err)

	_, err = ParseObject([]byte(`[1, 2]`))
	assert.Error(t, err)

	_, err = ParseObject([]byte(`{"a": 1} {"b": 2}`))
	assert.Error(t, err)

	_, err = ParseObject([]byte(`{"a": 99999999999999999999}`))
	assert.Error(t, err)
}

func TestObjectJSONRoundTrip(t *testing.T) {
	original := Object{
		"x":    Float(3),
		"n":    Int(7),
		"name": String("agent"),
		"pos":  Object{"y": Float(-0.5)},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `{"n":7,"name":"agent","pos":{"y":-0.5},"x":3.0}`, string(data))

	var decoded Object
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, Equal(original, decoded))
}

func TestFromGo(t *testing.T) {
	v, err := FromGo(map[string]any{
		"a": 1,
		"b": 2.0,
		"c": []any{"x", true},
	})
	require.NoError(t, err)
	assert.Equal(t, Object{
		"a": Int(1),
		"b": Float(2),
		"c": List{String("x"), Bool(true)},
	}, v)

	_, err = FromGo(map[string]any{"a": nil})
	assert.Error(t, err)

	_, err = FromGo(struct{}{})
	assert.Error(t, err)
}

func TestToGoInvertsFromGo(t *testing.T) {
	obj := Object{"a": Int(1), "b": Object{"c": Float(2.5)}, "d": List{Bool(false)}}
	back, err := FromGo(ToGo(obj))
	require.NoError(t, err)
	assert.True(t, Equal(obj, back))
}

func TestCloneIsDeep(t *testing.T) {
	obj := Object{"pos": Object{"x": Float(1)}, "tags": List{String("a")}}
	clone := obj.Clone()

	clone["pos"].(Object)["x"] = Float(2)
	clone["tags"].(List)[0] = String("b")

	assert.Equal(t, Float(1), obj["pos"].(Object)["x"])
	assert.Equal(t, String("a"), obj["tags"].(List)[0])
	assert.NotNil(t, Object(nil).Clone())
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Int(1), Int(1)))
	assert.False(t, Equal(Int(1), Float(1)))
	assert.True(t, Equal(Object{"a": List{Int(1)}}, Object{"a": List{Int(1)}}))
	assert.False(t, Equal(Object{"a": Int(1)}, Object{"b": Int(1)}))
	assert.False(t, Equal(List{Int(1)}, List{Int(1), Int(2)}))
}

func TestLookupAndSet(t *testing.T) {
	obj := Object{"pos": Object{"x": Float(1)}}

	v, ok := Lookup(obj, "pos.x")
	require.True(t, ok)
	assert.Equal(t, Float(1), v)

	_, ok = Lookup(obj, "pos.z")
	assert.False(t, ok)
	_, ok = Lookup(obj, "pos.x.y")
	assert.False(t, ok)
	_, ok = Lookup(obj, "")
	assert.False(t, ok)

	require.NoError(t, Set(obj, "vel.dx", Float(2)))
	v, ok = Lookup(obj, "vel.dx")
	require.True(t, ok)
	assert.Equal(t, Float(2), v)

	assert.Error(t, Set(obj, "pos.x.deep", Int(1)))
}

func TestSortedKeysRFC8785Order(t *testing.T) {
	obj := Object{"a": Int(1), "A": Int(2), "aa": Int(3), "AA": Int(4), "Aa": Int(5)}
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aa"}, obj.SortedKeys())
}

func TestSortedKeysUTF16Surrogates(t *testing.T) {
	// U+1F600 encodes as surrogates (0xD83D...), which sort before U+FB01
	// in UTF-16 even though UTF-8 byte order puts them after.
	obj := Object{"\U0001F600": Int(1), "\uFB01": Int(2)}
	assert.Equal(t, []string{"\U0001F600", "\uFB01"}, obj.SortedKeys())
}

func TestAsFloat(t *testing.T) {
	f, ok := AsFloat(Int(3))
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	f, ok = AsFloat(Float(2.5))
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)

	_, ok = AsFloat(String("3"))
	assert.False(t, ok)
}
