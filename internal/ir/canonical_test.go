package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"max int64", Int(math.MaxInt64), "9223372036854775807"},
		{"float", Float(2.5), "2.5"},
		{"integral float", Float(3), "3.0"},
		{"negative zero", Float(math.Copysign(0, -1)), "-0.0"},
		{"large float", Float(1e21), "1e+21"},
		{"small float", Float(1e-7), "1e-07"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"empty list", List{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"list", List{Int(1), Float(2), String("x")}, `[1,2.0,"x"]`},
		{"plain go map", map[string]any{"b": 1, "a": 2.0}, `{"a":2.0,"b":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalFloatsReparseAsFloats(t *testing.T) {
	for _, f := range []float64{0, 1, -7, 100000, 1e6, 0.1, 123.456, 1e300} {
		data, err := MarshalCanonical(Object{"f": Float(f)})
		require.NoError(t, err)

		obj, err := ParseObject(data)
		require.NoError(t, err)
		assert.Equal(t, Float(f), obj["f"], "float %v encoded as %s", f, data)
	}
}

func TestMarshalCanonicalRejects(t *testing.T) {
	for name, input := range map[string]any{
		"nil":      nil,
		"nan":      Float(math.NaN()),
		"inf":      Float(math.Inf(1)),
		"struct":   struct{}{},
		"nested":   Object{"a": Object{"b": Float(math.Inf(-1))}},
		"go float": math.NaN(),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := MarshalCanonical(input)
			assert.Error(t, err)
		})
	}
}

func TestMarshalCanonicalNestedSortedKeys(t *testing.T) {
	obj := Object{
		"z": Object{"b": Int(1), "a": Int(2)},
		"a": Int(3),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"z":{"a":2,"b":1}}`, string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(String("<a & b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(result))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical(String("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))

	// A literal backslash followed by "u2028" stays escaped.
	result, err = MarshalCanonical(String(`\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9.
	decomposed, err := MarshalCanonical(String("e\u0301"))
	require.NoError(t, err)
	composed, err := MarshalCanonical(String("\u00e9"))
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}
