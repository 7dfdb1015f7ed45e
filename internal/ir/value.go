package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Value is a sealed interface over the data a Point can carry.
// Only String, Int, Float, Bool, List and Object implement it.
type Value interface {
	irValue()
}

// String is a string leaf.
type String string

func (String) irValue() {}

// Int is an integer leaf. Always int64.
type Int int64

func (Int) irValue() {}

// Float is a floating point leaf. NaN and infinities are never valid.
type Float float64

func (Float) irValue() {}

// Bool is a boolean leaf.
type Bool bool

func (Bool) irValue() {}

// List is an ordered list of values. Lists are leaves as far as shapes
// are concerned: their element types are not part of a dimension.
type List []Value

func (List) irValue() {}

// Object maps string keys to values. Nested objects are nested dimensions.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

func (Object) irValue() {}

// Kind is the runtime type of a value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindObject
)

var kindNames = map[Kind]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindInt:     "int",
	KindFloat:   "float",
	KindString:  "string",
	KindList:    "list",
	KindObject:  "object",
}

// String returns the kind's name as used in specs and diagnostics.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsNumeric reports whether the kind is int or float.
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindFloat
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name && k != KindInvalid {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown kind %q", name)
}

// KindOf returns the runtime kind of v.
func KindOf(v Value) Kind {
	switch v.(type) {
	case Bool:
		return KindBool
	case Int:
		return KindInt
	case Float:
		return KindFloat
	case String:
		return KindString
	case List:
		return KindList
	case Object:
		return KindObject
	default:
		return KindInvalid
	}
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings uses UTF-8 byte order, which differs for astral runes.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	for i := 0; i < min(len(a16), len(b16)); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	switch val := v.(type) {
	case List:
		return cloneList(val)
	case Object:
		return val.Clone()
	default:
		return v
	}
}

// Clone returns a deep copy of the object. A nil object clones to an empty one.
func (obj Object) Clone() Object {
	out := make(Object, len(obj))
	for k, v := range obj {
		out[k] = Clone(v)
	}
	return out
}

func cloneList(l List) List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, v := range l {
		out[i] = Clone(v)
	}
	return out
}

// Equal reports whether a and b hold the same kinds and values.
// Int(1) and Float(1) are not equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, ok := bv[k]
			if !ok || !Equal(v, other) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// Lookup resolves a dotted path ("pos.x") inside obj.
func Lookup(obj Object, path string) (Value, bool) {
	if path == "" {
		return nil, false
	}
	var cur Value = obj
	for _, part := range strings.Split(path, ".") {
		o, ok := cur.(Object)
		if !ok {
			return nil, false
		}
		cur, ok = o[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set writes v at a dotted path, creating intermediate objects as needed.
func Set(obj Object, path string, v Value) error {
	parts := strings.Split(path, ".")
	cur := obj
	for i, part := range parts[:len(parts)-1] {
		next, ok := cur[part]
		if !ok {
			child := Object{}
			cur[part] = child
			cur = child
			continue
		}
		child, ok := next.(Object)
		if !ok {
			return fmt.Errorf("path %q: %q is a %s, not an object", path, strings.Join(parts[:i+1], "."), KindOf(next))
		}
		cur = child
	}
	cur[parts[len(parts)-1]] = v
	return nil
}

// AsFloat returns the numeric value of an Int or Float.
func AsFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case Int:
		return float64(n), true
	case Float:
		return float64(n), true
	default:
		return 0, false
	}
}

// FromGo converts decoded YAML/JSON/Go values into a Value.
// Integers stay Int and floating point numbers stay Float.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is not a valid value")
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return Int(val), nil
	case float32:
		return checkFloat(float64(val))
	case float64:
		return checkFloat(val)
	case json.Number:
		return parseNumber(string(val))
	case []any:
		out := make(List, len(val))
		for i, elem := range val {
			ev, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = ev
		}
		return out, nil
	case map[string]any:
		return ObjectFromGo(val)
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// ObjectFromGo converts a decoded map into an Object.
func ObjectFromGo(m map[string]any) (Object, error) {
	out := make(Object, len(m))
	for k, elem := range m {
		ev, err := FromGo(elem)
		if err != nil {
			return nil, fmt.Errorf("[%q]: %w", k, err)
		}
		out[k] = ev
	}
	return out, nil
}

// ToGo converts a Value back into plain Go values (for YAML/JSON encoders
// and test comparisons).
func ToGo(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToGo(elem)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToGo(elem)
		}
		return out
	default:
		return nil
	}
}

func checkFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite float: %v", f)
	}
	return Float(f), nil
}

// parseNumber applies the int/float rule to a JSON number literal.
func parseNumber(s string) (Value, error) {
	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %s: %w", s, err)
		}
		return checkFloat(f)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("number out of int64 range: %s", s)
	}
	return Int(n), nil
}

// ParseValue decodes a single JSON document into a Value.
func ParseValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return FromGo(raw)
}

// ParseObject decodes a JSON object into an Object.
func ParseObject(data []byte) (Object, error) {
	v, err := ParseValue(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(Object)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %s", KindOf(v))
	}
	return obj, nil
}

// UnmarshalJSON implements json.Unmarshaler for Object.
func (obj *Object) UnmarshalJSON(data []byte) error {
	parsed, err := ParseObject(data)
	if err != nil {
		return err
	}
	*obj = parsed
	return nil
}

// MarshalJSON implements json.Marshaler for Object with RFC 8785 key order.
// This is the canonical form; see MarshalCanonical.
func (obj Object) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(obj)
}

// MarshalJSON implements json.Marshaler for List.
func (l List) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(l)
}

// MarshalJSON implements json.Marshaler for Float so floats keep their
// decimal point when re-encoded.
func (f Float) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(f)
}
