// Package literal implements the best-effort literal coercion applied to every
// untyped attribute scraped from Gameday documents.
//
// A raw attribute is decoded as a JSON literal first (integer, float, boolean,
// null or quoted string). When that fails the original text is kept verbatim.
// The rule is applied field by field with no schema, so "12" becomes an
// integer, "010" and ".290" stay strings, and "true" becomes a boolean.
package literal

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Kind identifies which member of the Value variant is populated.
type Kind int

const (
	Absent Kind = iota
	Null
	Int
	Float
	Bool
	String
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "string"
	default:
		return "absent"
	}
}

// Value is a coerced scalar. The zero Value is Absent.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
	raw  string
}

// Coerce applies the literal decoding rule to a raw attribute string.
func Coerce(raw string) Value {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return StringValue(raw)
	}
	// Trailing content ("1 2", "12abc") means the whole text was not a literal.
	if dec.More() || dec.InputOffset() != int64(len(strings.TrimRight(raw, " \t\r\n"))) {
		return StringValue(raw)
	}

	switch val := v.(type) {
	case nil:
		return Value{kind: Null, raw: raw}
	case bool:
		return Value{kind: Bool, b: val, raw: raw}
	case json.Number:
		return fromNumber(val, raw)
	case string:
		return Value{kind: String, s: val, raw: raw}
	default:
		// arrays and objects are not part of the variant
		return StringValue(raw)
	}
}

// FromJSON converts a decoded JSON scalar. Strings go through Coerce so that
// "10" in a stat payload becomes an integer like it would in an XML attribute.
func FromJSON(v any) Value {
	switch val := v.(type) {
	case nil:
		return Value{kind: Null, raw: "null"}
	case bool:
		return Value{kind: Bool, b: val, raw: strconv.FormatBool(val)}
	case float64:
		raw := strconv.FormatFloat(val, 'f', -1, 64)
		if val == float64(int64(val)) && !strings.ContainsAny(raw, ".eE") {
			return Value{kind: Int, i: int64(val), raw: raw}
		}
		return Value{kind: Float, f: val, raw: raw}
	case json.Number:
		return fromNumber(val, val.String())
	case string:
		return Coerce(val)
	case int:
		return IntValue(int64(val))
	case int64:
		return IntValue(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return Value{}
		}
		return StringValue(string(b))
	}
}

func fromNumber(n json.Number, raw string) Value {
	if !strings.ContainsAny(n.String(), ".eE") {
		if i, err := n.Int64(); err == nil {
			return Value{kind: Int, i: i, raw: raw}
		}
	}
	f, err := n.Float64()
	if err != nil {
		return StringValue(raw)
	}
	return Value{kind: Float, f: f, raw: raw}
}

// IntValue builds an integer Value.
func IntValue(i int64) Value {
	return Value{kind: Int, i: i, raw: strconv.FormatInt(i, 10)}
}

// FloatValue builds a float Value.
func FloatValue(f float64) Value {
	return Value{kind: Float, f: f, raw: strconv.FormatFloat(f, 'f', -1, 64)}
}

// BoolValue builds a boolean Value.
func BoolValue(b bool) Value {
	return Value{kind: Bool, b: b, raw: strconv.FormatBool(b)}
}

// StringValue builds a verbatim string Value.
func StringValue(s string) Value {
	return Value{kind: String, s: s, raw: s}
}

func (v Value) Kind() Kind { return v.kind }

// Present reports whether the source carried the field at all.
func (v Value) Present() bool { return v.kind != Absent }

// Int returns the integer member. Floats with no fractional part convert.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case Int:
		return v.i, true
	case Float:
		if v.f == float64(int64(v.f)) {
			return int64(v.f), true
		}
	}
	return 0, false
}

// Float returns the numeric member as float64.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case Int:
		return float64(v.i), true
	case Float:
		return v.f, true
	}
	return 0, false
}

func (v Value) Bool() (bool, bool) {
	if v.kind == Bool {
		return v.b, true
	}
	return false, false
}

// Str returns the string member only when the value stayed a string.
func (v Value) Str() (string, bool) {
	if v.kind == String {
		return v.s, true
	}
	return "", false
}

// String renders the value the way it appeared in the source.
func (v Value) String() string {
	if v.kind == String {
		return v.s
	}
	return v.raw
}

// Equal compares kinds and members; numbers compare numerically.
func (v Value) Equal(o Value) bool {
	if a, ok := v.Float(); ok {
		b, ok := o.Float()
		return ok && a == b
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Bool:
		return v.b == o.b
	case String:
		return v.s == o.s
	default:
		return true
	}
}

// MarshalJSON emits the typed member; Absent and Null both encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Int:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case Float:
		return json.Marshal(v.f)
	case Bool:
		return json.Marshal(v.b)
	case String:
		return json.Marshal(v.s)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON reverses MarshalJSON. Quoted strings stay strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if s, ok := raw.(string); ok {
		*v = StringValue(s)
		return nil
	}
	*v = FromJSON(raw)
	return nil
}

// Map coerces every entry of a raw attribute map.
func Map(attrs map[string]string) map[string]Value {
	out := make(map[string]Value, len(attrs))
	for k, raw := range attrs {
		out[k] = Coerce(raw)
	}
	return out
}
