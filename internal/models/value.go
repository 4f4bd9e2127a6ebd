package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind identifies which variant a Value holds
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueBool
)

func (k ValueKind) String() string {
	switch k {
	case ValueNumber:
		return "number"
	case ValueBool:
		return "bool"
	default:
		return "string"
	}
}

// Value is a form field value: a string, a number or a bool.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
}

func StringValue(s string) Value { return Value{kind: ValueString, str: s} }

func NumberValue(n float64) Value { return Value{kind: ValueNumber, num: n} }

func BoolValue(b bool) Value { return Value{kind: ValueBool, b: b} }

// ValueFromAny converts a decoded JSON scalar into a Value.
// Objects and arrays are rejected; nil becomes the empty string.
func ValueFromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return StringValue(""), nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case float64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(float64(t)), nil
	case int:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return NumberValue(f), nil
	default:
		return Value{}, fmt.Errorf("unsupported field value type %T", v)
	}
}

func (v Value) Kind() ValueKind { return v.kind }

// String renders the value the way a form input expects it.
func (v Value) String() string {
	switch v.kind {
	case ValueNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case ValueBool:
		if v.b {
			return "1"
		}
		return "0"
	default:
		return v.str
	}
}

// Truthy reports the checkbox state this value asks for.
func (v Value) Truthy() bool {
	switch v.kind {
	case ValueBool:
		return v.b
	case ValueNumber:
		return v.num != 0
	default:
		switch strings.ToLower(strings.TrimSpace(v.str)) {
		case "", "0", "false", "no", "off":
			return false
		}
		return true
	}
}

// IsEmpty reports whether the value counts as "not provided" for required checks.
// false and 0 are provided values.
func (v Value) IsEmpty() bool {
	return v.kind == ValueString && strings.TrimSpace(v.str) == ""
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueNumber:
		return json.Marshal(v.num)
	case ValueBool:
		return json.Marshal(v.b)
	default:
		return json.Marshal(v.str)
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ValueFromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Fields is a payload keyed by form field id (e.g. issue_subject, issue_custom_field_values_5).
type Fields map[string]Value

// FieldsFromMap converts decoded JSON arguments into Fields.
func FieldsFromMap(m map[string]any) (Fields, error) {
	fields := make(Fields, len(m))
	for k, raw := range m {
		v, err := ValueFromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		fields[k] = v
	}
	return fields, nil
}

// Clone returns a shallow copy.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
