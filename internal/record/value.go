package record

import (
	"encoding/json"
	"strconv"
)

// Type identifies the dynamic type held by a Value.
type Type int

const (
	Null Type = iota
	Bool
	Number
	String
	Array
	Object
)

func (t Type) String() string {
	switch t {
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "null"
	}
}

// Value is a dynamically-typed JSON value.
type Value struct {
	typ    Type
	b      bool
	num    float64
	raw    string
	items  []Value
	fields *Record
}

// NullValue returns the null value.
func NullValue() Value { return Value{} }

// BoolValue wraps b.
func BoolValue(b bool) Value { return Value{typ: Bool, b: b} }

// NumberValue wraps n.
func NumberValue(n float64) Value {
	return Value{typ: Number, num: n, raw: strconv.FormatFloat(n, 'f', -1, 64)}
}

// StringValue wraps s.
func StringValue(s string) Value { return Value{typ: String, raw: s} }

// ArrayValue wraps items.
func ArrayValue(items ...Value) Value { return Value{typ: Array, items: items} }

// ObjectValue wraps an ordered record.
func ObjectValue(r Record) Value { return Value{typ: Object, fields: &r} }

// Type reports the dynamic type.
func (v Value) Type() Type { return v.typ }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.typ == Null }

// Bool returns the boolean payload, false for other types.
func (v Value) Bool() bool { return v.typ == Bool && v.b }

// Float returns the numeric payload, 0 for other types.
func (v Value) Float() float64 {
	if v.typ != Number {
		return 0
	}
	return v.num
}

// Str returns the string payload; numbers return their source text.
func (v Value) Str() string {
	switch v.typ {
	case String, Number:
		return v.raw
	case Bool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Items returns array elements.
func (v Value) Items() []Value {
	if v.typ != Array {
		return nil
	}
	return v.items
}

// Fields returns the nested record of an object value.
func (v Value) Fields() Record {
	if v.typ != Object || v.fields == nil {
		return Record{}
	}
	return *v.fields
}

// Interface converts v into the plain Go values produced by encoding/json.
// Object field order is not preserved by the result.
func (v Value) Interface() any {
	switch v.typ {
	case Bool:
		return v.b
	case Number:
		return json.Number(v.raw)
	case String:
		return v.raw
	case Array:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case Object:
		return v.Fields().Map()
	default:
		return nil
	}
}

// MarshalJSON encodes v, keeping object field order.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case Bool:
		return strconv.AppendBool(nil, v.b), nil
	case Number:
		return []byte(v.raw), nil
	case String:
		return json.Marshal(v.raw)
	case Array:
		buf := []byte{'['}
		for i, item := range v.items {
			if i > 0 {
				buf = append(buf, ',')
			}
			encoded, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf = append(buf, encoded...)
		}
		return append(buf, ']'), nil
	case Object:
		return v.Fields().MarshalJSON()
	default:
		return []byte("null"), nil
	}
}
