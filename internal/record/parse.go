package record

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrNotObject is returned when a document expected to hold a record is not a
// JSON object.
var ErrNotObject = errors.New("record: document is not a JSON object")

// ErrNotArray is returned when a document expected to hold a record list is
// not a JSON array.
var ErrNotArray = errors.New("record: document is not a JSON array")

// Parse decodes a single JSON object.
func Parse(data []byte) (Record, error) {
	if !gjson.ValidBytes(data) {
		return Record{}, fmt.Errorf("record: invalid JSON")
	}
	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return Record{}, ErrNotObject
	}
	return fromObject(result), nil
}

// ParseList decodes a JSON array of objects. When path is non-empty the array
// is read from that gjson path (for example "data" for {"data": [...]}).
func ParseList(data []byte, path string) ([]Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("record: invalid JSON")
	}
	result := gjson.ParseBytes(data)
	if path != "" {
		result = result.Get(path)
	}
	if !result.IsArray() {
		return nil, ErrNotArray
	}
	var (
		records []Record
		err     error
	)
	index := 0
	result.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			err = fmt.Errorf("record: element %d: %w", index, ErrNotObject)
			return false
		}
		records = append(records, fromObject(item))
		index++
		return true
	})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Lookup reads the value at a gjson path from a JSON document.
func Lookup(data []byte, path string) (Value, bool) {
	result := gjson.GetBytes(data, path)
	if !result.Exists() {
		return Value{}, false
	}
	return fromResult(result), true
}

func fromObject(result gjson.Result) Record {
	var r Record
	result.ForEach(func(key, value gjson.Result) bool {
		r.Set(key.String(), fromResult(value))
		return true
	})
	return r
}

func fromResult(result gjson.Result) Value {
	switch result.Type {
	case gjson.True:
		return BoolValue(true)
	case gjson.False:
		return BoolValue(false)
	case gjson.Number:
		return Value{typ: Number, num: result.Float(), raw: result.Raw}
	case gjson.String:
		return StringValue(result.String())
	case gjson.JSON:
		if result.IsArray() {
			var items []Value
			result.ForEach(func(_, item gjson.Result) bool {
				items = append(items, fromResult(item))
				return true
			})
			return ArrayValue(items...)
		}
		return ObjectValue(fromObject(result))
	default:
		return NullValue()
	}
}
