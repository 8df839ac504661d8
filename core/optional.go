package core

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// Field is an input value that may be absent.
// Set distinguishes a field that was not provided from one explicitly set to its zero value.
// A JSON null only sets fields whose T can hold it (pointers, slices, maps, json.Unmarshaler
// types such as null.Float64); for any other T, eg. string or bool, null leaves the field unset.
type Field[T any] struct {
	Set   bool
	Value T
}

// Set returns a provided Field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) && !nullable(&f.Value) {
		return nil
	}
	f.Set = true
	return json.Unmarshal(data, &f.Value)
}

func nullable(v interface{}) bool {
	if _, ok := v.(json.Unmarshaler); ok {
		return true
	}
	switch reflect.TypeOf(v).Elem().Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	}
	return false
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// FlexString holds a value given either as a JSON string or a JSON number, eg. `"5"` or `5`.
// null decodes to "".
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
	default:
		*s = FlexString(data)
	}
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// Int parses the leading integer of s.
func (s FlexString) Int() (int, bool) {
	return ParseInt(string(s))
}

// Float parses s as a float64.
func (s FlexString) Float() (float64, bool) {
	return ParseFloat(string(s))
}
