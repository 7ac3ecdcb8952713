package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
)

// Encode renders v as JSON. Leaves JSON cannot represent (NaN, complex,
// channels, funcs) are replaced by their fmt string form; the surrounding
// objects and lists are kept intact.
func Encode(v any) string {
	b, err := json.Marshal(v)
	if err == nil {
		return string(b)
	}
	b, err = json.Marshal(encodable(reflect.ValueOf(v)))
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// encodable rebuilds maps with string keys and slices so that only the leaves
// json.Marshal rejects fall back to their string form.
func encodable(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}
	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return encodable(rv.Elem())
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = encodable(iter.Value())
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = encodable(rv.Index(i))
		}
		return out
	}
	leaf := rv.Interface()
	if _, err := json.Marshal(leaf); err != nil {
		return fmt.Sprint(leaf)
	}
	return leaf
}

// Decode parses a stored JSON value. Numbers decode as json.Number so large
// integers survive a round trip. Text that is not a single well-formed JSON
// document is returned unchanged.
func Decode(text string) any {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return text
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		return text
	}
	return v
}
