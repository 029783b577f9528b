package encoding

import (
	"bytes"
	"math"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

// Normalize returns props with every value in the shape Decode produces,
// so a component sees the same types on first render and on refresh:
//   - integers of any width become int (uint64 above math.MaxInt stays uint64)
//   - float32 becomes float64
//   - slices and arrays become []any, string-keyed maps become map[string]any
//   - structs and pointers take their msgpack form, usually map[string]any
//
// Values msgpack cannot encode (funcs, channels) are kept as they are.
func Normalize(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	return normalizeMap(props, false)
}

func normalizeMap(m map[string]any, wire bool) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v, wire)
	}
	return out
}

// normalizeValue converts v. wire is set for values that already came out
// of the decoder; those are never packed again.
func normalizeValue(v any, wire bool) any {
	switch v := v.(type) {
	case nil, string, bool, int, float64, []byte:
		return v
	case float32:
		return float64(v)
	case map[string]any:
		if v == nil {
			return nil
		}
		return normalizeMap(v, wire)
	case []any:
		if v == nil {
			return nil
		}
		out := make([]any, len(v))
		for i, el := range v {
			out[i] = normalizeValue(el, wire)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if u := rv.Uint(); u <= math.MaxInt {
			return int(u)
		}
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			for i := range b {
				b[i] = byte(rv.Index(i).Uint())
			}
			return b
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalizeValue(rv.Index(i).Interface(), wire)
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		if out, ok := stringKeyed(rv, wire); ok {
			return out
		}
	case reflect.Struct, reflect.Pointer:
		if !wire {
			return viaMsgpack(v)
		}
	}
	return v
}

// stringKeyed converts a map whose keys are all strings.
func stringKeyed(rv reflect.Value, wire bool) (map[string]any, bool) {
	out := make(map[string]any, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		key := it.Key()
		if key.Kind() == reflect.Interface {
			key = key.Elem()
		}
		if key.Kind() != reflect.String {
			return nil, false
		}
		out[key.String()] = normalizeValue(it.Value().Interface(), wire)
	}
	return out, true
}

// viaMsgpack round-trips v through the wire format.
func viaMsgpack(v any) any {
	packed, err := msgpack.Marshal(v)
	if err != nil {
		return v
	}
	decoded, err := unpack(packed)
	if err != nil {
		return v
	}
	return normalizeValue(decoded, true)
}

// unpack decodes with loose interface decoding: every integer is int64 or
// uint64 and every float is float64, whatever width it was packed with.
func unpack(packed []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(packed))
	dec.UseLooseInterfaceDecoding(true)
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
