package persist

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Sanitize reduces v to values encoding/json always accepts:
//
//   - nil, bools and strings pass through (named types drop to the base type)
//   - signed integers become int64, unsigned integers uint64, floats float64
//   - maps become map[string]any with keys formatted the way JSON prints them
//   - slices and arrays become []any
//   - pointers are followed unless they implement fmt.Stringer
//   - anything else, including NaN and infinities, becomes fmt.Sprint(v)
//
// The conversion is lossy for non-primitive values. Sanitize(Sanitize(x))
// equals Sanitize(x).
func Sanitize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case json.Number:
		return numberValue(x)
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Struct {
			if rv.Kind() == reflect.Pointer && rv.IsNil() {
				return nil
			}
			return x.String()
		}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprint(f)
		}
		return f
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[mapKey(iter.Key().Interface())] = Sanitize(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Sanitize(rv.Index(i).Interface())
		}
		return out
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Sanitize(rv.Elem().Interface())
	default:
		return fmt.Sprint(v)
	}
}

// mapKey formats a sanitized map key the way JSON would print it as a value.
func mapKey(k any) string {
	switch x := Sanitize(k).(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
