package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ValueCodec converts values to and from their stored JSON text.
type ValueCodec[V any] interface {
	Marshal(v V) (string, error)
	Unmarshal(s string) (V, error)
}

// JSON encodes values with encoding/json and keeps their Go types. Values
// that encoding/json rejects fail with ErrSerialization.
type JSON[V any] struct{}

func (JSON[V]) Marshal(v V) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return string(b), nil
}

func (JSON[V]) Unmarshal(s string) (V, error) {
	var v V
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return v, nil
}

// Sanitized passes values through Sanitize before encoding, so any value can
// be stored at the cost of turning non-primitive leaves into strings.
// Decoded numbers are int64 when integral, float64 otherwise.
type Sanitized struct{}

func (Sanitized) Marshal(v any) (string, error) {
	b, err := json.Marshal(Sanitize(v))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return string(b), nil
}

func (Sanitized) Unmarshal(s string) (any, error) {
	v, err := decodeJSON(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return v, nil
}

// decodeJSON parses s into the same shapes Sanitize produces.
func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return normalizeNumbers(v), nil
}

func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		return numberValue(x)
	case map[string]any:
		for k, e := range x {
			x[k] = normalizeNumbers(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = normalizeNumbers(e)
		}
		return x
	default:
		return v
	}
}

func numberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
