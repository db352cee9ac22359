package persist

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// KeyCodec converts logical keys to the text stored after "namespace:".
type KeyCodec[K comparable] interface {
	Encode(key K) (string, error)
	Decode(s string) (K, error)
}

// StringKeys stores string keys verbatim.
type StringKeys[K ~string] struct{}

func (StringKeys[K]) Encode(key K) (string, error) { return string(key), nil }
func (StringKeys[K]) Decode(s string) (K, error)   { return K(s), nil }

// IntKeys stores integer keys (user and chat ids) in decimal.
type IntKeys[K ~int | ~int32 | ~int64] struct{}

func (IntKeys[K]) Encode(key K) (string, error) {
	return strconv.FormatInt(int64(key), 10), nil
}

func (IntKeys[K]) Decode(s string) (K, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode key %q: %w", s, err)
	}
	return K(n), nil
}

// JSONKeys stores keys as JSON. Use fixed-size arrays for tuple keys.
type JSONKeys[K comparable] struct{}

func (JSONKeys[K]) Encode(key K) (string, error) {
	b, err := json.Marshal(key)
	if err != nil {
		return "", fmt.Errorf("%w: encode key: %v", ErrSerialization, err)
	}
	return string(b), nil
}

func (JSONKeys[K]) Decode(s string) (K, error) {
	var key K
	if err := json.Unmarshal([]byte(s), &key); err != nil {
		return key, fmt.Errorf("%w: decode key %q: %v", ErrSerialization, s, err)
	}
	return key, nil
}
