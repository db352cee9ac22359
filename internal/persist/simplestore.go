package persist

import "github.com/rcliao/numberbot/internal/store"

// SimpleStore is a write-through Map with JSON-encoded keys, suited to
// composite keys such as conversation tuples.
type SimpleStore[K comparable, V any] struct {
	*Map[K, V]
}

// NewSimpleStore creates a SimpleStore. cfg.Keys defaults to JSONKeys[K]
// and cfg.Default to the zero value of V.
func NewSimpleStore[K comparable, V any](backend store.Backend, cfg Config[K, V]) *SimpleStore[K, V] {
	if cfg.Keys == nil {
		cfg.Keys = JSONKeys[K]{}
	}
	if cfg.Default == nil {
		cfg.Default = func() V {
			var zero V
			return zero
		}
	}
	return &SimpleStore[K, V]{Map: New(backend, cfg)}
}
