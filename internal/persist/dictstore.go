package persist

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/rcliao/numberbot/internal/store"
)

// DictStore maps keys to StoredDicts, one JSON object per backend key.
// Set and GetOrCompute write the dict immediately; later edits to a dict stay
// in memory until the dict or the whole store is flushed.
type DictStore[K comparable] struct {
	*Map[K, *StoredDict]
}

// NewDictStore creates a DictStore. cfg.Values is ignored; cfg.Default
// defaults to an empty dict.
func NewDictStore[K comparable](backend store.Backend, cfg Config[K, *StoredDict]) *DictStore[K] {
	if cfg.Default == nil {
		cfg.Default = func() *StoredDict { return NewStoredDict(nil, "", nil) }
	}
	return &DictStore[K]{Map: newMap(backend, cfg, dictIO{backend: backend})}
}

// SetAny stores v under key. v must be a *StoredDict or a map; maps are
// sanitized into a new dict. Other values yield ErrTypeMismatch.
func (s *DictStore[K]) SetAny(ctx context.Context, key K, v any) error {
	switch x := v.(type) {
	case *StoredDict:
		return s.Set(ctx, key, x)
	case map[string]any:
		return s.Set(ctx, key, NewStoredDict(nil, "", x))
	}

	if rv := reflect.ValueOf(v); v != nil && rv.Kind() == reflect.Map {
		obj, _ := Sanitize(v).(map[string]any)
		return s.Set(ctx, key, NewStoredDict(nil, "", obj))
	}
	return fmt.Errorf("%s %v: %w: value must be a map, not %T", s.ns, key, ErrTypeMismatch, v)
}

// Flush writes every cached dict.
func (s *DictStore[K]) Flush(ctx context.Context) error {
	var errs []error
	for _, d := range s.cachedValues() {
		if err := d.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clone returns a DictStore sharing the cached dicts of s.
func (s *DictStore[K]) Clone() *DictStore[K] {
	return &DictStore[K]{Map: s.Map.Clone()}
}

// dictIO reads and writes StoredDicts.
type dictIO struct {
	backend store.Backend
}

func (d dictIO) read(ctx context.Context, id string) (*StoredDict, bool, error) {
	dict := NewStoredDict(d.backend, id, nil)
	found, err := dict.load(ctx)
	if err != nil || !found {
		return nil, false, err
	}
	return dict, true, nil
}

// write binds dict to id, copying it if it belongs elsewhere, and flushes it.
func (d dictIO) write(ctx context.Context, id string, dict *StoredDict) (*StoredDict, error) {
	if dict == nil {
		dict = NewStoredDict(d.backend, id, nil)
	} else if !dict.bound(d.backend, id) {
		dict = NewStoredDict(d.backend, id, dict.Snapshot())
	}
	if err := dict.Flush(ctx); err != nil {
		return nil, err
	}
	return dict, nil
}
