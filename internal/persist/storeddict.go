package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rcliao/numberbot/internal/store"
)

// StoredDict is a JSON object kept under a single backend key. Changes stay
// in memory until Flush.
type StoredDict struct {
	mu      sync.RWMutex
	backend store.Backend
	id      string
	data    map[string]any
}

// NewStoredDict creates a dict bound to id, filled with a copy of initial.
// The backend is not touched. A nil backend leaves the dict unbound; a
// DictStore binds it when the dict is stored.
func NewStoredDict(backend store.Backend, id string, initial map[string]any) *StoredDict {
	d := &StoredDict{backend: backend, id: id, data: make(map[string]any, len(initial))}
	for k, v := range initial {
		d.data[k] = v
	}
	return d
}

// OpenStoredDict creates a dict bound to id and loads it from the backend.
func OpenStoredDict(ctx context.Context, backend store.Backend, id string) (*StoredDict, error) {
	d := NewStoredDict(backend, id, nil)
	if err := d.Load(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// ID returns the backend key of the dict.
func (d *StoredDict) ID() string { return d.id }

// Load replaces the contents with the stored object, or empties the dict
// when nothing is stored.
func (d *StoredDict) Load(ctx context.Context) error {
	_, err := d.load(ctx)
	return err
}

func (d *StoredDict) load(ctx context.Context) (bool, error) {
	if d.backend == nil || d.id == "" {
		return false, ErrUnbound
	}

	data := map[string]any{}
	raw, err := d.backend.Get(ctx, d.id)
	found := err == nil
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return false, fmt.Errorf("load %s: %w", d.id, err)
	default:
		v, err := decodeJSON(raw)
		if err != nil {
			return false, fmt.Errorf("load %s: %w: %v", d.id, ErrSerialization, err)
		}
		obj, ok := v.(map[string]any)
		if !ok {
			return false, fmt.Errorf("load %s: %w: stored value is %T, not an object", d.id, ErrTypeMismatch, v)
		}
		data = obj
	}

	d.mu.Lock()
	d.data = data
	d.mu.Unlock()
	return found, nil
}

// Flush writes the sanitized contents to the backend as one JSON object.
func (d *StoredDict) Flush(ctx context.Context) error {
	if d.backend == nil || d.id == "" {
		return ErrUnbound
	}

	d.mu.RLock()
	b, err := json.Marshal(Sanitize(d.data))
	d.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("flush %s: %w: %v", d.id, ErrSerialization, err)
	}

	if err := d.backend.Set(ctx, d.id, string(b)); err != nil {
		return fmt.Errorf("flush %s: %w", d.id, err)
	}
	return nil
}

func (d *StoredDict) Get(key string) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.data[key]
	return v, ok
}

// GetString returns the value under key if it is a string.
func (d *StoredDict) GetString(key string) string {
	v, _ := d.Get(key)
	s, _ := v.(string)
	return s
}

func (d *StoredDict) Set(key string, value any) {
	d.mu.Lock()
	d.data[key] = value
	d.mu.Unlock()
}

func (d *StoredDict) Delete(key string) {
	d.mu.Lock()
	delete(d.data, key)
	d.mu.Unlock()
}

// Update copies every entry of values into the dict.
func (d *StoredDict) Update(values map[string]any) {
	d.mu.Lock()
	for k, v := range values {
		d.data[k] = v
	}
	d.mu.Unlock()
}

func (d *StoredDict) Clear() {
	d.mu.Lock()
	d.data = make(map[string]any)
	d.mu.Unlock()
}

func (d *StoredDict) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.data)
}

// Snapshot returns a shallow copy of the contents.
func (d *StoredDict) Snapshot() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]any, len(d.data))
	for k, v := range d.data {
		out[k] = v
	}
	return out
}

func (d *StoredDict) MarshalJSON() ([]byte, error) {
	return json.Marshal(Sanitize(d.Snapshot()))
}

// bound reports whether d already lives at id on backend.
func (d *StoredDict) bound(backend store.Backend, id string) bool {
	return d.backend == backend && d.id == id
}
