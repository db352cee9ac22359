package persist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"sync"

	"github.com/rcliao/numberbot/internal/store"
)

// Config describes one namespace of a backend.
type Config[K comparable, V any] struct {
	// Namespace prefixes every backend key as "Namespace:key".
	Namespace string

	// Keys encodes logical keys. Defaults to JSONKeys[K].
	Keys KeyCodec[K]

	// Values encodes stored values. Defaults to JSON[V].
	Values ValueCodec[V]

	// Default builds the value GetOrCompute stores for a missing key.
	// Nil means GetOrCompute reports ErrNoDefault.
	Default func() V

	// Logger receives debug records for backend traffic. Defaults to discard.
	Logger *slog.Logger
}

// valueIO moves one value between the backend and memory.
type valueIO[V any] interface {
	read(ctx context.Context, id string) (V, bool, error)
	write(ctx context.Context, id string, v V) (V, error)
}

// Map is a namespaced, lazily loaded, write-through view of a backend.
// Safe for concurrent use; the backend stays the source of truth and no
// multi-key atomicity is provided.
type Map[K comparable, V any] struct {
	backend store.Backend
	ns      string
	keys    KeyCodec[K]
	values  valueIO[V]
	factory func() V
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[K]V
}

// New creates a Map over backend. The backend is shared, not owned.
func New[K comparable, V any](backend store.Backend, cfg Config[K, V]) *Map[K, V] {
	values := cfg.Values
	if values == nil {
		values = JSON[V]{}
	}
	return newMap(backend, cfg, codecIO[V]{backend: backend, codec: values})
}

func newMap[K comparable, V any](backend store.Backend, cfg Config[K, V], vio valueIO[V]) *Map[K, V] {
	keys := cfg.Keys
	if keys == nil {
		keys = JSONKeys[K]{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger
	}
	return &Map[K, V]{
		backend: backend,
		ns:      cfg.Namespace,
		keys:    keys,
		values:  vio,
		factory: cfg.Default,
		logger:  logger,
		cache:   make(map[K]V),
	}
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Namespace returns the key prefix of this map.
func (m *Map[K, V]) Namespace() string { return m.ns }

// ComposeKey returns the backend key for key.
func (m *Map[K, V]) ComposeKey(key K) (string, error) {
	s, err := m.keys.Encode(key)
	if err != nil {
		return "", err
	}
	return m.ns + ":" + s, nil
}

// DecodeKey is the inverse of ComposeKey.
func (m *Map[K, V]) DecodeKey(id string) (K, error) {
	prefix := m.ns + ":"
	if len(id) < len(prefix) || id[:len(prefix)] != prefix {
		var zero K
		return zero, fmt.Errorf("decode key %q: not in namespace %q", id, m.ns)
	}
	return m.keys.Decode(id[len(prefix):])
}

// Get returns the value for key, reading it from the backend on a cache
// miss. ok is false when the key exists nowhere; nothing is cached then.
func (m *Map[K, V]) Get(ctx context.Context, key K) (v V, ok bool, err error) {
	if v, ok := m.cached(key); ok {
		return v, true, nil
	}
	return m.readThrough(ctx, key)
}

// GetOr returns the value for key, or def if the key exists nowhere.
// def is neither cached nor written.
func (m *Map[K, V]) GetOr(ctx context.Context, key K, def V) (V, error) {
	v, ok, err := m.Get(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// SetDefault returns the value for key. If the key exists nowhere, def is
// written through and returned.
func (m *Map[K, V]) SetDefault(ctx context.Context, key K, def V) (V, error) {
	v, ok, err := m.Get(ctx, key)
	if err != nil || ok {
		return v, err
	}
	return m.saveThrough(ctx, key, def)
}

// GetOrCompute returns the value for key. If the key exists nowhere, the
// configured default is built, written through and returned; without a
// default the error wraps ErrNoDefault.
func (m *Map[K, V]) GetOrCompute(ctx context.Context, key K) (V, error) {
	v, ok, err := m.Get(ctx, key)
	if err != nil || ok {
		return v, err
	}
	if m.factory == nil {
		return v, fmt.Errorf("%s %v: %w", m.ns, key, ErrNoDefault)
	}
	return m.saveThrough(ctx, key, m.factory())
}

// Set writes value to the backend and then caches it.
func (m *Map[K, V]) Set(ctx context.Context, key K, value V) error {
	_, err := m.saveThrough(ctx, key, value)
	return err
}

// Delete removes key from the backend and the cache. A key that is neither
// cached nor stored yields ErrKeyNotFound.
func (m *Map[K, V]) Delete(ctx context.Context, key K) error {
	id, err := m.ComposeKey(key)
	if err != nil {
		return err
	}

	if _, ok := m.cached(key); !ok {
		exists, err := m.backend.Exists(ctx, id)
		if err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
		if !exists {
			return fmt.Errorf("delete %s: %w", id, ErrKeyNotFound)
		}
	}

	if err := m.backend.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	m.logger.DebugContext(ctx, "deleted", "ns", m.ns, "key", id)

	m.mu.Lock()
	delete(m.cache, key)
	m.mu.Unlock()
	return nil
}

// Keys yields the cached keys followed by every other key found by scanning
// the namespace. Each range over the sequence starts a fresh scan. Keys
// written concurrently may or may not be seen. A scan or decode error is
// yielded once and ends the sequence.
func (m *Map[K, V]) Keys(ctx context.Context) iter.Seq2[K, error] {
	return func(yield func(K, error) bool) {
		seen := make(map[K]struct{})
		for _, k := range m.cachedKeys() {
			seen[k] = struct{}{}
			if !yield(k, nil) {
				return
			}
		}

		var zero K
		ids, err := m.backend.Scan(ctx, m.ns+":")
		if err != nil {
			yield(zero, fmt.Errorf("scan %s: %w", m.ns, err))
			return
		}
		for _, id := range ids {
			k, err := m.DecodeKey(id)
			if err != nil {
				yield(zero, err)
				return
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			if !yield(k, nil) {
				return
			}
		}
	}
}

// Load reads every stored key of the namespace into the cache.
func (m *Map[K, V]) Load(ctx context.Context) error {
	for key, err := range m.Keys(ctx) {
		if err != nil {
			return err
		}
		if _, _, err := m.Get(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Flush is a no-op: every Set has already been written.
func (m *Map[K, V]) Flush(ctx context.Context) error { return nil }

// Free drops key from the cache without touching the backend.
func (m *Map[K, V]) Free(key K) {
	m.mu.Lock()
	delete(m.cache, key)
	m.mu.Unlock()
}

// Len returns the number of cached entries.
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cache)
}

// Clone returns a Map over the same backend and namespace whose cache starts
// as a copy of m's.
func (m *Map[K, V]) Clone() *Map[K, V] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c := &Map[K, V]{
		backend: m.backend,
		ns:      m.ns,
		keys:    m.keys,
		values:  m.values,
		factory: m.factory,
		logger:  m.logger,
		cache:   make(map[K]V, len(m.cache)),
	}
	for k, v := range m.cache {
		c.cache[k] = v
	}
	return c
}

func (m *Map[K, V]) cached(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.cache[key]
	return v, ok
}

func (m *Map[K, V]) cachedKeys() []K {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]K, 0, len(m.cache))
	for k := range m.cache {
		keys = append(keys, k)
	}
	return keys
}

func (m *Map[K, V]) cachedValues() []V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	values := make([]V, 0, len(m.cache))
	for _, v := range m.cache {
		values = append(values, v)
	}
	return values
}

func (m *Map[K, V]) readThrough(ctx context.Context, key K) (V, bool, error) {
	var zero V
	id, err := m.ComposeKey(key)
	if err != nil {
		return zero, false, err
	}

	v, ok, err := m.values.read(ctx, id)
	if err != nil {
		return zero, false, fmt.Errorf("read %s: %w", id, err)
	}
	m.logger.DebugContext(ctx, "read through", "ns", m.ns, "key", id, "found", ok)
	if !ok {
		return zero, false, nil
	}

	m.mu.Lock()
	m.cache[key] = v
	m.mu.Unlock()
	return v, true, nil
}

func (m *Map[K, V]) saveThrough(ctx context.Context, key K, value V) (V, error) {
	id, err := m.ComposeKey(key)
	if err != nil {
		return value, err
	}

	stored, err := m.values.write(ctx, id, value)
	if err != nil {
		return value, fmt.Errorf("write %s: %w", id, err)
	}
	m.logger.DebugContext(ctx, "write through", "ns", m.ns, "key", id)

	m.mu.Lock()
	m.cache[key] = stored
	m.mu.Unlock()
	return stored, nil
}

// codecIO stores each value as its own JSON document.
type codecIO[V any] struct {
	backend store.Backend
	codec   ValueCodec[V]
}

func (c codecIO[V]) read(ctx context.Context, id string) (V, bool, error) {
	var zero V
	raw, err := c.backend.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	v, err := c.codec.Unmarshal(raw)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (c codecIO[V]) write(ctx context.Context, id string, v V) (V, error) {
	raw, err := c.codec.Marshal(v)
	if err != nil {
		return v, err
	}
	return v, c.backend.Set(ctx, id, raw)
}
