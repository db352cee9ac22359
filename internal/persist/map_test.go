package persist

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/rcliao/numberbot/internal/store"
)

func newAnyMap(b store.Backend) *Map[string, any] {
	return New(b, Config[string, any]{
		Namespace: "chat",
		Keys:      StringKeys[string]{},
		Values:    Sanitized{},
	})
}

func TestSetThenGetFromFreshMap(t *testing.T) {
	ctx := context.Background()
	b := store.NewMemoryBackend()

	value := map[string]any{
		"choice":  "multi2",
		"q":       24,
		"r":       [][2]int{{3, 8}, {4, 6}},
		"ratio":   0.5,
		"flagged": true,
		"missing": nil,
	}
	if err := newAnyMap(b).Set(ctx, "42", value); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := newAnyMap(b).Get(ctx, "42")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected key to be found")
	}
	if !reflect.DeepEqual(got, Sanitize(value)) {
		t.Errorf("expected %#v, got %#v", Sanitize(value), got)
	}
}

func TestSetCachesValue(t *testing.T) {
	ctx := context.Background()
	b := newCountingBackend()
	m := New(b, Config[string, int]{Namespace: "n", Keys: StringKeys[string]{}})

	if err := m.Set(ctx, "a", 7); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, _, _ := m.Get(ctx, "a")
	if v != 7 {
		t.Errorf("expected 7, got %d", v)
	}
	if b.gets != 0 {
		t.Errorf("expected cached read, backend saw %d gets", b.gets)
	}
	raw, _ := b.Backend.Get(ctx, "n:a")
	if raw != "7" {
		t.Errorf("expected write-through of 7, got %q", raw)
	}
}

func TestGetOrAbsentDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	b := newCountingBackend()
	m := New(b, Config[string, string]{Namespace: "n", Keys: StringKeys[string]{}})

	v, err := m.GetOr(ctx, "nope", "fallback")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != "fallback" {
		t.Errorf("expected fallback, got %q", v)
	}
	if b.totalSets() != 0 {
		t.Errorf("expected no writes, got %d", b.totalSets())
	}
	keys, _ := b.Scan(ctx, "")
	if len(keys) != 0 {
		t.Errorf("expected empty backend, got %v", keys)
	}
	if m.Len() != 0 {
		t.Errorf("expected nothing cached, got %d", m.Len())
	}
}

func TestStoredNullIsNotAbsent(t *testing.T) {
	ctx := context.Background()
	b := store.NewMemoryBackend()
	m := New(b, Config[string, *int]{Namespace: "conv", Keys: StringKeys[string]{}})

	if err := m.Set(ctx, "ended", nil); err != nil {
		t.Fatalf("set: %v", err)
	}

	fresh := New(b, Config[string, *int]{Namespace: "conv", Keys: StringKeys[string]{}})
	v, ok, err := fresh.Get(ctx, "ended")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || v != nil {
		t.Errorf("expected present nil, got ok=%v v=%v", ok, v)
	}

	_, ok, _ = fresh.Get(ctx, "never")
	if ok {
		t.Error("expected absent key to report ok=false")
	}

	two := 2
	got, _ := fresh.GetOr(ctx, "ended", &two)
	if got != nil {
		t.Errorf("expected stored nil to win over the fallback, got %v", *got)
	}
}

func TestSetDefaultWritesOnce(t *testing.T) {
	ctx := context.Background()
	b := newCountingBackend()
	m := New(b, Config[string, []int]{Namespace: "n", Keys: StringKeys[string]{}})

	first, err := m.SetDefault(ctx, "k", []int{1, 2})
	if err != nil {
		t.Fatalf("setdefault: %v", err)
	}
	second, err := m.SetDefault(ctx, "k", []int{9})
	if err != nil {
		t.Fatalf("setdefault: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected same value twice, got %v and %v", first, second)
	}
	if n := b.setsFor("n:k"); n != 1 {
		t.Errorf("expected exactly one write, got %d", n)
	}
}

func TestSetDefaultFindsStoredValue(t *testing.T) {
	ctx := context.Background()
	b := store.NewMemoryBackend()
	b.Set(ctx, "n:k", `"stored"`)

	m := New(b, Config[string, string]{Namespace: "n", Keys: StringKeys[string]{}})
	v, err := m.SetDefault(ctx, "k", "default")
	if err != nil {
		t.Fatalf("setdefault: %v", err)
	}
	if v != "stored" {
		t.Errorf("expected stored value, got %q", v)
	}
}

func TestGetOrCompute(t *testing.T) {
	ctx := context.Background()
	b := newCountingBackend()

	withDefault := New(b, Config[int64, int]{
		Namespace: "score",
		Keys:      IntKeys[int64]{},
		Default:   func() int { return 10 },
	})
	v, err := withDefault.GetOrCompute(ctx, 5)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if v != 10 {
		t.Errorf("expected 10, got %d", v)
	}
	if n := b.setsFor("score:5"); n != 1 {
		t.Errorf("expected default to be written once, got %d", n)
	}

	noDefault := New(b, Config[int64, int]{Namespace: "other", Keys: IntKeys[int64]{}})
	_, err = noDefault.GetOrCompute(ctx, 5)
	if !errors.Is(err, ErrNoDefault) {
		t.Errorf("expected ErrNoDefault, got %v", err)
	}
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrNoDefault to match ErrKeyNotFound, got %v", err)
	}

	// Stored values win over the factory.
	v, err = New(b, Config[int64, int]{Namespace: "score", Keys: IntKeys[int64]{}}).GetOrCompute(ctx, 5)
	if err != nil || v != 10 {
		t.Errorf("expected stored 10, got %d, %v", v, err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	b := store.NewMemoryBackend()
	m := New(b, Config[string, string]{Namespace: "n", Keys: StringKeys[string]{}})

	if err := m.Delete(ctx, "absent"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}

	m.Set(ctx, "k", "v")
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	v, _ := m.GetOr(ctx, "k", "")
	if v != "" {
		t.Errorf("expected deleted key to be absent, got %q", v)
	}
	ok, _ := b.Exists(ctx, "n:k")
	if ok {
		t.Error("expected backend key to be removed")
	}
}

func TestDeleteStoredButNotCached(t *testing.T) {
	ctx := context.Background()
	b := store.NewMemoryBackend()
	b.Set(ctx, "n:k", `"v"`)

	m := New(b, Config[string, string]{Namespace: "n", Keys: StringKeys[string]{}})
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, _ := b.Exists(ctx, "n:k")
	if ok {
		t.Error("expected backend key to be removed")
	}
}

func TestKeysUnion(t *testing.T) {
	ctx := context.Background()
	b := store.NewMemoryBackend()
	b.Set(ctx, "n:stored", `1`)
	b.Set(ctx, "nx:other", `1`)

	m := New(b, Config[string, int]{Namespace: "n", Keys: StringKeys[string]{}})
	m.Set(ctx, "k1", 1)
	m.Set(ctx, "k2", 2)

	var got []string
	for k, err := range m.Keys(ctx) {
		if err != nil {
			t.Fatalf("keys: %v", err)
		}
		got = append(got, k)
	}
	sort.Strings(got)
	want := []string{"k1", "k2", "stored"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// Restartable and stoppable.
	n := 0
	for range m.Keys(ctx) {
		n++
		break
	}
	if n != 1 {
		t.Errorf("expected early break after one key, got %d", n)
	}
}

func TestKeysScanError(t *testing.T) {
	ctx := context.Background()
	b := newCountingBackend()
	b.failOn = "scan"

	m := New(b, Config[string, int]{Namespace: "n", Keys: StringKeys[string]{}})
	for _, err := range m.Keys(ctx) {
		if !errors.Is(err, errBackendDown) {
			t.Errorf("expected backend error, got %v", err)
		}
	}
}

func TestTupleKeys(t *testing.T) {
	ctx := context.Background()
	b := store.NewMemoryBackend()
	m := New(b, Config[[2]int64, int]{Namespace: "conversations:main"})

	id, err := m.ComposeKey([2]int64{1, 2})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if id != "conversations:main:[1,2]" {
		t.Errorf("unexpected composed key %q", id)
	}

	key, err := m.DecodeKey(id)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if key != [2]int64{1, 2} {
		t.Errorf("expected tuple {1,2}, got %v", key)
	}

	m.Set(ctx, [2]int64{3, 4}, 1)
	fresh := New(b, Config[[2]int64, int]{Namespace: "conversations:main"})
	for k, err := range fresh.Keys(ctx) {
		if err != nil {
			t.Fatalf("keys: %v", err)
		}
		if k != [2]int64{3, 4} {
			t.Errorf("expected decoded tuple key, got %v", k)
		}
	}

	if _, err := m.DecodeKey("elsewhere:[1,2]"); err == nil {
		t.Error("expected error for a key outside the namespace")
	}
}

func TestMalformedStoredValue(t *testing.T) {
	ctx := context.Background()
	b := store.NewMemoryBackend()
	b.Set(ctx, "n:bad", `{not json`)

	m := New(b, Config[string, map[string]int]{Namespace: "n", Keys: StringKeys[string]{}})
	_, _, err := m.Get(ctx, "bad")
	if !errors.Is(err, ErrSerialization) {
		t.Errorf("expected ErrSerialization, got %v", err)
	}
}

func TestUnencodableValue(t *testing.T) {
	ctx := context.Background()
	m := New(store.NewMemoryBackend(), Config[string, any]{Namespace: "n", Keys: StringKeys[string]{}})

	err := m.Set(ctx, "ch", make(chan int))
	if !errors.Is(err, ErrSerialization) {
		t.Errorf("expected ErrSerialization, got %v", err)
	}
	if m.Len() != 0 {
		t.Error("expected failed write to leave the cache untouched")
	}

	sanitized := New(store.NewMemoryBackend(), Config[string, any]{
		Namespace: "n", Keys: StringKeys[string]{}, Values: Sanitized{},
	})
	if err := sanitized.Set(ctx, "ch", make(chan int)); err != nil {
		t.Errorf("expected sanitized codec to accept any value, got %v", err)
	}
}

func TestBackendErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	b := newCountingBackend()
	m := New(b, Config[string, int]{Namespace: "n", Keys: StringKeys[string]{}})

	b.failOn = "set"
	if err := m.Set(ctx, "k", 1); !errors.Is(err, errBackendDown) {
		t.Errorf("expected backend error on set, got %v", err)
	}

	b.failOn = "get"
	if _, _, err := m.Get(ctx, "k"); !errors.Is(err, errBackendDown) {
		t.Errorf("expected backend error on get, got %v", err)
	}
}

func TestLoadAndFree(t *testing.T) {
	ctx := context.Background()
	b := newCountingBackend()
	b.Backend.Set(ctx, "n:a", `1`)
	b.Backend.Set(ctx, "n:b", `2`)

	m := New(b, Config[string, int]{Namespace: "n", Keys: StringKeys[string]{}})
	if err := m.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 cached entries, got %d", m.Len())
	}

	gets := b.gets
	m.Get(ctx, "a")
	if b.gets != gets {
		t.Error("expected loaded key to be served from cache")
	}

	m.Free("a")
	m.Get(ctx, "a")
	if b.gets != gets+1 {
		t.Error("expected freed key to be read again")
	}
}

func TestClone(t *testing.T) {
	ctx := context.Background()
	m := New(store.NewMemoryBackend(), Config[string, int]{Namespace: "n", Keys: StringKeys[string]{}})
	m.Set(ctx, "a", 1)

	c := m.Clone()
	if c.Len() != 1 || c.Namespace() != "n" {
		t.Fatalf("unexpected clone: len=%d ns=%q", c.Len(), c.Namespace())
	}
	c.Set(ctx, "b", 2)
	if m.Len() != 1 {
		t.Error("expected clone cache to be independent")
	}
	v, _, _ := m.Get(ctx, "b")
	if v != 2 {
		t.Error("expected clone writes to reach the shared backend")
	}
}

func TestSimpleStoreDefaults(t *testing.T) {
	ctx := context.Background()
	s := NewSimpleStore(store.NewMemoryBackend(), Config[[2]int64, int]{Namespace: "conversations:x"})

	v, err := s.GetOrCompute(ctx, [2]int64{1, 1})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if v != 0 {
		t.Errorf("expected zero default, got %d", v)
	}
	id, _ := s.ComposeKey([2]int64{1, 1})
	if id != "conversations:x:[1,1]" {
		t.Errorf("expected JSON key, got %q", id)
	}
}
