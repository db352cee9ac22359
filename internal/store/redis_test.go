package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*RedisBackend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	b, err := NewRedisBackend(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b, mr
}

func TestRedisBackend(t *testing.T) {
	b, _ := newTestRedis(t)
	testBackend(t, b)
}

func TestRedisBackendWritesPlainStrings(t *testing.T) {
	b, mr := newTestRedis(t)
	if err := b.Set(context.Background(), "user_data:1", `{"choice":"multi1"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := mr.Get("user_data:1")
	if err != nil {
		t.Fatalf("miniredis get: %v", err)
	}
	if got != `{"choice":"multi1"}` {
		t.Errorf("unexpected raw value %q", got)
	}
}

func TestRedisBackendFromClientDoesNotClose(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	b := NewRedisBackendFromClient(client)
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Errorf("expected borrowed client to stay open: %v", err)
	}
}

func TestRedisBackendUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisBackend(context.Background(), "redis://"+addr); err == nil {
		t.Error("expected connection error")
	}
}

func TestGlobEscape(t *testing.T) {
	if got := globEscape(`a*b?[c]\`); got != `a\*b\?\[c\]\\` {
		t.Errorf("unexpected escape %q", got)
	}
}
