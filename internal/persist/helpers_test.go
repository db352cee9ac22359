package persist

import (
	"context"
	"errors"
	"sync"

	"github.com/rcliao/numberbot/internal/store"
)

// countingBackend records the writes that reach the wrapped backend.
type countingBackend struct {
	store.Backend

	mu     sync.Mutex
	sets   map[string]int
	gets   int
	failOn string
}

var errBackendDown = errors.New("backend down")

func newCountingBackend() *countingBackend {
	return &countingBackend{Backend: store.NewMemoryBackend(), sets: make(map[string]int)}
}

func (c *countingBackend) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	c.gets++
	fail := c.failOn == "get"
	c.mu.Unlock()
	if fail {
		return "", errBackendDown
	}
	return c.Backend.Get(ctx, key)
}

func (c *countingBackend) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	c.sets[key]++
	fail := c.failOn == "set"
	c.mu.Unlock()
	if fail {
		return errBackendDown
	}
	return c.Backend.Set(ctx, key, value)
}

func (c *countingBackend) Scan(ctx context.Context, prefix string) ([]string, error) {
	c.mu.Lock()
	fail := c.failOn == "scan"
	c.mu.Unlock()
	if fail {
		return nil, errBackendDown
	}
	return c.Backend.Scan(ctx, prefix)
}

func (c *countingBackend) setsFor(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets[key]
}

func (c *countingBackend) totalSets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.sets {
		n += v
	}
	return n
}
