// Package store provides the key-value backends that bot state is persisted to.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Backend.Get when the key does not exist.
var ErrNotFound = errors.New("store: key not found")

// Backend is the key-value protocol every persistence layer is built on.
// Values are opaque strings (already-serialized JSON).
// Implementations must be safe for concurrent use.
type Backend interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Scan returns all keys beginning with prefix.
	Scan(ctx context.Context, prefix string) ([]string, error)

	// Close releases the backend's resources.
	Close() error
}

// Open returns a Backend for the given location:
//
//	redis://host:6379/0, rediss://...   Redis
//	memory://                           process-local map
//	sqlite:///path/to/state.db, a path  SQLite file
func Open(ctx context.Context, url string) (Backend, error) {
	switch {
	case url == "":
		return nil, fmt.Errorf("open store: empty location")
	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		return NewRedisBackend(ctx, url)
	case strings.HasPrefix(url, "memory://"):
		return NewMemoryBackend(), nil
	case strings.HasPrefix(url, "sqlite://"):
		return NewSQLiteBackend(strings.TrimPrefix(url, "sqlite://"))
	case strings.Contains(url, "://"):
		return nil, fmt.Errorf("open store: unsupported scheme in %q", url)
	default:
		return NewSQLiteBackend(url)
	}
}
