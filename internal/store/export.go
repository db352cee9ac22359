package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Entry is one raw key/value pair as produced by Export.
type Entry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Export returns every key beginning with prefix together with its stored
// JSON value, ordered by key. Keys deleted between scan and read are skipped.
func Export(ctx context.Context, b Backend, prefix string) ([]Entry, error) {
	keys, err := b.Scan(ctx, prefix)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		v, err := b.Get(ctx, k)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: k, Value: json.RawMessage(v)})
	}
	return entries, nil
}

// Import writes entries produced by Export. Values must be valid JSON.
// Existing keys are overwritten.
func Import(ctx context.Context, b Backend, entries []Entry) (int, error) {
	imported := 0
	for _, e := range entries {
		if e.Key == "" {
			return imported, fmt.Errorf("import: entry %d has no key", imported)
		}
		if !json.Valid(e.Value) {
			return imported, fmt.Errorf("import %s: value is not valid JSON", e.Key)
		}
		if err := b.Set(ctx, e.Key, string(e.Value)); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
