package store

import (
	"context"
	"sort"
	"strings"
)

// Stats holds backend statistics.
type Stats struct {
	Location   string           `json:"location,omitempty"`
	SizeBytes  int64            `json:"size_bytes,omitempty"`
	TotalKeys  int              `json:"total_keys"`
	Namespaces []NamespaceStats `json:"namespaces"`
}

// NamespaceStats holds per-namespace counts.
type NamespaceStats struct {
	NS   string `json:"ns"`
	Keys int    `json:"keys"`
}

// CollectStats scans every key in b and groups them by namespace.
func CollectStats(ctx context.Context, b Backend) (*Stats, error) {
	keys, err := b.Scan(ctx, "")
	if err != nil {
		return nil, err
	}

	st := &Stats{TotalKeys: len(keys)}
	if s, ok := b.(*SQLiteBackend); ok {
		st.Location = s.Path()
		st.SizeBytes = s.SizeBytes()
	}

	counts := make(map[string]int)
	for _, k := range keys {
		counts[NamespaceOf(k)]++
	}
	for ns, n := range counts {
		st.Namespaces = append(st.Namespaces, NamespaceStats{NS: ns, Keys: n})
	}
	sort.Slice(st.Namespaces, func(i, j int) bool {
		if st.Namespaces[i].Keys != st.Namespaces[j].Keys {
			return st.Namespaces[i].Keys > st.Namespaces[j].Keys
		}
		return st.Namespaces[i].NS < st.Namespaces[j].NS
	})

	return st, nil
}

// NamespaceOf returns the namespace part of a composed key: everything before
// the first ':' that is followed by a JSON key or the last ':' otherwise.
// Keys with no separator belong to the empty namespace.
func NamespaceOf(key string) string {
	if i := strings.Index(key, ":["); i >= 0 {
		return key[:i]
	}
	if i := strings.Index(key, ":\""); i >= 0 {
		return key[:i]
	}
	if i := strings.LastIndex(key, ":"); i >= 0 {
		return key[:i]
	}
	return ""
}
