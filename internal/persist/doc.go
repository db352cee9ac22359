// Package persist mirrors in-memory maps into a key-value store.
//
// # Overview
//
// A Map owns one namespace of a shared store.Backend. Every entry lives under
// its own backend key, composed as "namespace:encodedKey". Values are read
// lazily on first access and cached for the life of the Map; writes go
// straight through to the backend before the cache is updated.
//
//	users := persist.New(backend, persist.Config[int64, int]{
//	    Namespace: "scores",
//	    Keys:      persist.IntKeys[int64]{},
//	})
//	users.Set(ctx, 42, 10)
//	score, ok, err := users.Get(ctx, 42)
//
// # Absence
//
// A key that exists nowhere is reported with ok == false (Get), with the
// caller's fallback (GetOr), or with ErrKeyNotFound. A stored JSON null is a
// present value and is never confused with absence.
//
// # Two persistence strategies
//
// Map and SimpleStore write every Set through immediately; their Flush is a
// no-op. DictStore holds StoredDict values, each one a JSON object saved as a
// single blob. StoredDict mutations stay in memory until Flush, so callers can
// batch several edits into one write.
//
// # Keys
//
// StringKeys and IntKeys format keys as plain text. JSONKeys encodes keys as
// JSON, which lets fixed-size arrays act as tuple keys: [2]int64{1, 2} is
// stored as "ns:[1,2]" and decodes back to the array, not a slice.
package persist
