package persist

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound reports a key that is neither cached nor stored.
	ErrKeyNotFound = errors.New("persist: key not found")

	// ErrNoDefault is returned by GetOrCompute when the key is absent and the
	// Map has no default factory. It matches ErrKeyNotFound.
	ErrNoDefault = fmt.Errorf("%w: no default available", ErrKeyNotFound)

	// ErrTypeMismatch reports a value whose shape does not fit the store,
	// such as a non-object stored into a DictStore.
	ErrTypeMismatch = errors.New("persist: type mismatch")

	// ErrSerialization reports a value that could not be encoded or a stored
	// value that could not be decoded.
	ErrSerialization = errors.New("persist: serialization failure")

	// ErrUnbound is returned by StoredDict.Flush and Load when the dict has
	// no backend key yet.
	ErrUnbound = errors.New("persist: dict is not bound to a key")
)
