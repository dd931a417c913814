// Package kvstore provides the durable string-keyed store that taskpad
// persists its document state into.
package kvstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrClosed is returned by operations on a store that has been closed.
var ErrClosed = errors.New("kvstore: store is closed")

// Store is a synchronous string-keyed, string-valued persistence layer.
// There are no transactions and no expiry; every write overwrites.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Keys returns every key starting with prefix, in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendLibSQL = "libsql"
	BackendTOML   = "toml"
)

// Open creates a store for the named backend. path is ignored by the memory
// backend.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendLibSQL:
		return NewLibSQLStore(path)
	case BackendTOML:
		return NewTOMLStore(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
