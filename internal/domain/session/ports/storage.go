package ports

import (
	"context"
	"errors"
)

// ErrStorageClosed is returned by storage backends after Close.
var ErrStorageClosed = errors.New("storage closed")

// Storage is the opaque key-value interface session data is persisted through.
// Writes are last-writer-wins; no transactions are assumed.
type Storage interface {
	// Load returns the value for key; found is false when the key does not exist.
	Load(ctx context.Context, key string) (value []byte, found bool, err error)
	Save(ctx context.Context, key string, value []byte) error
}

// Flusher is implemented by storage backends that buffer writes.
type Flusher interface {
	Flush(ctx context.Context) error
}
