// Package blob provides whole-value key/value storage backends.
//
// A Store reads and writes opaque byte blobs in full. There are no partial
// writes and no append semantics: every Put replaces the previous value.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no blob exists for the key.
var ErrNotFound = errors.New("blob not found")

// Store reads and writes whole blobs by key.
type Store interface {
	// Get returns the blob stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the blob stored at key.
	Put(ctx context.Context, key string, data []byte) error
}
