package store

import (
	"context"
	"encoding/json"
)

// LocalStore is the device-local mirror of the server key/value store. The
// sync agent reads and writes through it; the UI layer never talks to the
// server directly.
type LocalStore interface {
	// Get returns the raw JSON value stored under key, or [ErrKeyNotFound].
	Get(ctx context.Context, key string) (json.RawMessage, error)

	// Set upserts the value under key.
	Set(ctx context.Context, key string, value json.RawMessage) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// All returns a snapshot of every mirrored entry.
	All(ctx context.Context) (map[string]json.RawMessage, error)

	// Close releases the underlying database handle.
	Close() error
}
