package store

import (
	"context"
	"encoding/json"

	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

// KVRepository is the server-side key/value store. All operations are atomic
// per call: an upsert either fully replaces the value or leaves the previous
// one visible.
type KVRepository interface {
	// Get returns the raw JSON value stored under key, or [ErrKeyNotFound].
	Get(ctx context.Context, key string) (json.RawMessage, error)

	// Set upserts the value under key and refreshes updated_at.
	Set(ctx context.Context, key string, value json.RawMessage) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// All returns a snapshot of every stored entry.
	All(ctx context.Context) (map[string]json.RawMessage, error)
}

// ItemRepository is the append-only transaction log.
type ItemRepository interface {
	// Append inserts a new item and returns its server-assigned id.
	// createdMs is the client-reported creation time in Unix milliseconds.
	Append(ctx context.Context, data json.RawMessage, createdMs int64) (int64, error)

	// List returns all items ordered by id ascending.
	List(ctx context.Context) ([]models.Item, error)
}

// ClientRepository is the structured clients table.
type ClientRepository interface {
	Create(ctx context.Context, client models.Client) (int64, error)
	Update(ctx context.Context, client models.Client) error

	// Delete removes a client row and reports whether a row was deleted.
	Delete(ctx context.Context, id int64) (bool, error)

	List(ctx context.Context) ([]models.Client, error)
}

// ResetTokenRepository stores single-use password-reset tokens.
type ResetTokenRepository interface {
	// Create stores a token for the given username with an absolute expiry.
	Create(ctx context.Context, token, username string, ttlSeconds int64) error

	// Consume atomically deletes the token and returns the username it was
	// issued for. Unknown, used and expired tokens all fail with
	// [ErrResetTokenInvalid].
	Consume(ctx context.Context, token string) (string, error)
}

// AuditRepository is the append-only audit log.
type AuditRepository interface {
	Append(ctx context.Context, line models.AuditLine) error
}

// Storages aggregates every server-side repository.
type Storages struct {
	KVRepository         KVRepository
	ItemRepository       ItemRepository
	ClientRepository     ClientRepository
	ResetTokenRepository ResetTokenRepository
	AuditRepository      AuditRepository
}
