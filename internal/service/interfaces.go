package service

import (
	"context"
	"encoding/json"

	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

// AuthService owns the operator session: credential verification, token
// issuance and introspection. Login attempts are rate-limited per caller
// address (taken from the request context).
type AuthService interface {
	// Login verifies the credentials and returns a signed session token.
	// Returns ErrRateLimited when the caller address is locked out,
	// ErrWrongPassword on a credential mismatch.
	Login(ctx context.Context, username, password string) (models.Token, error)

	// Logout records the end of a session. The token itself stays valid
	// until expiry; the call exists for the audit trail.
	Logout(ctx context.Context) error

	// ParseToken validates a raw JWT string and returns the decoded token.
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)

	// Me returns the operator behind the authenticated context.
	Me(ctx context.Context) (models.User, error)
}

// LedgerService owns the server-of-record key/value collections, the change
// diff on protected keys and the delete-intent guard on destructive writes.
type LedgerService interface {
	// Save upserts a key. For protected collection keys the old and new
	// snapshots are diffed: a write that removes records is rejected with
	// intent.ErrIntentRequired unless intentHeader carries a fresh
	// delete-intent timestamp; accepted changes are audited and notified.
	Save(ctx context.Context, key string, value json.RawMessage, intentHeader string) error

	// Load returns the stored value, or store.ErrKeyNotFound.
	Load(ctx context.Context, key string) (json.RawMessage, error)

	// Delete removes a key. Always requires a valid delete-intent header.
	Delete(ctx context.Context, key, intentHeader string) error

	// Export returns the full server snapshot used for device bootstrap.
	Export(ctx context.Context) (models.Export, error)

	// Import bulk-merges key/value entries and transaction items.
	// Protected collection keys go through the same diff and delete-intent
	// guard as Save, so intentHeader is required when the import shrinks
	// one of them.
	Import(ctx context.Context, req models.ImportRequest, intentHeader string) error
}

// BackupService owns on-demand server snapshots: each call writes the full
// export payload to a timestamped file and rotates out expired snapshots.
type BackupService interface {
	// Backup writes a snapshot file and reports its name and entry counts.
	// Returns ErrBackupsDisabled when no backup directory is configured.
	Backup(ctx context.Context) (models.BackupResponse, error)
}

// RecordService owns the structured stores: the append-only transaction item
// log and the clients table.
type RecordService interface {
	// AppendItem validates a transaction payload and appends it,
	// returning the server-assigned id.
	AppendItem(ctx context.Context, data json.RawMessage) (int64, error)

	// ListItems returns all items ordered by id.
	ListItems(ctx context.Context) ([]models.Item, error)

	// SaveClient creates the client when ID is zero, updates it otherwise.
	// Returns the client id.
	SaveClient(ctx context.Context, client models.Client) (int64, error)

	// DeleteClient removes a client row. Requires a valid delete-intent
	// header; reports whether a row was actually deleted.
	DeleteClient(ctx context.Context, id int64, intentHeader string) (bool, error)

	// ListClients returns all clients ordered by id.
	ListClients(ctx context.Context) ([]models.Client, error)
}

// RecoveryService owns the password-recovery flow.
type RecoveryService interface {
	// ForgotPassword issues a single-use reset token and mails the reset
	// link. The outcome is deliberately identical for known and unknown
	// usernames; only rate-limit violations surface as errors.
	ForgotPassword(ctx context.Context, username string) error

	// ResetPassword consumes a reset token and installs the new password.
	ResetPassword(ctx context.Context, token, newPassword string) error
}
