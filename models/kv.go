package models

import (
	"encoding/json"
	"time"
)

// Well-known mirror keys. The protected keys hold the two business
// collections; the excluded keys are device-local session state that must
// never be pushed to or pulled from the server.
const (
	KeyClients      = "vogue_clientes"
	KeyTransactions = "vogue_transacciones"

	KeySession = "vogue_sesion"
	KeyUser    = "vogue_user"
	KeyToken   = "vogue_token"
)

// ProtectedKeys returns the set of keys whose values are protected
// collections: destructive writes to them require a delete-intent proof and
// every accepted mutation is diffed and audited.
func ProtectedKeys() map[string]struct{} {
	return map[string]struct{}{
		KeyClients:      {},
		KeyTransactions: {},
	}
}

// SyncExcludedKeys returns the keys that never take part in synchronization.
// They carry session and token material that is meaningful only on the
// device that wrote them.
func SyncExcludedKeys() map[string]struct{} {
	return map[string]struct{}{
		KeySession: {},
		KeyUser:    {},
		KeyToken:   {},
	}
}

// IsProtectedKey reports whether key names a protected collection.
func IsProtectedKey(key string) bool {
	_, ok := ProtectedKeys()[key]
	return ok
}

// IsSyncExcludedKey reports whether key is device-local only.
func IsSyncExcludedKey(key string) bool {
	_, ok := SyncExcludedKeys()[key]
	return ok
}

// KVEntry is a single server-side key/value row. Value is kept as raw JSON:
// the server never interprets the payload except when the key names a
// protected collection, in which case the value is decoded into []Record for
// diffing.
type KVEntry struct {
	// Key is the unique identifier of the entry.
	Key string `json:"key"`

	// Value is the arbitrary JSON payload stored under Key.
	Value json.RawMessage `json:"value"`

	// UpdatedAt is the time of the last accepted write.
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the KVEntry model.
func (e KVEntry) TableName() string {
	return "kv_store"
}
