package models

import "encoding/json"

// Export is the full server snapshot returned by GET /api/export. It is the
// source material for device bootstrap hydration.
type Export struct {
	// ExportedAt is the snapshot time in Unix milliseconds.
	ExportedAt int64 `json:"exportedAt"`

	// KV maps every stored key to its raw JSON value.
	KV map[string]json.RawMessage `json:"kv"`

	// Items is the ordered append-only transaction log.
	Items []Item `json:"items"`

	// Clients is the ordered clients table.
	Clients []Client `json:"clients"`
}
