package models

import "encoding/json"

// Item is one row of the append-only transaction log. Data is the opaque
// transaction payload exactly as the device submitted it.
type Item struct {
	// ID is the server-assigned, monotonically increasing identifier.
	ID int64 `json:"id"`

	// Data is the transaction payload (tipo, monto, cliente, ...).
	Data json.RawMessage `json:"data"`

	// CreatedAt is the insertion time in Unix milliseconds.
	CreatedAt int64 `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the Item model.
func (i Item) TableName() string {
	return "items"
}
