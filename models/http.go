package models

import "encoding/json"

// DeleteIntentHeader is the request header carrying the delete-intent proof:
// a single integer millisecond timestamp recorded when the operator confirmed
// a destructive prompt.
const DeleteIntentHeader = "X-Vogue-Delete-Intent"

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SaveRequest is the body of POST /api/save.
type SaveRequest struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// ItemRequest is the body of POST /api/item. The payload may arrive either
// wrapped in a "data" field or as the bare object; the handler normalizes it.
type ItemRequest struct {
	Data json.RawMessage `json:"data"`
}

// ImportRequest is the body of POST /api/import: a bulk merge of key/value
// entries and transaction items, used to seed a fresh server from a device
// backup.
type ImportRequest struct {
	KV    map[string]json.RawMessage `json:"kv"`
	Items []Item                     `json:"items"`
}

// BackupCounts reports how many entries of each collection went into a
// snapshot file.
type BackupCounts struct {
	KV      int `json:"kv"`
	Items   int `json:"items"`
	Clients int `json:"clients"`
}

// BackupResponse is the body of POST /api/backup.
type BackupResponse struct {
	OK     bool         `json:"ok"`
	File   string       `json:"file"`
	Counts BackupCounts `json:"counts"`
}

// ForgotPasswordRequest is the body of POST /api/forgot-password.
type ForgotPasswordRequest struct {
	Username string `json:"username"`
}

// ResetPasswordRequest is the body of POST /api/reset-password.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"password"`
}

// OKResponse is the generic success envelope.
type OKResponse struct {
	OK bool  `json:"ok"`
	ID int64 `json:"id,omitempty"`
}

// ValueResponse is the body of GET /api/load.
type ValueResponse struct {
	Value json.RawMessage `json:"value"`
}

// ErrorResponse is the generic failure envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MeResponse is the body of GET /api/me.
type MeResponse struct {
	User *User `json:"user"`
}
