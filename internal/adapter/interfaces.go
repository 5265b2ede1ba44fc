// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BisonByte

// Package adapter provides the transport layer the device agent uses to talk
// to the ledger server.
//
// The primary abstraction is [ServerAdapter], which decouples the sync
// machinery from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrUnauthorized] for 401, [ErrRateLimited] for 429).
// A 409 maps to [intent.ErrIntentRequired]: the server refused a destructive
// write because no fresh delete-intent proof accompanied it.
package adapter

import (
	"context"
	"encoding/json"

	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

// ServerAdapter defines transport-agnostic communication with the ledger
// server. Implementations are responsible for serialisation, bearer-token
// management, and mapping transport-level errors to the sentinel values
// defined in this package.
type ServerAdapter interface {
	// SetToken stores the bearer token attached to all subsequent
	// authenticated requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// Login authenticates against the server and stores the returned bearer
	// token via SetToken. The token is also returned for callers that persist
	// it locally.
	Login(ctx context.Context, username, password string) (string, error)

	// Me probes the current session. A nil error means the stored token is
	// still accepted by the server.
	Me(ctx context.Context) error

	// Export fetches the full server snapshot used for bootstrap hydration.
	Export(ctx context.Context) (models.Export, error)

	// Save pushes one key/value pair to the server. For writes that remove
	// records from a protected collection, intentHeader must carry the
	// delete-intent proof; it is sent as the X-Vogue-Delete-Intent header
	// when non-empty.
	Save(ctx context.Context, key string, value json.RawMessage, intentHeader string) error

	// Delete removes a key on the server. Deletes always require an intent
	// proof; intentHeader is forwarded as with Save.
	Delete(ctx context.Context, key, intentHeader string) error

	// AppendItem appends one transaction payload to the server-side log and
	// returns its assigned id.
	AppendItem(ctx context.Context, data json.RawMessage) (int64, error)
}
