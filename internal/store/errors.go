package store

import "errors"

var (
	// ErrKeyNotFound indicates the requested key has no stored value.
	ErrKeyNotFound = errors.New("key not found")

	// ErrClientNotFound indicates no client row exists for the given id.
	ErrClientNotFound = errors.New("client not found")

	// ErrResetTokenInvalid indicates a password-reset token that is unknown,
	// already used, or expired. The three cases are deliberately
	// indistinguishable.
	ErrResetTokenInvalid = errors.New("reset token invalid or expired")
)
