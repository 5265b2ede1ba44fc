package utils

import "github.com/google/uuid"

// TokenGenerator mints opaque single-use tokens for the password-recovery
// flow.
type TokenGenerator struct{}

func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{}
}

// NewToken returns a fresh token. UUIDv7 is preferred for its creation-time
// ordering in the reset_tokens table; the random v4 form is the fallback when
// the system clock refuses to cooperate.
func (g *TokenGenerator) NewToken() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
