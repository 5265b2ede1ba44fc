// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys,
// HTTP response writing, JWT token generation and validation,
// and other common operations.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// UsernameCtxKey is the key used to store the authenticated operator's
// username in the context. Used together with GetUsernameFromContext for
// type-safe retrieval.
//
// Example of writing a value to the context:
//
//	ctx := context.WithValue(ctx, utils.UsernameCtxKey, "admin")
var UsernameCtxKey = contextKey("username")

// RemoteAddrCtxKey is the key used to store the caller's network address in
// the context. The rate limiter keys its counters by this value.
var RemoteAddrCtxKey = contextKey("remoteAddr")

// GetUsernameFromContext retrieves the operator's username from the context.
//
// Returns the username and an ok flag:
//   - ok == true  — value is found and has the correct string type
//   - ok == false — value is missing or has an unexpected type
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameCtxKey).(string)
	return username, ok
}

// GetRemoteAddrFromContext retrieves the caller's network address from the
// context. Returns an empty string when no address was recorded.
func GetRemoteAddrFromContext(ctx context.Context) string {
	addr, _ := ctx.Value(RemoteAddrCtxKey).(string)
	return addr
}
