// Package utils provides general-purpose helpers used across the
// application: context keys, hashing, JWT generation and validation,
// HTTP response writing, and identifier generation.
package utils

import "context"

// contextKey is a private type for context keys. Using a dedicated type
// instead of a plain string prevents collisions with other packages.
type contextKey string

// String returns the string representation of the context key.
func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey is the key under which the authenticated account ID is
// stored in a request context by the auth middleware.
var UserIDCtxKey = contextKey("userID")

// GetUserIDFromContext retrieves the account identifier from the context.
// ok is false when the value is missing or has an unexpected type.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}
