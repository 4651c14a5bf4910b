// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, keyed hashing,
// HTTP request and response helpers, HTTP client initialization and
// identifier generation.
package utils

import (
	"context"

	"github.com/MKhiriev/go-identity-keeper/models"
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

// UserIDCtxKey is the key used to store the authenticated user identifier in
// the context.
//
// Example of writing a value to the context:
//
//	ctx := context.WithValue(ctx, utils.UserIDCtxKey, "0190c3b2-...")
var UserIDCtxKey = contextKey("userID")

// ScopeCtxKey is the key used to store the scope carried by the presented
// session token.
var ScopeCtxKey = contextKey("scope")

// GetUserIDFromContext retrieves the user identifier from the context.
//
// Returns the user ID and an ok flag:
//   - ok == true : value is found, is a string and is not empty
//   - ok == false: value is missing or has an unexpected type
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok && userID != ""
}

// GetScopeFromContext retrieves the session scope from the context.
func GetScopeFromContext(ctx context.Context) (models.Scope, bool) {
	scope, ok := ctx.Value(ScopeCtxKey).(models.Scope)
	return scope, ok && scope.Valid()
}

// WithPrincipal stores both the user id and the scope of an authenticated
// request.
func WithPrincipal(ctx context.Context, userID string, scope models.Scope) context.Context {
	ctx = context.WithValue(ctx, UserIDCtxKey, userID)
	return context.WithValue(ctx, ScopeCtxKey, scope)
}
