// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes type-safe context keys and identifier generation.
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

// OperationIDCtxKey is the key used to store the running operation's id in
// the context.
//
//	ctx := utils.WithOperationID(ctx, op.ID)
var OperationIDCtxKey = contextKey("operationID")

// WithOperationID returns a copy of ctx carrying id.
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, OperationIDCtxKey, id)
}

// GetOperationIDFromContext retrieves the operation id from the context.
//
// Returns the id and an ok flag:
//   - ok == true  - value is found and is a non-empty string
//   - ok == false - value is missing, empty or has an unexpected type
func GetOperationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(OperationIDCtxKey).(string)
	return id, ok && id != ""
}
