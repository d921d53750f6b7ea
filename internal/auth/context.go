package auth

import (
	"context"

	"github.com/ambufleet/ambufleet/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// claimsContextKey is the context key for storing verified Claims.
	claimsContextKey contextKey = "claims"
)

// ContextWithClaims adds verified token claims to the context.
func ContextWithClaims(ctx context.Context, claims *model.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext retrieves claims from the context.
// Returns nil if the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *model.Claims {
	claims, ok := ctx.Value(claimsContextKey).(*model.Claims)
	if !ok {
		return nil
	}
	return claims
}

// UserIDFromContext is a convenience function to get the user id from context.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return ""
	}
	return claims.UserID
}
