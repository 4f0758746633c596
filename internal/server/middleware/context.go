package middleware

import (
	"context"

	"provider-registration/backend/internal/security"
)

type contextKey struct{ name string }

var claimsKey = contextKey{"provider_claims"}

// WithClaims returns a context carrying verified provider token claims.
func WithClaims(ctx context.Context, claims *security.ProviderClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the claims set by RequireBearer and true if present.
func ClaimsFromContext(ctx context.Context) (*security.ProviderClaims, bool) {
	c, ok := ctx.Value(claimsKey).(*security.ProviderClaims)
	return c, ok && c != nil
}

// GetProviderID returns the provider_id claim from context and true if set; otherwise "", false.
func GetProviderID(ctx context.Context) (string, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return "", false
	}
	return c.ProviderID, true
}
