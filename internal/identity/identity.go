// Package identity verifies the bearer ID tokens that EasyEats clients obtain from
// their identity provider and carries the verified caller on request contexts.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrMissingToken indicates the request carried no bearer token.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken indicates the bearer token failed verification.
	ErrInvalidToken = errors.New("invalid bearer token")
	// ErrKeysUnavailable indicates the signing keys could not be retrieved.
	ErrKeysUnavailable = errors.New("identity signing keys unavailable")
)

// Claims describes the verified caller.
type Claims struct {
	UID   string
	Email string
	Name  string
}

// Verifier validates a raw ID token and returns the caller it identifies.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

type ctxKey struct{}

// WithClaims stores verified claims on the context.
func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, claims)
}

// ClaimsFromContext returns the verified caller, if any.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	if ctx == nil {
		return Claims{}, false
	}
	claims, ok := ctx.Value(ctxKey{}).(Claims)
	if !ok || claims.UID == "" {
		return Claims{}, false
	}
	return claims, true
}
