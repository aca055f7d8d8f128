package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/easyeats/easyeats/internal/client/session"
)

// TokenSource is the part of the session provider the interceptors need.
type TokenSource interface {
	CurrentUser(ctx context.Context) (session.User, bool)
	Token(ctx context.Context) (string, error)
}

// TokenCache remembers the last bearer token attached to a request.
type TokenCache struct {
	mu    sync.Mutex
	token string
}

// Set records token.
func (c *TokenCache) Set(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Get returns the cached token, or "" when none is cached.
func (c *TokenCache) Get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Clear drops the cached token.
func (c *TokenCache) Clear() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// BearerAuth attaches a fresh ID token from source when a user is signed in.
// Requests made without a session are sent unauthenticated.
func BearerAuth(source TokenSource, cache *TokenCache) RequestInterceptor {
	return func(ctx context.Context, req *http.Request) error {
		if _, ok := source.CurrentUser(ctx); !ok {
			return nil
		}
		token, err := source.Token(ctx)
		if err != nil {
			return fmt.Errorf("fetch id token: %w", err)
		}
		if cache != nil {
			cache.Set(token)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	}
}

// ClearTokenOnUnauthorized drops the cached token when the server answers 401.
// The error is still returned to the caller.
func ClearTokenOnUnauthorized(cache *TokenCache) ErrorInterceptor {
	return func(_ context.Context, err *Error) {
		if cache == nil {
			return
		}
		if err.Kind == KindResponse && err.Status == http.StatusUnauthorized {
			cache.Clear()
		}
	}
}
