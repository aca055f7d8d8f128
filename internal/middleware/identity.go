package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/easyeats/easyeats/internal/identity"
	"github.com/easyeats/easyeats/internal/logging"
)

// RequireIdentity rejects requests without a valid bearer ID token and stores the
// verified claims on the request context.
func RequireIdentity(verifier identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := logging.FromContext(ctx)

			if verifier == nil {
				logger.Error("identity verifier unavailable")
				writeError(w, http.StatusInternalServerError, "authentication services unavailable")
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				logger.Warn("request missing bearer token")
				writeError(w, http.StatusUnauthorized, "authentication credentials were not provided")
				return
			}

			claims, err := verifier.Verify(ctx, token)
			if err != nil {
				if errors.Is(err, identity.ErrKeysUnavailable) {
					logger.Error("identity keys unavailable", "error", err)
					writeError(w, http.StatusServiceUnavailable, "authentication services unavailable")
					return
				}
				logger.Warn("bearer token rejected", "error", err)
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx = identity.WithClaims(ctx, claims)
			ctx = logging.With(ctx, "uid", claims.UID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
