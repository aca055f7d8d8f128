package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/easyeats/easyeats/internal/config"
	"github.com/easyeats/easyeats/internal/db"
	"github.com/easyeats/easyeats/internal/handlers"
	"github.com/easyeats/easyeats/internal/identity"
	"github.com/easyeats/easyeats/internal/middleware"
	"github.com/easyeats/easyeats/internal/repositories"
	"github.com/easyeats/easyeats/internal/storage"
)

// pool is what the handlers need from the database: connections for the
// repositories and a ping for the health check.
type pool interface {
	db.Pool
	db.Pinger
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
// Image storage is left unset when no bucket is configured; upload routes then
// answer 503.
func buildDependencies(ctx context.Context, p pool, cfg config.Config) (handlers.Dependencies, error) {
	verifier, err := newVerifier(cfg.Identity)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	deps := handlers.Dependencies{
		DB:       p,
		Verifier: verifier,
		Profiles: repositories.NewPostgresProfileRepository(p),
		Recipes:  repositories.NewPostgresRecipeRepository(p),
		Limiter:  middleware.NewIPRateLimiter(cfg.RateLimit),
	}

	if cfg.ObjectStore.Enabled() {
		images, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, fmt.Errorf("configure image storage: %w", err)
		}
		deps.Images = images
	} else {
		slog.Warn("no object store configured, image uploads are disabled")
	}

	return deps, nil
}

func newVerifier(cfg config.IdentityConfig) (identity.Verifier, error) {
	switch cfg.Mode {
	case config.IdentityModeFirebase:
		return identity.NewFirebaseVerifier(cfg.FirebaseProjectID), nil
	case config.IdentityModeLocal:
		return identity.NewHMACVerifier([]byte(cfg.LocalSecret)), nil
	default:
		return nil, fmt.Errorf("unknown identity mode %q", cfg.Mode)
	}
}
