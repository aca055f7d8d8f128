package handlers

import (
	"net/http"

	"github.com/easyeats/easyeats/internal/db"
	"github.com/easyeats/easyeats/internal/identity"
	"github.com/easyeats/easyeats/internal/middleware"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Everything under
// /api/ requires a verified bearer token.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{DB: deps.DB}
	profiles := ProfileHandler{Profiles: deps.Profiles, Images: deps.Images, Limiter: deps.Limiter}
	recipes := RecipeHandler{Recipes: deps.Recipes, Images: deps.Images}

	authed := middleware.RequireIdentity(deps.Verifier)
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authed(h))
	}

	mux.HandleFunc("/healthz", health.Handle)
	handle("/api/users/create_profile/{$}", profiles.Create)
	handle("/api/users/{uid}/get_profile/{$}", profiles.Get)
	handle("/api/users/{uid}/update_profile/{$}", profiles.Update)
	handle("/api/recipes/{$}", recipes.Collection)
	handle("/api/recipes/my_recipes/{$}", recipes.Mine)
	handle("/api/recipes/{id}/{$}", recipes.Item)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	DB       db.Pinger
	Verifier identity.Verifier
	Profiles ProfileStore
	Recipes  RecipeStore
	Images   ImageStorage
	Limiter  RateLimiter
}
