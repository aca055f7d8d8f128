package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyeats/easyeats/internal/client/navigation"
	"github.com/easyeats/easyeats/internal/client/screens"
	"github.com/easyeats/easyeats/internal/config"
	"github.com/easyeats/easyeats/internal/identity"
	"github.com/easyeats/easyeats/internal/middleware"
	"github.com/easyeats/easyeats/internal/spoonacular"
)

const testSecret = "client-test-secret-0123456789"

// profileBackend serves the profile and recipe routes the client touches,
// behind the same bearer middleware the server uses.
type profileBackend struct {
	mu       sync.Mutex
	profiles map[string]map[string]any
}

func newProfileBackend(t *testing.T) *httptest.Server {
	t.Helper()
	b := &profileBackend{profiles: make(map[string]map[string]any)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/create_profile/{$}", b.create)
	mux.HandleFunc("GET /api/users/{uid}/get_profile/{$}", b.get)
	mux.HandleFunc("GET /api/recipes/my_recipes/{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"r1","title":"Soup","image":"/recipe_images/x/soup.jpg","cooking_time":20,"difficulty":"easy"}]`))
	})

	srv := httptest.NewServer(middleware.RequireIdentity(identity.NewHMACVerifier([]byte(testSecret)))(mux))
	t.Cleanup(srv.Close)
	return srv
}

func (b *profileBackend) create(w http.ResponseWriter, r *http.Request) {
	claims, _ := identity.ClaimsFromContext(r.Context())
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["firebase_uid"] != claims.UID {
		http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
		return
	}
	profile := map[string]any{
		"firebase_uid": claims.UID,
		"email":        body["email"],
		"recipe_count": 1,
		"user":         map[string]any{"first_name": "Ada", "email": body["email"]},
	}
	b.mu.Lock()
	b.profiles[claims.UID] = profile
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"profile": profile})
}

func (b *profileBackend) get(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	profile, ok := b.profiles[r.PathValue("uid")]
	b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Profile not found"}`))
		return
	}
	_ = json.NewEncoder(w).Encode(profile)
}

func TestNewRequiresIdentityProvider(t *testing.T) {
	_, err := New(config.ClientConfig{APIURL: "http://localhost:8000"})
	assert.ErrorIs(t, err, ErrNoIdentityProvider)
}

func TestSignupLogoutRoundTrip(t *testing.T) {
	srv := newProfileBackend(t)

	app, err := New(config.ClientConfig{APIURL: srv.URL, LocalSecret: testSecret},
		WithSearcher(spoonacular.NewCachingSearcher(spoonacular.NewClient(srv.URL, "key", time.Second), time.Minute)),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	started := app.Nav.Changed()
	go app.Run(ctx)
	<-started

	require.NoError(t, app.Started.CreateAccount(ctx))
	assert.Equal(t, navigation.Signup, app.Nav.Current())

	app.Signup.Email = "ada@example.com"
	app.Signup.Password = "analytical"
	app.Signup.ConfirmPassword = "analytical"
	require.Equal(t, screens.StateSuccess, app.Signup.Submit(ctx))

	require.Eventually(t, func() bool { return app.Nav.Current() == navigation.Home }, time.Second, time.Millisecond)
	assert.True(t, app.Auth.IsAuthenticated())
	assert.NotEmpty(t, app.Tokens.Get())

	require.NoError(t, app.Nav.Navigate(ctx, navigation.Profile))
	assert.Equal(t, "Ada", app.Profile.View.Name)
	assert.Equal(t, 1, app.Profile.View.RecipeCount)
	require.Len(t, app.Profile.Cards, 1)
	assert.Equal(t, srv.URL+"/recipe_images/x/soup.jpg", app.Profile.Cards[0].Image)

	require.NoError(t, app.Profile.Action(ctx, screens.ActionLogout))
	require.Eventually(t, func() bool { return app.Nav.Current() == navigation.Started }, time.Second, time.Millisecond)
	_, signedIn := app.Provider.CurrentUser(ctx)
	assert.False(t, signedIn)

	err = app.Nav.Navigate(ctx, navigation.Profile)
	assert.ErrorIs(t, err, navigation.ErrScreenUnavailable)
}
