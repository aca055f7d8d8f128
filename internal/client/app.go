// Package client assembles the EasyEats client: the identity provider, the
// authenticated HTTP client and its API facades, the auth store, the navigation
// root and one controller per screen.
package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/easyeats/easyeats/internal/client/api"
	"github.com/easyeats/easyeats/internal/client/authstate"
	"github.com/easyeats/easyeats/internal/client/httpclient"
	"github.com/easyeats/easyeats/internal/client/navigation"
	"github.com/easyeats/easyeats/internal/client/screens"
	"github.com/easyeats/easyeats/internal/client/session"
	"github.com/easyeats/easyeats/internal/config"
	"github.com/easyeats/easyeats/internal/spoonacular"
)

// ErrNoIdentityProvider is returned when neither a Firebase API key nor a local
// identity secret is configured.
var ErrNoIdentityProvider = errors.New("no identity provider configured: set EASYEATS_FIREBASE_API_KEY or EASYEATS_LOCAL_IDENTITY_SECRET")

const searchTimeout = 15 * time.Second

// App owns every client collaborator. Screens only see the narrow interfaces
// they need; App is the one place holding the concrete types.
type App struct {
	Config   config.ClientConfig
	Provider session.Provider
	HTTP     *httpclient.Client
	Tokens   *httpclient.TokenCache

	AuthAPI  *api.Auth
	Profiles *api.Profiles
	Recipes  *api.Recipes

	Auth *authstate.Store
	Nav  *navigation.Root

	Started     screens.StartedScreen
	Login       *screens.LoginScreen
	Signup      *screens.SignupScreen
	Discover    *screens.DiscoverScreen
	Favorites   *screens.FavoritesScreen
	Chat        *screens.ChatScreen
	Profile     *screens.ProfileScreen
	EditProfile *screens.EditProfileScreen
	AddRecipe   *screens.AddRecipeScreen
}

type options struct {
	provider   session.Provider
	alerts     screens.Alerter
	httpClient *http.Client
	searcher   spoonacular.Searcher
}

// Option customises New.
type Option func(*options)

// WithProvider overrides the identity provider chosen from configuration.
func WithProvider(p session.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithAlerter sets where screen dialogs go. The default logs them.
func WithAlerter(a screens.Alerter) Option {
	return func(o *options) { o.alerts = a }
}

// WithHTTPClient sets the transport used for backend requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithSearcher replaces the Spoonacular client used by Discover.
func WithSearcher(s spoonacular.Searcher) Option {
	return func(o *options) { o.searcher = s }
}

// New wires an App from cfg. It does not touch the network.
func New(cfg config.ClientConfig, opts ...Option) (*App, error) {
	o := options{alerts: screens.LogAlerter{}}
	for _, opt := range opts {
		opt(&o)
	}

	provider := o.provider
	if provider == nil {
		var err error
		if provider, err = newProvider(cfg); err != nil {
			return nil, err
		}
	}

	tokens := &httpclient.TokenCache{}
	clientOpts := []httpclient.Option{
		httpclient.WithRequestInterceptor(httpclient.BearerAuth(provider, tokens)),
		httpclient.WithErrorInterceptor(httpclient.ClearTokenOnUnauthorized(tokens)),
		httpclient.WithErrorInterceptor(httpclient.LogErrors()),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, httpclient.WithHTTPClient(o.httpClient))
	}
	hc := httpclient.New(cfg.APIURL, clientOpts...)

	searcher := o.searcher
	if searcher == nil {
		base := spoonacular.NewClient(cfg.SpoonacularBaseURL, cfg.SpoonacularAPIKey, searchTimeout)
		searcher = spoonacular.NewCachingSearcher(base, cfg.SearchCacheTTL)
	}

	a := &App{
		Config:   cfg,
		Provider: provider,
		HTTP:     hc,
		Tokens:   tokens,
		AuthAPI:  api.NewAuth(hc),
		Profiles: api.NewProfiles(hc),
		Recipes:  api.NewRecipes(hc),
		Auth:     authstate.New(),
	}
	a.Nav = navigation.NewRoot(a.Auth)

	authDeps := screens.AuthDeps{
		Provider: provider,
		Profiles: a.Profiles,
		Auth:     a.Auth,
		Alerts:   o.alerts,
		Nav:      a.Nav,
	}
	a.Started = screens.StartedScreen{Nav: a.Nav}
	a.Login = screens.NewLoginScreen(authDeps)
	a.Signup = screens.NewSignupScreen(authDeps)
	a.Favorites = &screens.FavoritesScreen{}
	a.Discover = screens.NewDiscoverScreen(searcher, a.Favorites)
	a.Chat = screens.NewChatScreen()
	a.Profile = &screens.ProfileScreen{
		Provider: provider,
		Profiles: a.Profiles,
		Recipes:  a.Recipes,
		Auth:     a.Auth,
		Nav:      a.Nav,
		BaseURL:  cfg.APIURL,
	}
	a.EditProfile = &screens.EditProfileScreen{
		Provider: provider,
		Profiles: a.Profiles,
		Nav:      a.Nav,
		Alerts:   o.alerts,
		BaseURL:  cfg.APIURL,
	}
	a.AddRecipe = screens.NewAddRecipeScreen(a.Recipes, a.Nav, o.alerts)

	a.Nav.OnFocus(navigation.Profile, a.Profile.Focus)
	a.Nav.OnFocus(navigation.EditProfile, a.EditProfile.Focus)

	return a, nil
}

func newProvider(cfg config.ClientConfig) (session.Provider, error) {
	switch {
	case cfg.FirebaseAPIKey != "":
		return session.NewFirebaseProvider(cfg.FirebaseAPIKey, session.NewMemoryStore()), nil
	case cfg.LocalSecret != "":
		return session.NewLocalProvider([]byte(cfg.LocalSecret), session.NewMemoryStore()), nil
	default:
		return nil, ErrNoIdentityProvider
	}
}

// Run drives the navigation root until ctx is done.
func (a *App) Run(ctx context.Context) {
	a.Nav.Run(ctx)
}
