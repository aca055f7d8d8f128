package screens

import (
	"context"
	"strings"
	"sync"

	"github.com/easyeats/easyeats/internal/client/api"
	"github.com/easyeats/easyeats/internal/client/authstate"
	"github.com/easyeats/easyeats/internal/client/httpclient"
	"github.com/easyeats/easyeats/internal/client/navigation"
	"github.com/easyeats/easyeats/internal/client/session"
	"github.com/easyeats/easyeats/internal/logging"
)

// State is a step of a login or signup attempt.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// Dialog titles used by the auth screens.
const (
	TitleLoginFailed     = "Login Failed"
	TitleSignupFailed    = "Signup Failed"
	TitleProfileCreation = "Profile Creation Failed"
	TitleProfileError    = "Profile Error"
)

// AuthDeps are the collaborators shared by the login and signup screens.
type AuthDeps struct {
	Provider session.Provider
	Profiles ProfileAPI
	Auth     authstate.Mutator
	Alerts   Alerter
	Nav      Navigator
}

// authForm runs the Validating -> Submitting -> Success|Failed machine.
type authForm struct {
	deps AuthDeps

	mu      sync.Mutex
	state   State
	loading bool
}

func (f *authForm) begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loading {
		return false
	}
	f.loading = true
	f.state = StateValidating
	return true
}

func (f *authForm) finish(state State) State {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	f.state = state
	return state
}

func (f *authForm) setState(state State) {
	f.mu.Lock()
	f.state = state
	f.mu.Unlock()
}

// State returns the state of the most recent attempt.
func (f *authForm) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == "" {
		return StateIdle
	}
	return f.state
}

// Loading reports whether an attempt is in flight.
func (f *authForm) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// completeSignIn makes sure a backend profile exists for user before flipping
// the auth flag. Any failure signs the session back out.
func (f *authForm) completeSignIn(ctx context.Context, user session.User, email string) bool {
	logger := logging.FromContext(ctx).With("uid", user.UID)

	_, err := f.deps.Profiles.Get(ctx, user.UID)
	switch {
	case err == nil:
	case httpclient.IsNotFound(err):
		req := api.CreateProfileRequest{FirebaseUID: user.UID, Email: user.Email}
		if req.Email == "" {
			req.Email = email
		}
		req.FirstName, req.LastName = splitDisplayName(user.DisplayName)

		if _, err := f.deps.Profiles.Create(ctx, req); err != nil {
			logger.Error("profile creation failed", "error", err)
			f.signOut(ctx)
			f.deps.Alerts.Alert(ctx, TitleProfileCreation, backendMessage(err, "Could not create user profile. Please try again."))
			return false
		}
		logger.Info("profile created on first sign-in")
	default:
		logger.Error("profile retrieval failed", "error", err)
		f.signOut(ctx)
		f.deps.Alerts.Alert(ctx, TitleProfileError, backendMessage(err, "An error occurred while retrieving your profile. Please try again."))
		return false
	}

	f.deps.Auth.Login()
	return true
}

func (f *authForm) signOut(ctx context.Context) {
	if err := f.deps.Provider.SignOut(ctx); err != nil {
		logging.FromContext(ctx).Warn("sign out after failed sign-in", "error", err)
	}
}

// splitDisplayName returns the first two space-separated words of name.
func splitDisplayName(name string) (string, string) {
	parts := strings.Split(strings.TrimSpace(name), " ")
	first := parts[0]
	last := ""
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}

// LoginScreen signs an existing user in.
type LoginScreen struct {
	authForm

	Email    string
	Password string
	Errors   FieldErrors
}

// NewLoginScreen builds the login controller.
func NewLoginScreen(deps AuthDeps) *LoginScreen {
	return &LoginScreen{authForm: authForm{deps: deps}}
}

// Submit validates the form and, when valid, signs in. A submit while a
// previous attempt is still running is ignored and reports StateSubmitting.
func (s *LoginScreen) Submit(ctx context.Context) State {
	if !s.begin() {
		return StateSubmitting
	}

	s.Errors = ValidateCredentials(s.Email, s.Password)
	if !s.Errors.Valid() {
		return s.finish(StateIdle)
	}

	s.setState(StateSubmitting)
	email := strings.TrimSpace(s.Email)
	user, err := s.deps.Provider.SignIn(ctx, email, s.Password)
	if err != nil {
		logging.FromContext(ctx).Warn("sign in failed", "code", session.CodeOf(err), "error", err)
		s.deps.Alerts.Alert(ctx, TitleLoginFailed, LoginErrorMessage(err))
		return s.finish(StateFailed)
	}

	if !s.completeSignIn(ctx, user, email) {
		return s.finish(StateFailed)
	}
	return s.finish(StateSuccess)
}

// GoToSignup opens the signup screen.
func (s *LoginScreen) GoToSignup(ctx context.Context) error {
	return s.deps.Nav.Navigate(ctx, navigation.Signup)
}

// SignupScreen registers a new user.
type SignupScreen struct {
	authForm

	Email           string
	Password        string
	ConfirmPassword string
	Errors          FieldErrors
}

// NewSignupScreen builds the signup controller.
func NewSignupScreen(deps AuthDeps) *SignupScreen {
	return &SignupScreen{authForm: authForm{deps: deps}}
}

// Submit validates the form and, when valid, creates the account. The submit
// control is disabled while loading, so a second submit is ignored.
func (s *SignupScreen) Submit(ctx context.Context) State {
	if !s.begin() {
		return StateSubmitting
	}

	s.Errors = ValidateSignup(s.Email, s.Password, s.ConfirmPassword)
	if !s.Errors.Valid() {
		return s.finish(StateIdle)
	}

	s.setState(StateSubmitting)
	email := strings.TrimSpace(s.Email)
	user, err := s.deps.Provider.SignUp(ctx, email, s.Password)
	if err != nil {
		logging.FromContext(ctx).Warn("sign up failed", "code", session.CodeOf(err), "error", err)
		s.deps.Alerts.Alert(ctx, TitleSignupFailed, SignupErrorMessage(err))
		return s.finish(StateFailed)
	}

	if !s.completeSignIn(ctx, user, email) {
		return s.finish(StateFailed)
	}
	return s.finish(StateSuccess)
}

// GoToLogin opens the login screen.
func (s *SignupScreen) GoToLogin(ctx context.Context) error {
	return s.deps.Nav.Navigate(ctx, navigation.Login)
}
