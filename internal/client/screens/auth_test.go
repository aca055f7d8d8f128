package screens

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyeats/easyeats/internal/client/api"
	"github.com/easyeats/easyeats/internal/client/authstate"
	"github.com/easyeats/easyeats/internal/client/httpclient"
	"github.com/easyeats/easyeats/internal/client/session"
)

func TestValidateCredentialsRejectsMalformedEmails(t *testing.T) {
	for _, email := range []string{"plainaddress", "user@domain", "user.domain.com", "@domain.com", "user@.com", "us er@domain.com", "user@@domain.com"} {
		errs := ValidateCredentials(email, "abcdef")
		assert.Equal(t, ErrEmailInvalid, errs.Email, email)
		assert.False(t, errs.Valid(), email)
	}

	errs := ValidateCredentials("   ", "abcdef")
	assert.Equal(t, ErrEmailRequired, errs.Email)

	errs = ValidateCredentials("  user@test.com  ", "abcdef")
	assert.True(t, errs.Valid())
}

func TestValidateCredentialsPasswordLength(t *testing.T) {
	assert.Equal(t, ErrPasswordRequired, ValidateCredentials("user@test.com", "").Password)
	for _, pw := range []string{"a", "abcd", "abcde", "ééé", "日本語", "🍲🍲🍲🍲🍲"} {
		assert.Equal(t, ErrPasswordTooShort, ValidateCredentials("user@test.com", pw).Password, pw)
	}
	for _, pw := range []string{"abcdef", "éééééé", "🍲🍲🍲🍲🍲🍲"} {
		assert.Empty(t, ValidateCredentials("user@test.com", pw).Password, pw)
	}
}

func TestValidateSignupConfirmation(t *testing.T) {
	assert.Equal(t, ErrConfirmRequired, ValidateSignup("user@test.com", "abcdef", "").ConfirmPassword)
	assert.Equal(t, ErrPasswordsDoNotMatch, ValidateSignup("user@test.com", "abcdef", "abcdeg").ConfirmPassword)
	assert.True(t, ValidateSignup("user@test.com", "abcdef", "abcdef").Valid())
}

func newAuthDeps(provider *stubProvider, profiles *stubProfiles) (AuthDeps, *recordingAuth, *recordingAlerter) {
	auth := &recordingAuth{profiles: profiles}
	alerts := &recordingAlerter{}
	return AuthDeps{Provider: provider, Profiles: profiles, Auth: auth, Alerts: alerts, Nav: &recordingNav{}}, auth, alerts
}

func TestInvalidFormsNeverReachTheProvider(t *testing.T) {
	ctx := context.Background()
	provider := &stubProvider{user: session.User{UID: "u1"}}
	deps, auth, _ := newAuthDeps(provider, &stubProfiles{})

	login := NewLoginScreen(deps)
	login.Email, login.Password = "user@test", "abcdef"
	assert.Equal(t, StateIdle, login.Submit(ctx))
	assert.Equal(t, ErrEmailInvalid, login.Errors.Email)

	login.Email, login.Password = "user@test.com", "abc"
	assert.Equal(t, StateIdle, login.Submit(ctx))
	assert.Equal(t, ErrPasswordTooShort, login.Errors.Password)

	signup := NewSignupScreen(deps)
	signup.Email, signup.Password, signup.ConfirmPassword = "user@test.com", "abcdef", "fedcba"
	assert.Equal(t, StateIdle, signup.Submit(ctx))
	assert.Equal(t, ErrPasswordsDoNotMatch, signup.Errors.ConfirmPassword)

	assert.Zero(t, provider.signIns)
	assert.Zero(t, provider.signUps)
	assert.Zero(t, auth.logins)
}

func TestLoginWithExistingProfile(t *testing.T) {
	ctx := context.Background()
	provider := &stubProvider{user: session.User{UID: "u1", Email: "user@test.com"}}
	profiles := &stubProfiles{profile: api.Profile{FirebaseUID: "u1"}}
	deps, auth, alerts := newAuthDeps(provider, profiles)

	store := authstate.New()
	deps.Auth = authMirror{recordingAuth: auth, store: store}

	login := NewLoginScreen(deps)
	login.Email, login.Password = "user@test.com", "abcdef"

	assert.Equal(t, StateSuccess, login.Submit(ctx))
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, []string{"get:u1"}, profiles.calls)
	assert.Empty(t, profiles.created)
	assert.Empty(t, alerts.alerts)
	assert.Equal(t, StateSuccess, login.State())
}

// authMirror forwards to both a recorder and a real store.
type authMirror struct {
	*recordingAuth
	store *authstate.Store
}

func (m authMirror) Login()  { m.recordingAuth.Login(); m.store.Login() }
func (m authMirror) Logout() { m.recordingAuth.Logout(); m.store.Logout() }

func TestLoginCreatesMissingProfileBeforeLogin(t *testing.T) {
	ctx := context.Background()
	provider := &stubProvider{user: session.User{UID: "u1", Email: "user@test.com", DisplayName: "Ada Lovelace King"}}
	profiles := &stubProfiles{getErr: responseError(http.StatusNotFound, `{"error":"Profile not found"}`)}
	deps, auth, _ := newAuthDeps(provider, profiles)

	login := NewLoginScreen(deps)
	login.Email, login.Password = "user@test.com", "abcdef"

	assert.Equal(t, StateSuccess, login.Submit(ctx))
	require.Len(t, profiles.created, 1)
	assert.Equal(t, api.CreateProfileRequest{FirebaseUID: "u1", Email: "user@test.com", FirstName: "Ada", LastName: "Lovelace"}, profiles.created[0])
	assert.Equal(t, 1, auth.logins)
	assert.Equal(t, []string{"get:u1", "create"}, auth.callsAtLogin)
}

func TestProfileFetchFailureSignsOut(t *testing.T) {
	ctx := context.Background()
	provider := &stubProvider{user: session.User{UID: "u1", Email: "user@test.com"}}
	profiles := &stubProfiles{getErr: responseError(http.StatusInternalServerError, `{"error":"database down"}`)}
	deps, auth, alerts := newAuthDeps(provider, profiles)

	login := NewLoginScreen(deps)
	login.Email, login.Password = "user@test.com", "abcdef"

	assert.Equal(t, StateFailed, login.Submit(ctx))
	assert.Zero(t, auth.logins)
	assert.Equal(t, 1, provider.signOuts)
	_, signedIn := provider.CurrentUser(ctx)
	assert.False(t, signedIn)
	assert.Equal(t, alert{TitleProfileError, "database down"}, alerts.last())
	assert.Empty(t, profiles.created)
}

func TestProfileCreationFailureSignsOut(t *testing.T) {
	ctx := context.Background()
	provider := &stubProvider{user: session.User{UID: "u1", Email: "user@test.com"}}
	profiles := &stubProfiles{
		getErr:    responseError(http.StatusNotFound, `{"error":"Profile not found"}`),
		createErr: &httpclient.Error{Kind: httpclient.KindNetwork, Err: errors.New("connection refused")},
	}
	deps, auth, alerts := newAuthDeps(provider, profiles)

	signup := NewSignupScreen(deps)
	signup.Email, signup.Password, signup.ConfirmPassword = "user@test.com", "abcdef", "abcdef"

	assert.Equal(t, StateFailed, signup.Submit(ctx))
	assert.Zero(t, auth.logins)
	assert.Equal(t, 1, provider.signOuts)
	assert.Equal(t, alert{TitleProfileCreation, MessageNetwork}, alerts.last())
}

func TestLoginProviderErrorMessages(t *testing.T) {
	cases := map[string]string{
		session.CodeInvalidEmail:      "Please enter a valid email address.",
		session.CodeInvalidCredential: "Invalid email or password.",
		session.CodeTooManyRequests:   "Too many failed attempts. Please try again later.",
		session.CodeUserNotFound:      "No account found with this email.",
		session.CodeWrongPassword:     "Incorrect password.",
		session.CodeInternal:          "An error occurred during login. Please try again.",
	}
	for code, want := range cases {
		provider := &stubProvider{err: &session.Error{Code: code}}
		profiles := &stubProfiles{}
		deps, auth, alerts := newAuthDeps(provider, profiles)

		login := NewLoginScreen(deps)
		login.Email, login.Password = "user@test.com", "abcdef"

		assert.Equal(t, StateFailed, login.Submit(context.Background()), code)
		assert.Equal(t, alert{TitleLoginFailed, want}, alerts.last(), code)
		assert.Zero(t, auth.logins)
		assert.Empty(t, profiles.calls)
	}
}

func TestSignupIgnoresSubmitWhileLoading(t *testing.T) {
	ctx := context.Background()
	provider := &stubProvider{user: session.User{UID: "u1", Email: "user@test.com"}, block: make(chan struct{})}
	deps, auth, _ := newAuthDeps(provider, &stubProfiles{})

	signup := NewSignupScreen(deps)
	signup.Email, signup.Password, signup.ConfirmPassword = "user@test.com", "abcdef", "abcdef"

	done := make(chan State, 1)
	go func() { done <- signup.Submit(ctx) }()

	require.Eventually(t, signup.Loading, time.Second, time.Millisecond)
	assert.Equal(t, StateSubmitting, signup.Submit(ctx))

	close(provider.block)
	assert.Equal(t, StateSuccess, <-done)
	assert.Equal(t, 1, provider.signUps)
	assert.Equal(t, 1, auth.logins)
	assert.False(t, signup.Loading())
}

func TestSplitDisplayName(t *testing.T) {
	first, last := splitDisplayName("")
	assert.Equal(t, "", first)
	assert.Equal(t, "", last)

	first, last = splitDisplayName("Ada")
	assert.Equal(t, "Ada", first)
	assert.Equal(t, "", last)
}
