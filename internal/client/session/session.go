// Package session models the identity provider the client signs users in with.
// Screens and the HTTP client depend only on Provider so tests can substitute it.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoSession is returned when an operation needs a signed-in user and there is none.
var ErrNoSession = errors.New("no active session")

// Identity provider error codes surfaced to screens.
const (
	CodeInvalidEmail        = "auth/invalid-email"
	CodeInvalidCredential   = "auth/invalid-credential"
	CodeTooManyRequests     = "auth/too-many-requests"
	CodeUserNotFound        = "auth/user-not-found"
	CodeWrongPassword       = "auth/wrong-password"
	CodeUserDisabled        = "auth/user-disabled"
	CodeEmailInUse          = "auth/email-already-in-use"
	CodeWeakPassword        = "auth/weak-password"
	CodeRequiresRecentLogin = "auth/requires-recent-login"
	CodeTokenExpired        = "auth/user-token-expired"
	CodeInvalidToken        = "auth/invalid-user-token"
	CodeNetwork             = "auth/network-request-failed"
	CodeInternal            = "auth/internal-error"
)

// Error is an identity provider failure carrying one of the Code constants.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the provider error code from err, or "" when err is not an *Error.
func CodeOf(err error) string {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ""
}

// User is the signed-in identity.
type User struct {
	UID         string
	Email       string
	DisplayName string
}

// Provider is the capability set the client needs from an identity provider.
type Provider interface {
	CurrentUser(ctx context.Context) (User, bool)
	Token(ctx context.Context) (string, error)
	SignIn(ctx context.Context, email, password string) (User, error)
	SignUp(ctx context.Context, email, password string) (User, error)
	SignOut(ctx context.Context) error
}

// PasswordUpdater is implemented by providers that can change the signed-in
// user's password.
type PasswordUpdater interface {
	UpdatePassword(ctx context.Context, newPassword string) error
}

// Session is the persisted sign-in state.
type Session struct {
	User
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// Store persists the current session between provider calls.
type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}
