package session

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/easyeats/easyeats/internal/identity"
)

// MinPasswordLength matches the identity provider's password policy.
const MinPasswordLength = 6

const localTokenTTL = time.Hour

type localAccount struct {
	uid          string
	email        string
	passwordHash []byte
}

// LocalProvider is an in-process identity provider for development against a
// backend running in local identity mode. It mints HS256 tokens the backend's
// HMAC verifier accepts.
type LocalProvider struct {
	secret  []byte
	store   Store
	nowFunc func() time.Time

	mu       sync.Mutex
	accounts map[string]localAccount
}

// NewLocalProvider constructs a provider signing tokens with secret.
func NewLocalProvider(secret []byte, store Store) *LocalProvider {
	if store == nil {
		store = NewMemoryStore()
	}
	return &LocalProvider{
		secret:   secret,
		store:    store,
		nowFunc:  time.Now,
		accounts: make(map[string]localAccount),
	}
}

// CurrentUser reports the signed-in user, if any.
func (p *LocalProvider) CurrentUser(ctx context.Context) (User, bool) {
	s, err := p.store.Load(ctx)
	if err != nil {
		return User{}, false
	}
	return s.User, true
}

// SignUp registers a new account and signs it in.
func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || strings.ContainsAny(email, " <>") {
		return User{}, &Error{Code: CodeInvalidEmail, Message: "invalid email"}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return User{}, &Error{Code: CodeWeakPassword, Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, &Error{Code: CodeInternal, Message: "hash password", Err: err}
	}

	p.mu.Lock()
	if _, exists := p.accounts[email]; exists {
		p.mu.Unlock()
		return User{}, &Error{Code: CodeEmailInUse, Message: "email already registered"}
	}
	account := localAccount{uid: uuid.NewString(), email: email, passwordHash: hash}
	p.accounts[email] = account
	p.mu.Unlock()

	return p.startSession(ctx, account)
}

// SignIn checks the password against a registered account.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)

	p.mu.Lock()
	account, ok := p.accounts[email]
	p.mu.Unlock()
	if !ok {
		return User{}, &Error{Code: CodeUserNotFound, Message: "no account for email"}
	}

	if err := bcrypt.CompareHashAndPassword(account.passwordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return User{}, &Error{Code: CodeWrongPassword, Message: "password mismatch"}
		}
		return User{}, &Error{Code: CodeInternal, Message: "compare password", Err: err}
	}

	return p.startSession(ctx, account)
}

// SignOut forgets the local session.
func (p *LocalProvider) SignOut(ctx context.Context) error {
	return p.store.Clear(ctx)
}

// Token returns the current ID token, minting a fresh one once it expires.
func (p *LocalProvider) Token(ctx context.Context) (string, error) {
	s, err := p.store.Load(ctx)
	if err != nil {
		return "", err
	}
	now := p.nowFunc()
	if now.Before(s.ExpiresAt) {
		return s.IDToken, nil
	}

	token, err := identity.IssueLocalToken(p.secret, identity.Claims{UID: s.UID, Email: s.Email, Name: s.DisplayName}, localTokenTTL, now)
	if err != nil {
		return "", &Error{Code: CodeInternal, Message: "issue token", Err: err}
	}
	s.IDToken = token
	s.ExpiresAt = now.Add(localTokenTTL)
	if err := p.store.Save(ctx, s); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return token, nil
}

// UpdatePassword replaces the signed-in account's password.
func (p *LocalProvider) UpdatePassword(ctx context.Context, newPassword string) error {
	s, err := p.store.Load(ctx)
	if err != nil {
		return err
	}
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return &Error{Code: CodeWeakPassword, Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return &Error{Code: CodeInternal, Message: "hash password", Err: err}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	account, ok := p.accounts[s.Email]
	if !ok || account.uid != s.UID {
		return &Error{Code: CodeTokenExpired, Message: "account no longer exists"}
	}
	account.passwordHash = hash
	p.accounts[s.Email] = account
	return nil
}

func (p *LocalProvider) startSession(ctx context.Context, account localAccount) (User, error) {
	now := p.nowFunc()
	user := User{UID: account.uid, Email: account.email}

	token, err := identity.IssueLocalToken(p.secret, identity.Claims{UID: user.UID, Email: user.Email}, localTokenTTL, now)
	if err != nil {
		return User{}, &Error{Code: CodeInternal, Message: "issue token", Err: err}
	}

	if err := p.store.Save(ctx, Session{User: user, IDToken: token, ExpiresAt: now.Add(localTokenTTL)}); err != nil {
		return User{}, fmt.Errorf("save session: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var (
	_ Provider        = (*LocalProvider)(nil)
	_ PasswordUpdater = (*LocalProvider)(nil)
)
