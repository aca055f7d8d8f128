package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	"github.com/easyeats/easyeats/internal/logging"
)

// Firebase Authentication REST endpoints.
const (
	DefaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	DefaultSecureTokenURL     = "https://securetoken.googleapis.com/v1"
)

// tokenRefreshSkew refreshes ID tokens slightly before they expire.
const tokenRefreshSkew = time.Minute

var restErrorCodes = map[string]string{
	"EMAIL_NOT_FOUND":                 CodeUserNotFound,
	"INVALID_PASSWORD":                CodeWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":       CodeInvalidCredential,
	"INVALID_EMAIL":                   CodeInvalidEmail,
	"MISSING_EMAIL":                   CodeInvalidEmail,
	"USER_DISABLED":                   CodeUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER":     CodeTooManyRequests,
	"EMAIL_EXISTS":                    CodeEmailInUse,
	"WEAK_PASSWORD":                   CodeWeakPassword,
	"MISSING_PASSWORD":                CodeWrongPassword,
	"CREDENTIAL_TOO_OLD_LOGIN_AGAIN":  CodeRequiresRecentLogin,
	"TOKEN_EXPIRED":                   CodeTokenExpired,
	"INVALID_REFRESH_TOKEN":           CodeTokenExpired,
	"USER_NOT_FOUND":                  CodeTokenExpired,
	"INVALID_ID_TOKEN":                CodeInvalidToken,
	"INVALID_GRANT_TYPE":              CodeInternal,
	"MISSING_REFRESH_TOKEN":           CodeInternal,
	"OPERATION_NOT_ALLOWED":           CodeInternal,
	"PROJECT_NOT_FOUND":               CodeInternal,
	"API_KEY_INVALID":                 CodeInternal,
	"PASSWORD_LOGIN_DISABLED":         CodeInternal,
}

// FirebaseProvider signs users in through the Firebase Authentication REST API.
type FirebaseProvider struct {
	APIKey         string
	IdentityURL    string
	SecureTokenURL string
	HTTP           *http.Client
	Store          Store
	NowFunc        func() time.Time

	refresh singleflight.Group
}

// NewFirebaseProvider returns a provider for the project owning apiKey, keeping the
// session in store (a MemoryStore when nil).
func NewFirebaseProvider(apiKey string, store Store) *FirebaseProvider {
	if store == nil {
		store = NewMemoryStore()
	}
	return &FirebaseProvider{
		APIKey:         apiKey,
		IdentityURL:    DefaultIdentityToolkitURL,
		SecureTokenURL: DefaultSecureTokenURL,
		HTTP:           &http.Client{Timeout: 15 * time.Second},
		Store:          store,
		NowFunc:        time.Now,
	}
}

// CurrentUser reports the signed-in user, if any.
func (p *FirebaseProvider) CurrentUser(ctx context.Context) (User, bool) {
	s, err := p.Store.Load(ctx)
	if err != nil {
		return User{}, false
	}
	return s.User, true
}

// SignIn exchanges email and password for a session.
func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (User, error) {
	return p.passwordAuth(ctx, "accounts:signInWithPassword", email, password)
}

// SignUp creates an account and signs it in.
func (p *FirebaseProvider) SignUp(ctx context.Context, email, password string) (User, error) {
	return p.passwordAuth(ctx, "accounts:signUp", email, password)
}

// SignOut forgets the local session.
func (p *FirebaseProvider) SignOut(ctx context.Context) error {
	logging.FromContext(ctx).Info("signing out")
	return p.Store.Clear(ctx)
}

// Token returns a valid ID token, refreshing it when it is about to expire.
// Concurrent callers share a single refresh request.
func (p *FirebaseProvider) Token(ctx context.Context) (string, error) {
	s, err := p.Store.Load(ctx)
	if err != nil {
		return "", err
	}
	if p.fresh(s) {
		return s.IDToken, nil
	}

	v, err, _ := p.refresh.Do(s.RefreshToken, func() (any, error) {
		// A flight that finished just before this one may already have rotated the token.
		if latest, err := p.Store.Load(ctx); err == nil && p.fresh(latest) {
			return latest, nil
		}
		return p.refreshSession(ctx, s)
	})
	if err != nil {
		return "", err
	}
	return v.(Session).IDToken, nil
}

// UpdatePassword changes the signed-in user's password. Firebase rotates the
// tokens on success.
func (p *FirebaseProvider) UpdatePassword(ctx context.Context, newPassword string) error {
	token, err := p.Token(ctx)
	if err != nil {
		return err
	}
	current, err := p.Store.Load(ctx)
	if err != nil {
		return err
	}

	var resp passwordAuthResponse
	if err := p.postJSON(ctx, p.IdentityURL+"/accounts:update", map[string]any{
		"idToken":           token,
		"password":          newPassword,
		"returnSecureToken": true,
	}, &resp); err != nil {
		return err
	}

	next := current
	if resp.IDToken != "" {
		next.IDToken = resp.IDToken
		next.RefreshToken = resp.RefreshToken
		next.ExpiresAt = p.now().Add(expiresIn(resp.ExpiresIn))
	}
	return p.Store.Save(ctx, next)
}

func (p *FirebaseProvider) passwordAuth(ctx context.Context, endpoint, email, password string) (User, error) {
	var resp passwordAuthResponse
	if err := p.postJSON(ctx, p.IdentityURL+"/"+endpoint, map[string]any{
		"email":             strings.TrimSpace(email),
		"password":          password,
		"returnSecureToken": true,
	}, &resp); err != nil {
		return User{}, err
	}

	s := Session{
		User:         User{UID: resp.LocalID, Email: resp.Email, DisplayName: resp.DisplayName},
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    p.now().Add(expiresIn(resp.ExpiresIn)),
	}
	if s.UID == "" || s.IDToken == "" {
		return User{}, &Error{Code: CodeInternal, Message: "incomplete sign-in response"}
	}
	if err := p.Store.Save(ctx, s); err != nil {
		return User{}, fmt.Errorf("save session: %w", err)
	}
	return s.User, nil
}

func (p *FirebaseProvider) refreshSession(ctx context.Context, s Session) (Session, error) {
	ctx, span := logging.StartSpan(ctx, "refresh id token")
	defer span.End()

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", s.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.SecureTokenURL+"/token?key="+url.QueryEscape(p.APIKey), strings.NewReader(form.Encode()))
	if err != nil {
		span.Fail(err)
		return Session{}, &Error{Code: CodeInternal, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp refreshResponse
	if err := p.do(req, &resp); err != nil {
		span.Fail(err)
		if CodeOf(err) == CodeTokenExpired {
			_ = p.Store.Clear(ctx)
		}
		return Session{}, err
	}

	s.IDToken = resp.IDToken
	s.RefreshToken = resp.RefreshToken
	s.ExpiresAt = p.now().Add(expiresIn(resp.ExpiresIn))
	if err := p.Store.Save(ctx, s); err != nil {
		span.Fail(err)
		return Session{}, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

func (p *FirebaseProvider) postJSON(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Code: CodeInternal, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?key="+url.QueryEscape(p.APIKey), bytes.NewReader(body))
	if err != nil {
		return &Error{Code: CodeInternal, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return p.do(req, out)
}

func (p *FirebaseProvider) do(req *http.Request, out any) error {
	client := p.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return &Error{Code: CodeNetwork, Message: "network error", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &Error{Code: CodeNetwork, Message: "read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return restError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Code: CodeInternal, Message: "decode response", Err: err}
	}
	return nil
}

// restError maps the REST API error envelope to a provider Error. Messages may
// carry a detail suffix, as in "WEAK_PASSWORD : Password should be at least 6 characters".
func restError(status int, body []byte) error {
	message := gjson.GetBytes(body, "error.message").String()
	key, detail, _ := strings.Cut(message, ":")
	key = strings.TrimSpace(key)

	code, ok := restErrorCodes[key]
	if !ok {
		code = CodeInternal
	}
	if key == "" {
		key = http.StatusText(status)
	}
	if detail = strings.TrimSpace(detail); detail != "" {
		key = key + ": " + detail
	}
	return &Error{Code: code, Message: key, Err: errors.New("status " + strconv.Itoa(status))}
}

func (p *FirebaseProvider) fresh(s Session) bool {
	return p.now().Add(tokenRefreshSkew).Before(s.ExpiresAt)
}

func expiresIn(seconds string) time.Duration {
	n, err := strconv.Atoi(seconds)
	if err != nil || n <= 0 {
		return time.Hour
	}
	return time.Duration(n) * time.Second
}

func (p *FirebaseProvider) now() time.Time {
	if p.NowFunc != nil {
		return p.NowFunc()
	}
	return time.Now()
}

type passwordAuthResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

var (
	_ Provider        = (*FirebaseProvider)(nil)
	_ PasswordUpdater = (*FirebaseProvider)(nil)
)
