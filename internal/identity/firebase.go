package identity

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GoogleCertsURL publishes the x509 certificates that sign Firebase ID tokens.
const GoogleCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

const defaultKeyTTL = time.Hour

type firebaseClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// FirebaseVerifier validates Firebase Authentication ID tokens for a single project.
type FirebaseVerifier struct {
	ProjectID string
	CertsURL  string
	Client    *http.Client
	NowFunc   func() time.Time

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
}

// NewFirebaseVerifier constructs a verifier for the given Firebase project.
func NewFirebaseVerifier(projectID string) *FirebaseVerifier {
	return &FirebaseVerifier{
		ProjectID: projectID,
		CertsURL:  GoogleCertsURL,
		Client:    http.DefaultClient,
		NowFunc:   time.Now,
	}
}

// Verify implements Verifier.
func (v *FirebaseVerifier) Verify(ctx context.Context, raw string) (Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return Claims{}, ErrMissingToken
	}

	keys, err := v.publicKeys(ctx)
	if err != nil {
		return Claims{}, err
	}

	claims := &firebaseClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		key, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("unknown key id %q", kid)
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.ProjectID),
		jwt.WithIssuer("https://securetoken.google.com/"+v.ProjectID),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	return Claims{UID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

func (v *FirebaseVerifier) publicKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	now := v.now()

	v.mu.RLock()
	keys, expires := v.keys, v.expires
	v.mu.RUnlock()
	if keys != nil && now.Before(expires) {
		return keys, nil
	}

	keys, ttl, err := v.fetchKeys(ctx)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.keys = keys
	v.expires = now.Add(ttl)
	v.mu.Unlock()

	return keys, nil
}

func (v *FirebaseVerifier) fetchKeys(ctx context.Context) (map[string]*rsa.PublicKey, time.Duration, error) {
	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.CertsURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrKeysUnavailable, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrKeysUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, 0, fmt.Errorf("%w: status %d", ErrKeysUnavailable, resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return nil, 0, fmt.Errorf("%w: decode certificates: %v", ErrKeysUnavailable, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, certPEM := range certs {
		key, err := parseCertificateKey(certPEM)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: key %s: %v", ErrKeysUnavailable, kid, err)
		}
		keys[kid] = key
	}
	if len(keys) == 0 {
		return nil, 0, fmt.Errorf("%w: no certificates published", ErrKeysUnavailable)
	}

	return keys, maxAge(resp.Header.Get("Cache-Control")), nil
}

func parseCertificateKey(certPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("certificate does not hold an RSA key")
	}
	return key, nil
}

func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(directive)
		value, ok := strings.CutPrefix(directive, "max-age=")
		if !ok {
			continue
		}
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds <= 0 {
			break
		}
		return time.Duration(seconds) * time.Second
	}
	return defaultKeyTTL
}

func (v *FirebaseVerifier) now() time.Time {
	if v.NowFunc != nil {
		return v.NowFunc()
	}
	return time.Now()
}
