package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestLocalTokenRoundTrip(t *testing.T) {
	now := time.Now()
	token, err := IssueLocalToken(testSecret, Claims{UID: "uid-1", Email: "cook@example.com", Name: "Ada Cook"}, time.Hour, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := NewHMACVerifier(testSecret).Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UID != "uid-1" || claims.Email != "cook@example.com" || claims.Name != "Ada Cook" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestLocalTokenRejections(t *testing.T) {
	now := time.Now()
	expired, err := IssueLocalToken(testSecret, Claims{UID: "uid-1"}, -time.Minute, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	foreign, err := IssueLocalToken([]byte("another-secret-another-secret!!"), Claims{UID: "uid-1"}, time.Hour, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	verifier := NewHMACVerifier(testSecret)
	for name, token := range map[string]string{"expired": expired, "foreign": foreign, "garbage": "abc.def.ghi"} {
		if _, err := verifier.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected invalid token got %v", name, err)
		}
	}

	if _, err := verifier.Verify(context.Background(), " "); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token got %v", err)
	}

	if _, err := IssueLocalToken(testSecret, Claims{}, time.Hour, now); err == nil {
		t.Fatal("expected error for empty uid")
	}
}

func TestFirebaseVerifier(t *testing.T) {
	key, certPEM := newSigningCert(t)

	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Header().Set("Cache-Control", "public, max-age=600, must-revalidate")
		_ = json.NewEncoder(w).Encode(map[string]string{"kid-1": certPEM})
	}))
	defer srv.Close()

	verifier := NewFirebaseVerifier("easyeats-test")
	verifier.CertsURL = srv.URL
	verifier.Client = srv.Client()

	now := time.Now()
	valid := signFirebaseToken(t, key, "kid-1", jwt.MapClaims{
		"iss":   "https://securetoken.google.com/easyeats-test",
		"aud":   "easyeats-test",
		"sub":   "firebase-uid",
		"email": "cook@example.com",
		"iat":   now.Add(-time.Minute).Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})

	claims, err := verifier.Verify(context.Background(), valid)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UID != "firebase-uid" || claims.Email != "cook@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := verifier.Verify(context.Background(), valid); err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if got := fetches.Load(); got != 1 {
		t.Fatalf("expected certificates to be cached, fetched %d times", got)
	}

	wrongAudience := signFirebaseToken(t, key, "kid-1", jwt.MapClaims{
		"iss": "https://securetoken.google.com/other",
		"aud": "other",
		"sub": "firebase-uid",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})
	if _, err := verifier.Verify(context.Background(), wrongAudience); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for wrong audience got %v", err)
	}

	unknownKid := signFirebaseToken(t, key, "kid-2", jwt.MapClaims{
		"iss": "https://securetoken.google.com/easyeats-test",
		"aud": "easyeats-test",
		"sub": "firebase-uid",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})
	if _, err := verifier.Verify(context.Background(), unknownKid); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for unknown kid got %v", err)
	}
}

func TestFirebaseVerifierKeysUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	verifier := NewFirebaseVerifier("easyeats-test")
	verifier.CertsURL = srv.URL

	if _, err := verifier.Verify(context.Background(), "a.b.c"); !errors.Is(err, ErrKeysUnavailable) {
		t.Fatalf("expected keys unavailable got %v", err)
	}
}

func TestMaxAge(t *testing.T) {
	cases := map[string]time.Duration{
		"public, max-age=19990, must-revalidate": 19990 * time.Second,
		"no-cache":                              defaultKeyTTL,
		"max-age=abc":                           defaultKeyTTL,
		"":                                      defaultKeyTTL,
	}
	for header, want := range cases {
		if got := maxAge(header); got != want {
			t.Fatalf("maxAge(%q) = %v want %v", header, got, want)
		}
	}
}

func TestClaimsContext(t *testing.T) {
	if _, ok := ClaimsFromContext(context.Background()); ok {
		t.Fatal("expected no claims on empty context")
	}
	ctx := WithClaims(context.Background(), Claims{UID: "uid-1"})
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims.UID != "uid-1" {
		t.Fatalf("unexpected claims %+v ok=%v", claims, ok)
	}
}

func newSigningCert(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "securetoken.system.gserviceaccount.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}

func signFirebaseToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
