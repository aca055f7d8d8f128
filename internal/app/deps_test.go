package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/easyeats/easyeats/internal/client"
	"github.com/easyeats/easyeats/internal/client/cli"
	"github.com/easyeats/easyeats/internal/config"
	"github.com/easyeats/easyeats/internal/identity"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Ping(context.Context) error { return nil }

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		Identity:    config.IdentityConfig{Mode: config.IdentityModeFirebase, FirebaseProjectID: "easyeats-test"},
		ObjectStore: config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"},
		RateLimit:   config.RateLimitConfig{Requests: 10},
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	deps, err := buildDependencies(context.Background(), fakePool{}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deps.DB == nil {
		t.Fatal("expected database pinger to be configured")
	}
	if _, ok := deps.Verifier.(*identity.FirebaseVerifier); !ok {
		t.Fatalf("expected firebase verifier, got %T", deps.Verifier)
	}
	if deps.Profiles == nil {
		t.Fatal("expected profile repository to be configured")
	}
	if deps.Recipes == nil {
		t.Fatal("expected recipe repository to be configured")
	}
	if deps.Images == nil {
		t.Fatal("expected image storage to be configured")
	}
	if deps.Limiter == nil {
		t.Fatal("expected rate limiter to be configured")
	}
}

func TestBuildDependenciesWithoutObjectStore(t *testing.T) {
	cfg := config.Config{
		Identity: config.IdentityConfig{Mode: config.IdentityModeLocal, LocalSecret: "0123456789abcdef"},
	}

	deps, err := buildDependencies(context.Background(), fakePool{}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deps.Images != nil {
		t.Fatalf("expected no image storage, got %T", deps.Images)
	}
	if _, ok := deps.Verifier.(*identity.HMACVerifier); !ok {
		t.Fatalf("expected hmac verifier, got %T", deps.Verifier)
	}
}

func TestBuildDependenciesRejectsUnknownIdentityMode(t *testing.T) {
	_, err := buildDependencies(context.Background(), fakePool{}, config.Config{Identity: config.IdentityConfig{Mode: "saml"}})
	if err == nil {
		t.Fatal("expected error for unknown identity mode")
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := Run(context.Background(), nil); err == nil {
		t.Fatal("expected error without a command")
	}
	if err := Run(context.Background(), []string{"bogus"}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestSeedFileName(t *testing.T) {
	cases := map[string]string{
		"dev":          "dev_seed.sql",
		"demo.sql":     "demo.sql",
		"dev_seed.sql": "dev_seed.sql",
	}
	for in, want := range cases {
		if got := seedFileName(in); got != want {
			t.Errorf("seedFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClientShellDrivesNavigation(t *testing.T) {
	var out bytes.Buffer
	a, err := client.New(config.ClientConfig{APIURL: "http://127.0.0.1:1", LocalSecret: "0123456789abcdef"},
		client.WithAlerter(cli.Alerter{Out: &out}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := shell(context.Background(), a, strings.NewReader("screen\nhelp\nexit\n"), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"easyeats [Started]> ", "Started (stack: Started)", "commands: signup, login", "Bye!"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output %q missing %q", out.String(), want)
		}
	}
}
