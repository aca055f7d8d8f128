// Package screens holds the controllers behind each client screen. A controller
// owns its form and view state, validates input, calls the identity provider or
// an API facade, and reports outcomes through an Alerter and a Navigator.
//
// Controllers are driven by one caller at a time. Discover is the exception: its
// list and details requests may finish concurrently, so it guards its state.
package screens

import (
	"context"
	"strings"

	"github.com/easyeats/easyeats/internal/client/api"
	"github.com/easyeats/easyeats/internal/client/httpclient"
	"github.com/easyeats/easyeats/internal/client/navigation"
	"github.com/easyeats/easyeats/internal/logging"
)

// Alerter shows a modal dialog.
type Alerter interface {
	Alert(ctx context.Context, title, message string)
}

// Navigator moves between screens.
type Navigator interface {
	Navigate(ctx context.Context, screen navigation.Screen) error
	GoBack(ctx context.Context) bool
}

// ProfileAPI is the profile facade.
type ProfileAPI interface {
	Create(ctx context.Context, req api.CreateProfileRequest) (api.Profile, error)
	Get(ctx context.Context, uid string) (api.Profile, error)
	Update(ctx context.Context, uid string, form *httpclient.Multipart) (api.Profile, error)
}

// RecipeAPI is the recipe facade.
type RecipeAPI interface {
	Mine(ctx context.Context) ([]api.Recipe, error)
	Create(ctx context.Context, form *httpclient.Multipart) (api.Recipe, error)
}

// LogAlerter writes alerts to the context logger. It backs headless clients.
type LogAlerter struct{}

// Alert implements Alerter.
func (LogAlerter) Alert(ctx context.Context, title, message string) {
	logging.FromContext(ctx).Info("alert", "title", title, "message", message)
}

// ResolveImageURL turns a server-relative media path into an absolute URL under
// baseURL. Absolute URLs and empty references are returned unchanged.
func ResolveImageURL(baseURL, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	base := strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return base + ref
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
