// Package navigation implements the root screen stack. The set of reachable
// screens depends on whether a user is signed in; every auth change resets the
// stack to the first screen of the newly active set.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/easyeats/easyeats/internal/client/authstate"
	"github.com/easyeats/easyeats/internal/logging"
)

// Screen names a destination.
type Screen string

const (
	Started     Screen = "Started"
	Login       Screen = "Login"
	Signup      Screen = "Signup"
	Home        Screen = "Home"
	Discover    Screen = "Discover"
	Favorites   Screen = "Favorites"
	Chat        Screen = "Chat"
	Profile     Screen = "Profile"
	EditProfile Screen = "EditProfile"
	AddRecipe   Screen = "AddRecipe"
)

// ErrScreenUnavailable is returned when navigating outside the active screen set.
var ErrScreenUnavailable = errors.New("screen not available in current auth state")

// PublicScreens are reachable while signed out.
func PublicScreens() []Screen { return []Screen{Started, Login, Signup} }

// PrivateScreens are reachable while signed in.
func PrivateScreens() []Screen {
	return []Screen{Home, Discover, Favorites, Chat, Profile, EditProfile, AddRecipe}
}

// FocusFunc runs whenever its screen becomes the top of the stack.
type FocusFunc func(ctx context.Context)

// Root owns the navigation stack.
type Root struct {
	auth authstate.Reader

	mu            sync.Mutex
	authenticated bool
	stack         []Screen
	focus         map[Screen][]FocusFunc
	changed       chan struct{}
}

// NewRoot returns a root showing the signed-out set.
func NewRoot(auth authstate.Reader) *Root {
	return &Root{
		auth:    auth,
		stack:   []Screen{Started},
		focus:   make(map[Screen][]FocusFunc),
		changed: make(chan struct{}),
	}
}

// Run follows the auth store until ctx is done.
func (r *Root) Run(ctx context.Context) {
	for authenticated := range r.auth.Subscribe(ctx) {
		r.apply(ctx, authenticated)
	}
}

// OnFocus registers fn for screen.
func (r *Root) OnFocus(screen Screen, fn FocusFunc) {
	r.mu.Lock()
	r.focus[screen] = append(r.focus[screen], fn)
	r.mu.Unlock()
}

// Current returns the top of the stack.
func (r *Root) Current() Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stack[len(r.stack)-1]
}

// Stack returns a copy of the stack, bottom first.
func (r *Root) Stack() []Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.stack)
}

// Authenticated reports which screen set is active.
func (r *Root) Authenticated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.authenticated
}

// Changed returns a channel closed on the next stack change.
func (r *Root) Changed() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changed
}

// Navigate pushes screen. It fails when screen is outside the active set.
func (r *Root) Navigate(ctx context.Context, screen Screen) error {
	r.mu.Lock()
	if !slices.Contains(r.activeSet(), screen) {
		authenticated := r.authenticated
		r.mu.Unlock()
		return fmt.Errorf("%w: %s (authenticated=%t)", ErrScreenUnavailable, screen, authenticated)
	}
	r.stack = append(r.stack, screen)
	hooks := r.notifyLocked(screen)
	r.mu.Unlock()

	logging.FromContext(ctx).Debug("navigated", "screen", screen)
	runHooks(ctx, hooks)
	return nil
}

// GoBack pops the stack. It reports false when already at the root screen.
func (r *Root) GoBack(ctx context.Context) bool {
	r.mu.Lock()
	if len(r.stack) <= 1 {
		r.mu.Unlock()
		return false
	}
	r.stack = r.stack[:len(r.stack)-1]
	top := r.stack[len(r.stack)-1]
	hooks := r.notifyLocked(top)
	r.mu.Unlock()

	runHooks(ctx, hooks)
	return true
}

func (r *Root) apply(ctx context.Context, authenticated bool) {
	r.mu.Lock()
	r.authenticated = authenticated
	first := r.activeSet()[0]
	r.stack = []Screen{first}
	hooks := r.notifyLocked(first)
	r.mu.Unlock()

	logging.FromContext(ctx).Info("screen set changed", "authenticated", authenticated, "screen", first)
	runHooks(ctx, hooks)
}

func (r *Root) activeSet() []Screen {
	if r.authenticated {
		return PrivateScreens()
	}
	return PublicScreens()
}

// notifyLocked wakes Changed waiters and returns the focus hooks for top.
func (r *Root) notifyLocked(top Screen) []FocusFunc {
	close(r.changed)
	r.changed = make(chan struct{})
	return slices.Clone(r.focus[top])
}

func runHooks(ctx context.Context, hooks []FocusFunc) {
	for _, fn := range hooks {
		fn(ctx)
	}
}
