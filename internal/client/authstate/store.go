// Package authstate holds the client's single "is a user logged in" flag.
//
// The Store is owned by the client root. Screens receive it as a Mutator; the
// navigation root receives it as a Reader and subscribes to changes.
package authstate

import (
	"context"
	"sync"
)

// Reader exposes the flag without the ability to change it.
type Reader interface {
	IsAuthenticated() bool
	Subscribe(ctx context.Context) <-chan bool
}

// Mutator is the only write API.
type Mutator interface {
	Login()
	Logout()
}

// Store is the authentication flag plus its subscribers. The zero value is not
// usable; construct with New. A Store starts unauthenticated and is never persisted.
type Store struct {
	mu            sync.RWMutex
	authenticated bool
	subscribers   map[*subscriber]struct{}
}

// New returns an unauthenticated store.
func New() *Store {
	return &Store{subscribers: make(map[*subscriber]struct{})}
}

// IsAuthenticated reports the current value.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Login marks the user as authenticated.
func (s *Store) Login() { s.set(true) }

// Logout marks the user as unauthenticated.
func (s *Store) Logout() { s.set(false) }

// Subscribe delivers the current value, then every change, until ctx is done.
// The channel is closed after ctx is cancelled. Slow readers never block mutators.
func (s *Store) Subscribe(ctx context.Context) <-chan bool {
	sub := newSubscriber()

	s.mu.Lock()
	sub.push(s.authenticated)
	s.subscribers[sub] = struct{}{}
	s.mu.Unlock()

	out := make(chan bool)
	go func() {
		defer close(out)
		defer s.unsubscribe(sub)
		for {
			value, ok := sub.pop(ctx)
			if !ok {
				return
			}
			select {
			case out <- value:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (s *Store) set(value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.authenticated == value {
		return
	}
	s.authenticated = value
	for sub := range s.subscribers {
		sub.push(value)
	}
}

func (s *Store) unsubscribe(sub *subscriber) {
	s.mu.Lock()
	delete(s.subscribers, sub)
	s.mu.Unlock()
}

// subscriber is an unbounded FIFO of values waiting to be delivered.
type subscriber struct {
	mu      sync.Mutex
	pending []bool
	wake    chan struct{}
}

func newSubscriber() *subscriber {
	return &subscriber{wake: make(chan struct{}, 1)}
}

func (s *subscriber) push(v bool) {
	s.mu.Lock()
	s.pending = append(s.pending, v)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) pop(ctx context.Context) (bool, bool) {
	for {
		s.mu.Lock()
		if len(s.pending) > 0 {
			v := s.pending[0]
			s.pending = s.pending[1:]
			s.mu.Unlock()
			return v, true
		}
		s.mu.Unlock()

		select {
		case <-s.wake:
		case <-ctx.Done():
			return false, false
		}
	}
}

var (
	_ Reader  = (*Store)(nil)
	_ Mutator = (*Store)(nil)
)
