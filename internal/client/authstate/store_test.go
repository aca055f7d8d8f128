package authstate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan bool) bool {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for auth state")
		return false
	}
}

func TestStoreStartsUnauthenticated(t *testing.T) {
	s := New()
	assert.False(t, s.IsAuthenticated())

	s.Login()
	assert.True(t, s.IsAuthenticated())
	s.Logout()
	assert.False(t, s.IsAuthenticated())
}

func TestSubscribeDeliversCurrentValueThenChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New()
	s.Login()

	ch := s.Subscribe(ctx)
	assert.True(t, receive(t, ch))

	s.Logout()
	s.Login()
	s.Logout()
	assert.False(t, receive(t, ch))
	assert.True(t, receive(t, ch))
	assert.False(t, receive(t, ch))
}

func TestRepeatedMutationsAreNotRedelivered(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New()
	ch := s.Subscribe(ctx)
	assert.False(t, receive(t, ch))

	s.Logout()
	s.Login()
	s.Login()
	assert.True(t, receive(t, ch))

	select {
	case v := <-ch:
		t.Fatalf("unexpected extra value %v", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowSubscriberDoesNotBlockMutators(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New()
	ch := s.Subscribe(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.Login()
			s.Logout()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("mutators blocked on an idle subscriber")
	}

	assert.False(t, receive(t, ch))
	for i := 0; i < 100; i++ {
		assert.True(t, receive(t, ch))
		assert.False(t, receive(t, ch))
	}
}

func TestSubscriptionClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New()
	ch := s.Subscribe(ctx)
	receive(t, ch)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.subscribers) == 0
	}, time.Second, 5*time.Millisecond)
}
