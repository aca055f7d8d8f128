package spoonacular

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubSearcher struct {
	results      []Summary
	details      Details
	err          error
	searchCalls  int
	detailsCalls int
}

func (s *stubSearcher) Search(context.Context, string) ([]Summary, error) {
	s.searchCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func (s *stubSearcher) Details(context.Context, int) (Details, error) {
	s.detailsCalls++
	if s.err != nil {
		return Details{}, s.err
	}
	return s.details, nil
}

func TestCachingSearcherSearch(t *testing.T) {
	base := &stubSearcher{results: []Summary{{ID: 1, Title: "Soup"}}}
	cache := NewCachingSearcher(base, time.Minute)
	ctx := context.Background()

	results, err := cache.Search(ctx, "Soup")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Soup" {
		t.Fatalf("unexpected results %+v", results)
	}

	if _, err := cache.Search(ctx, " soup "); err != nil {
		t.Fatalf("search: %v", err)
	}
	if base.searchCalls != 1 {
		t.Fatalf("expected normalised query to hit the cache, got %d calls", base.searchCalls)
	}

	if _, err := cache.Details(ctx, 1); err != nil {
		t.Fatalf("details: %v", err)
	}
	if _, err := cache.Details(ctx, 1); err != nil {
		t.Fatalf("details: %v", err)
	}
	if base.detailsCalls != 1 {
		t.Fatalf("expected cached details got %d calls", base.detailsCalls)
	}
}

func TestCachingSearcherErrors(t *testing.T) {
	cache := NewCachingSearcher(nil, time.Minute)
	if _, err := cache.Search(context.Background(), "soup"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable got %v", err)
	}

	base := &stubSearcher{err: ErrRequestFailed}
	cache = NewCachingSearcher(base, time.Minute)
	for i := 0; i < 2; i++ {
		if _, err := cache.Search(context.Background(), "soup"); !errors.Is(err, ErrRequestFailed) {
			t.Fatalf("expected request failed got %v", err)
		}
	}
	if base.searchCalls != 2 {
		t.Fatalf("errors must not be cached, got %d calls", base.searchCalls)
	}
}

func TestCachingSearcherExpiry(t *testing.T) {
	base := &stubSearcher{results: []Summary{{ID: 1}}}
	cache := NewCachingSearcher(base, time.Minute)
	now := time.Unix(0, 0)
	cache.now = func() time.Time { return now }

	if _, err := cache.Search(context.Background(), "soup"); err != nil {
		t.Fatalf("search: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := cache.Search(context.Background(), "soup"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if base.searchCalls != 2 {
		t.Fatalf("expected cache miss after expiry got %d calls", base.searchCalls)
	}
}
