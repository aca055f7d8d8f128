package spoonacular

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

type cacheEntry struct {
	value   any
	expires time.Time
}

// CachingSearcher wraps another Searcher with a TTL-based in-memory cache. Errors
// are never cached.
type CachingSearcher struct {
	base Searcher
	ttl  time.Duration
	now  func() time.Time

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingSearcher returns a Searcher that caches results for the provided TTL.
func NewCachingSearcher(base Searcher, ttl time.Duration) *CachingSearcher {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingSearcher{
		base:  base,
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]cacheEntry),
	}
}

// Search returns cached results for the normalised query when fresh.
func (c *CachingSearcher) Search(ctx context.Context, query string) ([]Summary, error) {
	if c == nil || c.base == nil {
		return nil, ErrUnavailable
	}
	key := "search:" + strings.ToLower(strings.TrimSpace(query))
	if v, ok := c.lookup(key); ok {
		return v.([]Summary), nil
	}

	results, err := c.base.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	c.store(key, results)
	return results, nil
}

// Details returns cached recipe details when fresh.
func (c *CachingSearcher) Details(ctx context.Context, id int) (Details, error) {
	if c == nil || c.base == nil {
		return Details{}, ErrUnavailable
	}
	key := "details:" + strconv.Itoa(id)
	if v, ok := c.lookup(key); ok {
		return v.(Details), nil
	}

	details, err := c.base.Details(ctx, id)
	if err != nil {
		return Details{}, err
	}
	c.store(key, details)
	return details, nil
}

func (c *CachingSearcher) lookup(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(entry.expires) {
		return nil, false
	}
	return entry.value, true
}

func (c *CachingSearcher) store(key string, value any) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.items {
		if !now.Before(e.expires) {
			delete(c.items, k)
		}
	}
	c.items[key] = cacheEntry{value: value, expires: now.Add(c.ttl)}
}

var _ Searcher = (*CachingSearcher)(nil)
