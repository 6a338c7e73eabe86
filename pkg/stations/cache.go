package stations

import (
	"context"
	"strings"
	"sync"
	"time"
)

// CachedSource memoizes another source per water and id set. A zero TTL
// keeps entries until Invalidate is called.
type CachedSource struct {
	next Source
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	stations []Station
	fetched  time.Time
}

// NewCachedSource wraps next.
func NewCachedSource(next Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Fetch implements Source. Failed fetches are not cached.
func (c *CachedSource) Fetch(ctx context.Context, water string, ids []string) ([]Station, error) {
	key := water + "|" + strings.Join(ids, ",")

	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if ok && (c.ttl <= 0 || c.now().Sub(e.fetched) < c.ttl) {
		return e.stations, nil
	}

	out, err := c.next.Fetch(ctx, water, ids)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{stations: out, fetched: c.now()}
	c.mu.Unlock()
	return out, nil
}

// Invalidate drops every cached entry.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of cached entries.
func (c *CachedSource) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
