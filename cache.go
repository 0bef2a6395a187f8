package innerlife

import (
	"sync"
	"time"
)

// ttlCache is a small read-through cache with per-entry expiry. Expired
// entries are kept around so callers can serve stale data when a refresh
// fails.
type ttlCache[V any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry[V]
}

type cacheEntry[V any] struct {
	value    V
	cachedAt time.Time
}

func newTTLCache[V any](ttl time.Duration) *ttlCache[V] {
	return &ttlCache[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry[V]),
	}
}

// Get returns the cached value for key along with whether it exists at
// all and whether it is still fresh.
func (c *ttlCache[V]) Get(key string) (value V, ok bool, fresh bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false, false
	}
	return entry.value, true, c.now().Sub(entry.cachedAt) < c.ttl
}

func (c *ttlCache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.entries[key] = cacheEntry[V]{value: value, cachedAt: c.now()}
	c.mu.Unlock()
}

func (c *ttlCache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry[V])
	c.mu.Unlock()
}

// Status describes each entry's age for diagnostics.
func (c *ttlCache[V]) Status() map[string]CacheEntryStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]CacheEntryStatus, len(c.entries))
	for key, entry := range c.entries {
		age := c.now().Sub(entry.cachedAt)
		out[key] = CacheEntryStatus{
			CachedAt: entry.cachedAt,
			Age:      age,
			Fresh:    age < c.ttl,
		}
	}
	return out
}

// CacheEntryStatus reports the freshness of a single cache entry.
type CacheEntryStatus struct {
	CachedAt time.Time     `json:"cached_at"`
	Age      time.Duration `json:"age"`
	Fresh    bool          `json:"fresh"`
}
