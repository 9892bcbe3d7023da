package loader

import (
	"sync"
	"time"
)

// DefaultTTL is the lifetime of in-memory cache entries.
const DefaultTTL = 10 * time.Minute

// Cache kinds.
const (
	KindModule = "module"
	KindSource = "source"
	KindHash   = "hash"
)

type ttlEntry struct {
	value   any
	expires time.Time
}

// ttlCache is an in-memory cache keyed "<kind>:<template>".
type ttlCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]ttlEntry
}

func newTTLCache(ttl time.Duration, now func() time.Time) *ttlCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &ttlCache{ttl: ttl, now: now, entries: make(map[string]ttlEntry, 64)}
}

func cacheKey(kind, name string) string {
	return kind + ":" + name
}

func (c *ttlCache) get(kind, name string) (any, bool) {
	key := cacheKey(kind, name)
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		c.mu.Lock()
		if cur, still := c.entries[key]; still && cur.expires.Equal(e.expires) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (c *ttlCache) put(kind, name string, v any) {
	c.mu.Lock()
	c.entries[cacheKey(kind, name)] = ttlEntry{value: v, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// drop removes every kind cached for name.
func (c *ttlCache) drop(name string) {
	c.mu.Lock()
	for _, kind := range []string{KindModule, KindSource, KindHash} {
		delete(c.entries, cacheKey(kind, name))
	}
	c.mu.Unlock()
}

func (c *ttlCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
