package i18n

import (
	"strings"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a loaded bundle is served before refetching.
const DefaultCacheTTL = time.Hour

type cacheEntry struct {
	messages Messages
	expires  time.Time
}

// Cache holds bundles keyed "locale:namespace". Entries expire after a fixed
// TTL, checked on read; there is no other eviction.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{ttl: ttl, now: now, entries: map[string]cacheEntry{}}
}

func CacheKey(locale, namespace string) string {
	return locale + ":" + namespace
}

func (c *Cache) Get(locale, namespace string) (Messages, bool) {
	key := CacheKey(locale, namespace)
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.messages, true
}

func (c *Cache) Set(locale, namespace string, msgs Messages) {
	c.mu.Lock()
	c.entries[CacheKey(locale, namespace)] = cacheEntry{messages: msgs, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache) Invalidate(locale, namespace string) {
	c.mu.Lock()
	delete(c.entries, CacheKey(locale, namespace))
	c.mu.Unlock()
}

// InvalidateNamespace drops a namespace for every locale. Bundles loaded
// through the default-locale fallback are cached under the requested
// locale, so a change to the default bundle affects them too.
func (c *Cache) InvalidateNamespace(namespace string) {
	suffix := ":" + namespace
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasSuffix(key, suffix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = map[string]cacheEntry{}
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
