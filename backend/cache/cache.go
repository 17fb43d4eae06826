// ABOUTME: In-memory cache with TTL-based expiration for upstream catalog responses
// ABOUTME: Collapses concurrent misses for the same key into a single load

package cache

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	data      any
	expiresAt time.Time
}

type Cache struct {
	store sync.Map
	ttl   time.Duration
	group singleflight.Group
	stop  chan struct{}
	once  sync.Once
}

func New(ttl time.Duration) *Cache {
	c := &Cache{
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	go c.startCleanup(time.Minute)
	return c
}

// TTL returns the default entry lifetime
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

func (c *Cache) Get(key string) (any, bool) {
	val, ok := c.store.Load(key)
	if !ok {
		slog.Debug("Cache miss", "key", key)
		return nil, false
	}

	e := val.(entry)
	if time.Now().After(e.expiresAt) {
		c.store.Delete(key)
		slog.Debug("Cache expired", "key", key)
		return nil, false
	}

	slog.Debug("Cache hit", "key", key)
	return e.data, true
}

func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL. A non-positive TTL stores nothing.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.store.Store(key, entry{
		data:      value,
		expiresAt: time.Now().Add(ttl),
	})
	slog.Debug("Cache set", "key", key, "ttl", ttl)
}

// GetOrLoad returns the cached value for key, calling load on a miss.
// Concurrent misses for the same key share one call to load. Errors are
// not cached. The second result reports whether the value came from the cache.
func (c *Cache) GetOrLoad(key string, load func() (any, error)) (any, bool, error) {
	if val, ok := c.Get(key); ok {
		return val, true, nil
	}

	val, err, shared := c.group.Do(key, func() (any, error) {
		if val, ok := c.Get(key); ok {
			return val, nil
		}
		val, err := load()
		if err != nil {
			return nil, err
		}
		c.Set(key, val)
		return val, nil
	})
	if shared {
		slog.Debug("Cache load shared", "key", key)
	}
	return val, false, err
}

func (c *Cache) Clear(key string) {
	c.store.Delete(key)
}

// Len counts live entries
func (c *Cache) Len() int {
	now := time.Now()
	n := 0
	c.store.Range(func(_, val any) bool {
		if !now.After(val.(entry).expiresAt) {
			n++
		}
		return true
	})
	return n
}

// Close stops the background cleanup
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) startCleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.store.Range(func(key, val any) bool {
				if now.After(val.(entry).expiresAt) {
					c.store.Delete(key)
				}
				return true
			})
		}
	}
}
