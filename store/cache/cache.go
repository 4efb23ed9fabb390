// Package cache provides a small in-memory TTL cache used by the
// store for hot entities and short-lived correlation state.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Config holds cache settings.
type Config struct {
	// DefaultTTL is applied when Set is called without an explicit TTL.
	DefaultTTL time.Duration
	// CleanupInterval is how often the janitor sweeps expired entries.
	// Zero disables the janitor; expired entries are then dropped lazily on Get.
	CleanupInterval time.Duration
	// MaxItems bounds the cache size; the least recently used entry is
	// evicted when the bound is exceeded. Zero means unbounded.
	MaxItems int
	// OnEviction is called for entries removed by expiry or LRU eviction.
	OnEviction func(key string, value any)
}

type entry struct {
	key       string
	value     any
	expiresAt time.Time
	element   *list.Element
}

// Cache is a thread-safe in-memory key-value cache with TTL and LRU bounds.
type Cache struct {
	mu      sync.Mutex
	config  Config
	items   map[string]*entry
	order   *list.List // front = most recently used
	done    chan struct{}
	closeMu sync.Once
}

// New creates a cache and starts its janitor goroutine if configured.
func New(config Config) *Cache {
	c := &Cache{
		config: config,
		items:  make(map[string]*entry),
		order:  list.New(),
		done:   make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		go c.janitor()
	}
	return c
}

// Get returns the value for key, or false if absent or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.removeLocked(e, true)
		return nil, false
	}
	c.order.MoveToFront(e.element)
	return e.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.config.DefaultTTL)
}

// SetWithTTL stores value under key with an explicit TTL.
// A zero TTL means the entry never expires.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.order.MoveToFront(e.element)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	e.element = c.order.PushFront(e)
	c.items[key] = e

	if c.config.MaxItems > 0 && len(c.items) > c.config.MaxItems {
		if oldest := c.order.Back(); oldest != nil {
			c.removeLocked(oldest.Value.(*entry), true)
		}
	}
}

// Delete removes key from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		c.removeLocked(e, false)
	}
}

// Len returns the number of entries, including not-yet-swept expired ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Close stops the janitor goroutine.
func (c *Cache) Close() {
	c.closeMu.Do(func() {
		close(c.done)
	})
}

func (c *Cache) removeLocked(e *entry, evicted bool) {
	delete(c.items, e.key)
	c.order.Remove(e.element)
	if evicted && c.config.OnEviction != nil {
		c.config.OnEviction(e.key, e.value)
	}
}

func (c *Cache) janitor() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.items {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			c.removeLocked(e, true)
		}
	}
}
