// Package cache memoizes brand profiles in process memory so that repeated
// requests for the same site within a short window skip the network.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/brandkit/models"
)

// entry holds a cached profile with its creation timestamp.
type entry struct {
	profile   *models.BrandProfile
	createdAt time.Time
}

// Cache is a bounded in-memory profile cache.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	done       chan struct{}
	closeOnce  sync.Once
}

// New creates a Cache holding at most maxEntries profiles for ttl each.
// A background goroutine evicts expired entries every ttl/4 (at least a
// minute) until Close is called.
func New(maxEntries int, ttl time.Duration) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		done:       make(chan struct{}),
	}

	go c.cleanupLoop(max(ttl/4, time.Minute))
	return c
}

// Key generates a cache key for a normalized site URL. Case and a trailing
// slash do not distinguish keys.
func Key(siteURL string) string {
	s := strings.TrimRight(strings.ToLower(siteURL), "/")
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Get returns a copy of the cached profile if it exists and has not expired.
func (c *Cache) Get(key string) (*models.BrandProfile, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.createdAt) > c.ttl {
		return nil, false
	}
	return clone(e.profile), true
}

// Set stores a copy of profile. If the cache is at capacity, the oldest
// entry is evicted to make room.
func (c *Cache) Set(key string, profile *models.BrandProfile) {
	if profile == nil || c.maxEntries <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		c.evictOldestLocked()
	}

	c.store[key] = &entry{
		profile:   clone(profile),
		createdAt: c.now(),
	}
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.store {
		if oldestKey == "" || e.createdAt.Before(oldest) {
			oldestKey, oldest = k, e.createdAt
		}
	}
	delete(c.store, oldestKey)
}

// cleanupLoop evicts expired entries every interval.
func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.purgeExpired()
		}
	}
}

func (c *Cache) purgeExpired() {
	cutoff := c.now().Add(-c.ttl)
	c.mu.Lock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
	c.mu.Unlock()
}

// clone copies the profile so callers cannot mutate cached state.
func clone(p *models.BrandProfile) *models.BrandProfile {
	cp := *p
	cp.Fonts = copyList(p.Fonts)
	cp.Keywords = copyList(p.Keywords)
	return &cp
}

// copyList keeps nil as nil and an empty list as an empty, non-nil list.
func copyList(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
