// Package cache provides the TTL- and size-bounded store that fronts the
// partner API.
package cache

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     []byte
	storedAt  time.Time
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool { return now.After(e.expiresAt) }

// Cache is a TTL- and size-bounded in-memory store with an optional
// persistent second tier. It is safe for concurrent use, and concurrent
// lookups of the same cold key share a single compute.
type Cache struct {
	name       string
	ttl        time.Duration
	maxEntries int

	mu      sync.RWMutex
	entries map[string]*entry

	group singleflight.Group
	store *SQLiteStore

	now func() time.Time
}

// New creates an empty cache. name namespaces log lines and persistent
// rows so multiple caches can share one store.
func New(name string, ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		name:       name,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
		now:        time.Now,
	}
}

// WithStore attaches a persistent second tier, consulted on memory
// misses and written through on compute.
func (c *Cache) WithStore(store *SQLiteStore) *Cache {
	c.store = store
	return c
}

// GetOrCompute returns the cached value for key, computing and storing
// it on a miss or past-TTL entry. At most one compute per key is in
// flight at a time; late arrivals wait and share its result, so the
// compute runs detached from any single caller's cancellation. Compute
// errors are returned without being cached.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	if value, ok := c.lookup(key); ok {
		log.Tracef("%s cache hit for %q", c.name, key)
		return value, nil
	}

	value, err, shared := c.group.Do(key, func() (interface{}, error) {
		// another waiter may have stored it while we queued
		if value, ok := c.lookup(key); ok {
			return value, nil
		}
		// the result is shared, so the first arrival hanging up must
		// not fail every queued waiter
		value, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.put(key, value)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Tracef("%s cache shared an in-flight fetch for %q", c.name, key)
	}
	return value.([]byte), nil
}

func (c *Cache) lookup(key string) ([]byte, bool) {
	now := c.now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		if !e.expired(now) {
			return e.value, true
		}
		// lazy purge on access past TTL
		c.mu.Lock()
		if cur, still := c.entries[key]; still && cur.expired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}

	if c.store != nil {
		if value, expiresAt, ok := c.store.Get(c.name, key); ok && now.Before(expiresAt) {
			c.putEntry(key, value, expiresAt)
			return value, true
		}
	}
	return nil, false
}

func (c *Cache) put(key string, value []byte) {
	expiresAt := c.now().Add(c.ttl)
	c.putEntry(key, value, expiresAt)
	if c.store != nil {
		if err := c.store.Set(c.name, key, value, expiresAt); err != nil {
			log.Warnf("%s cache: persistent store write failed: %v", c.name, err)
		}
	}
}

func (c *Cache) putEntry(key string, value []byte, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[key] = &entry{value: value, storedAt: c.now(), expiresAt: expiresAt}
}

// evictOldest drops the entry stored earliest. Caller holds mu.
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, e := range c.entries {
		if oldestKey == "" || e.storedAt.Before(oldest) {
			oldestKey = key
			oldest = e.storedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Clear empties every tier unconditionally.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Clear(c.name); err != nil {
			log.Warnf("%s cache: persistent store clear failed: %v", c.name, err)
		}
	}
	log.Debugf("%s cache cleared", c.name)
}

// Len reports the number of entries in the memory tier, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
