package cache

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"widget-dashboard-backend/internal/logger"
)

// responseEntry is a cached API payload with its absolute expiry.
// Invariant: expiresAt > storedAt.
type responseEntry struct {
	data      json.RawMessage
	storedAt  time.Time
	expiresAt time.Time
}

// ResponseCache stores API response payloads keyed by request URL and header
// set. Entries expire by TTL; capacity is bounded by evicting oldest-stored
// entries first. Constructed explicitly and passed to whoever needs it; the
// owner is responsible for calling Stop.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]*responseEntry

	defaultTTL time.Duration
	maxSize    int

	// now is the clock; tests inject a fake
	now func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewResponseCache creates a response cache and starts its background sweep
// when the config has a positive cleanup interval.
func NewResponseCache(cfg Config) *ResponseCache {
	def := DefaultConfig()
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = def.DefaultTTL
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = def.MaxSize
	}

	c := &ResponseCache{
		entries:    make(map[string]*responseEntry),
		defaultTTL: cfg.DefaultTTL,
		maxSize:    cfg.MaxSize,
		now:        time.Now,
		stop:       make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go c.sweepLoop(cfg.CleanupInterval)
	}

	return c
}

// Get returns the cached payload for the request, or found=false. An entry
// that expired but was never swept is removed here and reported as a miss.
func (c *ResponseCache) Get(url string, headers map[string]string) (json.RawMessage, bool) {
	key := RequestKey(url, headers)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}

	return entry.data, true
}

// Set stores the payload for the request with the given TTL (the default TTL
// when ttl <= 0). If the insert pushes the cache past 1.2x its capacity, a
// sweep runs before Set returns.
func (c *ResponseCache) Set(url string, headers map[string]string, data json.RawMessage, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	key := RequestKey(url, headers)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = &responseEntry{
		data:      data,
		storedAt:  now,
		expiresAt: now.Add(ttl),
	}

	if len(c.entries) > c.maxSize+c.maxSize/5 {
		c.sweepLocked()
	}
}

// Invalidate removes the entry for the request, if any
func (c *ResponseCache) Invalidate(url string, headers map[string]string) {
	key := RequestKey(url, headers)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*responseEntry)
}

// Len returns the current number of entries, expired or not
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stop terminates the background sweep. Safe to call more than once.
func (c *ResponseCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

// Sweep removes expired entries, then evicts oldest-stored entries until the
// cache is within capacity. Exposed for deterministic tests; the background
// loop calls it on its interval.
func (c *ResponseCache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
}

func (c *ResponseCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			before := c.Len()
			c.Sweep()
			if removed := before - c.Len(); removed > 0 {
				logger.New().WithField("removed", removed).Debug("Response cache sweep")
			}
		}
	}
}

// sweepLocked must be called with c.mu held
func (c *ResponseCache) sweepLocked() {
	now := c.now()

	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}

	if len(c.entries) <= c.maxSize {
		return
	}

	// Evict oldest-by-storedAt first. Insertion-order eviction is a deliberate
	// simplification over LRU bookkeeping.
	type keyed struct {
		key      string
		storedAt time.Time
	}
	remaining := make([]keyed, 0, len(c.entries))
	for key, entry := range c.entries {
		remaining = append(remaining, keyed{key: key, storedAt: entry.storedAt})
	}
	sort.Slice(remaining, func(i, j int) bool {
		return remaining[i].storedAt.Before(remaining[j].storedAt)
	})

	for _, k := range remaining[:len(remaining)-c.maxSize] {
		delete(c.entries, k.key)
	}
}
