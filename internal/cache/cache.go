// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/metrics"
)

// Page is a rendered, session-independent view fragment.
type Page struct {
	Title       string
	Body        []byte
	ContentType string
	ETag        string
	StoredAt    time.Time
}

type entry struct {
	page      Page
	expiresAt time.Time
}

// Cache is a thread-safe TTL cache of rendered pages keyed by path.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	stats   Stats
}

// Stats tracks cache performance.
type Stats struct {
	mu            sync.RWMutex
	Hits          int64
	Misses        int64
	Evictions     int64
	Invalidations int64
	TotalKeys     int64
	LastCleanup   time.Time
}

// New creates a page cache. Expired entries are dropped lazily on Get and
// in bulk by Run.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		stats:   Stats{LastCleanup: time.Now()},
	}
}

// Get returns the page cached for path.
func (c *Cache) Get(path string) (Page, bool) {
	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()

	if !ok {
		c.recordMiss()
		return Page{}, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check: a concurrent Set may have refreshed it.
		if cur, still := c.entries[path]; still && time.Now().After(cur.expiresAt) {
			delete(c.entries, path)
			c.setKeys(len(c.entries))
		}
		c.mu.Unlock()
		c.recordMiss()
		c.addEvictions(1)
		return Page{}, false
	}

	c.recordHit()
	return e.page, true
}

// Set stores page under path with the default TTL. An empty ETag is
// computed from the body.
func (c *Cache) Set(path string, page Page) {
	if page.ETag == "" {
		page.ETag = ETag(page.Body)
	}
	if page.StoredAt.IsZero() {
		page.StoredAt = time.Now()
	}

	c.mu.Lock()
	c.entries[path] = entry{page: page, expiresAt: time.Now().Add(c.ttl)}
	c.setKeys(len(c.entries))
	c.mu.Unlock()
}

// Invalidate evicts path. It reports whether an entry was present.
func (c *Cache) Invalidate(path string) bool {
	c.mu.Lock()
	_, ok := c.entries[path]
	if ok {
		delete(c.entries, path)
		c.setKeys(len(c.entries))
	}
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Invalidations++
	c.stats.mu.Unlock()
	metrics.PageInvalidations.Inc()
	return ok
}

// InvalidatePrefix evicts every path starting with prefix and returns how
// many were removed.
func (c *Cache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	n := 0
	for path := range c.entries {
		if strings.HasPrefix(path, prefix) {
			delete(c.entries, path)
			n++
		}
	}
	c.setKeys(len(c.entries))
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Invalidations += int64(n)
	c.stats.mu.Unlock()
	metrics.PageInvalidations.Add(float64(n))
	return n
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]entry)
	c.setKeys(0)
	c.mu.Unlock()
	c.addEvictions(int64(n))
}

// Len returns the number of cached pages, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of the statistics.
func (c *Cache) GetStats() Stats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	return Stats{
		Hits:          c.stats.Hits,
		Misses:        c.stats.Misses,
		Evictions:     c.stats.Evictions,
		Invalidations: c.stats.Invalidations,
		TotalKeys:     c.stats.TotalKeys,
		LastCleanup:   c.stats.LastCleanup,
	}
}

// HitRate returns the hit rate as a percentage.
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Run removes expired entries every interval until ctx is done. It is
// run as a supervised service.
func (c *Cache) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := c.cleanup(); n > 0 {
				logging.Debug().Int("evicted", n).Msg("Expired pages evicted")
			}
		}
	}
}

func (c *Cache) cleanup() int {
	now := time.Now()
	c.mu.Lock()
	n := 0
	for path, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, path)
			n++
		}
	}
	c.setKeys(len(c.entries))
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Evictions += int64(n)
	c.stats.LastCleanup = now
	c.stats.mu.Unlock()
	return n
}

// setKeys must be called with c.mu held.
func (c *Cache) setKeys(n int) {
	c.stats.mu.Lock()
	c.stats.TotalKeys = int64(n)
	c.stats.mu.Unlock()
	metrics.PageCacheEntries.Set(float64(n))
}

func (c *Cache) recordHit() {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	metrics.PageCacheHits.Inc()
}

func (c *Cache) recordMiss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
	metrics.PageCacheMisses.Inc()
}

func (c *Cache) addEvictions(n int64) {
	c.stats.mu.Lock()
	c.stats.Evictions += n
	c.stats.mu.Unlock()
}

// ETag returns a strong entity tag for body.
func ETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}
