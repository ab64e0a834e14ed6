// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package engine

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wayfarerhq/wayfarer/internal/metrics"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

// Freshness is the age classification of a warm cache entry.
type Freshness int

const (
	CacheMiss Freshness = iota
	CacheFresh
	CacheStale
	CacheExpired
)

func (f Freshness) String() string {
	switch f {
	case CacheFresh:
		return "fresh"
	case CacheStale:
		return "stale"
	case CacheExpired:
		return "expired"
	default:
		return "miss"
	}
}

type warmEntry struct {
	items       []models.Recommendation
	sourcesUsed []string
	storedAt    time.Time
}

// warmCache is the in-process stale-while-revalidate layer. Entries under
// the fresh window serve directly; entries under the stale window serve
// while one background refresh per key runs; older entries force a blocking
// rebuild.
type warmCache struct {
	mu      sync.Mutex
	entries map[string]warmEntry
	// inflight guards one background refresh per key.
	inflight map[string]struct{}

	freshWindow time.Duration
	staleWindow time.Duration
}

func newWarmCache(fresh, stale time.Duration) *warmCache {
	return &warmCache{
		entries:     make(map[string]warmEntry),
		inflight:    make(map[string]struct{}),
		freshWindow: fresh,
		staleWindow: stale,
	}
}

// Get returns the entry and its freshness classification at now.
func (c *warmCache) Get(key string, now time.Time) ([]models.Recommendation, []string, Freshness) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		metrics.WarmCacheHits.WithLabelValues(CacheMiss.String()).Inc()
		return nil, nil, CacheMiss
	}

	age := now.Sub(entry.storedAt)
	var tier Freshness
	switch {
	case age < c.freshWindow:
		tier = CacheFresh
	case age < c.staleWindow:
		tier = CacheStale
	default:
		tier = CacheExpired
	}
	metrics.WarmCacheHits.WithLabelValues(tier.String()).Inc()
	return entry.items, entry.sourcesUsed, tier
}

func (c *warmCache) Put(key string, items []models.Recommendation, sourcesUsed []string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = warmEntry{items: items, sourcesUsed: sourcesUsed, storedAt: now}
}

// TryBeginRefresh claims the refresh slot for key. Returns false when a
// refresh for this key is already running.
func (c *warmCache) TryBeginRefresh(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[key]; busy {
		metrics.RefreshSuppressed.Inc()
		return false
	}
	c.inflight[key] = struct{}{}
	metrics.BackgroundRefreshes.Inc()
	return true
}

func (c *warmCache) EndRefresh(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
}

// Sweep drops entries past the stale window. Run by the janitor so the map
// does not grow without bound.
func (c *warmCache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) >= c.staleWindow {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// CacheKey derives the warm cache key from everything that changes the
// result set: user, position, and the filtering preferences. Slices are
// sorted so preference order does not fragment the cache. Budget is part
// of the key even though it is also enforced at filter time; a budget
// change must never serve another budget's cached set.
func CacheKey(user *models.UserContext) string {
	cats := make([]string, 0, len(user.Preferences.Categories))
	for _, c := range user.Preferences.Categories {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)

	buckets := make([]string, 0, len(user.Preferences.TravelBuckets))
	for _, b := range user.Preferences.TravelBuckets {
		buckets = append(buckets, string(b))
	}
	sort.Strings(buckets)

	parts := []string{
		user.UserID,
		strconv.FormatFloat(user.Lat, 'f', 4, 64),
		strconv.FormatFloat(user.Lng, 'f', 4, 64),
		strings.Join(cats, ","),
		strconv.FormatBool(user.Preferences.KidFriendly),
		string(user.Preferences.Budget),
		strings.Join(buckets, ","),
	}
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:16]
}
