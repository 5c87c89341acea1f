// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/feedwatch/internal/metrics"
)

// entry is a cached value with its absolute expiry instant.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// live reports whether the entry is visible at now.
func (e entry[V]) live(now time.Time) bool {
	return now.Before(e.expiresAt)
}

// Stats tracks cache performance counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	TotalKeys int64
}

// Options configures a TTLCache.
type Options struct {
	// Name labels the cache in metrics and logs. Default: "default".
	Name string

	// DefaultTTL is used by Set and by SetWithTTL/GetOrCompute when ttl <= 0.
	DefaultTTL time.Duration

	// Now overrides the clock. Tests only.
	Now func() time.Time
}

// TTLCache is a concurrency-safe key/value store with per-entry expiration.
//
// Expiry is enforced lazily: an entry is returned only while now < expiry,
// and an expired entry is deleted by the read that observes it. There is no
// background sweeper; Purge removes expired entries on demand.
//
// GetOrCompute collapses concurrent misses for the same key into a single
// producer call. Only successful results are stored.
type TTLCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]

	name       string
	defaultTTL time.Duration
	now        func() time.Time

	flights singleflight.Group

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// New creates a TTLCache. A non-positive DefaultTTL falls back to 5 minutes.
//
// Example:
//
//	c := cache.New[string, *Stats](cache.Options{Name: "stats", DefaultTTL: 30 * time.Second})
//	c.Set("latest", stats)
//	if s, ok := c.Get("latest"); ok {
//	    // use s
//	}
func New[K comparable, V any](opts Options) *TTLCache[K, V] {
	if opts.Name == "" {
		opts.Name = "default"
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &TTLCache[K, V]{
		entries:    make(map[K]entry[V]),
		name:       opts.Name,
		defaultTTL: opts.DefaultTTL,
		now:        opts.Now,
	}
}

// Name returns the cache name used in metrics.
func (c *TTLCache[K, V]) Name() string {
	return c.name
}

// DefaultTTL returns the TTL applied when none is given.
func (c *TTLCache[K, V]) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// Get returns the value for key if present and not expired.
// An expired entry is removed and reported as a miss.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	now := c.now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && e.live(now) {
		c.recordHit()
		return e.value, true
	}

	if ok {
		c.mu.Lock()
		// Another writer may have replaced the entry since the read lock was released.
		if cur, still := c.entries[key]; still && !cur.live(now) {
			delete(c.entries, key)
			c.recordEviction()
		}
		c.mu.Unlock()
	}

	c.recordMiss()
	var zero V
	return zero, false
}

// Set stores value with the default TTL, overwriting any existing entry.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value with expiry now+ttl, overwriting any existing entry.
// A non-positive ttl uses the default TTL.
func (c *TTLCache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	expiresAt := c.now().Add(ttl)

	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

// Delete removes key. Deleting an absent key is a no-op.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	c.mu.Unlock()

	if ok {
		c.recordEviction()
	}
}

// Clear removes all entries.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[K]entry[V])
	c.mu.Unlock()

	c.evictions.Add(int64(n))
	metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(n))
}

// Purge removes every expired entry and returns how many were removed.
func (c *TTLCache[K, V]) Purge() int {
	now := c.now()

	c.mu.Lock()
	removed := 0
	for k, e := range c.entries {
		if !e.live(now) {
			delete(c.entries, k)
			removed++
		}
	}
	c.mu.Unlock()

	c.evictions.Add(int64(removed))
	metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(removed))
	return removed
}

// Len returns the number of stored entries, including expired ones not yet removed.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetOrCompute returns the cached value for key, or calls producer on a miss.
//
// On a miss the producer result is stored with ttl only if err is nil; a
// failure is returned to the caller verbatim and never cached, so the next
// call retries. Concurrent misses for the same key share one producer call
// and all receive its result. The cache does not bound producer duration;
// callers apply their own timeouts.
func (c *TTLCache[K, V]) GetOrCompute(key K, ttl time.Duration, producer func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	res, err, _ := c.flights.Do(flightKey(key), func() (interface{}, error) {
		v, err := producer()
		if err != nil {
			return nil, err
		}
		c.SetWithTTL(key, v, ttl)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	v, _ := res.(V)
	return v, nil
}

// GetStats returns a snapshot of cache statistics.
func (c *TTLCache[K, V]) GetStats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		TotalKeys: int64(c.Len()),
	}
}

// HitRate returns the cache hit rate as a percentage.
func (c *TTLCache[K, V]) HitRate() float64 {
	hits := c.hits.Load()
	total := hits + c.misses.Load()
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total) * 100.0
}

func (c *TTLCache[K, V]) recordHit() {
	c.hits.Add(1)
	metrics.CacheHits.WithLabelValues(c.name).Inc()
}

func (c *TTLCache[K, V]) recordMiss() {
	c.misses.Add(1)
	metrics.CacheMisses.WithLabelValues(c.name).Inc()
}

func (c *TTLCache[K, V]) recordEviction() {
	c.evictions.Add(1)
	metrics.CacheEvictions.WithLabelValues(c.name).Inc()
}

// flightKey renders a comparable key as a singleflight group key.
func flightKey[K comparable](key K) string {
	return fmt.Sprintf("%#v", key)
}

// GenerateKey creates a cache key from the method name and parameters
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
