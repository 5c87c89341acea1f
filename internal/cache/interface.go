// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package cache

import "time"

// Cacher is the read-through surface consumers depend on.
// TTLCache implements it; tests may substitute a simpler store.
//
// Usage:
//
//	var c cache.Cacher[string, []byte] = cache.New[string, []byte](cache.Options{Name: "query"})
//	body, err := c.GetOrCompute(key, 30*time.Second, fetch)
type Cacher[K comparable, V any] interface {
	// Get retrieves a value. Returns the value and true if found and not expired.
	Get(key K) (V, bool)

	// SetWithTTL stores a value with a custom TTL.
	SetWithTTL(key K, value V, ttl time.Duration)

	// Delete removes a value from the cache.
	Delete(key K)

	// Clear removes all entries from the cache.
	Clear()

	// GetOrCompute returns the cached value or stores the producer's successful result.
	GetOrCompute(key K, ttl time.Duration, producer func() (V, error)) (V, error)

	// GetStats returns cache statistics.
	GetStats() Stats
}

// Verify interface implementation at compile time
var _ Cacher[string, []byte] = (*TTLCache[string, []byte])(nil)
