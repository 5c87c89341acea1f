// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

/*
Package cache provides a thread-safe in-memory key/value store with per-entry TTL.

The cache memoizes expensive remote reads, chiefly one-shot GraphQL queries
issued by the query package. One instance is constructed at startup and
injected into the components that need it; there is no package-level cache.

# Overview

The cache provides:
  - Thread-safe concurrent access (sync.RWMutex)
  - Per-entry expiry with lazy removal on read
  - Generic keys and values (TTLCache[K, V])
  - GetOrCompute with single-flight collapsing of concurrent misses
  - Hit/miss/eviction counters mirrored to Prometheus

# Expiry

An entry is visible only while now < expiry. Get removes an expired entry it
observes. There is no background sweeper; Purge can be called to drop all
expired entries at once.

# Usage Example

	c := cache.New[string, []byte](cache.Options{Name: "query", DefaultTTL: 30 * time.Second})

	body, err := c.GetOrCompute(cache.GenerateKey("query", req), 0, func() ([]byte, error) {
	    return fetch(ctx, req)
	})
	if err != nil {
	    // not cached; the next call retries fetch
	}

# Failure Semantics

A producer error is returned to the caller unchanged and never stored.
The cache does not bound producer duration; callers apply their own
timeouts through context.

# Thread Safety

All methods are safe for concurrent use.
*/
package cache
