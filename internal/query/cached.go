// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package query

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/feedwatch/internal/cache"
)

// computeTimeout bounds a shared upstream call that no longer follows its
// initiating caller's context.
const computeTimeout = 30 * time.Second

// Doer executes one GraphQL operation. *Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req Request) (json.RawMessage, error)
}

// CachedClient memoizes successful query results for ttl.
// Failed queries are never cached.
type CachedClient struct {
	next  Doer
	cache cache.Cacher[string, json.RawMessage]
	ttl   time.Duration
}

// NewCachedClient wraps next with c. A non-positive ttl uses the cache default.
func NewCachedClient(next Doer, c cache.Cacher[string, json.RawMessage], ttl time.Duration) *CachedClient {
	return &CachedClient{next: next, cache: c, ttl: ttl}
}

// Do returns a cached result for an identical request, or executes it.
//
// Concurrent identical misses share one upstream call. That call keeps the
// first caller's values but not its cancellation, so one caller giving up
// does not fail the others; it is bounded by computeTimeout instead.
func (c *CachedClient) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	key := cache.GenerateKey("query", req)
	return c.cache.GetOrCompute(key, c.ttl, func() (json.RawMessage, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), computeTimeout)
		defer cancel()
		return c.next.Do(shared, req)
	})
}

// DoInto is Do followed by Unmarshal.
func (c *CachedClient) DoInto(ctx context.Context, req Request, out interface{}) error {
	data, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return Unmarshal(data, out)
}

// Invalidate drops the cached result for req.
func (c *CachedClient) Invalidate(req Request) {
	c.cache.Delete(cache.GenerateKey("query", req))
}
