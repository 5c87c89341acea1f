// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package services

import (
	"context"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/feedwatch/internal/logging"
)

// FeedClient is the lifecycle of the subscription client. *feed.Client satisfies it.
type FeedClient interface {
	Start(ctx context.Context) bool
	Close()
}

// FeedService runs the subscription client under suture.
//
// The client owns its own reconnection, so the supervisor never restarts
// it. When the first connection cannot be made the service reports
// suture.ErrDoNotRestart and the rest of the tree keeps running; API
// consumers see connected=false and fall back to polling.
type FeedService struct {
	client FeedClient
	name   string
}

// NewFeedService wraps client.
func NewFeedService(client FeedClient) *FeedService {
	return &FeedService{
		client: client,
		name:   "feed-client",
	}
}

// Serve implements suture.Service.
func (s *FeedService) Serve(ctx context.Context) error {
	if !s.client.Start(ctx) {
		logging.Warn().Str("service", s.name).Msg("live feed unavailable, falling back to polling")
		return suture.ErrDoNotRestart
	}

	<-ctx.Done()
	s.client.Close()
	return ctx.Err()
}

// String implements fmt.Stringer for suture event logs.
func (s *FeedService) String() string {
	return s.name
}
