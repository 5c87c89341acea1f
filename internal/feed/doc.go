// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

/*
Package feed maintains the live GraphQL-over-WebSocket subscription to the
remote feed endpoint and republishes decoded pushes on the updates topic.

# Lifecycle

	client := feed.NewClient(feed.Options{URL: cfg.Feed.URL}, bus)
	if !client.Start(ctx) {
	    // not configured or unreachable at boot: poll instead
	}
	defer client.Close()

Start returns false without dialing when no URL is configured, and false
after one failed dial when the endpoint is unreachable at boot. Once started,
lost connections are retried forever with exponential backoff (1s doubling to
30s by default, reset when the session becomes active again).

# Published Updates

Each "next" (or legacy "data") payload for a known subscription becomes a
models.Update on models.TopicUpdates:

  - stats subscription: Kind=snapshot, Snapshot = data.<StatsField>
  - recent items subscription: Kind=recent_items, Items = data.<RecentField>

Malformed frames, unknown subscription ids and subscription error frames are
logged and dropped; none of them closes the connection.

# Observability

Connected and State are lock-free and may be read from any goroutine,
including while the client is reconnecting. Both are mirrored to the
feed_connected and feed_state gauges.
*/
package feed
