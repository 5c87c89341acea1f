// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry via promauto and exposed
by the status API at /metrics:

	curl http://localhost:3858/metrics

# Available Metrics

Feed subscription:
  - feed_connected: 1 while the subscription connection is Active
  - feed_state: numeric state machine state
  - feed_reconnects_total, feed_reconnect_delay_seconds
  - feed_dial_failures_total
  - feed_frames_received_total{type}
  - feed_decode_errors_total{stage}
  - feed_updates_published_total{kind}
  - feed_subscription_errors_total

Notifier:
  - notifier_notifications_total{category}
  - notifier_suppressed_total{category}
  - notifier_dropped_total{category}

Cache:
  - cache_hits_total{cache}, cache_misses_total{cache}, cache_evictions_total{cache}

Query client:
  - query_duration_seconds{result}, query_errors_total{error_type}
  - circuit_breaker_state{name}, circuit_breaker_state_transitions_total{name,from,to}
*/
package metrics
