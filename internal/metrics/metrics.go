// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Feed subscription connection lifecycle and inbound frames
// - Update notifier fan-out
// - TTL cache efficiency
// - One-shot query client latency and circuit breaker state
// - Status API requests

var (
	// Feed Subscription Metrics
	FeedConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_connected",
			Help: "Whether the feed subscription connection is active (1) or not (0)",
		},
	)

	FeedState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_state",
			Help: "Current feed state machine state (0=disconnected, 1=connecting, 2=initializing, 3=subscribing, 4=active, 5=reconnecting, 6=shut_down)",
		},
	)

	FeedReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_reconnects_total",
			Help: "Total number of scheduled feed reconnect attempts",
		},
	)

	FeedReconnectDelay = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_reconnect_delay_seconds",
			Help: "Delay before the next scheduled reconnect attempt",
		},
	)

	FeedDialFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_dial_failures_total",
			Help: "Total number of failed or timed out feed dial attempts",
		},
	)

	FeedFrames = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_frames_received_total",
			Help: "Total number of inbound feed protocol frames",
		},
		[]string{"type"},
	)

	FeedDecodeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_decode_errors_total",
			Help: "Total number of dropped frames or payloads that failed to decode",
		},
		[]string{"stage"}, // "frame", "payload"
	)

	FeedUpdatesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_updates_published_total",
			Help: "Total number of domain updates published on the updates topic",
		},
		[]string{"kind"},
	)

	FeedSubscriptionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_subscription_errors_total",
			Help: "Total number of server error frames for active subscriptions",
		},
	)

	// Notifier Metrics
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_notifications_total",
			Help: "Total number of per-category new-items notifications published",
		},
		[]string{"category"},
	)

	NotificationsSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_suppressed_total",
			Help: "Total number of positive deltas absorbed by the debounce window",
		},
		[]string{"category"},
	)

	NotificationsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_dropped_total",
			Help: "Total number of notifications dropped because the outbox was full",
		},
		[]string{"category"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses (absent or expired)",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache entries removed (expiry or invalidation)",
		},
		[]string{"cache"},
	)

	// Query Client Metrics
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "query_duration_seconds",
			Help:    "Duration of one-shot GraphQL queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)

	QueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_errors_total",
			Help: "Total number of failed one-shot GraphQL queries",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Live event stream metrics
	LiveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_clients",
			Help: "Number of connected live event stream clients",
		},
	)

	LiveMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "live_messages_dropped_total",
			Help: "Live messages dropped because the broadcast queue or a client buffer was full",
		},
	)
)

// SetFeedConnected records the feed connection flag.
func SetFeedConnected(connected bool) {
	if connected {
		FeedConnected.Set(1)
		return
	}
	FeedConnected.Set(0)
}

// RecordReconnectScheduled records a reconnect attempt scheduled after delay.
func RecordReconnectScheduled(delay time.Duration) {
	FeedReconnects.Inc()
	FeedReconnectDelay.Set(delay.Seconds())
}

// RecordQuery records the outcome of a one-shot query.
func RecordQuery(duration time.Duration, errorType string) {
	if errorType == "" {
		QueryDuration.WithLabelValues("success").Observe(duration.Seconds())
		return
	}
	QueryDuration.WithLabelValues("failure").Observe(duration.Seconds())
	QueryErrors.WithLabelValues(errorType).Inc()
}

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}
