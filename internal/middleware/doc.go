// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

/*
Package middleware provides HTTP middleware for the status API.

  - RequestID: UUID request IDs, echoed in X-Request-ID and stored in the
    logging context together with a short correlation ID
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern

Both have the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Group(func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Get("/api/v1/feed/status", h.FeedStatus)
	})
*/
package middleware
