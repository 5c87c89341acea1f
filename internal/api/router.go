// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/feedwatch/internal/middleware"
)

// NewRouter wires the status API routes.
//
//	GET  /healthz
//	GET  /metrics
//	GET  /api/v1/feed/status
//	POST /api/v1/query
//	GET  /api/v1/ws           (when a live stream is attached)
func NewRouter(h *Handler, mw *ChiMiddleware) http.Handler {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}

	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS()) // global so OPTIONS preflight is answered

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())
			r.Use(middleware.PrometheusMetrics)

			r.Get("/feed/status", h.FeedStatus)
			r.Post("/query", h.Query)
		})

		// Long-lived upgrade; kept out of request metrics and rate limiting.
		if h.live != nil {
			r.Method(http.MethodGet, "/ws", h.live)
		}
	})

	return r
}
