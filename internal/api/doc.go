// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

/*
Package api serves the Feedwatch status API over a chi router.

Endpoints:

  - GET /healthz: liveness, {"status":"ok","uptime_seconds":...}
  - GET /api/v1/feed/status: {configured, connected, state} of the subscription client
  - POST /api/v1/query: one-shot GraphQL operation through the cached query client
  - GET /api/v1/ws: live list_changed stream, when attached with WithLiveStream
  - GET /metrics: Prometheus exposition

API responses use the models.APIResponse envelope. Errors carry a
machine-readable code:

	{"status":"error","data":null,"metadata":{...},"error":{"code":"GRAPHQL_ERROR","message":"..."}}

The /api/v1 request endpoints are rate limited per client IP (go-chi/httprate) and
instrumented with request metrics. CORS (go-chi/cors) is global so
preflight requests are answered before routing.
*/
package api
