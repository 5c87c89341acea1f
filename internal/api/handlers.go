// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/feedwatch/internal/feed"
	"github.com/tomtom215/feedwatch/internal/logging"
	"github.com/tomtom215/feedwatch/internal/models"
	"github.com/tomtom215/feedwatch/internal/query"
	"github.com/tomtom215/feedwatch/internal/validation"
)

// maxQueryBodyBytes bounds the query endpoint's request body.
const maxQueryBodyBytes = 64 << 10

// FeedStatusSource reports subscription client state. *feed.Client satisfies it.
type FeedStatusSource interface {
	Configured() bool
	Connected() bool
	State() feed.State
}

// QueryDoer executes one-shot GraphQL operations. *query.CachedClient satisfies it.
type QueryDoer interface {
	Do(ctx context.Context, req query.Request) (json.RawMessage, error)
}

// Handler serves the status API.
type Handler struct {
	feed      FeedStatusSource
	query     QueryDoer
	live      http.Handler
	startTime time.Time
}

// NewHandler creates a Handler. query may be nil, in which case the query
// endpoint reports the feed as not configured.
func NewHandler(feedStatus FeedStatusSource, q QueryDoer) *Handler {
	return &Handler{
		feed:      feedStatus,
		query:     q,
		startTime: time.Now(),
	}
}

// WithLiveStream attaches the live event stream served at /api/v1/ws.
func (h *Handler) WithLiveStream(live http.Handler) *Handler {
	h.live = live
	return h
}

// Health is the liveness probe. It succeeds whenever the process serves HTTP,
// regardless of feed connectivity.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthStatus{
		Status: "ok",
		Uptime: time.Since(h.startTime).Seconds(),
	})
}

// FeedStatus reports whether the feed is configured and connected, and its
// current state. Reads are lock-free so this never waits on a reconnect.
func (h *Handler) FeedStatus(w http.ResponseWriter, r *http.Request) {
	status := models.FeedStatus{State: feed.StateDisconnected.String()}
	if h.feed != nil {
		status.Configured = h.feed.Configured()
		status.Connected = h.feed.Connected()
		status.State = h.feed.State().String()
	}
	respondSuccess(w, r, status, time.Time{})
}

// Query forwards a GraphQL operation to the upstream endpoint through the
// cached query client.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.QueryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBodyBytes))
	if err := dec.Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Request body must be a JSON GraphQL operation", nil)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, err.Error(), nil)
		return
	}

	if h.query == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeFeedNotConfigured, "No GraphQL endpoint is configured", nil)
		return
	}

	data, err := h.query.Do(r.Context(), query.Request{
		Query:         req.Query,
		Variables:     req.Variables,
		OperationName: req.OperationName,
	})
	if err != nil {
		h.queryError(w, r, err)
		return
	}

	respondSuccess(w, r, data, start)
}

func (h *Handler) queryError(w http.ResponseWriter, r *http.Request, err error) {
	var respErr *query.ResponseError
	switch {
	case errors.As(err, &respErr):
		respondError(w, r, http.StatusBadGateway, ErrCodeGraphQLError, "GraphQL endpoint returned errors",
			map[string]interface{}{"errors": respErr.Errors})
		return
	case errors.Is(err, query.ErrNotConfigured):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeFeedNotConfigured, "No GraphQL endpoint is configured", nil)
		return
	case errors.Is(err, query.ErrRateLimited):
		respondError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "Upstream query rate limit reached", nil)
		return
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "GraphQL endpoint temporarily unavailable", nil)
		return
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, ErrCodeTimeout, "GraphQL endpoint timed out", nil)
		return
	}

	logging.Ctx(r.Context()).Warn().Err(err).Msg("upstream query failed")
	respondError(w, r, http.StatusBadGateway, ErrCodeExternalServiceFail, "GraphQL endpoint request failed", nil)
}
