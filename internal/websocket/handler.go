// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package websocket

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Handler upgrades HTTP requests to live event stream connections.
type Handler struct {
	hub            *Hub
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewHandler creates a Handler serving hub. allowedOrigins follows the CORS
// setting: "*" accepts any origin.
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	h := &Handler{
		hub:            hub,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response.
		h.hub.log.Debug().Err(err).Msg("live stream upgrade failed")
		return
	}

	client := NewClient(h.hub, conn)
	if !h.hub.register(client) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "live stream unavailable"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	client.Start()
}

// checkOrigin rejects requests without an Origin header; browsers always send one.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		h.hub.log.Warn().Msg("live stream rejected: missing Origin header")
		return false
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	h.hub.log.Warn().Str("origin", sanitizeOrigin(origin)).Msg("live stream rejected from unauthorized origin")
	return false
}

// sanitizeOrigin strips control characters and bounds the length before logging.
func sanitizeOrigin(origin string) string {
	const maxLen = 256
	if len(origin) > maxLen {
		origin = origin[:maxLen]
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, origin)
}
