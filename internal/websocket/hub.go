// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/feedwatch/internal/logging"
	"github.com/tomtom215/feedwatch/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types sent to and accepted from live clients.
const (
	MessageTypeListChanged = "list_changed"
	MessageTypePing        = "ping"
	MessageTypePong        = "pong"
)

// broadcastBuffer bounds the hub's pending broadcast queue.
const broadcastBuffer = 256

// Message is the JSON envelope written to live clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of live clients and fans broadcasts out to them.
// It implements suture.Service.
type Hub struct {
	broadcast chan Message

	mu      sync.RWMutex
	clients map[*Client]struct{}
	running bool

	log zerolog.Logger
}

// NewHub creates a Hub. Clients can only register while Serve is running.
func NewHub() *Hub {
	return &Hub{
		broadcast: make(chan Message, broadcastBuffer),
		clients:   make(map[*Client]struct{}),
		log:       logging.Component("websocket-hub"),
	}
}

// Serve delivers broadcasts until ctx is canceled, then closes every client.
//
// Shutdown is checked before each broadcast so a cancel is never starved by a
// busy queue.
func (h *Hub) Serve(ctx context.Context) error {
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (h *Hub) String() string {
	return "websocket-hub"
}

// shutdown closes all clients and logs without an error field; cancellation
// is the expected way to stop.
func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	h.running = false
	closed := h.closeAllClientsLocked()
	h.mu.Unlock()

	h.log.Info().
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", closed).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// register adds c. It reports false if the hub is not serving.
func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return false
	}
	h.clients[c] = struct{}{}
	metrics.LiveClients.Set(float64(len(h.clients)))
	h.log.Info().Uint64("client_id", c.id).Int("total_clients", len(h.clients)).Msg("live client connected")
	return true
}

// unregister removes c and closes its send channel. Safe to call more than once.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.LiveClients.Set(float64(len(h.clients)))
	h.log.Info().Uint64("client_id", c.id).Int("total_clients", len(h.clients)).Msg("live client disconnected")
}

// sortedClientsLocked returns clients ordered by id so delivery order is stable.
func (h *Hub) sortedClientsLocked() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// broadcastToClients sends message to every client. A client whose buffer is
// full is dropped rather than allowed to stall the others.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.sortedClientsLocked() {
		select {
		case c.send <- message:
		default:
			metrics.LiveMessagesDropped.Inc()
			h.log.Warn().Uint64("client_id", c.id).Msg("live client too slow, disconnecting")
			close(c.send)
			delete(h.clients, c)
		}
	}
	metrics.LiveClients.Set(float64(len(h.clients)))
}

func (h *Hub) closeAllClientsLocked() int {
	clients := h.sortedClientsLocked()
	for _, c := range clients {
		close(c.send)
		delete(h.clients, c)
	}
	metrics.LiveClients.Set(0)
	return len(clients)
}

// Broadcast queues a message for every connected client. It never blocks:
// when the queue is full the message is dropped.
func (h *Hub) Broadcast(messageType string, data interface{}) {
	select {
	case h.broadcast <- Message{Type: messageType, Data: data}:
	default:
		metrics.LiveMessagesDropped.Inc()
		h.log.Warn().Str("message_type", messageType).Msg("broadcast channel full, dropping message")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
