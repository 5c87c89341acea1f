// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/feedwatch/internal/models"
)

// mockGraphQLServer is a minimal graphql-transport-ws server.
// It acks the handshake and pushes one stats result per subscription.
type mockGraphQLServer struct {
	server   *httptest.Server
	upgrader websocket.Upgrader

	mu          sync.Mutex
	conns       []*websocket.Conn
	subprotocol chan string
}

func newMockGraphQLServer(t *testing.T, subprotocols []string) *mockGraphQLServer {
	t.Helper()
	mock := &mockGraphQLServer{
		upgrader: websocket.Upgrader{
			CheckOrigin:  func(r *http.Request) bool { return true },
			Subprotocols: subprotocols,
		},
		subprotocol: make(chan string, 4),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := mock.upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade failed: %v", err)
			return
		}
		mock.mu.Lock()
		mock.conns = append(mock.conns, conn)
		mock.mu.Unlock()
		mock.subprotocol <- conn.Subprotocol()

		mock.serve(conn)
	}))
	t.Cleanup(mock.Close)
	return mock
}

func (m *mockGraphQLServer) serve(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var f wireFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return
		}

		switch f.Type {
		case "connection_init":
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"connection_ack"}`))
		case "subscribe", "start":
			var p subscribePayload
			_ = json.Unmarshal(f.Payload, &p)
			if !strings.Contains(p.Query, "stats") {
				continue
			}
			typ := "next"
			if f.Type == "start" {
				typ = "data"
			}
			msg := fmt.Sprintf(`{"type":%q,"id":%q,"payload":{"data":{"stats":{"transactions":42}}}}`, typ, f.ID)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(msg))
		}
	}
}

// URL returns the endpoint as an http URL; the client rewrites it to ws.
func (m *mockGraphQLServer) URL() string {
	return m.server.URL + "/graphql"
}

// DropAll closes every server-side connection.
func (m *mockGraphQLServer) DropAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.conns {
		_ = c.Close()
	}
	m.conns = nil
}

func (m *mockGraphQLServer) Close() {
	m.DropAll()
	m.server.Close()
}

func newIntegrationClient(url string, pub Publisher) *Client {
	return NewClient(Options{
		URL:               url,
		DialTimeout:       2 * time.Second,
		AckTimeout:        2 * time.Second,
		BackoffInitial:    20 * time.Millisecond,
		BackoffMax:        100 * time.Millisecond,
		KeepaliveInterval: time.Hour,
	}, pub)
}

func TestWebSocketClient_EndToEnd(t *testing.T) {
	mock := newMockGraphQLServer(t, []string{SubprotocolTransportWS})
	pub := newRecordingPublisher()

	c := newIntegrationClient(mock.URL(), pub)
	defer c.Close()

	if !c.Start(context.Background()) {
		t.Fatal("Start failed against mock server")
	}

	checkStringEqual(t, "negotiated subprotocol", <-mock.subprotocol, SubprotocolTransportWS)

	u := pub.expectUpdate(t)
	if u.Kind != models.UpdateSnapshot || u.Snapshot[models.CategoryTransactions] != 42 {
		t.Errorf("unexpected update %+v", u)
	}
	waitFor(t, testTimeout, "connected", c.Connected)
}

func TestWebSocketClient_LegacyServer(t *testing.T) {
	mock := newMockGraphQLServer(t, []string{SubprotocolLegacyWS})
	pub := newRecordingPublisher()

	c := newIntegrationClient(mock.URL(), pub)
	defer c.Close()

	if !c.Start(context.Background()) {
		t.Fatal("Start failed against legacy mock server")
	}
	checkStringEqual(t, "negotiated subprotocol", <-mock.subprotocol, SubprotocolLegacyWS)

	u := pub.expectUpdate(t)
	if u.Snapshot[models.CategoryTransactions] != 42 {
		t.Errorf("unexpected update %+v", u)
	}
}

func TestWebSocketClient_ReconnectsAfterServerDrop(t *testing.T) {
	mock := newMockGraphQLServer(t, []string{SubprotocolTransportWS})
	pub := newRecordingPublisher()

	c := newIntegrationClient(mock.URL(), pub)
	defer c.Close()

	if !c.Start(context.Background()) {
		t.Fatal("Start failed")
	}
	pub.expectUpdate(t)
	<-mock.subprotocol

	mock.DropAll()

	// A fresh connection resubscribes and receives the push again.
	select {
	case <-mock.subprotocol:
	case <-time.After(5 * time.Second):
		t.Fatal("client did not reconnect")
	}
	pub.expectUpdate(t)
	waitFor(t, testTimeout, "connected after reconnect", c.Connected)
}

func TestWebSocketClient_UnreachableAtBoot(t *testing.T) {
	mock := newMockGraphQLServer(t, nil)
	url := mock.URL()
	mock.Close()

	c := newIntegrationClient(url, nil)
	defer c.Close()

	if c.Start(context.Background()) {
		t.Fatal("Start should fail when the endpoint is down")
	}
	if c.State() != StateDisconnected {
		t.Errorf("state: expected disconnected, got %v", c.State())
	}
}
