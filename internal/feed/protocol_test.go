// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package feed

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
)

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name     string
		frame    string
		wantKind MessageKind
		wantID   string
	}{
		{"ack", `{"type":"connection_ack"}`, KindAck, ""},
		{"next", `{"type":"next","id":"a","payload":{"data":{}}}`, KindNext, "a"},
		{"legacy data", `{"type":"data","id":"b","payload":{"data":{}}}`, KindNext, "b"},
		{"error", `{"type":"error","id":"c","payload":[{"message":"boom"}]}`, KindError, "c"},
		{"complete", `{"type":"complete","id":"d"}`, KindComplete, "d"},
		{"ping", `{"type":"ping"}`, KindPing, ""},
		{"legacy keepalive", `{"type":"ka"}`, KindKeepAlive, ""},
		{"pong", `{"type":"pong"}`, KindPong, ""},
		{"connection error", `{"type":"connection_error","payload":{"message":"denied"}}`, KindConnectionError, ""},
		{"unknown type", `{"type":"surprise"}`, KindUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeMessage([]byte(tt.frame))
			if err != nil {
				t.Fatalf("DecodeMessage: %v", err)
			}
			if msg.Kind != tt.wantKind {
				t.Errorf("kind: expected %v, got %v", tt.wantKind, msg.Kind)
			}
			checkStringEqual(t, "id", msg.ID, tt.wantID)
		})
	}
}

func TestDecodeMessage_Malformed(t *testing.T) {
	for _, frame := range []string{`not json`, `{"id":"x"}`, `[]`, `{"type":42}`} {
		if _, err := DecodeMessage([]byte(frame)); !errors.Is(err, ErrMalformedFrame) {
			t.Errorf("DecodeMessage(%q): expected ErrMalformedFrame, got %v", frame, err)
		}
	}
}

func TestVariantFromSubprotocol(t *testing.T) {
	if v := VariantFromSubprotocol(SubprotocolLegacyWS); v != VariantLegacyWS {
		t.Errorf("graphql-ws: expected legacy, got %v", v)
	}
	if v := VariantFromSubprotocol(SubprotocolTransportWS); v != VariantTransportWS {
		t.Errorf("graphql-transport-ws: expected current, got %v", v)
	}
	if v := VariantFromSubprotocol(""); v != VariantTransportWS {
		t.Errorf("no subprotocol: expected current, got %v", v)
	}
	if !VariantTransportWS.RepliesToPing() || VariantLegacyWS.RepliesToPing() {
		t.Error("only the current variant replies to ping")
	}
}

func decodeWire(t *testing.T, data []byte) wireFrame {
	t.Helper()
	var f wireFrame
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return f
}

func TestEncoders(t *testing.T) {
	init, _ := EncodeConnectionInit()
	checkStringEqual(t, "init type", decodeWire(t, init).Type, "connection_init")

	pong, _ := EncodePong()
	checkStringEqual(t, "pong type", decodeWire(t, pong).Type, "pong")

	term, _ := EncodeTerminate()
	checkStringEqual(t, "terminate type", decodeWire(t, term).Type, "connection_terminate")

	tests := []struct {
		variant   Variant
		subscribe string
		stop      string
	}{
		{VariantTransportWS, "subscribe", "complete"},
		{VariantLegacyWS, "start", "stop"},
	}
	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			data, err := tt.variant.EncodeSubscribe("id-1", "subscription { stats }")
			if err != nil {
				t.Fatalf("EncodeSubscribe: %v", err)
			}
			f := decodeWire(t, data)
			checkStringEqual(t, "type", f.Type, tt.subscribe)
			checkStringEqual(t, "id", f.ID, "id-1")

			var p subscribePayload
			if err := json.Unmarshal(f.Payload, &p); err != nil {
				t.Fatalf("payload: %v", err)
			}
			checkStringEqual(t, "query", p.Query, "subscription { stats }")

			stop, _ := tt.variant.EncodeStop("id-1")
			checkStringEqual(t, "stop type", decodeWire(t, stop).Type, tt.stop)
		})
	}
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://host/graphql", "wss://host/graphql"},
		{"http://host/graphql", "ws://host/graphql"},
		{"HTTPS://host:8443/v1/graphql?x=1", "wss://host:8443/v1/graphql?x=1"},
		{"ws://host/graphql", "ws://host/graphql"},
		{"wss://host/graphql", "wss://host/graphql"},
		{"ftp://host/graphql", "ftp://host/graphql"},
		{"", ""},
	}
	for _, tt := range tests {
		checkStringEqual(t, tt.in, WebSocketURL(tt.in), tt.want)
	}
}

func TestStateString(t *testing.T) {
	checkStringEqual(t, "active", StateActive.String(), "active")
	checkStringEqual(t, "shut down", StateShutDown.String(), "shut_down")
	checkStringEqual(t, "invalid", State(99).String(), "unknown")
}
