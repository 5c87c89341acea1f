// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

/*
protocol.go - GraphQL over WebSocket message codec

Two subprotocol variants are understood:

	graphql-transport-ws  current:  subscribe / next / complete / ping / pong
	graphql-ws            legacy:   start / data / stop / ka / connection_terminate

Inbound frames of either vocabulary decode into a single tagged union so the
client dispatches on MessageKind, never on raw type strings.
*/

package feed

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Negotiated WebSocket subprotocol names.
const (
	SubprotocolTransportWS = "graphql-transport-ws"
	SubprotocolLegacyWS    = "graphql-ws"
)

// Wire message types.
const (
	msgConnectionInit      = "connection_init"
	msgConnectionAck       = "connection_ack"
	msgConnectionError     = "connection_error"
	msgConnectionTerminate = "connection_terminate"
	msgSubscribe           = "subscribe"
	msgStart               = "start"
	msgNext                = "next"
	msgData                = "data"
	msgError               = "error"
	msgComplete            = "complete"
	msgStop                = "stop"
	msgPing                = "ping"
	msgPong                = "pong"
	msgKeepAlive           = "ka"
)

// ErrMalformedFrame is returned by DecodeMessage for frames that are not a
// JSON object with a string "type" field.
var ErrMalformedFrame = errors.New("malformed frame")

// Variant selects the outbound message vocabulary.
type Variant int

const (
	// VariantTransportWS is the graphql-transport-ws protocol.
	VariantTransportWS Variant = iota
	// VariantLegacyWS is the subscriptions-transport-ws protocol (graphql-ws).
	VariantLegacyWS
)

// VariantFromSubprotocol maps the negotiated subprotocol to a Variant.
// An empty or unrecognized name selects the current variant.
func VariantFromSubprotocol(name string) Variant {
	if name == SubprotocolLegacyWS {
		return VariantLegacyWS
	}
	return VariantTransportWS
}

func (v Variant) String() string {
	if v == VariantLegacyWS {
		return SubprotocolLegacyWS
	}
	return SubprotocolTransportWS
}

// RepliesToPing reports whether a server ping must be answered with a pong.
func (v Variant) RepliesToPing() bool {
	return v == VariantTransportWS
}

// MessageKind is the decoded kind of an inbound frame.
type MessageKind int

const (
	KindUnknown MessageKind = iota
	KindAck
	KindNext
	KindError
	KindComplete
	KindPing
	KindKeepAlive
	KindPong
	KindConnectionError
)

func (k MessageKind) String() string {
	switch k {
	case KindAck:
		return "ack"
	case KindNext:
		return "next"
	case KindError:
		return "error"
	case KindComplete:
		return "complete"
	case KindPing:
		return "ping"
	case KindKeepAlive:
		return "keepalive"
	case KindPong:
		return "pong"
	case KindConnectionError:
		return "connection_error"
	default:
		return "unknown"
	}
}

// InboundMessage is a decoded server frame.
type InboundMessage struct {
	Kind    MessageKind
	Type    string // raw wire type, kept for logging
	ID      string
	Payload json.RawMessage
}

// wireFrame is the JSON envelope shared by both variants.
type wireFrame struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type subscribePayload struct {
	Query string `json:"query"`
}

// DecodeMessage decodes one text frame. Frames with an unrecognized type
// decode successfully with Kind == KindUnknown.
func DecodeMessage(data []byte) (InboundMessage, error) {
	var f wireFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return InboundMessage{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if f.Type == "" {
		return InboundMessage{}, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}

	msg := InboundMessage{Type: f.Type, ID: f.ID, Payload: f.Payload}
	switch f.Type {
	case msgConnectionAck:
		msg.Kind = KindAck
	case msgNext, msgData:
		msg.Kind = KindNext
	case msgError:
		msg.Kind = KindError
	case msgComplete:
		msg.Kind = KindComplete
	case msgPing:
		msg.Kind = KindPing
	case msgKeepAlive:
		msg.Kind = KindKeepAlive
	case msgPong:
		msg.Kind = KindPong
	case msgConnectionError:
		msg.Kind = KindConnectionError
	default:
		msg.Kind = KindUnknown
	}
	return msg, nil
}

// EncodeConnectionInit builds the handshake frame (identical in both variants).
func EncodeConnectionInit() ([]byte, error) {
	return json.Marshal(wireFrame{Type: msgConnectionInit})
}

// EncodeSubscribe builds a subscription request for id.
func (v Variant) EncodeSubscribe(id, query string) ([]byte, error) {
	payload, err := json.Marshal(subscribePayload{Query: query})
	if err != nil {
		return nil, err
	}
	typ := msgSubscribe
	if v == VariantLegacyWS {
		typ = msgStart
	}
	return json.Marshal(wireFrame{ID: id, Type: typ, Payload: payload})
}

// EncodeStop builds a client-side cancellation for id.
func (v Variant) EncodeStop(id string) ([]byte, error) {
	typ := msgComplete
	if v == VariantLegacyWS {
		typ = msgStop
	}
	return json.Marshal(wireFrame{ID: id, Type: typ})
}

// EncodePong builds the reply to a server ping.
func EncodePong() ([]byte, error) {
	return json.Marshal(wireFrame{Type: msgPong})
}

// EncodeTerminate builds the legacy session teardown frame.
func EncodeTerminate() ([]byte, error) {
	return json.Marshal(wireFrame{Type: msgConnectionTerminate})
}
