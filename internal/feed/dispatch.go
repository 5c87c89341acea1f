// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package feed

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/feedwatch/internal/metrics"
	"github.com/tomtom215/feedwatch/internal/models"
)

// handleFrame decodes and dispatches one inbound frame. Decode failures
// are dropped; they never close the connection.
func (c *Client) handleFrame(data []byte) {
	msg, err := DecodeMessage(data)
	if err != nil {
		metrics.FeedDecodeErrors.WithLabelValues("frame").Inc()
		c.log.Warn().Err(err).Int("bytes", len(data)).Msg("dropping undecodable feed frame")
		return
	}
	metrics.FeedFrames.WithLabelValues(msg.Kind.String()).Inc()

	switch msg.Kind {
	case KindAck:
		c.onAck()

	case KindPing:
		if !c.variant.RepliesToPing() {
			return
		}
		frame, err := EncodePong()
		if err == nil {
			err = c.conn.WriteMessage(websocket.TextMessage, frame)
		}
		if err != nil {
			c.connectionLost(fmt.Errorf("send pong: %w", err))
		}

	case KindKeepAlive, KindPong:
		// no reply required

	case KindConnectionError:
		c.connectionLost(fmt.Errorf("%w: %s", errConnectionError, string(msg.Payload)))

	case KindNext, KindError, KindComplete:
		if s := c.State(); s != StateSubscribing && s != StateActive {
			c.log.Debug().Str("type", msg.Type).Str("state", s.String()).Msg("ignoring subscription frame outside active session")
			return
		}
		sub, ok := c.subs[msg.ID]
		if !ok {
			c.log.Debug().Str("type", msg.Type).Str("id", msg.ID).Msg("ignoring frame for unknown subscription")
			return
		}
		switch msg.Kind {
		case KindNext:
			c.onNext(sub, msg.Payload)
		case KindError:
			metrics.FeedSubscriptionErrors.Inc()
			c.log.Warn().Str("id", sub.ID).Str("kind", string(sub.Kind)).RawJSON("errors", rawOrNull(msg.Payload)).Msg("subscription error from server")
		case KindComplete:
			delete(c.subs, sub.ID)
			c.log.Info().Str("id", sub.ID).Str("kind", string(sub.Kind)).Msg("subscription completed by server")
		}

	default:
		c.log.Debug().Str("type", msg.Type).Msg("ignoring unknown feed message type")
	}
}

func (c *Client) onAck() {
	if c.State() != StateInitializing {
		c.log.Debug().Str("state", c.State().String()).Msg("ignoring unexpected connection_ack")
		return
	}
	stopTimer(c.ackTimer)
	c.ackTimer = nil
	c.subscribe()
}

// onNext decodes a data payload and publishes it on the updates topic.
func (c *Client) onNext(sub Subscription, payload json.RawMessage) {
	update := models.Update{ReceivedAt: c.opts.Now().UTC()}

	var err error
	switch sub.Kind {
	case SubscriptionStats:
		update.Kind = models.UpdateSnapshot
		update.Snapshot, err = decodeSnapshot(payload, c.opts.StatsField)
	case SubscriptionRecentItems:
		update.Kind = models.UpdateRecentItems
		update.Items, err = decodeItems(payload, c.opts.RecentField)
	}
	if err != nil {
		metrics.FeedDecodeErrors.WithLabelValues("payload").Inc()
		c.log.Warn().Err(err).Str("kind", string(sub.Kind)).Msg("dropping undecodable subscription payload")
		return
	}

	if c.pub == nil {
		return
	}
	if err := c.pub.Publish(models.TopicUpdates, update); err != nil {
		c.log.Warn().Err(err).Str("kind", string(update.Kind)).Msg("failed to publish feed update")
		return
	}
	metrics.FeedUpdatesPublished.WithLabelValues(string(update.Kind)).Inc()
}

var errMissingField = errors.New("field missing from payload data")

// executionResult is the GraphQL result carried in next/data payloads.
type executionResult struct {
	Data map[string]json.RawMessage `json:"data"`
}

func payloadField(payload json.RawMessage, field string) (json.RawMessage, error) {
	var res executionResult
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("decode execution result: %w", err)
	}
	raw, ok := res.Data[field]
	if !ok || string(raw) == "null" {
		return nil, fmt.Errorf("%w: %q", errMissingField, field)
	}
	return raw, nil
}

// decodeSnapshot reads data.<field> as category -> count.
// Keys that are not tracked categories are dropped.
func decodeSnapshot(payload json.RawMessage, field string) (models.Snapshot, error) {
	raw, err := payloadField(payload, field)
	if err != nil {
		return nil, err
	}

	var counts map[string]int64
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, fmt.Errorf("decode %q counts: %w", field, err)
	}

	snap := make(models.Snapshot, len(counts))
	for name, n := range counts {
		if cat, ok := models.ParseCategory(name); ok {
			snap[cat] = n
		}
	}
	return snap, nil
}

// decodeItems reads data.<field> as a list of objects passed through verbatim.
func decodeItems(payload json.RawMessage, field string) ([]json.RawMessage, error) {
	raw, err := payloadField(payload, field)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %q items: %w", field, err)
	}
	return items, nil
}

func rawOrNull(b json.RawMessage) []byte {
	if len(b) == 0 {
		return []byte("null")
	}
	return b
}
