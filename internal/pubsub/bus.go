// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

// Package pubsub provides the in-process, string-topic message bus that
// connects the feed client, the update notifier and dashboard consumers.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/feedwatch/internal/logging"
)

// MetadataPublishedAt is the message metadata key holding the publish instant.
const MetadataPublishedAt = "published_at"

// ErrClosed is returned when publishing on a closed bus.
var ErrClosed = errors.New("bus closed")

// Config configures the bus.
type Config struct {
	// OutputBuffer is the per-subscriber channel buffer.
	OutputBuffer int64

	// BlockUntilAck makes Publish wait until every subscriber acks, which
	// keeps delivery on a topic strictly in publish order.
	BlockUntilAck bool
}

// DefaultConfig returns the configuration used by the server.
func DefaultConfig() Config {
	return Config{
		OutputBuffer:  64,
		BlockUntilAck: true,
	}
}

// Bus is a Watermill GoChannel pub/sub with JSON payloads.
// Messages are not persisted; a topic with no subscribers drops them.
type Bus struct {
	pubsub *gochannel.GoChannel
	closed atomic.Bool
}

// New creates a bus.
func New(cfg Config) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            cfg.OutputBuffer,
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: cfg.BlockUntilAck,
		}, logging.NewWatermillAdapter()),
	}
}

// Publish marshals v as JSON and publishes it on topic.
func (b *Bus) Publish(topic string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataPublishedAt, time.Now().UTC().Format(time.RFC3339Nano))

	if b.closed.Load() {
		return ErrClosed
	}
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe returns a channel of messages on topic until ctx is canceled.
// Every received message must be Acked (or Nacked) by the consumer.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	msgs, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return msgs, nil
}

// Close closes the bus and every subscription channel.
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	return b.pubsub.Close()
}

// Decode unmarshals a message payload into v.
func Decode(msg *message.Message, v interface{}) error {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("unmarshal message %s: %w", msg.UUID, err)
	}
	return nil
}
