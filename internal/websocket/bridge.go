// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/feedwatch/internal/logging"
	"github.com/tomtom215/feedwatch/internal/models"
	"github.com/tomtom215/feedwatch/internal/pubsub"
)

var errSubscriptionClosed = errors.New("list subscription closed")

// Subscriber delivers messages for a topic. *pubsub.Bus satisfies it.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// Broadcaster fans a typed message out to live clients. *Hub satisfies it.
type Broadcaster interface {
	Broadcast(messageType string, data interface{})
}

// Bridge forwards list:<category> events from the bus to live clients.
// It implements suture.Service.
type Bridge struct {
	sub Subscriber
	out Broadcaster
	log zerolog.Logger
}

// NewBridge creates a Bridge.
func NewBridge(sub Subscriber, out Broadcaster) *Bridge {
	return &Bridge{
		sub: sub,
		out: out,
		log: logging.Component("live-bridge"),
	}
}

// Serve subscribes to every category's list topic and forwards events until
// ctx is canceled. Events within one category keep their publish order.
func (b *Bridge) Serve(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	for _, category := range models.AllCategories() {
		topic := models.ListTopic(category)
		msgs, err := b.sub.Subscribe(gctx, topic)
		if err != nil {
			cancel()
			_ = g.Wait()
			return fmt.Errorf("bridge subscribe %s: %w", topic, err)
		}
		g.Go(func() error {
			return b.forward(gctx, topic, msgs)
		})
	}

	b.log.Info().Int("topics", len(models.AllCategories())).Msg("live bridge started")
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return ctx.Err()
}

func (b *Bridge) forward(ctx context.Context, topic string, msgs <-chan *message.Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("%s: %w", topic, errSubscriptionClosed)
			}
			var event models.ListEvent
			if err := pubsub.Decode(msg, &event); err != nil {
				b.log.Warn().Err(err).Str("topic", topic).Msg("dropping undecodable list event")
			} else {
				b.out.Broadcast(MessageTypeListChanged, event)
			}
			msg.Ack()
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (b *Bridge) String() string {
	return "live-bridge"
}
