// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

// Package notifier turns the raw snapshot stream into debounced,
// per-category "new items" events for dashboard lists.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/feedwatch/internal/logging"
	"github.com/tomtom215/feedwatch/internal/metrics"
	"github.com/tomtom215/feedwatch/internal/models"
	"github.com/tomtom215/feedwatch/internal/pubsub"
)

const (
	// DefaultDebounce is the minimum interval between two events for one category.
	DefaultDebounce = 5 * time.Second

	// DefaultOutboxSize bounds the events waiting to be published.
	DefaultOutboxSize = 64
)

var errSubscriptionClosed = errors.New("updates subscription closed")

// Publisher publishes list events. *pubsub.Bus satisfies it.
type Publisher interface {
	Publish(topic string, v interface{}) error
}

// Subscriber delivers messages from the updates topic. *pubsub.Bus satisfies it.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// Config configures a Notifier.
type Config struct {
	Debounce time.Duration

	// OutboxSize bounds the queue between snapshot handling and publishing.
	// When it is full new events are dropped.
	OutboxSize int

	Now func() time.Time
}

// Notifier diffs consecutive snapshots and publishes {category, added}
// on list:<category>.
//
// prior and lastNotified are owned by the goroutine consuming updates. A
// suppressed delta is absorbed: prior always advances, so the next event only
// reports growth relative to the latest snapshot.
//
// Events leave through a bounded outbox drained by a separate publisher
// goroutine, so a slow list consumer can cost dropped events but never stalls
// snapshot handling or the feed client publishing to it.
type Notifier struct {
	sub      Subscriber
	pub      Publisher
	debounce time.Duration
	now      func() time.Time
	log      zerolog.Logger

	prior        map[models.Category]int64
	lastNotified map[models.Category]time.Time

	outbox chan models.ListEvent
}

// New creates a Notifier. A non-positive Debounce uses DefaultDebounce.
func New(sub Subscriber, pub Publisher, cfg Config) *Notifier {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.OutboxSize <= 0 {
		cfg.OutboxSize = DefaultOutboxSize
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Notifier{
		sub:          sub,
		pub:          pub,
		debounce:     cfg.Debounce,
		now:          cfg.Now,
		log:          logging.Component("notifier"),
		prior:        make(map[models.Category]int64),
		lastNotified: make(map[models.Category]time.Time),
		outbox:       make(chan models.ListEvent, cfg.OutboxSize),
	}
}

// Serve consumes the updates topic until ctx is canceled, one message at a
// time, and publishes queued events from a second goroutine.
func (n *Notifier) Serve(ctx context.Context) error {
	msgs, err := n.sub.Subscribe(ctx, models.TopicUpdates)
	if err != nil {
		return fmt.Errorf("notifier subscribe: %w", err)
	}
	n.log.Info().Str("topic", models.TopicUpdates).Dur("debounce", n.debounce).Msg("notifier started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return n.consume(gctx, msgs) })
	g.Go(func() error { return n.publishLoop(gctx) })
	return g.Wait()
}

func (n *Notifier) consume(ctx context.Context, msgs <-chan *message.Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errSubscriptionClosed
			}
			n.handle(msg)
			msg.Ack()
		}
	}
}

// publishLoop drains the outbox in order until ctx is canceled. Events still
// queued at shutdown are discarded.
func (n *Notifier) publishLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-n.outbox:
			n.publish(event)
		}
	}
}

func (n *Notifier) publish(event models.ListEvent) {
	if err := n.pub.Publish(models.ListTopic(event.Category), event); err != nil {
		n.log.Warn().Err(err).Str("category", string(event.Category)).Msg("failed to publish list event")
		return
	}
	metrics.NotificationsSent.WithLabelValues(string(event.Category)).Inc()
}

func (n *Notifier) handle(msg *message.Message) {
	var update models.Update
	if err := pubsub.Decode(msg, &update); err != nil {
		n.log.Warn().Err(err).Msg("dropping undecodable update")
		return
	}
	if update.Kind != models.UpdateSnapshot {
		return
	}
	n.OnSnapshot(update.Snapshot)
}

// OnSnapshot applies one snapshot and returns the events it queued for
// publishing. It never blocks. Must only be called from the goroutine
// consuming updates (or in tests).
func (n *Notifier) OnSnapshot(counts models.Snapshot) []models.ListEvent {
	now := n.now()
	var events []models.ListEvent

	for _, category := range models.AllCategories() {
		count, present := counts[category]
		if !present {
			continue
		}

		prior, known := n.prior[category]
		n.prior[category] = count
		if !known {
			continue
		}

		added := count - prior
		if added <= 0 {
			continue
		}

		if last, ok := n.lastNotified[category]; ok && now.Sub(last) < n.debounce {
			metrics.NotificationsSuppressed.WithLabelValues(string(category)).Inc()
			n.log.Debug().Str("category", string(category)).Int64("added", added).Msg("notification suppressed by debounce")
			continue
		}

		event := models.ListEvent{Category: category, Added: added}
		select {
		case n.outbox <- event:
		default:
			// Not marked as notified, so the next growth is eligible at once.
			metrics.NotificationsDropped.WithLabelValues(string(category)).Inc()
			n.log.Warn().Str("category", string(category)).Int64("added", added).Msg("notifier outbox full, dropping list event")
			continue
		}
		n.lastNotified[category] = now
		events = append(events, event)
	}
	return events
}

// String implements fmt.Stringer for supervisor logging.
func (n *Notifier) String() string {
	return "notifier"
}
