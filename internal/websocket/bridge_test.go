// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package websocket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/feedwatch/internal/models"
	"github.com/tomtom215/feedwatch/internal/pubsub"
)

type broadcast struct {
	messageType string
	data        interface{}
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	sent []broadcast
}

func (r *recordingBroadcaster) Broadcast(messageType string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, broadcast{messageType: messageType, data: data})
}

func (r *recordingBroadcaster) all() []broadcast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]broadcast(nil), r.sent...)
}

type failingSubscriber struct {
	failOn string
}

func (f *failingSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if topic == f.failOn {
		return nil, errors.New("subscribe refused")
	}
	return make(chan *message.Message), nil
}

// runBridge serves b until the test ends and returns its exit error channel.
func runBridge(t *testing.T, b *Bridge) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- b.Serve(ctx) }()
	t.Cleanup(cancel)
	return cancel, errCh
}

func TestBridge_ForwardsListEvents(t *testing.T) {
	bus := pubsub.New(pubsub.DefaultConfig())
	defer bus.Close()
	out := &recordingBroadcaster{}
	runBridge(t, NewBridge(bus, out))

	event := models.ListEvent{Category: models.CategoryBlocks, Added: 7}

	// Publishing before the bridge subscribes is a no-op, so retry until it lands.
	waitFor(t, "event forwarded", func() bool {
		if err := bus.Publish(models.ListTopic(models.CategoryBlocks), event); err != nil {
			t.Fatalf("Publish: %v", err)
		}
		return len(out.all()) > 0
	})

	got := out.all()[0]
	if got.messageType != MessageTypeListChanged {
		t.Errorf("message type: expected %q, got %q", MessageTypeListChanged, got.messageType)
	}
	if ev, ok := got.data.(models.ListEvent); !ok || ev != event {
		t.Errorf("data: expected %+v, got %+v", event, got.data)
	}
}

func TestBridge_SubscribesEveryCategory(t *testing.T) {
	bus := pubsub.New(pubsub.DefaultConfig())
	defer bus.Close()
	out := &recordingBroadcaster{}
	runBridge(t, NewBridge(bus, out))

	for _, category := range models.AllCategories() {
		event := models.ListEvent{Category: category, Added: 1}
		waitFor(t, "event for "+string(category), func() bool {
			if err := bus.Publish(models.ListTopic(category), event); err != nil {
				t.Fatalf("Publish: %v", err)
			}
			for _, b := range out.all() {
				if ev, ok := b.data.(models.ListEvent); ok && ev.Category == category {
					return true
				}
			}
			return false
		})
	}
}

func TestBridge_StopsOnCancel(t *testing.T) {
	bus := pubsub.New(pubsub.DefaultConfig())
	defer bus.Close()
	cancel, errCh := runBridge(t, NewBridge(bus, &recordingBroadcaster{}))

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(testTimeout):
		t.Fatal("bridge did not stop")
	}
}

func TestBridge_SubscribeError(t *testing.T) {
	sub := &failingSubscriber{failOn: models.ListTopic(models.CategoryActions)}
	_, errCh := runBridge(t, NewBridge(sub, &recordingBroadcaster{}))

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected subscribe error")
		}
	case <-time.After(testTimeout):
		t.Fatal("bridge did not return")
	}
}

func TestBridge_ClosedBusReturnsError(t *testing.T) {
	bus := pubsub.New(pubsub.DefaultConfig())
	out := &recordingBroadcaster{}
	_, errCh := runBridge(t, NewBridge(bus, out))

	topic := models.ListTopic(models.CategoryAccounts)
	waitFor(t, "bridge subscribed", func() bool {
		_ = bus.Publish(topic, models.ListEvent{Category: models.CategoryAccounts, Added: 1})
		return len(out.all()) > 0
	})
	_ = bus.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, errSubscriptionClosed) {
			t.Errorf("expected errSubscriptionClosed, got %v", err)
		}
	case <-time.After(testTimeout):
		t.Fatal("bridge did not return after bus close")
	}
}

func TestBridge_String(t *testing.T) {
	if got := NewBridge(nil, nil).String(); got != "live-bridge" {
		t.Errorf("String: got %q", got)
	}
}
