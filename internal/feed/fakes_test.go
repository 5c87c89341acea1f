// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/feedwatch/internal/models"
)

var errFakeClosed = errors.New("fake connection closed")

// fakeConn is an in-memory Conn. The test plays the server through
// serverSend and reads client frames from out.
type fakeConn struct {
	subprotocol string

	in        chan []byte
	out       chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	pings  atomic.Int32
	closes atomic.Int32
}

func newFakeConn(subprotocol string) *fakeConn {
	return &fakeConn{
		subprotocol: subprotocol,
		in:          make(chan []byte, 16),
		out:         make(chan []byte, 64),
		closed:      make(chan struct{}),
	}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-f.in:
		return websocket.TextMessage, data, nil
	case <-f.closed:
		return 0, nil, errFakeClosed
	}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	select {
	case <-f.closed:
		return errFakeClosed
	default:
	}
	cp := append([]byte(nil), data...)
	select {
	case f.out <- cp:
		return nil
	default:
		return errors.New("fake out buffer full")
	}
}

func (f *fakeConn) WriteControl(messageType int, _ []byte, _ time.Time) error {
	select {
	case <-f.closed:
		return errFakeClosed
	default:
	}
	if messageType == websocket.PingMessage {
		f.pings.Add(1)
	}
	return nil
}

func (f *fakeConn) Subprotocol() string { return f.subprotocol }

func (f *fakeConn) Close() error {
	f.closes.Add(1)
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

// serverSend queues a frame for the client to read.
func (f *fakeConn) serverSend(frame string) {
	f.in <- []byte(frame)
}

// drop simulates the server going away.
func (f *fakeConn) drop() {
	f.closeOnce.Do(func() { close(f.closed) })
}

func (f *fakeConn) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

// expectFrame waits for the next client frame and checks its type.
func (f *fakeConn) expectFrame(t *testing.T, wantType string) wireFrame {
	t.Helper()
	select {
	case data := <-f.out:
		fr := decodeWire(t, data)
		if fr.Type != wantType {
			t.Fatalf("expected %q frame from client, got %q (%s)", wantType, fr.Type, data)
		}
		return fr
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q frame", wantType)
		return wireFrame{}
	}
}

// expectNoFrame checks the client writes nothing for d.
func (f *fakeConn) expectNoFrame(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case data := <-f.out:
		t.Fatalf("unexpected client frame: %s", data)
	case <-time.After(d):
	}
}

type dialResult struct {
	conn Conn
	err  error
}

// fakeDialer hands out queued results; with nothing queued it blocks until
// the dial context ends, modelling a hung dial.
type fakeDialer struct {
	results chan dialResult
	calls   atomic.Int32
	urls    chan string
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{
		results: make(chan dialResult, 8),
		urls:    make(chan string, 16),
	}
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.calls.Add(1)
	select {
	case d.urls <- url:
	default:
	}
	select {
	case r := <-d.results:
		return r.conn, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *fakeDialer) queueConn(c *fakeConn) { d.results <- dialResult{conn: c} }
func (d *fakeDialer) queueErr(err error)    { d.results <- dialResult{err: err} }

// recordingPublisher captures updates published on the updates topic.
type recordingPublisher struct {
	updates chan models.Update
	topics  chan string
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{
		updates: make(chan models.Update, 16),
		topics:  make(chan string, 16),
	}
}

func (p *recordingPublisher) Publish(topic string, v interface{}) error {
	p.topics <- topic
	if u, ok := v.(models.Update); ok {
		p.updates <- u
	}
	return nil
}

func (p *recordingPublisher) expectUpdate(t *testing.T) models.Update {
	t.Helper()
	select {
	case u := <-p.updates:
		if topic := <-p.topics; topic != models.TopicUpdates {
			t.Errorf("published on %q, expected %q", topic, models.TopicUpdates)
		}
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published update")
		return models.Update{}
	}
}

func (p *recordingPublisher) expectNoUpdate(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case u := <-p.updates:
		t.Fatalf("unexpected update published: %+v", u)
	case <-time.After(d):
	}
}
