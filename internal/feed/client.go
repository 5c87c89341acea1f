// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

/*
client.go - GraphQL subscription client

The client owns one WebSocket connection to the feed endpoint. A single
goroutine (run) owns all connection state and processes, one at a time:
inbound frames from the reader goroutine, the ack timer, the reconnect timer
and the keepalive ticker. Other goroutines only read the atomic state and
connected flag.

	Disconnected -> Connecting -> Initializing -> Subscribing -> Active
	                    ^                |              |          |
	                    +-- Reconnecting <--------------+----------+
*/

package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/feedwatch/internal/logging"
	"github.com/tomtom215/feedwatch/internal/metrics"
)

// Defaults applied by NewClient for zero-valued options.
const (
	DefaultDialTimeout       = 10 * time.Second
	DefaultAckTimeout        = 10 * time.Second
	DefaultBackoffInitial    = 1 * time.Second
	DefaultBackoffMax        = 30 * time.Second
	DefaultKeepaliveInterval = 30 * time.Second
	DefaultStatsField        = "stats"
	DefaultRecentField       = "recentItems"

	DefaultStatsQuery  = "subscription { stats { blocks transactions actions accounts } }"
	DefaultRecentQuery = "subscription { recentItems { id category timestamp } }"

	controlWriteWait = 5 * time.Second
)

var (
	errAckTimeout      = errors.New("connection_ack not received in time")
	errConnectionError = errors.New("server rejected connection")
)

// Publisher receives decoded updates. *pubsub.Bus satisfies it.
type Publisher interface {
	Publish(topic string, v interface{}) error
}

// Options configures a Client.
type Options struct {
	// URL is the endpoint. Empty disables the client. http(s) is rewritten to ws(s).
	URL string

	DialTimeout       time.Duration
	AckTimeout        time.Duration
	BackoffInitial    time.Duration
	BackoffMax        time.Duration
	BackoffJitter     bool
	KeepaliveInterval time.Duration

	StatsQuery  string
	RecentQuery string
	StatsField  string
	RecentField string

	// Dialer overrides the gorilla dialer (tests).
	Dialer Dialer

	// Now overrides the clock stamped on published updates (tests).
	Now func() time.Time
}

func (o *Options) applyDefaults() {
	if o.DialTimeout <= 0 {
		o.DialTimeout = DefaultDialTimeout
	}
	if o.AckTimeout <= 0 {
		o.AckTimeout = DefaultAckTimeout
	}
	if o.BackoffInitial <= 0 {
		o.BackoffInitial = DefaultBackoffInitial
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = DefaultBackoffMax
	}
	if o.KeepaliveInterval <= 0 {
		o.KeepaliveInterval = DefaultKeepaliveInterval
	}
	if o.StatsQuery == "" {
		o.StatsQuery = DefaultStatsQuery
	}
	if o.RecentQuery == "" {
		o.RecentQuery = DefaultRecentQuery
	}
	if o.StatsField == "" {
		o.StatsField = DefaultStatsField
	}
	if o.RecentField == "" {
		o.RecentField = DefaultRecentField
	}
	if o.Dialer == nil {
		o.Dialer = NewWebSocketDialer(o.DialTimeout)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// inbound is one read result from a connection's reader goroutine.
type inbound struct {
	gen  uint64
	data []byte
	err  error
}

// Client maintains the single live subscription connection.
type Client struct {
	opts Options
	url  string
	pub  Publisher
	log  zerolog.Logger

	// Written only by the client goroutine (and Start/Close outside it).
	state     atomic.Int32
	connected atomic.Bool
	started   atomic.Bool

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	inbox chan inbound

	// Owned by the client goroutine.
	conn           Conn
	gen            uint64
	stopReader     chan struct{}
	variant        Variant
	subs           map[string]Subscription
	backoff        *Backoff
	ackTimer       *time.Timer
	reconnectTimer *time.Timer
}

// NewClient creates a client. It does not connect until Start.
func NewClient(opts Options, pub Publisher) *Client {
	opts.applyDefaults()

	c := &Client{
		opts:    opts,
		url:     WebSocketURL(opts.URL),
		pub:     pub,
		log:     logging.Component("feed"),
		inbox:   make(chan inbound),
		done:    make(chan struct{}),
		backoff: NewBackoff(opts.BackoffInitial, opts.BackoffMax, opts.BackoffJitter),
	}
	c.setState(StateDisconnected)
	return c
}

// Configured reports whether an endpoint URL was supplied.
func (c *Client) Configured() bool {
	return c.opts.URL != ""
}

// Connected reports whether the connection is Active. Safe from any goroutine.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// State returns the current lifecycle state. Safe from any goroutine.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Start performs the first connection attempt synchronously.
//
// It returns false when no URL is configured (no dial is attempted) or when
// the first dial fails; in both cases no reconnect loop runs and callers
// should fall back to polling. On success the client goroutine takes over and
// reconnects indefinitely until ctx is canceled or Close is called.
// Start may be called once.
func (c *Client) Start(ctx context.Context) bool {
	if !c.Configured() {
		c.log.Info().Msg("feed URL not configured, live updates disabled")
		return false
	}
	if !c.started.CompareAndSwap(false, true) {
		c.log.Warn().Msg("feed client already started")
		return false
	}

	c.setState(StateConnecting)
	conn, err := c.dial(ctx)
	if err != nil {
		metrics.FeedDialFailures.Inc()
		c.log.Warn().Err(err).Str("url", c.url).Msg("initial feed connection failed, live updates unavailable")
		c.setState(StateDisconnected)
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	go c.run(runCtx, conn)
	return true
}

// Close shuts the client down and waits for its goroutine to exit.
// Safe to call more than once and before Start.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		cancel := c.cancel
		c.mu.Unlock()

		if cancel == nil {
			c.setState(StateShutDown)
			c.setConnected(false)
			return
		}
		cancel()
		<-c.done
	})
}

func (c *Client) run(ctx context.Context, conn Conn) {
	defer close(c.done)

	keepalive := time.NewTicker(c.opts.KeepaliveInterval)
	defer keepalive.Stop()

	c.attach(conn)

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return

		case in := <-c.inbox:
			if in.gen != c.gen || c.conn == nil {
				continue
			}
			if in.err != nil {
				c.connectionLost(in.err)
				continue
			}
			c.handleFrame(in.data)

		case <-timerC(c.ackTimer):
			c.ackTimer = nil
			c.connectionLost(errAckTimeout)

		case <-timerC(c.reconnectTimer):
			c.reconnectTimer = nil
			c.reconnect(ctx)

		case <-keepalive.C:
			c.ping()
		}
	}
}

// dial bounds the dial step with DialTimeout; a timeout is a dial failure.
func (c *Client) dial(ctx context.Context) (Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.opts.DialTimeout)
	defer cancel()

	conn, err := c.opts.Dialer.Dial(dialCtx, c.url)
	if err != nil {
		if errors.Is(dialCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("dial timed out after %s: %w", c.opts.DialTimeout, err)
		}
		return nil, err
	}
	return conn, nil
}

// attach adopts a freshly dialed connection and starts the handshake.
func (c *Client) attach(conn Conn) {
	c.gen++
	c.conn = conn
	c.stopReader = make(chan struct{})
	c.variant = VariantFromSubprotocol(conn.Subprotocol())

	go c.readLoop(conn, c.gen, c.stopReader)

	c.setState(StateInitializing)
	c.log.Debug().Str("subprotocol", c.variant.String()).Msg("feed connected, sending connection_init")

	frame, err := EncodeConnectionInit()
	if err == nil {
		err = c.conn.WriteMessage(websocket.TextMessage, frame)
	}
	if err != nil {
		c.connectionLost(fmt.Errorf("send connection_init: %w", err))
		return
	}
	c.ackTimer = time.NewTimer(c.opts.AckTimeout)
}

// readLoop forwards frames until the connection fails or the client detaches.
func (c *Client) readLoop(conn Conn, gen uint64, stop <-chan struct{}) {
	for {
		_, data, err := conn.ReadMessage()
		select {
		case c.inbox <- inbound{gen: gen, data: data, err: err}:
		case <-stop:
			return
		}
		if err != nil {
			return
		}
	}
}

// subscribe registers one subscription per kind and enters Active.
func (c *Client) subscribe() {
	c.setState(StateSubscribing)
	c.subs = make(map[string]Subscription, 2)

	for _, sub := range []Subscription{
		{ID: uuid.NewString(), Kind: SubscriptionStats, Query: c.opts.StatsQuery},
		{ID: uuid.NewString(), Kind: SubscriptionRecentItems, Query: c.opts.RecentQuery},
	} {
		frame, err := c.variant.EncodeSubscribe(sub.ID, sub.Query)
		if err == nil {
			err = c.conn.WriteMessage(websocket.TextMessage, frame)
		}
		if err != nil {
			c.connectionLost(fmt.Errorf("send subscribe %s: %w", sub.Kind, err))
			return
		}
		c.subs[sub.ID] = sub
	}

	c.backoff.Reset()
	c.setConnected(true)
	c.setState(StateActive)
	c.log.Info().Str("url", c.url).Int("subscriptions", len(c.subs)).Msg("feed subscriptions active")
}

// connectionLost tears down the current connection and schedules a reconnect.
func (c *Client) connectionLost(cause error) {
	if websocket.IsCloseError(cause, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		c.log.Info().Msg("feed connection closed by server")
	} else {
		c.log.Warn().Err(cause).Str("state", c.State().String()).Msg("feed connection lost")
	}
	c.detach()
	c.scheduleReconnect()
}

func (c *Client) scheduleReconnect() {
	delay := c.backoff.Next()
	c.setState(StateReconnecting)
	metrics.RecordReconnectScheduled(delay)
	c.log.Info().Dur("delay", delay).Int("attempt", c.backoff.Attempts()).Msg("feed reconnect scheduled")
	c.reconnectTimer = time.NewTimer(delay)
}

func (c *Client) reconnect(ctx context.Context) {
	c.setState(StateConnecting)
	conn, err := c.dial(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		metrics.FeedDialFailures.Inc()
		c.log.Warn().Err(err).Str("url", c.url).Msg("feed reconnect failed")
		c.scheduleReconnect()
		return
	}
	c.attach(conn)
}

// ping sends a WebSocket ping control frame on the open connection.
func (c *Client) ping() {
	if c.conn == nil {
		return
	}
	if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(controlWriteWait)); err != nil {
		c.connectionLost(fmt.Errorf("keepalive ping: %w", err))
	}
}

// detach closes the socket and forgets every subscription on it.
func (c *Client) detach() {
	stopTimer(c.ackTimer)
	c.ackTimer = nil

	if c.conn != nil {
		close(c.stopReader)
		if err := c.conn.Close(); err != nil {
			c.log.Debug().Err(err).Msg("feed socket close")
		}
		c.conn = nil
	}
	c.subs = nil
	c.setConnected(false)
}

// shutdown is the terminal transition.
func (c *Client) shutdown() {
	stopTimer(c.reconnectTimer)
	c.reconnectTimer = nil

	if c.conn != nil {
		for id := range c.subs {
			if frame, err := c.variant.EncodeStop(id); err == nil {
				_ = c.conn.WriteMessage(websocket.TextMessage, frame)
			}
		}
		if c.variant == VariantLegacyWS {
			if frame, err := EncodeTerminate(); err == nil {
				_ = c.conn.WriteMessage(websocket.TextMessage, frame)
			}
		}
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}
	c.detach()
	c.setState(StateShutDown)
	c.log.Info().Msg("feed client stopped")
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
	metrics.FeedState.Set(float64(s))
}

func (c *Client) setConnected(v bool) {
	c.connected.Store(v)
	metrics.SetFeedConnected(v)
}

// timerC returns t's channel, or nil (blocks forever in select) when t is nil.
func timerC(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
