// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

/*
Package main is the entry point for the feedwatch server.

Feedwatch keeps a live view of a remote GraphQL endpoint. It holds a
graphql-ws subscription open for aggregate statistics and recent activity,
turns count growth into debounced list:<category> events, and serves a
small status API.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("feedwatch")
	├── FeedSupervisor ("feed-layer")
	│   ├── Notifier (updates -> list:<category>)
	│   ├── Live bridge (list:<category> -> websocket hub)
	│   └── Feed client (only when FEED_URL is set)
	└── APISupervisor ("api-layer")
	    ├── WebSocket hub (/api/v1/ws clients)
	    └── HTTP Server (/healthz, /metrics, /api/v1)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Event bus: Watermill GoChannel
 4. Feed client, query client and TTL cache
 5. Supervisor Tree: Suture v4 process supervision
 6. HTTP Server: Chi router with middleware stack

If the endpoint is unreachable at boot the feed service stops for good and
the rest of the process keeps running, so callers fall back to polling the
query API.

# Configuration

	FEED_URL=wss://api.example/graphql   # empty disables the live feed
	FEED_BACKOFF_INITIAL=1s
	FEED_BACKOFF_MAX=30s
	NOTIFIER_DEBOUNCE=5s
	HTTP_PORT=3858
	LOG_LEVEL=info                       # trace, debug, info, warn, error
	LOG_FORMAT=json                      # json or console

See internal/config for the full list. When a config file is in use
(CONFIG_PATH or ./config.yaml), editing logging.level in it takes effect
without a restart.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Closes live stream clients
 3. Completes both subscriptions, closes the socket and cancels any pending reconnect
 4. Stops the notifier, discarding queued list events and debounce state
 5. Waits for the supervisor tree to return, then reports any services that failed to stop
*/
package main
