// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

/*
Package config loads and validates Feedwatch configuration.

Settings are layered with Koanf v2: built-in defaults, then an optional
YAML file (CONFIG_PATH, or config.yaml in the working directory or
/etc/feedwatch), then environment variables. Only the variables listed
below are read; everything else in the environment is ignored.

# Environment Variables

Feed subscription (FeedConfig):
  - FEED_URL: GraphQL endpoint; http(s) is rewritten to ws(s). Empty disables the feed.
  - FEED_DIAL_TIMEOUT: Handshake timeout per dial (default: 10s)
  - FEED_ACK_TIMEOUT: Wait for connection_ack (default: 10s)
  - FEED_BACKOFF_INITIAL / FEED_BACKOFF_MAX: Reconnect delay bounds (default: 1s / 30s)
  - FEED_BACKOFF_JITTER: Randomise reconnect delays (default: false)
  - FEED_KEEPALIVE_INTERVAL: WebSocket ping interval (default: 30s)
  - FEED_STATS_QUERY, FEED_RECENT_QUERY, FEED_STATS_FIELD, FEED_RECENT_FIELD

Notifications and caching:
  - NOTIFIER_DEBOUNCE: Minimum gap between notifications per category (default: 5s)
  - CACHE_DEFAULT_TTL: Default entry lifetime (default: 5m)
  - QUERY_TIMEOUT, QUERY_CACHE_TTL, QUERY_RATE_LIMIT, QUERY_RATE_BURST

HTTP server:
  - HTTP_HOST (default: 0.0.0.0), HTTP_PORT (default: 3858), HTTP_TIMEOUT (default: 30s)
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include caller file and line (default: false)

# Validation

Validate runs go-playground/validator over the struct tags. Errors name
the offending koanf path, for example "feed.backoff_max must not be less
than BackoffInitial".
*/
package config
