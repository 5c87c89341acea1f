// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
type Config struct {
	Feed     FeedConfig     `koanf:"feed"`
	Notifier NotifierConfig `koanf:"notifier"`
	Cache    CacheConfig    `koanf:"cache"`
	Query    QueryConfig    `koanf:"query"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// FeedConfig configures the GraphQL subscription client.
// An empty URL leaves the feed disabled; the rest of the service still runs.
type FeedConfig struct {
	URL               string        `koanf:"url" validate:"omitempty,endpoint"`
	DialTimeout       time.Duration `koanf:"dial_timeout" validate:"gt=0"`
	AckTimeout        time.Duration `koanf:"ack_timeout" validate:"gt=0"`
	BackoffInitial    time.Duration `koanf:"backoff_initial" validate:"gt=0"`
	BackoffMax        time.Duration `koanf:"backoff_max" validate:"gtefield=BackoffInitial"`
	BackoffJitter     bool          `koanf:"backoff_jitter"`
	KeepaliveInterval time.Duration `koanf:"keepalive_interval" validate:"gt=0"`

	// Subscription documents and the data fields their results arrive under.
	StatsQuery  string `koanf:"stats_query" validate:"required"`
	RecentQuery string `koanf:"recent_query" validate:"required"`
	StatsField  string `koanf:"stats_field" validate:"required"`
	RecentField string `koanf:"recent_field" validate:"required"`
}

// Configured reports whether an endpoint was provided.
func (f FeedConfig) Configured() bool {
	return f.URL != ""
}

// NotifierConfig configures list-change notifications.
type NotifierConfig struct {
	Debounce time.Duration `koanf:"debounce" validate:"gte=0"`
}

// CacheConfig configures the shared TTL cache.
type CacheConfig struct {
	DefaultTTL time.Duration `koanf:"default_ttl" validate:"gt=0"`
}

// QueryConfig configures the one-shot GraphQL query client. Its URL is
// derived from the feed URL.
type QueryConfig struct {
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	CacheTTL  time.Duration `koanf:"cache_ttl" validate:"gte=0"`
	RateLimit float64       `koanf:"rate_limit" validate:"gte=0"`
	Burst     int           `koanf:"burst" validate:"gte=1"`
}

// ServerConfig configures the status HTTP server.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout     time.Duration `koanf:"timeout" validate:"gt=0"`
	CORSOrigins []string      `koanf:"cors_origins"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"loglevel"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}
