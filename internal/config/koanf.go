// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/feedwatch/internal/feed"
	"github.com/tomtom215/feedwatch/internal/notifier"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/feedwatch/config.yaml",
	"/etc/feedwatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Feed: FeedConfig{
			URL:               "", // feed disabled until an endpoint is set
			DialTimeout:       feed.DefaultDialTimeout,
			AckTimeout:        feed.DefaultAckTimeout,
			BackoffInitial:    feed.DefaultBackoffInitial,
			BackoffMax:        feed.DefaultBackoffMax,
			BackoffJitter:     false,
			KeepaliveInterval: feed.DefaultKeepaliveInterval,
			StatsQuery:        feed.DefaultStatsQuery,
			RecentQuery:       feed.DefaultRecentQuery,
			StatsField:        feed.DefaultStatsField,
			RecentField:       feed.DefaultRecentField,
		},
		Notifier: NotifierConfig{
			Debounce: notifier.DefaultDebounce,
		},
		Cache: CacheConfig{
			DefaultTTL: 5 * time.Minute,
		},
		Query: QueryConfig{
			Timeout:   10 * time.Second,
			CacheTTL:  30 * time.Second,
			RateLimit: 10,
			Burst:     20,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        3858,
			Timeout:     30 * time.Second,
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are koanf paths that accept comma-separated env values.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings; YAML lists are left as they are.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	"feed_url":                "feed.url",
	"feed_dial_timeout":       "feed.dial_timeout",
	"feed_ack_timeout":        "feed.ack_timeout",
	"feed_backoff_initial":    "feed.backoff_initial",
	"feed_backoff_max":        "feed.backoff_max",
	"feed_backoff_jitter":     "feed.backoff_jitter",
	"feed_keepalive_interval": "feed.keepalive_interval",
	"feed_stats_query":        "feed.stats_query",
	"feed_recent_query":       "feed.recent_query",
	"feed_stats_field":        "feed.stats_field",
	"feed_recent_field":       "feed.recent_field",

	"notifier_debounce": "notifier.debounce",

	"cache_default_ttl": "cache.default_ttl",

	"query_timeout":    "query.timeout",
	"query_cache_ttl":  "query.cache_ttl",
	"query_rate_limit": "query.rate_limit",
	"query_rate_burst": "query.burst",

	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",
	"cors_origins": "server.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - FEED_URL -> feed.url
//   - NOTIFIER_DEBOUNCE -> notifier.debounce
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// Unmapped keys are skipped so unrelated environment variables
	// never reach the config tree.
	return ""
}

// WatchConfigFile calls callback whenever the file at path changes.
// The caller is responsible for synchronising access to any reloaded config.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}

// WatchLogLevel watches the config file in use, if any, and calls apply with
// the logging level of every reload that loads and validates. It returns the
// watched path, or "" when configuration comes from defaults and env only.
func WatchLogLevel(apply func(level string)) (string, error) {
	path := findConfigFile()
	if path == "" {
		return "", nil
	}
	err := WatchConfigFile(path, func() {
		cfg, err := LoadWithKoanf()
		if err != nil {
			return
		}
		apply(cfg.Logging.Level)
	})
	if err != nil {
		return "", fmt.Errorf("watch %s: %w", path, err)
	}
	return path, nil
}
