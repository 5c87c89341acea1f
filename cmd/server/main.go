// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/feedwatch/internal/api"
	"github.com/tomtom215/feedwatch/internal/cache"
	"github.com/tomtom215/feedwatch/internal/config"
	"github.com/tomtom215/feedwatch/internal/feed"
	"github.com/tomtom215/feedwatch/internal/logging"
	"github.com/tomtom215/feedwatch/internal/notifier"
	"github.com/tomtom215/feedwatch/internal/pubsub"
	"github.com/tomtom215/feedwatch/internal/query"
	"github.com/tomtom215/feedwatch/internal/supervisor"
	"github.com/tomtom215/feedwatch/internal/supervisor/services"
	"github.com/tomtom215/feedwatch/internal/websocket"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logging.Init(logCfg)

	if path, err := config.WatchLogLevel(func(level string) {
		logging.SetLevelString(level)
		logging.Info().Str("level", level).Msg("Log level reloaded")
	}); err != nil {
		logging.Warn().Err(err).Msg("Config file watch disabled")
	} else if path != "" {
		logging.Info().Str("path", path).Msg("Watching config file for log level changes")
	}

	logging.Info().
		Bool("feed_configured", cfg.Feed.Configured()).
		Dur("debounce", cfg.Notifier.Debounce).
		Msg("Starting feedwatch")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := pubsub.New(pubsub.DefaultConfig())
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close event bus")
		}
	}()

	client := feed.NewClient(feed.Options{
		URL:               cfg.Feed.URL,
		DialTimeout:       cfg.Feed.DialTimeout,
		AckTimeout:        cfg.Feed.AckTimeout,
		BackoffInitial:    cfg.Feed.BackoffInitial,
		BackoffMax:        cfg.Feed.BackoffMax,
		BackoffJitter:     cfg.Feed.BackoffJitter,
		KeepaliveInterval: cfg.Feed.KeepaliveInterval,
		StatsQuery:        cfg.Feed.StatsQuery,
		RecentQuery:       cfg.Feed.RecentQuery,
		StatsField:        cfg.Feed.StatsField,
		RecentField:       cfg.Feed.RecentField,
	}, bus)

	// The query endpoint shares the feed's host; without a feed there is
	// nothing to query.
	var queryDoer api.QueryDoer
	if cfg.Feed.Configured() {
		queryCache := cache.New[string, json.RawMessage](cache.Options{
			Name:       "query",
			DefaultTTL: cfg.Cache.DefaultTTL,
		})
		queryClient := query.NewClient(query.Config{
			URL:       query.HTTPURL(cfg.Feed.URL),
			Timeout:   cfg.Query.Timeout,
			RateLimit: cfg.Query.RateLimit,
			Burst:     cfg.Query.Burst,
		})
		queryDoer = query.NewCachedClient(queryClient, queryCache, cfg.Query.CacheTTL)
	}

	hub := websocket.NewHub()

	mwCfg := api.DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.Server.CORSOrigins
	handler := api.NewHandler(client, queryDoer).
		WithLiveStream(websocket.NewHandler(hub, cfg.Server.CORSOrigins))
	router := api.NewRouter(handler, api.NewChiMiddleware(mwCfg))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Feed layer. A snapshot published before the notifier subscribes is
	// dropped by the bus; the next one seeds the notifier instead.
	tree.AddFeedService(notifier.New(bus, bus, notifier.Config{Debounce: cfg.Notifier.Debounce}))
	tree.AddFeedService(websocket.NewBridge(bus, hub))
	if cfg.Feed.Configured() {
		tree.AddFeedService(services.NewFeedService(client))
	} else {
		logging.Info().Msg("FEED_URL not set, live feed disabled")
	}

	tree.AddAPIService(hub)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		if err := supervisor.AwaitStop(errCh); err != nil {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
