// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

// Package logging provides centralized zerolog-based structured logging for Feedwatch.
//
// Every component logs through the global logger so that level, format and
// caller settings are applied in one place.
//
// # Quick Start
//
//	import "github.com/tomtom215/feedwatch/internal/logging"
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("url", u).Msg("Feed connected")
//	logging.Warn().Err(err).Str("subscription_id", id).Msg("Subscription error")
//
// # Configuration
//
// Environment Variables (via internal/config):
//
//	LOG_LEVEL   - Minimum log level: trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - Output format: json, console (default: json)
//	LOG_CALLER  - Include caller file:line: true, false (default: false)
//
// # Component Loggers
//
// Long-lived components hold a child logger with a fixed "component" field:
//
//	log := logging.Component("notifier")
//	log.Debug().Str("category", "blocks").Msg("notification suppressed by debounce")
//
// # Context-Aware Logging
//
// Request and correlation IDs set by the HTTP middleware are attached by Ctx:
//
//	logging.Ctx(r.Context()).Error().Err(err).Msg("Query failed")
//
// # Adapters
//
//   - NewSlogLogger: *slog.Logger backed by zerolog, used for the sutureslog hook
//   - NewWatermillAdapter: watermill.LoggerAdapter for the in-process event bus
//
// Always terminate log chains with .Msg() or .Send(); otherwise nothing is emitted.
//
// # Runtime Level Changes
//
// SetLevelString applies a new level without rebuilding the logger; the
// server calls it when the config file is edited. ValidLevel backs the
// "loglevel" validation tag on LOG_LEVEL.
//
// # Testing
//
//	var buf bytes.Buffer
//	logging.SetLogger(zerolog.New(&buf))
//	logging.Info().Msg("test message")
package logging
