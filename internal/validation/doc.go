// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built lazily and shared. Errors name fields by
// their koanf tag path (for example "feed.backoff_max") so messages match the
// keys operators put in config.yaml.
//
// Custom tags:
//   - endpoint: absolute http, https, ws or wss URL with a host
//
// Usage:
//
//	type FeedConfig struct {
//	    URL        string        `koanf:"url" validate:"omitempty,endpoint"`
//	    AckTimeout time.Duration `koanf:"ack_timeout" validate:"gt=0"`
//	}
//
//	if err := validation.ValidateStruct(cfg); err != nil {
//	    return fmt.Errorf("invalid configuration: %w", err)
//	}
package validation
