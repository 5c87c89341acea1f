// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package config

import (
	"github.com/tomtom215/feedwatch/internal/validation"
)

// Validate checks every section against its struct tags. Field paths in
// the returned error use koanf names, e.g. "feed.backoff_max".
func (c *Config) Validate() error {
	return validation.ValidateStruct(c)
}
