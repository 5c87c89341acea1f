// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package query

import "strings"

// HTTPURL maps a feed endpoint to the URL used for one-shot queries:
// wss:// becomes https:// and ws:// becomes http://. Anything else is
// returned unchanged.
func HTTPURL(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "wss://"):
		return "https://" + raw[len("wss://"):]
	case strings.HasPrefix(lower, "ws://"):
		return "http://" + raw[len("ws://"):]
	default:
		return raw
	}
}
