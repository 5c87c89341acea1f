// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package feed

import "strings"

// WebSocketURL rewrites an HTTP(S) endpoint to its WebSocket form:
// https -> wss, http -> ws. Any other scheme is returned unchanged.
func WebSocketURL(raw string) string {
	switch {
	case hasSchemePrefix(raw, "https://"):
		return "wss://" + raw[len("https://"):]
	case hasSchemePrefix(raw, "http://"):
		return "ws://" + raw[len("http://"):]
	default:
		return raw
	}
}

// hasSchemePrefix matches URL schemes case-insensitively.
func hasSchemePrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
