// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package feed

import (
	"time"

	"github.com/jpillora/backoff"
)

// Backoff is the reconnect delay policy: initial, doubled per failure,
// capped at max, reset on reaching Active. Jitter is opt-in.
//
// Not safe for concurrent use; the client goroutine owns it.
type Backoff struct {
	b *backoff.Backoff
}

// NewBackoff creates a Backoff starting at initial and capped at max.
func NewBackoff(initial, max time.Duration, jitter bool) *Backoff {
	return &Backoff{b: &backoff.Backoff{
		Min:    initial,
		Max:    max,
		Factor: 2,
		Jitter: jitter,
	}}
}

// Next returns the current delay and advances to the next one.
func (b *Backoff) Next() time.Duration {
	return b.b.Duration()
}

// Reset returns the delay to its initial value.
func (b *Backoff) Reset() {
	b.b.Reset()
}

// Attempts returns the number of delays handed out since the last reset.
func (b *Backoff) Attempts() int {
	return int(b.b.Attempt())
}
