// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

package feed

// State is the lifecycle state of the subscription connection.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateInitializing
	StateSubscribing
	StateActive
	StateReconnecting
	StateShutDown
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateInitializing:
		return "initializing"
	case StateSubscribing:
		return "subscribing"
	case StateActive:
		return "active"
	case StateReconnecting:
		return "reconnecting"
	case StateShutDown:
		return "shut_down"
	default:
		return "unknown"
	}
}

// SubscriptionKind tags what a subscription delivers.
type SubscriptionKind string

const (
	SubscriptionStats       SubscriptionKind = "stats"
	SubscriptionRecentItems SubscriptionKind = "recent_items"
)

// Subscription is one server-side subscription on the current connection.
// All subscriptions die with their connection.
type Subscription struct {
	ID    string
	Kind  SubscriptionKind
	Query string
}
