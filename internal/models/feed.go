// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

// Package models holds the domain types exchanged between the feed client,
// the update notifier and dashboard consumers over the pub/sub bus.
package models

import (
	"time"

	"github.com/goccy/go-json"
)

// TopicUpdates carries decoded snapshot and recent-items pushes from the feed client.
const TopicUpdates = "dashboard:updates"

// listTopicPrefix prefixes the per-category notification topics.
const listTopicPrefix = "list:"

// Category is a tracked kind of list/counter with its own notification topic.
type Category string

// Tracked categories.
const (
	CategoryBlocks       Category = "blocks"
	CategoryTransactions Category = "transactions"
	CategoryActions      Category = "actions"
	CategoryAccounts     Category = "accounts"
)

var allCategories = []Category{
	CategoryBlocks,
	CategoryTransactions,
	CategoryActions,
	CategoryAccounts,
}

// AllCategories returns the fixed set of tracked categories.
// The returned slice is a copy and may be modified by the caller.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// ParseCategory maps a wire name to a tracked category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range allCategories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// ListTopic returns the notification topic for a category: "list:<category>".
func ListTopic(c Category) string {
	return listTopicPrefix + string(c)
}

// Snapshot is the latest full set of aggregate counters pushed by the endpoint.
type Snapshot map[Category]int64

// UpdateKind discriminates the payloads published on TopicUpdates.
type UpdateKind string

// Update kinds.
const (
	UpdateSnapshot    UpdateKind = "snapshot"
	UpdateRecentItems UpdateKind = "recent_items"
)

// Update is the envelope published on TopicUpdates.
// Exactly one of Snapshot or Items is set, according to Kind.
type Update struct {
	Kind       UpdateKind        `json:"kind"`
	Snapshot   Snapshot          `json:"snapshot,omitempty"`
	Items      []json.RawMessage `json:"items,omitempty"`
	ReceivedAt time.Time         `json:"received_at"`
}

// ListEvent announces new items in a category on ListTopic(Category).
type ListEvent struct {
	Category Category `json:"category"`
	Added    int64    `json:"added_count"`
}
