// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

/*
Package models defines the data shared between Feedwatch components.

Feed domain:

  - Category: the tracked entity lists (blocks, transactions, actions, accounts)
  - Snapshot: latest aggregate counts per category, replaced on every push
  - Update: envelope published on TopicUpdates ("dashboard:updates")
  - ListEvent: {category, added} published on ListTopic(c) ("list:<category>")

Status API:

  - APIResponse, Metadata, APIError: response envelope
  - HealthStatus, FeedStatus, QueryRequest, QueryResult: endpoint payloads

Topics are plain strings so any in-process bus can carry them; payloads
are JSON-encoded with goccy/go-json.
*/
package models
