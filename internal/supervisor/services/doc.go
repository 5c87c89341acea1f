// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

/*
Package services provides suture.Service wrappers for Feedwatch components.

  - FeedService: Start/Close of the subscription client. A failed first
    connection returns suture.ErrDoNotRestart; the client handles every
    later reconnect itself.
  - HTTPServerService: ListenAndServe/Shutdown of the status API server.

The update notifier already has a Serve(ctx) error method and is added to
the tree directly.

Each wrapper implements String() so suture events name the service.
*/
package services
