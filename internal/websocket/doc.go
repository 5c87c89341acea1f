// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

/*
Package websocket streams list-change notifications to browser clients.

Key Components:

  - Hub: tracks connected clients and fans broadcasts out to them
  - Client: one connection with a read goroutine and a write goroutine
  - Handler: upgrades GET /api/v1/ws after an Origin check
  - Bridge: subscribes to every list:<category> topic and broadcasts each
    event as a list_changed message

Architecture:

	bus list:<category> ──> Bridge ──> Hub ──┬──> Client 1
	                                         ├──> Client 2
	                                         └──> Client N

Hub and Bridge both implement suture.Service.

Message Types:

	{"type":"list_changed","data":{"category":"blocks","added_count":3}}
	{"type":"pong","data":null}     // reply to a client {"type":"ping"}

Delivery is best effort. A full broadcast queue drops the message and a
client whose buffer is full is disconnected; browsers reconnect and refetch.
*/
package websocket
