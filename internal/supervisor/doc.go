// Feedwatch - Real-time GraphQL Feed Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedwatch

/*
Package supervisor runs Feedwatch's long-lived services under a suture v4
supervisor tree.

	feedwatch (root)
	├── feed-layer
	│   ├── feed-client   (services.FeedService)
	│   └── notifier      (*notifier.Notifier)
	└── api-layer
	    └── http-server   (services.HTTPServerService)

Layers isolate failures: a notifier crash restarts within feed-layer and
never interrupts the API. Supervisor events are logged through
sutureslog and the zerolog-backed slog handler from package logging.

	tree, _ := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddFeedService(services.NewFeedService(client))
	tree.AddFeedService(n)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err := tree.Serve(ctx)
*/
package supervisor
