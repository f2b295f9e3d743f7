// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package services provides suture.Service wrappers for the long-running parts
of the server.

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Drains in-flight requests when the tree shuts down

Snapshot Refresh (RefreshService):
  - Loads the dataset and rebuilds the LSH index on an interval
  - Runs each reload behind a gobreaker circuit breaker so a broken data
    source is not hammered every tick
  - The engine swaps snapshots atomically; queries never see a partial index
*/
package services
