// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package supervisor provides process supervision for the serve command using
suture v4.

Services are grouped in two layers so a failing dataset refresh cannot take
the HTTP API down with it:

	RootSupervisor ("reelmatch")
	├── DataSupervisor ("data-layer")
	│   └── RefreshService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's failure decay and backoff.
Context cancellation shuts the tree down in order, bounded by
TreeConfig.ShutdownTimeout. Supervisor events are logged through
sutureslog into the zerolog logger (see logging.NewSlogLogger).

Usage:

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewRefreshService(engine, load, refreshCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 15*time.Second, logger))
	err := tree.Serve(ctx)
*/
package supervisor
