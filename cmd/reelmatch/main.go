// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Command reelmatch builds a random-hyperplane LSH index over user rating
// vectors and recommends items from approximate nearest neighbors.
//
// # Commands
//
//	reelmatch filter     write the activity-filtered dataset and explore list
//	reelmatch recommend  batch recommendations for sampled users
//	reelmatch evaluate   leave-one-out MAE/RMSE of brute-force user KNN
//	reelmatch serve      HTTP API with periodic index refresh
//
// # Configuration
//
// Settings come from built-in defaults, an optional YAML file (--config or
// RM_CONFIG_PATH) and RM_* environment variables, highest last. Command
// flags override all three for the values they name.
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the running command. The server drains
// in-flight requests before exiting.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
