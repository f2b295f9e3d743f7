// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package recommend implements user-based collaborative filtering accelerated
// by a random-hyperplane locality-sensitive hashing (LSH) index.
//
// # Architecture
//
// Data flows strictly downstream:
//
//   - Store: sparse user rating vectors with precomputed L2 norms
//   - DimIndex: dense coordinate per item, ascending by item id
//   - HyperplaneFamily: L sets of k Gaussian hyperplanes from an explicit seed
//   - Index: one signature-keyed bucket table per hyperplane set
//   - Retrieve: union of the query's buckets across all tables
//   - RankNeighbors: exact cosine re-ranking truncated to K
//   - Aggregate: similarity-weighted rating prediction with a fallback pass
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	if _, err := engine.Build(ctx, store); err != nil {
//	    return err
//	}
//	result, err := engine.Recommend(ctx, userID)
//
// # Thread Safety
//
// A built Snapshot is immutable. Queries read the current snapshot without
// locking; Build produces a new snapshot and swaps it atomically, so
// in-flight queries finish against the snapshot they started with.
package recommend
