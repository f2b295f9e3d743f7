// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import "time"

// Result is the outcome of one recommendation query.
type Result struct {
	// UserID is the query user.
	UserID int `json:"user_id"`

	// Neighbors is the ranked neighbor list, at most K long.
	Neighbors []Neighbor `json:"neighbors"`

	// MeanSimilarity is the mean similarity of Neighbors.
	MeanSimilarity float64 `json:"mean_similarity"`

	// Candidates is the number of distinct LSH candidates considered.
	Candidates int `json:"candidates"`

	// Items is the full ranked recommendation list.
	Items []Recommendation `json:"items"`

	// Fallback is true when Items came from the relaxed aggregation pass.
	Fallback bool `json:"fallback"`

	// Generation identifies the snapshot that served the query.
	Generation uint64 `json:"generation"`
}

// Top returns the first n items, or all items when n <= 0.
func (r *Result) Top(n int) []Recommendation {
	return Top(r.Items, n)
}

// BatchResult pairs a user with its query outcome. Err is set instead of
// Result when that user's query failed.
type BatchResult struct {
	UserID int
	Result *Result
	Err    error
}

// Stats summarizes the engine and its current snapshot.
type Stats struct {
	SnapshotID   string        `json:"snapshot_id"`
	Generation   uint64        `json:"generation"`
	BuiltAt      time.Time     `json:"built_at"`
	BuildTime    time.Duration `json:"build_time"`
	Users        int           `json:"users"`
	Ratings      int           `json:"ratings"`
	Dimension    int           `json:"dimension"`
	Tables       int           `json:"tables"`
	Hyperplanes  int           `json:"hyperplanes"`
	Buckets      int           `json:"buckets"`
	Requests     int64         `json:"requests"`
	Errors       int64         `json:"errors"`
	CacheHits    int64         `json:"cache_hits"`
	CacheMisses  int64         `json:"cache_misses"`
	CacheEntries int           `json:"cache_entries"`
}

// Query outcomes reported to an Observer.
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"

	// OutcomeCached marks a query answered from the result cache.
	OutcomeCached = "cached"
)

// Observer receives engine events. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveBuild(d time.Duration, users, dimension, tables, buckets int)
	ObserveQuery(outcome string, d time.Duration, candidates, neighbors int)
	ObserveCache(hit bool)
}

type noopObserver struct{}

func (noopObserver) ObserveBuild(time.Duration, int, int, int, int) {}
func (noopObserver) ObserveQuery(string, time.Duration, int, int)   {}
func (noopObserver) ObserveCache(bool)                              {}
