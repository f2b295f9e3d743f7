// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Engine serves queries against the current Snapshot and rebuilds it on
// demand. It is safe for concurrent use.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	observer Observer

	snapshot   atomic.Pointer[Snapshot]
	generation atomic.Uint64

	cache *lru.Cache[cacheKey, *Result]

	requestCount atomic.Int64
	errorCount   atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
}

// cacheKey scopes cached results to a snapshot generation, so a swap
// invalidates every older entry without a purge.
type cacheKey struct {
	generation uint64
	userID     int
}

// NewEngine creates an engine with no snapshot.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config:   cfg.Clone(),
		logger:   logger.With().Str("component", "recommend").Logger(),
		observer: noopObserver{},
	}

	if cfg.CacheSize > 0 {
		cache, err := lru.New[cacheKey, *Result](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create result cache: %w", err)
		}
		e.cache = cache
	}
	return e, nil
}

// SetObserver installs an event observer. Call before serving queries.
func (e *Engine) SetObserver(o Observer) {
	if o == nil {
		o = noopObserver{}
	}
	e.observer = o
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Snapshot returns the current snapshot, or nil before the first build.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Build indexes store and atomically replaces the current snapshot.
// Queries already running finish against the previous snapshot.
func (e *Engine) Build(ctx context.Context, store *Store) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gen := e.generation.Add(1)
	snap, err := NewSnapshot(store, e.config, gen)
	if err != nil {
		e.logger.Error().Err(err).Uint64("generation", gen).Msg("index build failed")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prev := e.snapshot.Swap(snap)

	e.observer.ObserveBuild(snap.BuildTime, store.Len(), snap.Dim.Dim(), snap.Index.Tables(), snap.Index.BucketCount())
	event := e.logger.Info().
		Str("snapshot_id", snap.ID).
		Uint64("generation", gen).
		Int("users", store.Len()).
		Int("dimension", snap.Dim.Dim()).
		Int("tables", snap.Index.Tables()).
		Int("buckets", snap.Index.BucketCount()).
		Dur("build_time", snap.BuildTime)
	if prev != nil {
		event = event.Uint64("previous_generation", prev.Generation)
	}
	event.Msg("index snapshot swapped")

	if snap.Index.Empty() {
		e.logger.Warn().
			Int("tables", e.config.Tables).
			Int("dimension", snap.Dim.Dim()).
			Msg("index is empty, queries will return no candidates")
	}
	if store.Duplicates() > 0 {
		e.logger.Warn().Int("duplicates", store.Duplicates()).Msg("duplicate ratings overwritten, last write wins")
	}
	return snap, nil
}

func (e *Engine) current() (*Snapshot, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Neighbors returns the ranked neighbor list for userID.
func (e *Engine) Neighbors(ctx context.Context, userID int) ([]Neighbor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := e.current()
	if err != nil {
		return nil, err
	}
	neighbors, _, err := snap.Neighbors(userID)
	return neighbors, err
}

// Recommend runs the full query pipeline for userID against the current
// snapshot. The returned Result is shared with the cache and must not be
// modified.
func (e *Engine) Recommend(ctx context.Context, userID int) (*Result, error) {
	res, _, err := e.RecommendCached(ctx, userID)
	return res, err
}

// RecommendCached is Recommend that also reports whether the result was
// served from the result cache.
func (e *Engine) RecommendCached(ctx context.Context, userID int) (*Result, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	start := time.Now()
	e.requestCount.Add(1)

	snap, err := e.current()
	if err != nil {
		e.errorCount.Add(1)
		e.observer.ObserveQuery(OutcomeError, time.Since(start), 0, 0)
		return nil, false, err
	}

	key := cacheKey{generation: snap.Generation, userID: userID}
	if res, ok := e.cacheGet(key); ok {
		e.observer.ObserveQuery(OutcomeCached, time.Since(start), res.Candidates, len(res.Neighbors))
		return res, true, nil
	}

	res, err := snap.Recommend(userID)
	if err != nil {
		outcome := OutcomeError
		if errors.Is(err, ErrUserNotFound) {
			outcome = OutcomeNotFound
		} else {
			e.errorCount.Add(1)
		}
		e.observer.ObserveQuery(outcome, time.Since(start), 0, 0)
		e.logger.Debug().Err(err).Int("user_id", userID).Msg("recommendation failed")
		return nil, false, err
	}

	outcome := OutcomeOK
	if len(res.Items) == 0 {
		outcome = OutcomeEmpty
	}
	e.observer.ObserveQuery(outcome, time.Since(start), res.Candidates, len(res.Neighbors))
	e.cachePut(key, res)

	e.logger.Debug().
		Int("user_id", userID).
		Int("candidates", res.Candidates).
		Int("neighbors", len(res.Neighbors)).
		Int("items", len(res.Items)).
		Bool("fallback", res.Fallback).
		Dur("latency", time.Since(start)).
		Msg("recommendation complete")
	return res, false, nil
}

// RecommendBatch queries every user concurrently with at most workers
// queries in flight (zero uses GOMAXPROCS). Results keep the order of
// userIDs. A failing user only sets its own Err.
func (e *Engine) RecommendBatch(ctx context.Context, userIDs []int, workers int) []BatchResult {
	results := make([]BatchResult, len(userIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveWorkers(workers))
	for i, uid := range userIDs {
		g.Go(func() error {
			res, err := e.Recommend(gctx, uid)
			results[i] = BatchResult{UserID: uid, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // per-user errors are carried in results

	return results
}

func (e *Engine) cacheGet(key cacheKey) (*Result, bool) {
	if e.cache == nil {
		return nil, false
	}
	res, ok := e.cache.Get(key)
	if ok {
		e.cacheHits.Add(1)
	} else {
		e.cacheMisses.Add(1)
	}
	e.observer.ObserveCache(ok)
	return res, ok
}

func (e *Engine) cachePut(key cacheKey, res *Result) {
	if e.cache != nil {
		e.cache.Add(key, res)
	}
}

// Stats returns engine counters and a summary of the current snapshot.
func (e *Engine) Stats() Stats {
	st := Stats{
		Requests:    e.requestCount.Load(),
		Errors:      e.errorCount.Load(),
		CacheHits:   e.cacheHits.Load(),
		CacheMisses: e.cacheMisses.Load(),
		Hyperplanes: e.config.Hyperplanes,
	}
	if e.cache != nil {
		st.CacheEntries = e.cache.Len()
	}
	if snap := e.snapshot.Load(); snap != nil {
		st.SnapshotID = snap.ID
		st.Generation = snap.Generation
		st.BuiltAt = snap.BuiltAt
		st.BuildTime = snap.BuildTime
		st.Users = snap.Store.Len()
		st.Ratings = snap.Store.RatingCount()
		st.Dimension = snap.Dim.Dim()
		st.Tables = snap.Index.Tables()
		st.Buckets = snap.Index.BucketCount()
	}
	return st
}
