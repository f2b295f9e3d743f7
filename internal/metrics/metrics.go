// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package metrics defines the Prometheus collectors of the service. All
// collectors register with the default registry through promauto and are
// exposed by the API at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

var (
	// Index build metrics
	IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lsh_index_build_duration_seconds",
			Help:    "Duration of LSH index builds in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms .. ~80s
		},
	)

	IndexBuildsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lsh_index_builds_total",
			Help: "Total number of completed LSH index builds",
		},
	)

	IndexUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lsh_index_users",
			Help: "Number of users in the current snapshot",
		},
	)

	IndexDimension = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lsh_index_dimension",
			Help: "Number of distinct items (D) in the current snapshot",
		},
	)

	IndexTables = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lsh_index_tables",
			Help: "Number of hash tables (L) in the current snapshot",
		},
	)

	IndexBuckets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lsh_index_buckets",
			Help: "Non-empty buckets summed over all tables",
		},
	)

	// Query metrics
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_queries_total",
			Help: "Total number of recommendation queries by outcome",
		},
		[]string{"outcome"}, // ok, empty, cached, not_found, error
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_query_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		},
		[]string{"outcome"},
	)

	QueryCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_query_candidates",
			Help:    "Distinct LSH candidates per query",
			Buckets: prometheus.ExponentialBuckets(1, 2, 16),
		},
	)

	QueryNeighbors = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_query_neighbors",
			Help:    "Neighbors retained per query",
			Buckets: prometheus.LinearBuckets(0, 5, 11),
		},
	)

	ResultCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_hits_total",
			Help: "Total number of result cache hits",
		},
	)

	ResultCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_misses_total",
			Help: "Total number of result cache misses",
		},
	)

	// Dataset metrics
	DatasetLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataset_load_duration_seconds",
			Help:    "Duration of dataset loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"}, // csv, duckdb, snapshot
	)

	DatasetRatings = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dataset_ratings",
			Help: "Ratings in the last loaded dataset by stage",
		},
		[]string{"stage"}, // loaded, filtered
	)

	DatasetRowsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dataset_rows_skipped_total",
			Help: "Malformed input rows skipped during loading",
		},
	)

	// Refresh metrics
	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_runs_total",
			Help: "Total number of snapshot refresh runs by result",
		},
		[]string{"result"}, // success, failure, rejected
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current consecutive failures seen by the circuit breaker",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordDatasetLoad records a dataset load from source.
func RecordDatasetLoad(source string, duration time.Duration, loaded, filtered, skipped int) {
	DatasetLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
	DatasetRatings.WithLabelValues("loaded").Set(float64(loaded))
	DatasetRatings.WithLabelValues("filtered").Set(float64(filtered))
	DatasetRowsSkipped.Add(float64(skipped))
}

// RecordRefresh counts a refresh run by result.
func RecordRefresh(result string) {
	RefreshTotal.WithLabelValues(result).Inc()
}

// EngineObserver feeds recommend.Engine events into the collectors above.
type EngineObserver struct{}

var _ recommend.Observer = EngineObserver{}

// ObserveBuild implements recommend.Observer.
func (EngineObserver) ObserveBuild(d time.Duration, users, dimension, tables, buckets int) {
	IndexBuildDuration.Observe(d.Seconds())
	IndexBuildsTotal.Inc()
	IndexUsers.Set(float64(users))
	IndexDimension.Set(float64(dimension))
	IndexTables.Set(float64(tables))
	IndexBuckets.Set(float64(buckets))
}

// ObserveQuery implements recommend.Observer.
func (EngineObserver) ObserveQuery(outcome string, d time.Duration, candidates, neighbors int) {
	QueriesTotal.WithLabelValues(outcome).Inc()
	QueryDuration.WithLabelValues(outcome).Observe(d.Seconds())
	if outcome == recommend.OutcomeOK || outcome == recommend.OutcomeEmpty {
		QueryCandidates.Observe(float64(candidates))
		QueryNeighbors.Observe(float64(neighbors))
	}
}

// ObserveCache implements recommend.Observer.
func (EngineObserver) ObserveCache(hit bool) {
	if hit {
		ResultCacheHits.Inc()
		return
	}
	ResultCacheMisses.Inc()
}
