// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

func TestEngineObserver_ObserveBuild(t *testing.T) {
	before := testutil.ToFloat64(IndexBuildsTotal)

	EngineObserver{}.ObserveBuild(2*time.Second, 610, 9000, 10, 4321)

	if got := testutil.ToFloat64(IndexBuildsTotal) - before; got != 1 {
		t.Errorf("IndexBuildsTotal delta = %f, want 1", got)
	}
	if got := testutil.ToFloat64(IndexUsers); got != 610 {
		t.Errorf("IndexUsers = %f, want 610", got)
	}
	if got := testutil.ToFloat64(IndexDimension); got != 9000 {
		t.Errorf("IndexDimension = %f, want 9000", got)
	}
	if got := testutil.ToFloat64(IndexBuckets); got != 4321 {
		t.Errorf("IndexBuckets = %f, want 4321", got)
	}
}

func TestEngineObserver_ObserveQuery(t *testing.T) {
	tests := []struct {
		outcome string
	}{
		{recommend.OutcomeOK},
		{recommend.OutcomeEmpty},
		{recommend.OutcomeNotFound},
		{recommend.OutcomeError},
		{recommend.OutcomeCached},
	}

	for _, tt := range tests {
		t.Run(tt.outcome, func(t *testing.T) {
			counter := QueriesTotal.WithLabelValues(tt.outcome)
			before := testutil.ToFloat64(counter)

			EngineObserver{}.ObserveQuery(tt.outcome, time.Millisecond, 40, 10)

			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("QueriesTotal{%s} delta = %f, want 1", tt.outcome, got)
			}
		})
	}
}

func TestEngineObserver_ObserveCache(t *testing.T) {
	hits, misses := testutil.ToFloat64(ResultCacheHits), testutil.ToFloat64(ResultCacheMisses)

	EngineObserver{}.ObserveCache(true)
	EngineObserver{}.ObserveCache(false)
	EngineObserver{}.ObserveCache(false)

	if got := testutil.ToFloat64(ResultCacheHits) - hits; got != 1 {
		t.Errorf("ResultCacheHits delta = %f, want 1", got)
	}
	if got := testutil.ToFloat64(ResultCacheMisses) - misses; got != 2 {
		t.Errorf("ResultCacheMisses delta = %f, want 2", got)
	}
}

func TestRecordDatasetLoad(t *testing.T) {
	skipped := testutil.ToFloat64(DatasetRowsSkipped)

	RecordDatasetLoad("csv", 300*time.Millisecond, 100836, 97000, 3)

	if got := testutil.ToFloat64(DatasetRatings.WithLabelValues("filtered")); got != 97000 {
		t.Errorf("DatasetRatings{filtered} = %f, want 97000", got)
	}
	if got := testutil.ToFloat64(DatasetRowsSkipped) - skipped; got != 3 {
		t.Errorf("DatasetRowsSkipped delta = %f, want 3", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("GET", "/api/v1/users/{userID}/recommendations", "200")
	before := testutil.ToFloat64(counter)

	RecordAPIRequest("GET", "/api/v1/users/{userID}/recommendations", "200", 5*time.Millisecond)

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("APIRequestsTotal delta = %f, want 1", got)
	}
}

func TestRecordRefresh(t *testing.T) {
	counter := RefreshTotal.WithLabelValues("success")
	before := testutil.ToFloat64(counter)

	RecordRefresh("success")

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("RefreshTotal{success} delta = %f, want 1", got)
	}
}
