// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Loader names.
const (
	LoaderCSV      = "csv"
	LoaderDuckDB   = "duckdb"
	LoaderSparse   = "sparse"
	LoaderSnapshot = "snapshot"
)

// ErrUnknownLoader is returned by Load for an unsupported loader name.
var ErrUnknownLoader = errors.New("dataset: unknown loader")

// Options selects and filters the ratings source.
type Options struct {
	Loader            string
	RatingsPath       string
	MinRatingsPerUser int
	MinRatingsPerItem int
	Workers           int
}

// Dataset is a filtered rating set and the store built from it.
type Dataset struct {
	Ratings []Rating
	Store   *recommend.Store
	Source  string
	Stats   LoadStats
}

// Load reads opts.RatingsPath with the configured loader, applies the
// activity filter and builds the store.
func Load(ctx context.Context, opts Options, logger zerolog.Logger) (*Dataset, error) {
	start := time.Now()

	var (
		ratings []Rating
		stats   LoadStats
		err     error
	)
	switch opts.Loader {
	case LoaderCSV, "":
		ratings, stats, err = LoadRatingsCSV(ctx, opts.RatingsPath)
		if err == nil {
			ratings = FilterByActivity(ratings, opts.MinRatingsPerUser, opts.MinRatingsPerItem)
		}
	case LoaderSparse:
		ratings, stats, err = LoadSparse(ctx, opts.RatingsPath)
		if err == nil {
			ratings = FilterByActivity(ratings, opts.MinRatingsPerUser, opts.MinRatingsPerItem)
		}
	case LoaderDuckDB:
		ratings, stats, err = LoadRatingsDuckDB(ctx, opts.RatingsPath, opts.MinRatingsPerUser, opts.MinRatingsPerItem)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLoader, opts.Loader)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s ratings from %s: %w", loaderName(opts.Loader), opts.RatingsPath, err)
	}

	ds := finish(ratings, stats, loaderName(opts.Loader), opts.Workers, start)
	logger.Info().
		Str("source", ds.Source).
		Str("path", opts.RatingsPath).
		Int("rows", stats.Rows).
		Int("skipped", stats.Skipped).
		Int("kept", len(ratings)).
		Int("users", ds.Store.Len()).
		Dur("duration", time.Since(start)).
		Msg("Dataset loaded")
	return ds, nil
}

// LoadFromSnapshot builds a Dataset from a SnapshotStore.
func LoadFromSnapshot(ctx context.Context, s *SnapshotStore, workers int, logger zerolog.Logger) (*Dataset, error) {
	start := time.Now()
	ratings, err := s.LoadRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot ratings: %w", err)
	}
	stats := LoadStats{Rows: len(ratings), Loaded: len(ratings)}

	ds := finish(ratings, stats, LoaderSnapshot, workers, start)
	logger.Info().
		Int("ratings", len(ratings)).
		Int("users", ds.Store.Len()).
		Dur("duration", time.Since(start)).
		Msg("Dataset loaded from snapshot")
	return ds, nil
}

func finish(ratings []Rating, stats LoadStats, source string, workers int, start time.Time) *Dataset {
	store := BuildStore(ratings, workers)
	stats.Duration = time.Since(start)
	metrics.RecordDatasetLoad(source, stats.Duration, stats.Rows, len(ratings), stats.Skipped)
	return &Dataset{
		Ratings: ratings,
		Store:   store,
		Source:  source,
		Stats:   stats,
	}
}

func loaderName(loader string) string {
	if loader == "" {
		return LoaderCSV
	}
	return loader
}
