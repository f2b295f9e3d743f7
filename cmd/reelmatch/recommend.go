// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend/evaluate"
	"github.com/tomtom215/reelmatch/internal/report"
)

const (
	formatText  = "text"
	formatJSONL = "jsonl"
)

type recommendOptions struct {
	usersPath    string
	out          string
	format       string
	fromSnapshot bool
}

func newRecommendCmd(a *app) *cobra.Command {
	opts := &recommendOptions{}
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend movies for a batch of users",
		Long: `Recommend loads the dataset, builds the LSH index and writes the top
recommendations with hit rates for each explore user. Explore users are
read from --users, or sampled from the dataset using dataset.explore_users
and dataset.explore_seed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch opts.format {
			case formatText, formatJSONL:
			default:
				return fmt.Errorf("unknown --format %q (want %s or %s)", opts.format, formatText, formatJSONL)
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return runRecommend(ctx, a, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.usersPath, "users", "", "explore user list, one id per line")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output path (default stdout)")
	cmd.Flags().StringVar(&opts.format, "format", formatText, "output format: text or jsonl")
	cmd.Flags().BoolVar(&opts.fromSnapshot, "from-snapshot", false, "load the dataset from dataset.snapshot_dir")
	return cmd
}

func runRecommend(ctx context.Context, a *app, opts *recommendOptions, stdout io.Writer) error {
	logger := logging.WithComponent("recommend")

	ds, titles, err := loadForBatch(ctx, a, opts.fromSnapshot)
	if err != nil {
		return err
	}

	users, err := exploreUsers(a, opts.usersPath, ds)
	if err != nil {
		return err
	}

	var test map[int]map[int]struct{}
	if path := a.cfg.Dataset.TestPath; path != "" {
		held, _, err := dataset.LoadRatingsCSV(ctx, path)
		if err != nil {
			return fmt.Errorf("load test ratings: %w", err)
		}
		test = dataset.Relevant(held)
	}

	engine, err := a.newEngine()
	if err != nil {
		return err
	}
	if _, err := engine.Build(ctx, ds.Store); err != nil {
		return err
	}

	start := time.Now()
	results := engine.RecommendBatch(ctx, users, a.cfg.LSH.Workers)
	if err := ctx.Err(); err != nil {
		return err
	}
	entries := report.Entries(results, ds.Store, test, a.cfg.Recommend.TopN)

	w := stdout
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				logger.Warn().Err(cerr).Str("path", opts.out).Msg("Failed to close output")
			}
		}()
		w = f
	}
	bw := bufio.NewWriter(w)
	switch opts.format {
	case formatJSONL:
		err = report.WriteJSONLines(bw, titles, entries)
	default:
		err = report.WriteText(bw, report.HeaderFromConfig(engine.Config()), titles, entries)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	summary := evaluate.Summarize(report.HitRates(entries))
	logger.Info().
		Int("users", len(users)).
		Int("scored", summary.Users).
		Float64("mean_hit_rate", summary.Mean).
		Float64("std_dev", summary.StdDev).
		Float64("users_with_hit_pct", summary.UsersWithHit).
		Dur("duration", time.Since(start)).
		Msg("Batch recommendations complete")
	return nil
}

// loadForBatch returns the dataset and titles, from the snapshot store when
// fromSnapshot is set.
func loadForBatch(ctx context.Context, a *app, fromSnapshot bool) (*dataset.Dataset, dataset.Titles, error) {
	logger := logging.WithComponent("dataset")
	if !fromSnapshot {
		ds, err := dataset.Load(ctx, a.loadOptions(), logger)
		if err != nil {
			return nil, nil, err
		}
		return ds, a.loadTitles(ctx), nil
	}

	store, err := a.openSnapshots()
	if err != nil {
		return nil, nil, fmt.Errorf("open snapshot store: %w", err)
	}
	if store == nil {
		return nil, nil, errors.New("--from-snapshot requires dataset.snapshot_dir")
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("Failed to close snapshot store")
		}
	}()

	ds, err := dataset.LoadFromSnapshot(ctx, store, a.cfg.LSH.Workers, logger)
	if err != nil {
		return nil, nil, err
	}
	titles, err := store.LoadTitles(ctx)
	if err != nil || len(titles) == 0 {
		titles = a.loadTitles(ctx)
	}
	return ds, titles, nil
}

// exploreUsers reads the user list at path, or samples one from ds.
func exploreUsers(a *app, path string, ds *dataset.Dataset) ([]int, error) {
	if path == "" {
		return dataset.SampleUsers(dataset.UserIDs(ds.Ratings), a.cfg.Dataset.ExploreUsers, a.cfg.Dataset.ExploreSeed), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open explore users: %w", err)
	}
	defer f.Close()
	ids, err := dataset.ReadUserIDs(f)
	if err != nil {
		return nil, fmt.Errorf("read explore users %s: %w", path, err)
	}
	return ids, nil
}
