// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/logging"
)

type filterOptions struct {
	sparseOut  string
	exploreOut string
	snapshot   bool
}

func newFilterCmd(a *app) *cobra.Command {
	opts := &filterOptions{}
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Write the activity-filtered dataset and explore user list",
		Long: `Filter reads the ratings file, drops users and items below the
configured activity thresholds and writes the survivors in sparse line
format ("user item:rating ..."), plus a sampled list of explore users.
With --snapshot the result is also saved to the badger snapshot store.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return runFilter(ctx, a, opts)
		},
	}
	cmd.Flags().StringVar(&opts.sparseOut, "out", "filtered_dataset.dat", "sparse dataset output path")
	cmd.Flags().StringVar(&opts.exploreOut, "explore-out", "explore.dat", "explore user list output path (empty to skip)")
	cmd.Flags().BoolVar(&opts.snapshot, "snapshot", false, "also save to dataset.snapshot_dir")
	return cmd
}

func runFilter(ctx context.Context, a *app, opts *filterOptions) error {
	logger := logging.WithComponent("filter")

	ds, err := dataset.Load(ctx, a.loadOptions(), logger)
	if err != nil {
		return err
	}

	if err := writeFile(opts.sparseOut, func(w *bufio.Writer) error {
		return dataset.WriteSparse(w, ds.Ratings)
	}); err != nil {
		return fmt.Errorf("write sparse dataset: %w", err)
	}
	logger.Info().Str("path", opts.sparseOut).Int("users", ds.Store.Len()).Msg("Sparse dataset written")

	if opts.exploreOut != "" {
		explore := dataset.SampleUsers(dataset.UserIDs(ds.Ratings), a.cfg.Dataset.ExploreUsers, a.cfg.Dataset.ExploreSeed)
		if err := writeFile(opts.exploreOut, func(w *bufio.Writer) error {
			return dataset.WriteUserIDs(w, explore)
		}); err != nil {
			return fmt.Errorf("write explore users: %w", err)
		}
		logger.Info().Str("path", opts.exploreOut).Int("users", len(explore)).Msg("Explore users written")
	}

	if !opts.snapshot {
		return nil
	}
	store, err := a.openSnapshots()
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	if store == nil {
		return fmt.Errorf("--snapshot requires dataset.snapshot_dir")
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("Failed to close snapshot store")
		}
	}()

	if err := store.SaveRatings(ctx, ds.Ratings, a.snapshotMeta(ds)); err != nil {
		return err
	}
	if titles := a.loadTitles(ctx); len(titles) > 0 {
		if err := store.SaveTitles(ctx, titles); err != nil {
			return err
		}
	}
	logger.Info().Str("dir", a.cfg.Dataset.SnapshotDir).Msg("Snapshot saved")
	return nil
}

// writeFile creates path and hands a buffered writer to fn, flushing and
// closing on return.
func writeFile(path string, fn func(w *bufio.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		return err
	}
	return w.Flush()
}
