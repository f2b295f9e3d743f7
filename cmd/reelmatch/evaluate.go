// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend/evaluate"
)

type evaluateOptions struct {
	k        int
	maxUsers int
	asJSON   bool
}

func newEvaluateCmd(a *app) *cobra.Command {
	opts := &evaluateOptions{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Leave-one-out accuracy of brute-force user KNN",
		Long: `Evaluate hides each rating of each user in turn, predicts it from the
K most similar other users by exact cosine similarity and reports MAE and
RMSE. It is a baseline for the approximate index, not a use of it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return runEvaluate(ctx, a, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&opts.k, "k", 0, "neighbors per prediction (default lsh.neighbors)")
	cmd.Flags().IntVar(&opts.maxUsers, "max-users", 0, "evaluate at most this many users (0 = all)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the report as JSON")
	return cmd
}

func runEvaluate(ctx context.Context, a *app, opts *evaluateOptions, out io.Writer) error {
	k := opts.k
	if k <= 0 {
		k = a.cfg.LSH.Neighbors
	}

	ds, err := dataset.Load(ctx, a.loadOptions(), logging.WithComponent("dataset"))
	if err != nil {
		return err
	}

	rep, err := evaluate.LeaveOneOut(ctx, ds.Store, evaluate.Options{
		K:        k,
		MaxUsers: opts.maxUsers,
		Workers:  a.cfg.LSH.Workers,
	})
	if err != nil {
		return err
	}

	logging.Info().
		Int("k", rep.K).
		Int("users", rep.Users).
		Int("predictions", rep.Predictions).
		Float64("mae", rep.MAE).
		Float64("rmse", rep.RMSE).
		Dur("duration", rep.Duration).
		Msg("Leave-one-out evaluation complete")

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	_, err = fmt.Fprintf(out, "K: %d\nUsers: %d (skipped %d)\nPredictions: %d\nMAE: %.4f\nRMSE: %.4f\n",
		rep.K, rep.Users, rep.Skipped, rep.Predictions, rep.MAE, rep.RMSE)
	return err
}
