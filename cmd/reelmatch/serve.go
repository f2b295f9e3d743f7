// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/reelmatch/internal/api"
	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/supervisor"
	"github.com/tomtom215/reelmatch/internal/supervisor/services"
)

// snapshotSaveTimeout bounds persisting a refreshed dataset.
const snapshotSaveTimeout = 10 * time.Minute

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recommendations over HTTP",
		Long: `Serve starts the HTTP API under a supervisor tree. The dataset is
loaded and indexed in the background; /health/ready reports 503 until the
first index is live. With refresh.enabled the dataset is reloaded and the
index rebuilt every refresh.interval, swapping snapshots without pausing
queries.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return runServe(ctx, a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	logger := logging.WithComponent("serve")

	engine, err := a.newEngine()
	if err != nil {
		return err
	}

	snapshots, err := a.openSnapshots()
	if err != nil {
		return err
	}
	if snapshots != nil {
		defer func() {
			if cerr := snapshots.Close(); cerr != nil {
				logger.Warn().Err(cerr).Msg("Failed to close snapshot store")
			}
		}()
	}

	handler := api.NewHandler(engine)
	handler.SetTitles(a.loadTitles(ctx))

	warm := warmStart(ctx, a, engine, snapshots)

	mwCfg := api.DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = a.cfg.Server.CORSOrigins
	mwCfg.RateLimitRequests = a.cfg.Server.RateLimitRequests
	mwCfg.RateLimitWindow = a.cfg.Server.RateLimitWindow
	router := api.NewRouter(handler, api.NewChiMiddleware(mwCfg), logging.WithComponent("api"))

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           router,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
	}

	refreshCfg := services.RefreshServiceConfig{
		LoadOnStartup: !warm,
		OnRefresh: func(ds *dataset.Dataset, _ *recommend.Snapshot) {
			saveSnapshot(a, snapshots, ds)
		},
	}
	if a.cfg.Refresh.Enabled {
		refreshCfg.Interval = a.cfg.Refresh.Interval
	}
	opts := a.loadOptions()
	load := func(ctx context.Context) (*dataset.Dataset, error) {
		return dataset.Load(ctx, opts, logging.WithComponent("dataset"))
	}
	refresh := services.NewRefreshService(engine, load, refreshCfg, logging.WithComponent("refresh"))

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
	})
	tree.AddDataService(refresh)
	tree.AddAPIService(services.NewHTTPServerService(srv, a.cfg.Server.ShutdownTimeout, logging.WithComponent("http")))

	logger.Info().
		Str("addr", a.cfg.Server.Addr).
		Bool("warm_start", warm).
		Bool("refresh", a.cfg.Refresh.Enabled).
		Dur("refresh_interval", refreshCfg.Interval).
		Msg("Starting server")

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logger.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}
	logger.Info().Msg("Server stopped")
	return nil
}

// warmStart builds the first index from the snapshot store so the server is
// ready before the source dataset is read. It reports whether an index is
// live afterwards.
func warmStart(ctx context.Context, a *app, engine *recommend.Engine, snapshots *dataset.SnapshotStore) bool {
	if snapshots == nil {
		return false
	}
	logger := logging.WithComponent("snapshot")

	meta, err := snapshots.Meta(ctx)
	if err != nil {
		if !errors.Is(err, dataset.ErrSnapshotEmpty) {
			logger.Warn().Err(err).Msg("Snapshot metadata unreadable")
		}
		return false
	}
	if meta.MinRatingsPerUser != a.cfg.Dataset.MinRatingsPerUser || meta.MinRatingsPerItem != a.cfg.Dataset.MinRatingsPerItem {
		logger.Info().
			Int("snapshot_min_user", meta.MinRatingsPerUser).
			Int("snapshot_min_item", meta.MinRatingsPerItem).
			Msg("Snapshot filtered with different thresholds, ignoring")
		return false
	}

	ds, err := dataset.LoadFromSnapshot(ctx, snapshots, a.cfg.LSH.Workers, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Snapshot load failed")
		return false
	}
	if _, err := engine.Build(ctx, ds.Store); err != nil {
		logger.Warn().Err(err).Msg("Index build from snapshot failed")
		return false
	}
	logger.Info().Time("saved_at", meta.SavedAt).Str("source", meta.Source).Msg("Warm start from snapshot")
	return true
}

// saveSnapshot persists a refreshed dataset. Failures are logged only; the
// live index is already swapped.
func saveSnapshot(a *app, snapshots *dataset.SnapshotStore, ds *dataset.Dataset) {
	if snapshots == nil || ds.Source == dataset.LoaderSnapshot {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotSaveTimeout)
	defer cancel()
	if err := snapshots.SaveRatings(ctx, ds.Ratings, a.snapshotMeta(ds)); err != nil {
		logging.Warn().Err(err).Msg("Failed to save dataset snapshot")
	}
}
