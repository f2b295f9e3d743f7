// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// app carries state shared by every subcommand once PersistentPreRunE ran.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "reelmatch",
		Short: "LSH movie recommendation engine",
		Long: `Reelmatch indexes user rating vectors with random-hyperplane LSH,
finds approximate nearest neighbors by cosine similarity and recommends
the items those neighbors rated, weighted by similarity.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: RM_CONFIG_PATH or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level")

	rootCmd.AddCommand(
		newFilterCmd(a),
		newRecommendCmd(a),
		newEvaluateCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

// init loads configuration and installs the global logger.
func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	logging.Init(cfg.LoggingConfig())
	a.cfg = cfg
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func (a *app) loadOptions() dataset.Options {
	return dataset.Options{
		Loader:            a.cfg.Dataset.Loader,
		RatingsPath:       a.cfg.Dataset.RatingsPath,
		MinRatingsPerUser: a.cfg.Dataset.MinRatingsPerUser,
		MinRatingsPerItem: a.cfg.Dataset.MinRatingsPerItem,
		Workers:           a.cfg.LSH.Workers,
	}
}

// openSnapshots opens the configured snapshot store, or returns nil when
// none is configured.
func (a *app) openSnapshots() (*dataset.SnapshotStore, error) {
	if a.cfg.Dataset.SnapshotDir == "" {
		return nil, nil
	}
	return dataset.OpenSnapshotStore(a.cfg.Dataset.SnapshotDir, logging.WithComponent("snapshot"))
}

// snapshotMeta describes ds for the snapshot store.
func (a *app) snapshotMeta(ds *dataset.Dataset) dataset.Meta {
	return dataset.Meta{
		Source:            ds.Source,
		MinRatingsPerUser: a.cfg.Dataset.MinRatingsPerUser,
		MinRatingsPerItem: a.cfg.Dataset.MinRatingsPerItem,
	}
}

// newEngine builds an engine from configuration with metrics attached.
func (a *app) newEngine() (*recommend.Engine, error) {
	engine, err := recommend.NewEngine(a.cfg.EngineConfig(), logging.WithComponent("engine"))
	if err != nil {
		return nil, err
	}
	engine.SetObserver(metrics.EngineObserver{})
	return engine, nil
}

// loadTitles reads the movie titles file. A missing file is not fatal:
// reports print "(Title not found)" instead.
func (a *app) loadTitles(ctx context.Context) dataset.Titles {
	path := a.cfg.Dataset.MoviesPath
	if path == "" {
		return dataset.Titles{}
	}
	titles, err := dataset.LoadTitlesCSV(ctx, path)
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Movie titles unavailable")
		return dataset.Titles{}
	}
	logging.Info().Int("titles", len(titles)).Str("path", path).Msg("Movie titles loaded")
	return titles
}
