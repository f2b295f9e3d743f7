// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// breakerName labels the refresh circuit breaker in metrics and logs.
const breakerName = "dataset-refresh"

// SnapshotBuilder indexes a store and swaps it in. Satisfied by
// *recommend.Engine.
type SnapshotBuilder interface {
	Build(ctx context.Context, store *recommend.Store) (*recommend.Snapshot, error)
}

// LoadFunc produces a fresh dataset.
type LoadFunc func(ctx context.Context) (*dataset.Dataset, error)

// RefreshServiceConfig configures RefreshService.
type RefreshServiceConfig struct {
	// LoadOnStartup runs one refresh before the first tick.
	LoadOnStartup bool

	// Interval between refreshes. Zero disables periodic refresh; the
	// service then only performs the startup load.
	Interval time.Duration

	// Timeout bounds a single load and build. Default: 30m
	Timeout time.Duration

	// MaxConsecutiveFailures opens the breaker. Default: 3
	MaxConsecutiveFailures uint32

	// BreakerTimeout is how long the breaker stays open. Default: 5m
	BreakerTimeout time.Duration

	// OnRefresh is called after each successful swap.
	OnRefresh func(ds *dataset.Dataset, snap *recommend.Snapshot)
}

// RefreshService reloads the dataset and rebuilds the index on a schedule.
type RefreshService struct {
	builder SnapshotBuilder
	load    LoadFunc
	config  RefreshServiceConfig
	cb      *gobreaker.CircuitBreaker[*recommend.Snapshot]
	logger  zerolog.Logger
	name    string
}

// NewRefreshService creates a refresh service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRefreshService(builder SnapshotBuilder, load LoadFunc, cfg RefreshServiceConfig, logger zerolog.Logger) *RefreshService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	if cfg.MaxConsecutiveFailures == 0 {
		cfg.MaxConsecutiveFailures = 3
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 5 * time.Minute
	}

	s := &RefreshService{
		builder: builder,
		load:    load,
		config:  cfg,
		logger:  logger.With().Str("service", "refresh").Logger(),
		name:    "refresh-service",
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	s.cb = gobreaker.NewCircuitBreaker[*recommend.Snapshot](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1, // one probe reload in half-open state
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := from.String(), to.String()
			s.logger.Warn().Str("from", fromStr).Str("to", toStr).Msg("refresh circuit breaker state transition")

			// closed=0, half-open=1, open=2
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})
	return s
}

// Serve implements suture.Service.
func (s *RefreshService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("load_on_startup", s.config.LoadOnStartup).
		Dur("interval", s.config.Interval).
		Msg("refresh service starting")

	if s.config.LoadOnStartup {
		if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("initial refresh failed (will retry on schedule)")
		}
	}

	if s.config.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("refresh service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn().Err(err).Msg("scheduled refresh failed")
			}
		}
	}
}

// Refresh performs one load and build through the circuit breaker.
func (s *RefreshService) Refresh(ctx context.Context) error {
	runID := uuid.New().String()
	logger := s.logger.With().Str("refresh_id", runID).Logger()

	refreshCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	var loaded *dataset.Dataset
	snap, err := s.cb.Execute(func() (*recommend.Snapshot, error) {
		ds, err := s.load(refreshCtx)
		if err != nil {
			return nil, fmt.Errorf("load dataset: %w", err)
		}
		snap, err := s.builder.Build(refreshCtx, ds.Store)
		if err != nil {
			return nil, fmt.Errorf("build index: %w", err)
		}
		loaded = ds
		return snap, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			metrics.RecordRefresh("rejected")
			logger.Warn().Err(err).Msg("refresh rejected by circuit breaker")
			return err
		}
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(float64(s.cb.Counts().ConsecutiveFailures))
		metrics.RecordRefresh("failure")
		return err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)
	metrics.RecordRefresh("success")

	logger.Info().
		Uint64("generation", snap.Generation).
		Str("source", loaded.Source).
		Int("users", loaded.Store.Len()).
		Dur("duration", time.Since(start)).
		Msg("refresh complete")

	if s.config.OnRefresh != nil {
		s.config.OnRefresh(loaded, snap)
	}
	return nil
}

// State reports the breaker state.
func (s *RefreshService) State() string {
	return s.cb.State().String()
}

// String implements fmt.Stringer for suture's logs.
func (s *RefreshService) String() string {
	return s.name
}
