// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

var _ suture.Service = (*RefreshService)(nil)

func newTestEngine(t *testing.T) *recommend.Engine {
	t.Helper()
	engine, err := recommend.NewEngine(recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

// countingLoader returns a dataset until fail is set.
type countingLoader struct {
	calls atomic.Int32
	fail  atomic.Bool
}

var errSourceDown = errors.New("source down")

func (l *countingLoader) Load(ctx context.Context) (*dataset.Dataset, error) {
	l.calls.Add(1)
	if l.fail.Load() {
		return nil, errSourceDown
	}
	ratings := []dataset.Rating{
		{UserID: 1, ItemID: 1, Value: 5},
		{UserID: 2, ItemID: 1, Value: 4},
	}
	return &dataset.Dataset{
		Ratings: ratings,
		Store:   dataset.BuildStore(ratings, 1),
		Source:  "test",
	}, nil
}

func TestRefreshService_Refresh(t *testing.T) {
	engine := newTestEngine(t)
	loader := &countingLoader{}

	var refreshed atomic.Int32
	svc := NewRefreshService(engine, loader.Load, RefreshServiceConfig{
		OnRefresh: func(ds *dataset.Dataset, snap *recommend.Snapshot) {
			refreshed.Add(1)
		},
	}, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if err := svc.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
	}

	if snap := engine.Snapshot(); snap == nil || snap.Generation != 2 {
		t.Errorf("Snapshot() = %+v, want generation 2", snap)
	}
	if refreshed.Load() != 2 {
		t.Errorf("OnRefresh calls = %d, want 2", refreshed.Load())
	}
}

func TestRefreshService_BreakerOpens(t *testing.T) {
	engine := newTestEngine(t)
	loader := &countingLoader{}
	loader.fail.Store(true)

	svc := NewRefreshService(engine, loader.Load, RefreshServiceConfig{
		MaxConsecutiveFailures: 2,
		BreakerTimeout:         time.Hour,
	}, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if err := svc.Refresh(context.Background()); !errors.Is(err, errSourceDown) {
			t.Fatalf("Refresh() #%d error = %v, want errSourceDown", i, err)
		}
	}
	if svc.State() != "open" {
		t.Fatalf("State() = %q, want open", svc.State())
	}

	// While open, the loader is not called.
	err := svc.Refresh(context.Background())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Refresh() error = %v, want ErrOpenState", err)
	}
	if got := loader.calls.Load(); got != 2 {
		t.Errorf("loader calls = %d, want 2", got)
	}
	if engine.Snapshot() != nil {
		t.Error("Snapshot() != nil after failed refreshes")
	}
}

func TestRefreshService_BuildFailureKeepsSnapshot(t *testing.T) {
	engine := newTestEngine(t)
	loader := &countingLoader{}
	svc := NewRefreshService(engine, loader.Load, RefreshServiceConfig{}, zerolog.Nop())

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	first := engine.Snapshot()

	loader.fail.Store(true)
	if err := svc.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() error = nil, want failure")
	}
	if engine.Snapshot() != first {
		t.Error("failed refresh replaced the snapshot")
	}
}

func TestRefreshService_Serve(t *testing.T) {
	engine := newTestEngine(t)
	loader := &countingLoader{}
	svc := NewRefreshService(engine, loader.Load, RefreshServiceConfig{
		LoadOnStartup: true,
		Interval:      10 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for loader.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("loader calls = %d, want >= 3", loader.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
	if engine.Snapshot() == nil {
		t.Error("Snapshot() = nil after Serve")
	}
}

func TestRefreshService_StartupOnly(t *testing.T) {
	engine := newTestEngine(t)
	loader := &countingLoader{}
	svc := NewRefreshService(engine, loader.Load, RefreshServiceConfig{LoadOnStartup: true}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() error = %v, want DeadlineExceeded", err)
	}
	if got := loader.calls.Load(); got != 1 {
		t.Errorf("loader calls = %d, want 1", got)
	}
}
