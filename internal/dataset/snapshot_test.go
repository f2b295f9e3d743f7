// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func openTestSnapshotStore(t *testing.T) *SnapshotStore {
	t.Helper()
	s, err := OpenSnapshotStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenSnapshotStore() error = %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return s
}

func TestSnapshotStore_Empty(t *testing.T) {
	s := openTestSnapshotStore(t)
	ctx := context.Background()

	if _, err := s.Meta(ctx); !errors.Is(err, ErrSnapshotEmpty) {
		t.Errorf("Meta() error = %v, want ErrSnapshotEmpty", err)
	}
	if _, err := s.LoadRatings(ctx); !errors.Is(err, ErrSnapshotEmpty) {
		t.Errorf("LoadRatings() error = %v, want ErrSnapshotEmpty", err)
	}
	titles, err := s.LoadTitles(ctx)
	if err != nil {
		t.Fatalf("LoadTitles() error = %v", err)
	}
	if len(titles) != 0 {
		t.Errorf("len(titles) = %d, want 0", len(titles))
	}
}

func TestOpenSnapshotStore_EmptyDir(t *testing.T) {
	if _, err := OpenSnapshotStore("", zerolog.Nop()); err == nil {
		t.Error("OpenSnapshotStore(\"\") error = nil, want error")
	}
}

func TestSnapshotStore_Ratings(t *testing.T) {
	s := openTestSnapshotStore(t)
	ctx := context.Background()

	ratings := []Rating{
		{UserID: 7, ItemID: 3, Value: 4.5, Timestamp: 100},
		{UserID: -2, ItemID: 1, Value: 1.0},
		{UserID: 300, ItemID: 9, Value: 2.5},
		{UserID: 7, ItemID: 1, Value: 3.0, Timestamp: 90},
	}
	if err := s.SaveRatings(ctx, ratings, Meta{Source: LoaderCSV, MinRatingsPerUser: 5}); err != nil {
		t.Fatalf("SaveRatings() error = %v", err)
	}

	got, err := s.LoadRatings(ctx)
	if err != nil {
		t.Fatalf("LoadRatings() error = %v", err)
	}
	want := []Rating{
		{UserID: -2, ItemID: 1, Value: 1.0},
		{UserID: 7, ItemID: 1, Value: 3.0, Timestamp: 90},
		{UserID: 7, ItemID: 3, Value: 4.5, Timestamp: 100},
		{UserID: 300, ItemID: 9, Value: 2.5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadRatings() = %+v, want %+v", got, want)
	}

	meta, err := s.Meta(ctx)
	if err != nil {
		t.Fatalf("Meta() error = %v", err)
	}
	if meta.Users != 3 || meta.Ratings != 4 {
		t.Errorf("Meta() users=%d ratings=%d, want 3, 4", meta.Users, meta.Ratings)
	}
	if meta.Source != LoaderCSV || meta.MinRatingsPerUser != 5 {
		t.Errorf("Meta() = %+v, want source csv and min user 5", meta)
	}
	if meta.SavedAt.IsZero() {
		t.Error("Meta().SavedAt is zero")
	}

	// A second save replaces the first.
	if err := s.SaveRatings(ctx, []Rating{{UserID: 1, ItemID: 1, Value: 5}}, Meta{}); err != nil {
		t.Fatalf("SaveRatings() error = %v", err)
	}
	got, err = s.LoadRatings(ctx)
	if err != nil {
		t.Fatalf("LoadRatings() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len(LoadRatings()) = %d, want 1", len(got))
	}
}

func TestSnapshotStore_Titles(t *testing.T) {
	s := openTestSnapshotStore(t)
	ctx := context.Background()

	titles := Titles{1: "Toy Story (1995)", 11: "American President, The (1995)"}
	if err := s.SaveTitles(ctx, titles); err != nil {
		t.Fatalf("SaveTitles() error = %v", err)
	}
	got, err := s.LoadTitles(ctx)
	if err != nil {
		t.Fatalf("LoadTitles() error = %v", err)
	}
	if !reflect.DeepEqual(got, titles) {
		t.Errorf("LoadTitles() = %v, want %v", got, titles)
	}
}

func TestLoadFromSnapshot(t *testing.T) {
	s := openTestSnapshotStore(t)
	ctx := context.Background()

	if err := s.SaveRatings(ctx, []Rating{
		{UserID: 1, ItemID: 1, Value: 5},
		{UserID: 2, ItemID: 1, Value: 4},
	}, Meta{}); err != nil {
		t.Fatalf("SaveRatings() error = %v", err)
	}

	ds, err := LoadFromSnapshot(ctx, s, 1, zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadFromSnapshot() error = %v", err)
	}
	if ds.Source != LoaderSnapshot {
		t.Errorf("Source = %q, want %q", ds.Source, LoaderSnapshot)
	}
	if ds.Store.Len() != 2 {
		t.Errorf("Store.Len() = %d, want 2", ds.Store.Len())
	}
}
