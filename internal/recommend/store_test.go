// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"math"
	"slices"
	"testing"
)

func TestStoreBuilder_LastWriteWins(t *testing.T) {
	b := NewStoreBuilder()
	b.Add(1, 10, 2.0)
	b.Add(1, 10, 4.5)
	b.Add(1, 11, 3.0)
	b.AddUser(2)

	s := b.Build(2)

	if s.Duplicates() != 1 {
		t.Errorf("Duplicates() = %d, want 1", s.Duplicates())
	}
	v, ok := s.Vector(1)
	if !ok {
		t.Fatal("Vector(1) not found")
	}
	if r, _ := v.Rating(10); r != 4.5 {
		t.Errorf("Rating(10) = %f, want 4.5", r)
	}
	if !s.Has(2) {
		t.Error("Has(2) = false, want true for user without ratings")
	}
	if s.Norm(2) != 0 {
		t.Errorf("Norm(2) = %f, want 0", s.Norm(2))
	}
	if s.RatingCount() != 2 {
		t.Errorf("RatingCount() = %d, want 2", s.RatingCount())
	}
}

func TestStore_Norms(t *testing.T) {
	s := randomStore(300, 50, 20, 3)

	for _, uid := range s.Users() {
		v, _ := s.Vector(uid)
		var sum float64
		v.Each(func(_ int, r float64) { sum += r * r })
		want := math.Sqrt(sum)
		if got := s.Norm(uid); got != want {
			t.Fatalf("Norm(%d) = %f, want %f", uid, got, want)
		}
	}
	if !slices.IsSorted(s.Users()) {
		t.Error("Users() not in ascending order")
	}
}

func TestVector(t *testing.T) {
	v := NewVector(map[int]float64{3: 3.0, 1: 1.0, 2: 2.0})

	if !slices.Equal(v.Items(), []int{1, 2, 3}) {
		t.Errorf("Items() = %v, want [1 2 3]", v.Items())
	}
	if v.Mean() != 2.0 {
		t.Errorf("Mean() = %f, want 2.0", v.Mean())
	}

	w := v.Without(2)
	if w.Has(2) || w.Len() != 2 {
		t.Errorf("Without(2) = %v, want items [1 3]", w.Items())
	}
	if !v.Has(2) {
		t.Error("Without modified the receiver")
	}

	empty := NewVector(nil)
	if empty.Mean() != 0 || empty.Norm() != 0 {
		t.Errorf("empty Mean() = %f, Norm() = %f, want 0, 0", empty.Mean(), empty.Norm())
	}
}

func TestBuildDimIndex(t *testing.T) {
	s := NewStore(map[int]map[int]float64{
		1: {30: 1, 10: 2},
		2: {20: 3, 10: 4},
	}, 1)

	d := BuildDimIndex(s)
	if d.Dim() != 3 {
		t.Fatalf("Dim() = %d, want 3", d.Dim())
	}
	for want, item := range []int{10, 20, 30} {
		c, ok := d.Coord(item)
		if !ok || c != want {
			t.Errorf("Coord(%d) = %d, %v, want %d, true", item, c, ok, want)
		}
		if d.Item(want) != item {
			t.Errorf("Item(%d) = %d, want %d", want, d.Item(want), item)
		}
	}
	if _, ok := d.Coord(99); ok {
		t.Error("Coord(99) found, want missing")
	}
}
