// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"errors"
	"math"
	"sort"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a    map[int]float64
		b    map[int]float64
		want float64
	}{
		{name: "identical", a: map[int]float64{1: 5, 2: 4}, b: map[int]float64{1: 5, 2: 4}, want: 1},
		{name: "disjoint", a: map[int]float64{1: 5, 2: 4}, b: map[int]float64{3: 1}, want: 0},
		{name: "scaled", a: map[int]float64{1: 1, 2: 2}, b: map[int]float64{1: 2, 2: 4}, want: 1},
		{name: "partial overlap", a: map[int]float64{1: 1}, b: map[int]float64{1: 1, 2: 1}, want: 1 / math.Sqrt2},
		{name: "empty side", a: map[int]float64{}, b: map[int]float64{1: 3}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := NewVector(tt.a), NewVector(tt.b)
			got := Cosine(a, b, a.Norm(), b.Norm())
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Cosine() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestCosine_Symmetric(t *testing.T) {
	s := randomStore(60, 25, 12, 17)
	users := s.Users()

	for _, ua := range users {
		a, _ := s.Vector(ua)
		for _, ub := range users {
			b, _ := s.Vector(ub)
			ab := Cosine(a, b, s.Norm(ua), s.Norm(ub))
			ba := Cosine(b, a, s.Norm(ub), s.Norm(ua))
			if ab != ba {
				t.Fatalf("Cosine(%d, %d) = %v, Cosine(%d, %d) = %v", ua, ub, ab, ub, ua, ba)
			}
		}
		if self := Cosine(a, a, s.Norm(ua), s.Norm(ua)); math.Abs(self-1) > 1e-12 {
			t.Errorf("Cosine(%d, %d) = %v, want 1", ua, ua, self)
		}
	}
}

func TestRankNeighbors_Scenario(t *testing.T) {
	s := scenarioStore()

	got, err := RankNeighbors(1, []int{2, 3}, s, 10)
	if err != nil {
		t.Fatalf("RankNeighbors() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(neighbors) = %d, want 1 (%v)", len(got), got)
	}
	if got[0].UserID != 2 || math.Abs(got[0].Similarity-1) > 1e-12 {
		t.Errorf("neighbors[0] = %+v, want user 2 with similarity 1", got[0])
	}
	for _, n := range got {
		if n.UserID == 3 {
			t.Error("user 3 has zero similarity and must not be a neighbor")
		}
	}
}

func TestRankNeighbors_TruncatesAndSorts(t *testing.T) {
	s := randomStore(200, 30, 15, 2)
	candidates := s.Users()[1:]

	for _, k := range []int{1, 5, 10, 50} {
		got, err := RankNeighbors(s.Users()[0], candidates, s, k)
		if err != nil {
			t.Fatalf("RankNeighbors() error = %v", err)
		}
		if len(got) > k {
			t.Errorf("k=%d: len(neighbors) = %d", k, len(got))
		}
		sorted := sort.SliceIsSorted(got, func(i, j int) bool {
			if got[i].Similarity != got[j].Similarity {
				return got[i].Similarity > got[j].Similarity
			}
			return got[i].UserID < got[j].UserID
		})
		if !sorted {
			t.Errorf("k=%d: neighbors not sorted: %v", k, got)
		}
		for _, n := range got {
			if n.Similarity <= 0 {
				t.Errorf("k=%d: neighbor %d has similarity %f", k, n.UserID, n.Similarity)
			}
		}
	}
}

func TestRankNeighbors_TieBreak(t *testing.T) {
	s := NewStore(map[int]map[int]float64{
		1: {1: 3},
		7: {1: 4},
		4: {1: 2},
		9: {1: 1},
	}, 1)

	got, err := RankNeighbors(1, []int{9, 7, 4}, s, 2)
	if err != nil {
		t.Fatalf("RankNeighbors() error = %v", err)
	}
	if len(got) != 2 || got[0].UserID != 4 || got[1].UserID != 7 {
		t.Errorf("neighbors = %v, want users 4 then 7", got)
	}
}

func TestRankNeighbors_EmptyQuery(t *testing.T) {
	b := NewStoreBuilder()
	b.Add(1, 1, 5)
	b.Add(2, 1, 4)
	b.AddUser(3)
	s := b.Build(1)

	got, err := RankNeighbors(3, []int{1, 2}, s, 10)
	if err != nil {
		t.Fatalf("RankNeighbors() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("neighbors = %v, want empty", got)
	}
}

func TestRankNeighbors_UnknownUser(t *testing.T) {
	_, err := RankNeighbors(42, []int{1, 2}, scenarioStore(), 10)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("RankNeighbors() error = %v, want ErrUserNotFound", err)
	}
}

func TestMeanSimilarity(t *testing.T) {
	if got := MeanSimilarity(nil); got != 0 {
		t.Errorf("MeanSimilarity(nil) = %f, want 0", got)
	}
	got := MeanSimilarity([]Neighbor{{UserID: 1, Similarity: 0.5}, {UserID: 2, Similarity: 1}})
	if got != 0.75 {
		t.Errorf("MeanSimilarity() = %f, want 0.75", got)
	}
}
