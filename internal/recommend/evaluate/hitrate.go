// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package evaluate

import (
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// ItemSet is a set of item ids.
type ItemSet map[int]struct{}

// HitRate returns the percentage of recommended items found in relevant.
// An empty recommendation list scores 0.
func HitRate(recs []recommend.Recommendation, relevant ItemSet) float64 {
	if len(recs) == 0 {
		return 0
	}
	hits := 0
	for _, r := range recs {
		if _, ok := relevant[r.ItemID]; ok {
			hits++
		}
	}
	return 100 * float64(hits) / float64(len(recs))
}

// NeighborItems returns every item rated by the given neighbors.
func NeighborItems(store *recommend.Store, neighbors []recommend.Neighbor) ItemSet {
	items := make(ItemSet)
	for _, n := range neighbors {
		v, ok := store.Vector(n.UserID)
		if !ok {
			continue
		}
		for _, item := range v.Items() {
			items[item] = struct{}{}
		}
	}
	return items
}

// HitSummary aggregates per-user hit rates.
type HitSummary struct {
	Users  int     `json:"users"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`

	// UsersWithHit is the share of users, in percent, with at least one hit.
	UsersWithHit float64 `json:"users_with_hit"`
}

// Summarize reduces per-user hit rates (in percent).
func Summarize(rates []float64) HitSummary {
	s := HitSummary{Users: len(rates)}
	if len(rates) == 0 {
		return s
	}

	if len(rates) == 1 {
		s.Mean = rates[0]
	} else {
		s.Mean, s.StdDev = stat.MeanStdDev(rates, nil)
	}

	withHit := 0
	for _, r := range rates {
		if r > 0 {
			withHit++
		}
	}
	s.UsersWithHit = 100 * float64(withHit) / float64(len(rates))
	return s
}
