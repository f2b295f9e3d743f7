// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"math/rand/v2"
	"sort"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// FilterByActivity keeps ratings whose user has at least minUser ratings and
// whose item has at least minItem ratings, both counted on the unfiltered
// input. A single pass of filtering is applied; counts are not recomputed.
// Input order is preserved.
func FilterByActivity(ratings []Rating, minUser, minItem int) []Rating {
	if minUser <= 1 && minItem <= 1 {
		out := make([]Rating, len(ratings))
		copy(out, ratings)
		return out
	}

	userCounts := make(map[int]int)
	itemCounts := make(map[int]int)
	for _, r := range ratings {
		userCounts[r.UserID]++
		itemCounts[r.ItemID]++
	}

	out := make([]Rating, 0, len(ratings))
	for _, r := range ratings {
		if userCounts[r.UserID] >= minUser && itemCounts[r.ItemID] >= minItem {
			out = append(out, r)
		}
	}
	return out
}

// BuildStore assembles a recommend.Store from ratings. For a duplicate
// (user, item) pair the later rating wins.
func BuildStore(ratings []Rating, workers int) *recommend.Store {
	b := recommend.NewStoreBuilder()
	for _, r := range ratings {
		b.Add(r.UserID, r.ItemID, r.Value)
	}
	return b.Build(workers)
}

// UserIDs returns the distinct user ids of ratings in ascending order.
func UserIDs(ratings []Rating) []int {
	seen := make(map[int]struct{})
	ids := make([]int, 0)
	for _, r := range ratings {
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		ids = append(ids, r.UserID)
	}
	sort.Ints(ids)
	return ids
}

// SampleUsers picks n ids with a seeded shuffle and returns them ascending.
// All ids are returned when n <= 0 or n >= len(ids). The result depends only
// on the set of ids, n and seed.
func SampleUsers(ids []int, n int, seed uint64) []int {
	pool := make([]int, len(ids))
	copy(pool, ids)
	sort.Ints(pool)
	if n <= 0 || n >= len(pool) {
		return pool
	}

	rng := rand.New(rand.NewPCG(seed, 0))
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	sample := pool[:n]
	sort.Ints(sample)
	return sample
}

// Relevant groups ratings into per-user item sets, used as held-out test data
// for hit-rate scoring.
func Relevant(ratings []Rating) map[int]map[int]struct{} {
	out := make(map[int]map[int]struct{})
	for _, r := range ratings {
		set, ok := out[r.UserID]
		if !ok {
			set = make(map[int]struct{})
			out[r.UserID] = set
		}
		set[r.ItemID] = struct{}{}
	}
	return out
}
