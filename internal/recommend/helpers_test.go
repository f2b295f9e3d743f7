// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"math/rand/v2"

	"github.com/rs/zerolog"
)

// testLogger returns a zerolog logger for testing.
func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// scenarioStore returns two identical users and one disjoint user.
func scenarioStore() *Store {
	return NewStore(map[int]map[int]float64{
		1: {1: 5.0, 2: 4.0},
		2: {1: 5.0, 2: 4.0},
		3: {3: 1.0},
	}, 2)
}

// randomStore builds a reproducible store of users rating up to maxItems
// of items distinct items.
func randomStore(users, items, maxItems int, seed uint64) *Store {
	rng := rand.New(rand.NewPCG(seed, 7))
	ratings := make(map[int]map[int]float64, users)
	for u := 1; u <= users; u++ {
		n := 1 + rng.IntN(maxItems)
		vec := make(map[int]float64, n)
		for j := 0; j < n; j++ {
			vec[1+rng.IntN(items)] = float64(1+rng.IntN(10)) / 2
		}
		ratings[u] = vec
	}
	return NewStore(ratings, 4)
}
