// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"fmt"
	"math/rand/v2"
)

// Hyperplane is a dense normal vector in D-dimensional item space.
type Hyperplane []float64

// HyperplaneSet is the ordered hyperplanes of one table. Position i defines
// signature bit i.
type HyperplaneSet []Hyperplane

// HyperplaneFamily is L independent hyperplane sets.
type HyperplaneFamily struct {
	Sets []HyperplaneSet
	Dim  int
	Seed uint64
}

// GenerateHyperplanes draws tables sets of k hyperplanes with standard normal
// components. Each table owns a PCG stream keyed by (seed, table), so tables
// are generated concurrently and the result depends only on the arguments.
// A zero tables or dim yields a family with no sets.
func GenerateHyperplanes(tables, k, dim int, seed uint64) (*HyperplaneFamily, error) {
	if tables < 0 {
		return nil, fmt.Errorf("%w: tables must be non-negative, got %d", ErrConfiguration, tables)
	}
	if err := validateHyperplanes(tables, k); err != nil {
		return nil, err
	}
	if dim < 0 {
		return nil, fmt.Errorf("%w: dimension must be non-negative, got %d", ErrConfiguration, dim)
	}

	family := &HyperplaneFamily{Dim: dim, Seed: seed}
	if tables == 0 || dim == 0 {
		return family, nil
	}

	family.Sets = make([]HyperplaneSet, tables)
	forChunks(tables, tables, func(t, _, _ int) {
		family.Sets[t] = generateSet(k, dim, seed, uint64(t))
	})
	return family, nil
}

func generateSet(k, dim int, seed, stream uint64) HyperplaneSet {
	rng := rand.New(rand.NewPCG(seed, stream)) //nolint:gosec // reproducibility, not security
	set := make(HyperplaneSet, k)
	for i := range set {
		plane := make(Hyperplane, dim)
		for j := range plane {
			plane[j] = rng.NormFloat64()
		}
		set[i] = plane
	}
	return set
}

// Tables returns L.
func (f *HyperplaneFamily) Tables() int {
	return len(f.Sets)
}

// Empty reports whether the family can hash nothing.
func (f *HyperplaneFamily) Empty() bool {
	return len(f.Sets) == 0 || f.Dim == 0
}
