// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"math"
	"sort"
)

// Vector is an immutable sparse rating vector keyed by item id.
// Items are kept in ascending order so that every reduction over a vector
// sums in the same order and yields bit-identical results.
type Vector struct {
	items   []int
	ratings map[int]float64
}

// NewVector copies ratings into a new Vector.
func NewVector(ratings map[int]float64) Vector {
	v := Vector{
		items:   make([]int, 0, len(ratings)),
		ratings: make(map[int]float64, len(ratings)),
	}
	for item, r := range ratings {
		v.items = append(v.items, item)
		v.ratings[item] = r
	}
	sort.Ints(v.items)
	return v
}

// Len returns the number of rated items.
func (v Vector) Len() int {
	return len(v.items)
}

// Rating returns the rating for item and whether it exists.
func (v Vector) Rating(item int) (float64, bool) {
	r, ok := v.ratings[item]
	return r, ok
}

// Has reports whether item is rated.
func (v Vector) Has(item int) bool {
	_, ok := v.ratings[item]
	return ok
}

// Items returns the rated item ids in ascending order.
// The returned slice must not be modified.
func (v Vector) Items() []int {
	return v.items
}

// Each calls fn for every rating in ascending item order.
func (v Vector) Each(fn func(item int, rating float64)) {
	for _, item := range v.items {
		fn(item, v.ratings[item])
	}
}

// Norm returns the L2 norm. It is zero iff the vector is empty
// (ratings are positive).
func (v Vector) Norm() float64 {
	var sum float64
	for _, item := range v.items {
		r := v.ratings[item]
		sum += r * r
	}
	return math.Sqrt(sum)
}

// Mean returns the mean rating, or 0 for an empty vector.
func (v Vector) Mean() float64 {
	if len(v.items) == 0 {
		return 0
	}
	var sum float64
	for _, item := range v.items {
		sum += v.ratings[item]
	}
	return sum / float64(len(v.items))
}

// Without returns a copy of v with item removed.
func (v Vector) Without(item int) Vector {
	if !v.Has(item) {
		return v
	}
	out := Vector{
		items:   make([]int, 0, len(v.items)-1),
		ratings: make(map[int]float64, len(v.items)-1),
	}
	for _, it := range v.items {
		if it == item {
			continue
		}
		out.items = append(out.items, it)
		out.ratings[it] = v.ratings[it]
	}
	return out
}
