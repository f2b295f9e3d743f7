// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import "sort"

// DimIndex maps item ids to dense coordinates in [0, D).
// Coordinates follow ascending item id, so identical stores always produce
// identical indexes.
type DimIndex struct {
	items  []int
	coords map[int]int
}

// BuildDimIndex collects the distinct items across all users in store.
func BuildDimIndex(store *Store) *DimIndex {
	seen := make(map[int]struct{})
	for _, uid := range store.Users() {
		v, _ := store.Vector(uid)
		for _, item := range v.Items() {
			seen[item] = struct{}{}
		}
	}

	items := make([]int, 0, len(seen))
	for item := range seen {
		items = append(items, item)
	}
	sort.Ints(items)

	coords := make(map[int]int, len(items))
	for i, item := range items {
		coords[item] = i
	}
	return &DimIndex{items: items, coords: coords}
}

// Dim returns D, the number of distinct items.
func (d *DimIndex) Dim() int {
	return len(d.items)
}

// Coord returns the dense coordinate of item.
func (d *DimIndex) Coord(item int) (int, bool) {
	c, ok := d.coords[item]
	return c, ok
}

// Item returns the item id at coordinate c.
func (d *DimIndex) Item(c int) int {
	return d.items[c]
}
