// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import "sort"

// Candidates returns the union of the buckets v hashes to across all tables,
// without queryID. Callers must not rely on the order; it happens to be
// ascending. An empty index has no candidates.
func (idx *Index) Candidates(queryID int, v Vector) []int {
	if idx.Empty() {
		return nil
	}

	seen := make(map[int]struct{})
	for t, sig := range idx.Signatures(v) {
		for _, uid := range idx.tables[t][sig] {
			if uid == queryID {
				continue
			}
			seen[uid] = struct{}{}
		}
	}

	out := make([]int, 0, len(seen))
	for uid := range seen {
		out = append(out, uid)
	}
	sort.Ints(out)
	return out
}
