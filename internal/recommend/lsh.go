// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

// Signature is a hyperplane hash. Bit i is set iff the vector lies on the
// non-negative side of hyperplane i.
type Signature uint64

// SignatureBits is the maximum number of hyperplanes per table.
const SignatureBits = 64

// Table groups user ids into buckets by signature. Bucket members are in
// ascending user order.
type Table map[Signature][]int

// Index is a multi-table LSH index. It is read-only once built.
type Index struct {
	family *HyperplaneFamily
	dim    *DimIndex
	tables []Table
}

// coordValue is one non-zero component of a vector projected into D-space.
type coordValue struct {
	coord  int
	rating float64
}

// project maps v into dense coordinates, dropping items unknown to dim.
// Output is ascending by coordinate because coordinates follow item order.
func project(v Vector, dim *DimIndex) []coordValue {
	out := make([]coordValue, 0, v.Len())
	v.Each(func(item int, rating float64) {
		if c, ok := dim.Coord(item); ok {
			out = append(out, coordValue{coord: c, rating: rating})
		}
	})
	return out
}

func hashProjected(p []coordValue, set HyperplaneSet) Signature {
	var sig Signature
	for i, plane := range set {
		var dot float64
		for _, cv := range p {
			dot += cv.rating * plane[cv.coord]
		}
		if dot >= 0 {
			sig |= 1 << uint(i)
		}
	}
	return sig
}

// Hash computes v's signature against one hyperplane set. Items missing
// from dim contribute nothing.
func Hash(v Vector, set HyperplaneSet, dim *DimIndex) Signature {
	return hashProjected(project(v, dim), set)
}

// BuildIndex hashes every user in store into each table. Users are split
// into contiguous chunks; each worker fills private partial tables which are
// merged in chunk order afterwards, so no locks are taken and buckets come
// out sorted. An empty family yields an empty index.
func BuildIndex(store *Store, family *HyperplaneFamily, dim *DimIndex, workers int) *Index {
	idx := &Index{family: family, dim: dim}
	if family.Empty() || dim.Dim() == 0 {
		return idx
	}

	users := store.Users()
	tables := family.Tables()
	workers = resolveWorkers(workers)
	if workers > len(users) && len(users) > 0 {
		workers = len(users)
	}
	partials := make([][]Table, workers)

	forChunks(len(users), workers, func(w, start, end int) {
		local := make([]Table, tables)
		for t := range local {
			local[t] = make(Table)
		}
		for _, uid := range users[start:end] {
			v, _ := store.Vector(uid)
			p := project(v, dim)
			for t, set := range family.Sets {
				sig := hashProjected(p, set)
				local[t][sig] = append(local[t][sig], uid)
			}
		}
		partials[w] = local
	})

	idx.tables = make([]Table, tables)
	for t := range idx.tables {
		idx.tables[t] = make(Table)
	}
	for _, local := range partials {
		for t, table := range local {
			for sig, members := range table {
				idx.tables[t][sig] = append(idx.tables[t][sig], members...)
			}
		}
	}
	return idx
}

// Empty reports whether the index has no tables.
func (idx *Index) Empty() bool {
	return len(idx.tables) == 0
}

// Tables returns the number of built tables.
func (idx *Index) Tables() int {
	return len(idx.tables)
}

// Table returns table t. The table must not be modified.
func (idx *Index) Table(t int) Table {
	return idx.tables[t]
}

// Signatures returns v's signature in every table.
func (idx *Index) Signatures(v Vector) []Signature {
	if idx.Empty() {
		return nil
	}
	p := project(v, idx.dim)
	sigs := make([]Signature, len(idx.tables))
	for t, set := range idx.family.Sets {
		sigs[t] = hashProjected(p, set)
	}
	return sigs
}

// BucketCount returns the total number of non-empty buckets over all tables.
func (idx *Index) BucketCount() int {
	n := 0
	for _, table := range idx.tables {
		n += len(table)
	}
	return n
}
