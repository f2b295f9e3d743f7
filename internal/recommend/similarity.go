// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"fmt"
	"sort"
)

// Neighbor is a user and its similarity to a query user.
type Neighbor struct {
	UserID     int     `json:"user_id"`
	Similarity float64 `json:"similarity"`
}

// Dot returns the dot product of a and b. It walks the shorter vector in
// ascending item order and probes the longer one, so Dot(a, b) == Dot(b, a)
// bit for bit.
func Dot(a, b Vector) float64 {
	if a.Len() > b.Len() {
		a, b = b, a
	}
	var dot float64
	for _, item := range a.items {
		if rb, ok := b.ratings[item]; ok {
			dot += a.ratings[item] * rb
		}
	}
	return dot
}

// Cosine returns the cosine similarity of a and b given their norms.
// Similarity is 0 when either norm is 0.
func Cosine(a, b Vector, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := Dot(a, b) / (normA * normB)
	switch {
	case sim > 1:
		return 1
	case sim < -1:
		return -1
	}
	return sim
}

// RankNeighbors scores every candidate against the query user and returns
// the k most similar with positive similarity, sorted by similarity
// descending then user id ascending. Candidates missing from store are
// skipped. A query user missing from store is an ErrUserNotFound.
func RankNeighbors(queryID int, candidates []int, store *Store, k int) ([]Neighbor, error) {
	query, ok := store.Vector(queryID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUserNotFound, queryID)
	}
	queryNorm := store.Norm(queryID)
	if queryNorm == 0 || k <= 0 {
		return []Neighbor{}, nil
	}

	neighbors := make([]Neighbor, 0, len(candidates))
	for _, cid := range candidates {
		if cid == queryID {
			continue
		}
		cand, ok := store.Vector(cid)
		if !ok {
			continue
		}
		sim := Cosine(query, cand, queryNorm, store.Norm(cid))
		if sim > 0 {
			neighbors = append(neighbors, Neighbor{UserID: cid, Similarity: sim})
		}
	}

	sortNeighbors(neighbors)
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

func sortNeighbors(neighbors []Neighbor) {
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].UserID < neighbors[j].UserID
	})
}

// MeanSimilarity returns the mean similarity of neighbors, or 0 if empty.
func MeanSimilarity(neighbors []Neighbor) float64 {
	if len(neighbors) == 0 {
		return 0
	}
	var sum float64
	for _, n := range neighbors {
		sum += n.Similarity
	}
	return sum / float64(len(neighbors))
}
