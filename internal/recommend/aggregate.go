// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import "sort"

// Recommendation is a predicted rating for an item the user has not rated.
type Recommendation struct {
	ItemID int     `json:"item_id"`
	Score  float64 `json:"score"`
}

// AggregateOptions tunes Aggregate.
type AggregateOptions struct {
	// SimilarityFloor skips neighbors below it. Zero disables the floor.
	SimilarityFloor float64

	// MinTotalSimilarity is the accumulated similarity an item must exceed
	// in the primary pass.
	MinTotalSimilarity float64

	// MeanFilter keeps only items predicted above the query user's mean.
	MeanFilter bool
}

// AggregateOptions returns the aggregation settings of c.
func (c *Config) AggregateOptions() AggregateOptions {
	return AggregateOptions{
		SimilarityFloor:    c.SimilarityFloor,
		MinTotalSimilarity: c.MinTotalSimilarity,
		MeanFilter:         c.MeanFilter,
	}
}

type itemAccumulator struct {
	weightedSum float64
	simSum      float64
}

// Aggregate predicts ratings for items rated by neighbors but not by query.
// Each prediction is the similarity-weighted mean of the neighbors' ratings.
// The primary pass keeps items whose similarity total exceeds
// MinTotalSimilarity and, with MeanFilter, whose prediction exceeds the
// query's mean rating. If that leaves nothing, a relaxed pass keeps every
// item with positive similarity total and reports fallback = true.
// The full list is returned sorted by score descending then item ascending;
// use Top to cut it for presentation.
func Aggregate(query Vector, neighbors []Neighbor, store *Store, opts AggregateOptions) (recs []Recommendation, fallback bool) {
	acc := make(map[int]*itemAccumulator)
	for _, n := range neighbors {
		if opts.SimilarityFloor > 0 && n.Similarity < opts.SimilarityFloor {
			continue
		}
		v, ok := store.Vector(n.UserID)
		if !ok {
			continue
		}
		v.Each(func(item int, rating float64) {
			if query.Has(item) {
				return
			}
			a, ok := acc[item]
			if !ok {
				a = &itemAccumulator{}
				acc[item] = a
			}
			a.weightedSum += rating * n.Similarity
			a.simSum += n.Similarity
		})
	}

	mean := query.Mean()
	recs = make([]Recommendation, 0, len(acc))
	for item, a := range acc {
		if a.simSum <= opts.MinTotalSimilarity {
			continue
		}
		score := a.weightedSum / a.simSum
		if opts.MeanFilter && score <= mean {
			continue
		}
		recs = append(recs, Recommendation{ItemID: item, Score: score})
	}

	if len(recs) == 0 {
		for item, a := range acc {
			if a.simSum > 0 {
				recs = append(recs, Recommendation{ItemID: item, Score: a.weightedSum / a.simSum})
			}
		}
		fallback = len(recs) > 0
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].ItemID < recs[j].ItemID
	})
	return recs, fallback
}

// Top returns at most n leading recommendations. A non-positive n returns all.
func Top(recs []Recommendation, n int) []Recommendation {
	if n <= 0 || len(recs) <= n {
		return recs
	}
	return recs[:n]
}
