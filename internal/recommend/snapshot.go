// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Snapshot is an immutable store plus the index built over it.
type Snapshot struct {
	ID         string
	Generation uint64
	BuiltAt    time.Time
	BuildTime  time.Duration

	Store  *Store
	Dim    *DimIndex
	Family *HyperplaneFamily
	Index  *Index

	config *Config
}

// NewSnapshot builds the dimensionality index, hyperplane family and LSH
// index for store. Only configuration problems return an error.
func NewSnapshot(store *Store, cfg *Config, generation uint64) (*Snapshot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	dim := BuildDimIndex(store)
	family, err := GenerateHyperplanes(cfg.Tables, cfg.Hyperplanes, dim.Dim(), cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("generate hyperplanes: %w", err)
	}
	index := BuildIndex(store, family, dim, cfg.workers())

	return &Snapshot{
		ID:         uuid.New().String(),
		Generation: generation,
		BuiltAt:    time.Now(),
		BuildTime:  time.Since(start),
		Store:      store,
		Dim:        dim,
		Family:     family,
		Index:      index,
		config:     cfg.Clone(),
	}, nil
}

// Neighbors retrieves LSH candidates for userID and ranks them.
// It returns the neighbor list and the candidate count.
func (s *Snapshot) Neighbors(userID int) ([]Neighbor, int, error) {
	v, ok := s.Store.Vector(userID)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d", ErrUserNotFound, userID)
	}
	candidates := s.Index.Candidates(userID, v)
	neighbors, err := RankNeighbors(userID, candidates, s.Store, s.config.Neighbors)
	if err != nil {
		return nil, len(candidates), err
	}
	return neighbors, len(candidates), nil
}

// Recommend runs the full query pipeline for userID.
func (s *Snapshot) Recommend(userID int) (*Result, error) {
	neighbors, candidates, err := s.Neighbors(userID)
	if err != nil {
		return nil, err
	}
	query, _ := s.Store.Vector(userID)
	items, fallback := Aggregate(query, neighbors, s.Store, s.config.AggregateOptions())

	return &Result{
		UserID:         userID,
		Neighbors:      neighbors,
		MeanSimilarity: MeanSimilarity(neighbors),
		Candidates:     candidates,
		Items:          items,
		Fallback:       fallback,
		Generation:     s.Generation,
	}, nil
}
