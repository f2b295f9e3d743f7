// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import "sort"

// Store holds every user's sparse rating vector and its precomputed L2 norm.
// A Store is immutable once built and safe for concurrent reads.
type Store struct {
	users      []int
	vectors    map[int]Vector
	norms      map[int]float64
	duplicates int
}

// StoreBuilder accumulates ratings before a Store is built.
// It is not safe for concurrent use.
type StoreBuilder struct {
	ratings    map[int]map[int]float64
	duplicates int
}

// NewStoreBuilder creates an empty builder.
func NewStoreBuilder() *StoreBuilder {
	return &StoreBuilder{ratings: make(map[int]map[int]float64)}
}

// Add records a rating. A repeated (user, item) pair overwrites the earlier
// rating and is counted in Duplicates.
func (b *StoreBuilder) Add(userID, itemID int, rating float64) {
	vec, ok := b.ratings[userID]
	if !ok {
		vec = make(map[int]float64)
		b.ratings[userID] = vec
	}
	if _, seen := vec[itemID]; seen {
		b.duplicates++
	}
	vec[itemID] = rating
}

// AddUser registers a user with no ratings yet.
func (b *StoreBuilder) AddUser(userID int) {
	if _, ok := b.ratings[userID]; !ok {
		b.ratings[userID] = make(map[int]float64)
	}
}

// Duplicates returns how many ratings were overwritten so far.
func (b *StoreBuilder) Duplicates() int {
	return b.duplicates
}

// Build creates the Store, computing norms with up to workers goroutines.
func (b *StoreBuilder) Build(workers int) *Store {
	s := NewStore(b.ratings, workers)
	s.duplicates = b.duplicates
	return s
}

// NewStore builds a Store from user -> item -> rating maps. Norm computation
// is split across up to workers goroutines; zero uses GOMAXPROCS.
func NewStore(ratings map[int]map[int]float64, workers int) *Store {
	users := make([]int, 0, len(ratings))
	for uid := range ratings {
		users = append(users, uid)
	}
	sort.Ints(users)

	vectors := make([]Vector, len(users))
	norms := make([]float64, len(users))
	forChunks(len(users), resolveWorkers(workers), func(_, start, end int) {
		for i := start; i < end; i++ {
			vectors[i] = NewVector(ratings[users[i]])
			norms[i] = vectors[i].Norm()
		}
	})

	s := &Store{
		users:   users,
		vectors: make(map[int]Vector, len(users)),
		norms:   make(map[int]float64, len(users)),
	}
	for i, uid := range users {
		s.vectors[uid] = vectors[i]
		s.norms[uid] = norms[i]
	}
	return s
}

// Len returns the number of users.
func (s *Store) Len() int {
	return len(s.users)
}

// Users returns user ids in ascending order. The slice must not be modified.
func (s *Store) Users() []int {
	return s.users
}

// Vector returns a user's vector.
func (s *Store) Vector(userID int) (Vector, bool) {
	v, ok := s.vectors[userID]
	return v, ok
}

// Norm returns a user's precomputed norm, or 0 for unknown users.
func (s *Store) Norm(userID int) float64 {
	return s.norms[userID]
}

// Has reports whether the user exists.
func (s *Store) Has(userID int) bool {
	_, ok := s.vectors[userID]
	return ok
}

// Duplicates returns how many duplicate ratings were overwritten at ingestion.
func (s *Store) Duplicates() int {
	return s.duplicates
}

// RatingCount returns the total number of ratings held.
func (s *Store) RatingCount() int {
	n := 0
	for _, v := range s.vectors {
		n += v.Len()
	}
	return n
}
