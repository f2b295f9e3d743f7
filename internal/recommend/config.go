// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"fmt"
	"runtime"
)

// Default parameter values.
const (
	DefaultTables             = 10
	DefaultHyperplanes        = 16
	DefaultNeighbors          = 10
	DefaultTopN               = 10
	DefaultSeed               = 42
	DefaultMinTotalSimilarity = 1.0
	DefaultCacheSize          = 1024
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Tables is the number of LSH tables (L). Zero builds an empty index.
	Tables int `json:"tables"`

	// Hyperplanes is the number of hyperplanes per table (k), which is also
	// the number of significant bits in each signature.
	Hyperplanes int `json:"hyperplanes"`

	// Neighbors is the number of neighbors kept per query (K).
	Neighbors int `json:"neighbors"`

	// TopN is the number of recommendations emitted at presentation time.
	// Zero emits the full ranked list.
	TopN int `json:"top_n"`

	// Seed drives hyperplane generation. The same seed and store always
	// produce the same index.
	Seed uint64 `json:"seed"`

	// SimilarityFloor drops neighbors below this similarity before
	// aggregation. Zero disables the floor.
	SimilarityFloor float64 `json:"similarity_floor"`

	// MinTotalSimilarity is the accumulated neighbor similarity an item
	// must exceed to be predicted in the primary pass.
	MinTotalSimilarity float64 `json:"min_total_similarity"`

	// MeanFilter keeps only items predicted above the user's own mean rating.
	MeanFilter bool `json:"mean_filter"`

	// Workers bounds build parallelism. Zero uses GOMAXPROCS.
	Workers int `json:"workers"`

	// CacheSize is the number of query results cached per engine.
	// Zero disables the cache.
	CacheSize int `json:"cache_size"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Tables:             DefaultTables,
		Hyperplanes:        DefaultHyperplanes,
		Neighbors:          DefaultNeighbors,
		TopN:               DefaultTopN,
		Seed:               DefaultSeed,
		SimilarityFloor:    0,
		MinTotalSimilarity: DefaultMinTotalSimilarity,
		MeanFilter:         true,
		Workers:            0,
		CacheSize:          DefaultCacheSize,
	}
}

// Validate checks the configuration. Every returned error wraps ErrConfiguration.
func (c *Config) Validate() error {
	if c.Tables < 0 {
		return fmt.Errorf("%w: tables must be non-negative, got %d", ErrConfiguration, c.Tables)
	}
	if err := validateHyperplanes(c.Tables, c.Hyperplanes); err != nil {
		return err
	}
	if c.Neighbors < 0 {
		return fmt.Errorf("%w: neighbors must be non-negative, got %d", ErrConfiguration, c.Neighbors)
	}
	if c.TopN < 0 {
		return fmt.Errorf("%w: top_n must be non-negative, got %d", ErrConfiguration, c.TopN)
	}
	if c.SimilarityFloor < 0 || c.SimilarityFloor > 1 {
		return fmt.Errorf("%w: similarity_floor must be in [0, 1], got %f", ErrConfiguration, c.SimilarityFloor)
	}
	if c.MinTotalSimilarity < 0 {
		return fmt.Errorf("%w: min_total_similarity must be non-negative, got %f", ErrConfiguration, c.MinTotalSimilarity)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrConfiguration, c.Workers)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: cache_size must be non-negative, got %d", ErrConfiguration, c.CacheSize)
	}
	return nil
}

// validateHyperplanes enforces 1 <= k <= SignatureBits whenever tables exist.
func validateHyperplanes(tables, k int) error {
	if k < 0 {
		return fmt.Errorf("%w: hyperplanes must be non-negative, got %d", ErrConfiguration, k)
	}
	if k > SignatureBits {
		return fmt.Errorf("%w: hyperplanes must be <= %d (signature width), got %d", ErrConfiguration, SignatureBits, k)
	}
	if tables > 0 && k == 0 {
		return fmt.Errorf("%w: hyperplanes must be positive when tables > 0", ErrConfiguration)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// workers resolves the configured worker count.
func (c *Config) workers() int {
	return resolveWorkers(c.Workers)
}

func resolveWorkers(n int) int {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n < 1 {
		n = 1
	}
	return n
}
