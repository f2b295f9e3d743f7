// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package config loads application configuration with koanf.
//
// Precedence, lowest to highest:
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (explicit path, RM_CONFIG_PATH, or DefaultConfigPaths)
//  3. RM_* environment variables (see envMappings)
//
// The merged result is checked with struct tags through internal/validation,
// then with cross-field rules in Validate.
package config

import (
	"time"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Config is the complete application configuration.
type Config struct {
	LSH       LSHConfig       `koanf:"lsh"`
	Recommend RecommendConfig `koanf:"recommend"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Server    ServerConfig    `koanf:"server"`
	Refresh   RefreshConfig   `koanf:"refresh"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// LSHConfig holds index construction parameters.
type LSHConfig struct {
	// Tables is L, the number of hash tables.
	Tables int `koanf:"tables" validate:"gte=0"`

	// Hyperplanes is k, the number of hyperplanes (signature bits) per table.
	Hyperplanes int `koanf:"hyperplanes" validate:"lshbits"`

	// Neighbors is K, the neighbors kept per query.
	Neighbors int `koanf:"neighbors" validate:"gte=0"`

	// Seed drives hyperplane generation.
	Seed uint64 `koanf:"seed"`

	// Workers bounds build and batch parallelism (0 = GOMAXPROCS).
	Workers int `koanf:"workers" validate:"gte=0"`
}

// RecommendConfig holds aggregation and presentation parameters.
type RecommendConfig struct {
	TopN               int     `koanf:"top_n" validate:"gte=0"`
	SimilarityFloor    float64 `koanf:"similarity_floor" validate:"gte=0,lte=1"`
	MinTotalSimilarity float64 `koanf:"min_total_similarity" validate:"gte=0"`
	MeanFilter         bool    `koanf:"mean_filter"`
	CacheSize          int     `koanf:"cache_size" validate:"gte=0"`
}

// DatasetConfig locates and filters the input data.
type DatasetConfig struct {
	RatingsPath string `koanf:"ratings_path"`
	MoviesPath  string `koanf:"movies_path"`

	// TestPath holds held-out ratings for hit-rate scoring. When empty the
	// items rated by each user's neighbors are used instead.
	TestPath string `koanf:"test_path"`

	// Loader selects the ratings reader: csv, duckdb or sparse (the line
	// format written by the filter command).
	Loader string `koanf:"loader" validate:"oneof=csv duckdb sparse"`

	MinRatingsPerUser int `koanf:"min_ratings_per_user" validate:"gte=0"`
	MinRatingsPerItem int `koanf:"min_ratings_per_item" validate:"gte=0"`

	// ExploreUsers is the number of users sampled for batch output (0 = all).
	ExploreUsers int    `koanf:"explore_users" validate:"gte=0"`
	ExploreSeed  uint64 `koanf:"explore_seed"`

	// SnapshotDir is a badger directory caching the filtered dataset.
	// Empty disables the snapshot store.
	SnapshotDir string `koanf:"snapshot_dir"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr              string        `koanf:"addr" validate:"required"`
	ReadTimeout       time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout" validate:"gte=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gte=0"`
}

// RefreshConfig controls periodic dataset reload and index rebuild.
type RefreshConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval" validate:"gte=0"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns built-in defaults, applied before file and env.
func defaultConfig() *Config {
	return &Config{
		LSH: LSHConfig{
			Tables:      recommend.DefaultTables,
			Hyperplanes: recommend.DefaultHyperplanes,
			Neighbors:   recommend.DefaultNeighbors,
			Seed:        recommend.DefaultSeed,
		},
		Recommend: RecommendConfig{
			TopN:               recommend.DefaultTopN,
			MinTotalSimilarity: recommend.DefaultMinTotalSimilarity,
			MeanFilter:         true,
			CacheSize:          recommend.DefaultCacheSize,
		},
		Dataset: DatasetConfig{
			RatingsPath:       "data/ratings.csv",
			MoviesPath:        "data/movies.csv",
			Loader:            "csv",
			MinRatingsPerUser: 5,
			MinRatingsPerItem: 5,
			ExploreUsers:      1000,
			ExploreSeed:       recommend.DefaultSeed,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Refresh: RefreshConfig{
			Enabled:  false,
			Interval: time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Default returns a copy of the built-in defaults.
func Default() *Config {
	return defaultConfig()
}

// EngineConfig converts the LSH and recommend sections to a recommend.Config.
func (c *Config) EngineConfig() *recommend.Config {
	return &recommend.Config{
		Tables:             c.LSH.Tables,
		Hyperplanes:        c.LSH.Hyperplanes,
		Neighbors:          c.LSH.Neighbors,
		TopN:               c.Recommend.TopN,
		Seed:               c.LSH.Seed,
		SimilarityFloor:    c.Recommend.SimilarityFloor,
		MinTotalSimilarity: c.Recommend.MinTotalSimilarity,
		MeanFilter:         c.Recommend.MeanFilter,
		Workers:            c.LSH.Workers,
		CacheSize:          c.Recommend.CacheSize,
	}
}

// LoggingConfig converts the logging section to a logging.Config.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}
