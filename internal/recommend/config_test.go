// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v, want nil", err)
	}
	if cfg.Tables != 10 {
		t.Errorf("Tables = %d, want 10", cfg.Tables)
	}
	if cfg.Hyperplanes != 16 {
		t.Errorf("Hyperplanes = %d, want 16", cfg.Hyperplanes)
	}
	if cfg.Neighbors != 10 {
		t.Errorf("Neighbors = %d, want 10", cfg.Neighbors)
	}
	if cfg.MinTotalSimilarity != 1.0 {
		t.Errorf("MinTotalSimilarity = %f, want 1.0", cfg.MinTotalSimilarity)
	}
	if cfg.Seed == 0 {
		t.Error("Seed = 0, want non-zero for determinism")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError bool
	}{
		{name: "default is valid", modify: func(*Config) {}},
		{name: "k at signature width", modify: func(c *Config) { c.Hyperplanes = SignatureBits }},
		{name: "k above signature width", modify: func(c *Config) { c.Hyperplanes = SignatureBits + 1 }, wantError: true},
		{name: "negative tables", modify: func(c *Config) { c.Tables = -1 }, wantError: true},
		{name: "negative hyperplanes", modify: func(c *Config) { c.Hyperplanes = -1 }, wantError: true},
		{name: "negative neighbors", modify: func(c *Config) { c.Neighbors = -1 }, wantError: true},
		{name: "zero hyperplanes with tables", modify: func(c *Config) { c.Hyperplanes = 0 }, wantError: true},
		{name: "zero tables and zero hyperplanes", modify: func(c *Config) { c.Tables, c.Hyperplanes = 0, 0 }},
		{name: "zero neighbors", modify: func(c *Config) { c.Neighbors = 0 }},
		{name: "negative top n", modify: func(c *Config) { c.TopN = -1 }, wantError: true},
		{name: "similarity floor above one", modify: func(c *Config) { c.SimilarityFloor = 1.5 }, wantError: true},
		{name: "negative min total similarity", modify: func(c *Config) { c.MinTotalSimilarity = -0.1 }, wantError: true},
		{name: "negative workers", modify: func(c *Config) { c.Workers = -2 }, wantError: true},
		{name: "negative cache size", modify: func(c *Config) { c.CacheSize = -1 }, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Fatalf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
			if err != nil && !errors.Is(err, ErrConfiguration) {
				t.Errorf("Validate() error = %v, want wrapping ErrConfiguration", err)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Tables = 3

	if cfg.Tables == 3 {
		t.Error("modifying clone changed the original")
	}
}
