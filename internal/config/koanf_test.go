// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// isolate moves the test into an empty directory so no stray config.yaml
// is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, "")
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.LSH.Tables != 10 || cfg.LSH.Hyperplanes != 16 || cfg.LSH.Neighbors != 10 {
		t.Errorf("LSH = %+v, want L=10 k=16 K=10", cfg.LSH)
	}
	if cfg.Recommend.TopN != 10 {
		t.Errorf("TopN = %d, want 10", cfg.Recommend.TopN)
	}
	if cfg.Dataset.MinRatingsPerUser != 5 || cfg.Dataset.MinRatingsPerItem != 5 {
		t.Errorf("min ratings = %d/%d, want 5/5", cfg.Dataset.MinRatingsPerUser, cfg.Dataset.MinRatingsPerItem)
	}
	if cfg.Dataset.ExploreUsers != 1000 {
		t.Errorf("ExploreUsers = %d, want 1000", cfg.Dataset.ExploreUsers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() = %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"RM_LSH_TABLES", "lsh.tables"},
		{"RM_LSH_HYPERPLANES", "lsh.hyperplanes"},
		{"RM_HTTP_ADDR", "server.addr"},
		{"RM_CORS_ORIGINS", "server.cors_origins"},
		{"RM_LOG_LEVEL", "logging.level"},
		{"RM_UNKNOWN", ""},
		{"RM_CONFIG_PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Server.RateLimitWindow != time.Minute {
		t.Errorf("RateLimitWindow = %v, want 1m", cfg.Server.RateLimitWindow)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "reelmatch.yaml")
	writeFile(t, path, `
lsh:
  tables: 4
  hyperplanes: 32
  seed: 7
recommend:
  mean_filter: false
dataset:
  loader: duckdb
refresh:
  enabled: true
  interval: 10m
`)
	t.Setenv("RM_LSH_TABLES", "6")
	t.Setenv("RM_CORS_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LSH.Tables != 6 {
		t.Errorf("LSH.Tables = %d, want 6 (env over file)", cfg.LSH.Tables)
	}
	if cfg.LSH.Hyperplanes != 32 || cfg.LSH.Seed != 7 {
		t.Errorf("LSH = %+v, want hyperplanes 32 seed 7", cfg.LSH)
	}
	if cfg.Recommend.MeanFilter {
		t.Error("MeanFilter = true, want false from file")
	}
	if cfg.Dataset.Loader != "duckdb" {
		t.Errorf("Loader = %q, want duckdb", cfg.Dataset.Loader)
	}
	if cfg.Refresh.Interval != 10*time.Minute {
		t.Errorf("Refresh.Interval = %v, want 10m", cfg.Refresh.Interval)
	}
	if !slices.Equal(cfg.Server.CORSOrigins, []string{"http://a.example", "http://b.example"}) {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}

	engine := cfg.EngineConfig()
	if engine.Tables != 6 || engine.Hyperplanes != 32 || engine.MeanFilter {
		t.Errorf("EngineConfig() = %+v", engine)
	}
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "lsh:\n  neighbors: 25\n")
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LSH.Neighbors != 25 {
		t.Errorf("LSH.Neighbors = %d, want 25", cfg.LSH.Neighbors)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		wantEngineErr bool
	}{
		{name: "hyperplanes above signature width", env: map[string]string{"RM_LSH_HYPERPLANES": "65"}},
		{name: "negative tables", env: map[string]string{"RM_LSH_TABLES": "-1"}},
		{name: "unknown loader", env: map[string]string{"RM_LOADER": "parquet"}},
		{name: "bad log level", env: map[string]string{"RM_LOG_LEVEL": "loud"}},
		{name: "refresh without interval", env: map[string]string{"RM_REFRESH_ENABLED": "true", "RM_REFRESH_INTERVAL": "0s"}},
		{name: "zero hyperplanes with tables", env: map[string]string{"RM_LSH_HYPERPLANES": "0"}, wantEngineErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Load() error = %v, want ErrInvalid", err)
			}
			if tt.wantEngineErr && !errors.Is(err, recommend.ErrConfiguration) {
				t.Errorf("Load() error = %v, want wrapping recommend.ErrConfiguration", err)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Error("Load() error = nil for missing explicit file")
	}
}
