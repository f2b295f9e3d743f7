// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when no path is given.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelmatch/config.yaml",
}

const (
	// ConfigPathEnvVar overrides the config file search.
	ConfigPathEnvVar = "RM_CONFIG_PATH"

	// EnvPrefix is the prefix of every recognised environment variable.
	EnvPrefix = "RM_"
)

// envMappings maps lower-cased variable names (prefix stripped) to koanf paths.
var envMappings = map[string]string{
	"lsh_tables":      "lsh.tables",
	"lsh_hyperplanes": "lsh.hyperplanes",
	"lsh_neighbors":   "lsh.neighbors",
	"lsh_seed":        "lsh.seed",
	"lsh_workers":     "lsh.workers",

	"top_n":                "recommend.top_n",
	"similarity_floor":     "recommend.similarity_floor",
	"min_total_similarity": "recommend.min_total_similarity",
	"mean_filter":          "recommend.mean_filter",
	"cache_size":           "recommend.cache_size",

	"ratings_path":         "dataset.ratings_path",
	"movies_path":          "dataset.movies_path",
	"test_path":            "dataset.test_path",
	"loader":               "dataset.loader",
	"min_ratings_per_user": "dataset.min_ratings_per_user",
	"min_ratings_per_item": "dataset.min_ratings_per_item",
	"explore_users":        "dataset.explore_users",
	"explore_seed":         "dataset.explore_seed",
	"snapshot_dir":         "dataset.snapshot_dir",

	"http_addr":           "server.addr",
	"read_timeout":        "server.read_timeout",
	"write_timeout":       "server.write_timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",

	"refresh_enabled":  "refresh.enabled",
	"refresh_interval": "refresh.interval",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// sliceConfigPaths are split on commas when they arrive as strings.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// Load merges defaults, the config file and the environment, then validates.
// An explicit path must exist; otherwise the search is best effort.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile returns the first existing candidate, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc maps RM_LSH_TABLES to lsh.tables. Unknown variables map
// to "" and are dropped.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envMappings[key]
}

func processSliceFields(k *koanf.Koanf) error {
	for _, p := range sliceConfigPaths {
		s, ok := k.Get(p).(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		if err := k.Set(p, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", p, err)
		}
	}
	return nil
}
