// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"errors"
	"fmt"

	"github.com/tomtom215/reelmatch/internal/validation"
)

// ErrInvalid wraps every configuration validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Validate checks struct tags, then cross-field rules. Engine parameter
// errors also wrap recommend.ErrConfiguration.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, verr.Error())
	}

	if err := c.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if c.Refresh.Enabled {
		if c.Refresh.Interval <= 0 {
			return fmt.Errorf("%w: refresh.interval must be positive when refresh is enabled, got %v", ErrInvalid, c.Refresh.Interval)
		}
		if c.Dataset.RatingsPath == "" {
			return fmt.Errorf("%w: dataset.ratings_path is required when refresh is enabled", ErrInvalid)
		}
	}

	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("%w: server.rate_limit_window must be positive when rate limiting is on", ErrInvalid)
	}
	return nil
}
