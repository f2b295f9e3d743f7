// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import "errors"

var (
	// ErrConfiguration is wrapped by every rejected configuration value.
	// Configuration errors are fatal and surface before any index is built.
	ErrConfiguration = errors.New("recommend: invalid configuration")

	// ErrUserNotFound is returned when a query user is absent from the store.
	ErrUserNotFound = errors.New("recommend: user not found")

	// ErrNoSnapshot is returned by engine queries issued before the first build.
	ErrNoSnapshot = errors.New("recommend: no index snapshot built")
)
