// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package evaluate measures recommendation quality.
//
// HitRate scores one user's recommendation list against a relevant item
// set, either held-out test ratings or the items rated by the user's
// neighbors. LeaveOneOut hides each rating of every user in turn, predicts
// it from the user's exact (brute-force) nearest neighbors, and reports MAE
// and RMSE. It only depends on the similarity primitives of package
// recommend, not on the LSH index.
package evaluate
