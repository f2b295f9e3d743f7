// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package dataset reads, filters and persists the rating data the engine is
built from.

Three ratings formats are understood:

  - MovieLens CSV (userId,movieId,rating,timestamp), read with encoding/csv
    or through DuckDB's read_csv_auto with the activity filter pushed into SQL
  - the sparse line format written by the filter command, one user per line:
    "userID item:rating item:rating ..."
  - a badger SnapshotStore holding a previously filtered dataset

Titles come from movies.csv (movieId,title,genres). Load ties the pieces
together for the CLI and the refresh service: read, filter, build the
recommend.Store and record dataset metrics.
*/
package dataset
