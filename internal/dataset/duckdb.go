// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// duckDBMemoryDSN opens a private in-memory database. Extension auto-install
// is disabled so restricted networks cannot stall the open.
const duckDBMemoryDSN = ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false"

// ratingsActivityQuery applies the activity filter in SQL. %[1]s is the
// quoted CSV path and %[2]s the timestamp expression; parameters are the
// user and item minimums. seq numbers rows in file order (DuckDB preserves
// insertion order for CSV scans by default) so duplicate (user, item) rows
// come back in file order and the last one wins when the store is built.
const ratingsActivityQuery = `
WITH r AS (
	SELECT
		row_number() OVER ()    AS seq,
		CAST(userId AS BIGINT)  AS user_id,
		CAST(movieId AS BIGINT) AS item_id,
		CAST(rating AS DOUBLE)  AS rating,
		%[2]s AS ts
	FROM read_csv_auto(%[1]s, header = true)
),
users AS (
	SELECT user_id FROM r GROUP BY user_id HAVING count(*) >= ?
),
items AS (
	SELECT item_id FROM r GROUP BY item_id HAVING count(*) >= ?
)
SELECT r.user_id, r.item_id, r.rating, r.ts
FROM r
JOIN users USING (user_id)
JOIN items USING (item_id)
ORDER BY r.user_id, r.item_id, r.seq`

const ratingsCountQuery = `SELECT count(*) FROM read_csv_auto(%s, header = true)`

const ratingsDescribeQuery = `DESCRIBE SELECT * FROM read_csv_auto(%s, header = true)`

// Timestamp expressions for ratingsActivityQuery. A bad timestamp does not
// drop the rating, matching ReadRatingsCSV.
const (
	timestampColumnExpr = `TRY_CAST("timestamp" AS BIGINT)`
	timestampNullExpr   = `CAST(NULL AS BIGINT)`
)

// requiredRatingColumns must appear in the CSV header.
var requiredRatingColumns = []string{"userid", "movieid", "rating"}

// ErrMissingColumn is returned when the ratings header lacks a required column.
var ErrMissingColumn = errors.New("dataset: ratings file missing column")

// sqlStringLiteral quotes s as a SQL string literal.
func sqlStringLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// LoadRatingsDuckDB reads a MovieLens ratings CSV through DuckDB with the
// activity filter applied in the query. The timestamp column is optional, as
// it is for ReadRatingsCSV. The result matches
// SortRatings(FilterByActivity(ReadRatingsCSV(path))): rows are returned by
// user then item, duplicates in file order. Stats.Rows counts the unfiltered
// input.
func LoadRatingsDuckDB(ctx context.Context, path string, minUser, minItem int) ([]Rating, LoadStats, error) {
	start := time.Now()
	var stats LoadStats

	db, err := sql.Open("duckdb", duckDBMemoryDSN)
	if err != nil {
		return nil, stats, fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close()

	literal := sqlStringLiteral(path)
	if err := db.QueryRowContext(ctx, fmt.Sprintf(ratingsCountQuery, literal)).Scan(&stats.Rows); err != nil {
		return nil, stats, fmt.Errorf("count ratings: %w", err)
	}

	columns, err := csvColumns(ctx, db, literal)
	if err != nil {
		return nil, stats, err
	}
	for _, name := range requiredRatingColumns {
		if !columns[name] {
			return nil, stats, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	tsExpr := timestampNullExpr
	if columns["timestamp"] {
		tsExpr = timestampColumnExpr
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(ratingsActivityQuery, literal, tsExpr), minUser, minItem)
	if err != nil {
		return nil, stats, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]Rating, 0, stats.Rows)
	for rows.Next() {
		var (
			r  Rating
			ts sql.NullInt64
		)
		if err := rows.Scan(&r.UserID, &r.ItemID, &r.Value, &ts); err != nil {
			return nil, stats, fmt.Errorf("scan rating: %w", err)
		}
		if ts.Valid {
			r.Timestamp = ts.Int64
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, stats, fmt.Errorf("iterate ratings: %w", err)
	}

	stats.Loaded = len(ratings)
	stats.Duration = time.Since(start)
	return ratings, stats, nil
}

// csvColumns returns the lower-cased header names DuckDB detects in the file.
func csvColumns(ctx context.Context, db *sql.DB, literal string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(ratingsDescribeQuery, literal))
	if err != nil {
		return nil, fmt.Errorf("describe ratings: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("describe ratings: %w", err)
	}
	values := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}

	names := make(map[string]bool)
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		// column_name is the first DESCRIBE column.
		names[strings.ToLower(values[0].String)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describe ratings: %w", err)
	}
	return names, nil
}
