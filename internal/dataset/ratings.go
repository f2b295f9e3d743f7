// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// ctxCheckInterval is how many rows are read between context checks.
const ctxCheckInterval = 8192

// Rating is one (user, item, rating) observation.
type Rating struct {
	UserID    int     `json:"user_id"`
	ItemID    int     `json:"item_id"`
	Value     float64 `json:"rating"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

// Titles maps item ids to display titles.
type Titles map[int]string

// Title returns the title of id and whether it is known.
func (t Titles) Title(id int) (string, bool) {
	title, ok := t[id]
	return title, ok
}

// LoadStats summarizes one ratings read.
type LoadStats struct {
	Rows     int           `json:"rows"`
	Loaded   int           `json:"loaded"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

// LoadRatingsCSV reads a MovieLens ratings file.
func LoadRatingsCSV(ctx context.Context, path string) ([]Rating, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open ratings: %w", err)
	}
	defer f.Close()

	return ReadRatingsCSV(ctx, f)
}

// ReadRatingsCSV parses userId,movieId,rating[,timestamp] rows after a header
// line. Rows with unparseable fields are skipped and counted.
func ReadRatingsCSV(ctx context.Context, r io.Reader) ([]Rating, LoadStats, error) {
	start := time.Now()
	var stats LoadStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			stats.Duration = time.Since(start)
			return nil, stats, nil
		}
		return nil, stats, fmt.Errorf("read ratings header: %w", err)
	}

	var ratings []Rating
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		stats.Rows++
		if stats.Rows%ctxCheckInterval == 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, stats, ctxErr
			}
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				stats.Skipped++
				continue
			}
			return nil, stats, fmt.Errorf("read ratings: %w", err)
		}

		rating, ok := parseRatingRecord(record)
		if !ok {
			stats.Skipped++
			continue
		}
		ratings = append(ratings, rating)
	}

	stats.Loaded = len(ratings)
	stats.Duration = time.Since(start)
	return ratings, stats, nil
}

func parseRatingRecord(record []string) (Rating, bool) {
	if len(record) < 3 {
		return Rating{}, false
	}
	userID, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return Rating{}, false
	}
	itemID, err := strconv.Atoi(strings.TrimSpace(record[1]))
	if err != nil {
		return Rating{}, false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return Rating{}, false
	}

	rating := Rating{UserID: userID, ItemID: itemID, Value: value}
	if len(record) > 3 {
		// A bad timestamp does not invalidate the rating.
		if ts, err := strconv.ParseInt(strings.TrimSpace(record[3]), 10, 64); err == nil {
			rating.Timestamp = ts
		}
	}
	return rating, true
}

// LoadTitlesCSV reads a MovieLens movies file.
func LoadTitlesCSV(ctx context.Context, path string) (Titles, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open titles: %w", err)
	}
	defer f.Close()

	return ReadTitlesCSV(ctx, f)
}

// ReadTitlesCSV parses movieId,title,genres rows after a header line. Quoted
// titles may contain commas. The first title seen for an id wins.
func ReadTitlesCSV(ctx context.Context, r io.Reader) (Titles, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	titles := make(Titles)
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return titles, nil
		}
		return nil, fmt.Errorf("read titles header: %w", err)
	}

	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rows++
		if rows%ctxCheckInterval == 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("read titles: %w", err)
		}
		if len(record) < 2 {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			continue
		}
		if _, exists := titles[id]; !exists {
			titles[id] = record[1]
		}
	}
	return titles, nil
}
