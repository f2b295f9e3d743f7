// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// maxSparseLine bounds one user line of the sparse format.
const maxSparseLine = 16 << 20

// WriteSparse writes ratings grouped by user, one line per user:
// "userID item:rating item:rating". Users and items are ascending and
// ratings carry one decimal.
func WriteSparse(w io.Writer, ratings []Rating) error {
	sorted := SortRatings(ratings)

	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 64)
	for i := 0; i < len(sorted); {
		user := sorted[i].UserID
		buf = strconv.AppendInt(buf[:0], int64(user), 10)
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write sparse: %w", err)
		}
		for ; i < len(sorted) && sorted[i].UserID == user; i++ {
			buf = append(buf[:0], ' ')
			buf = strconv.AppendInt(buf, int64(sorted[i].ItemID), 10)
			buf = append(buf, ':')
			buf = strconv.AppendFloat(buf, sorted[i].Value, 'f', 1, 64)
			if _, err := bw.Write(buf); err != nil {
				return fmt.Errorf("write sparse: %w", err)
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("write sparse: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write sparse: %w", err)
	}
	return nil
}

// LoadSparse reads a file in the sparse line format.
func LoadSparse(ctx context.Context, path string) ([]Rating, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open sparse dataset: %w", err)
	}
	defer f.Close()

	return ReadSparse(ctx, f)
}

// ReadSparse parses the sparse line format. Malformed item:rating tokens are
// skipped and counted; a line with a bad user id is skipped whole.
func ReadSparse(ctx context.Context, r io.Reader) ([]Rating, LoadStats, error) {
	start := time.Now()
	var stats LoadStats
	var ratings []Rating

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxSparseLine)
	for scanner.Scan() {
		stats.Rows++
		if stats.Rows%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		userID, err := strconv.Atoi(fields[0])
		if err != nil {
			stats.Skipped++
			continue
		}
		for _, tok := range fields[1:] {
			item, value, ok := strings.Cut(tok, ":")
			if !ok {
				stats.Skipped++
				continue
			}
			itemID, err := strconv.Atoi(item)
			if err != nil {
				stats.Skipped++
				continue
			}
			rating, err := strconv.ParseFloat(value, 64)
			if err != nil {
				stats.Skipped++
				continue
			}
			ratings = append(ratings, Rating{UserID: userID, ItemID: itemID, Value: rating})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("read sparse dataset: %w", err)
	}

	stats.Loaded = len(ratings)
	stats.Duration = time.Since(start)
	return ratings, stats, nil
}

// WriteUserIDs writes one id per line.
func WriteUserIDs(w io.Writer, ids []int) error {
	bw := bufio.NewWriter(w)
	for _, id := range ids {
		if _, err := bw.WriteString(strconv.Itoa(id)); err != nil {
			return fmt.Errorf("write user ids: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("write user ids: %w", err)
		}
	}
	return bw.Flush()
}

// ReadUserIDs reads one id per line, ignoring blank and unparseable lines.
func ReadUserIDs(r io.Reader) ([]int, error) {
	var ids []int
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, err := strconv.Atoi(line)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read user ids: %w", err)
	}
	return ids, nil
}

// SortRatings returns a copy of ratings ordered by user then item.
func SortRatings(ratings []Rating) []Rating {
	sorted := make([]Rating, len(ratings))
	copy(sorted, ratings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].UserID != sorted[j].UserID {
			return sorted[i].UserID < sorted[j].UserID
		}
		return sorted[i].ItemID < sorted[j].ItemID
	})
	return sorted
}
