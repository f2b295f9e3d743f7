// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package report renders batch recommendation results as a console-style text
// report or as JSON lines.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/evaluate"
)

const (
	titleNotFound = "(Title not found)"
	separator     = "-----------------------------------------------------------"
)

// Header carries the parameters printed at the top of a text report.
type Header struct {
	TopN        int
	Neighbors   int
	Tables      int
	Hyperplanes int
}

// HeaderFromConfig builds a Header from engine parameters.
func HeaderFromConfig(cfg *recommend.Config) Header {
	return Header{
		TopN:        cfg.TopN,
		Neighbors:   cfg.Neighbors,
		Tables:      cfg.Tables,
		Hyperplanes: cfg.Hyperplanes,
	}
}

// Entry is one user's rendered outcome. Items is already cut to top N.
type Entry struct {
	UserID         int
	Items          []recommend.Recommendation
	Neighbors      int
	MeanSimilarity float64
	Fallback       bool
	HitRate        float64
	Err            error
}

// Entries converts batch results to report entries, cutting each list to
// topN and scoring its hit rate. When test holds held-out items for a user
// they are the relevant set; otherwise the items rated by the user's
// neighbors are.
func Entries(results []recommend.BatchResult, store *recommend.Store, test map[int]map[int]struct{}, topN int) []Entry {
	entries := make([]Entry, 0, len(results))
	for _, br := range results {
		e := Entry{UserID: br.UserID, Err: br.Err}
		if br.Err == nil && br.Result != nil {
			e.Items = br.Result.Top(topN)
			e.Neighbors = len(br.Result.Neighbors)
			e.MeanSimilarity = br.Result.MeanSimilarity
			e.Fallback = br.Result.Fallback

			relevant, ok := test[br.UserID]
			if ok {
				e.HitRate = evaluate.HitRate(e.Items, relevant)
			} else {
				e.HitRate = evaluate.HitRate(e.Items, evaluate.NeighborItems(store, br.Result.Neighbors))
			}
		}
		entries = append(entries, e)
	}
	return entries
}

// HitRates returns the hit rates of entries that did not fail.
func HitRates(entries []Entry) []float64 {
	rates := make([]float64, 0, len(entries))
	for _, e := range entries {
		if e.Err == nil {
			rates = append(rates, e.HitRate)
		}
	}
	return rates
}

// TextWriter writes the console report layout.
type TextWriter struct {
	w      *bufio.Writer
	titles dataset.Titles
}

// NewTextWriter writes the report header and returns a writer for entries.
func NewTextWriter(w io.Writer, h Header, titles dataset.Titles) (*TextWriter, error) {
	tw := &TextWriter{w: bufio.NewWriter(w), titles: titles}
	if _, err := fmt.Fprintf(tw.w, "LSH Movie Recommendations (Top %d using K_approx=%d, L=%d, k_hash=%d)\n%s\n\n",
		h.TopN, h.Neighbors, h.Tables, h.Hyperplanes, separator); err != nil {
		return nil, fmt.Errorf("write report header: %w", err)
	}
	return tw, nil
}

// Write renders one entry.
func (tw *TextWriter) Write(e Entry) error {
	var err error
	switch {
	case errors.Is(e.Err, recommend.ErrUserNotFound):
		_, err = fmt.Fprintf(tw.w, "User ID: %d\n  User not found.\n\n", e.UserID)
	case e.Err != nil:
		_, err = fmt.Fprintf(tw.w, "User ID: %d\n  Error: %v\n\n", e.UserID, e.Err)
	case len(e.Items) == 0:
		_, err = fmt.Fprintf(tw.w, "User ID: %d | Hit Rate: %.2f%%\n  No recommendations.\n\n", e.UserID, e.HitRate)
	default:
		err = tw.writeItems(e)
	}
	if err != nil {
		return fmt.Errorf("write report entry for user %d: %w", e.UserID, err)
	}
	return nil
}

func (tw *TextWriter) writeItems(e Entry) error {
	if _, err := fmt.Fprintf(tw.w, "User ID: %d | Hit Rate: %.2f%%\n  Recommended Movies (MovieID: Score | Title):\n", e.UserID, e.HitRate); err != nil {
		return err
	}
	for _, rec := range e.Items {
		title, ok := tw.titles.Title(rec.ItemID)
		if !ok {
			title = titleNotFound
		}
		if _, err := fmt.Fprintf(tw.w, "  - %d: %.3f | %s\n", rec.ItemID, rec.Score, title); err != nil {
			return err
		}
	}
	_, err := tw.w.WriteString("\n")
	return err
}

// Flush flushes buffered output.
func (tw *TextWriter) Flush() error {
	return tw.w.Flush()
}

// WriteText writes a complete text report.
func WriteText(w io.Writer, h Header, titles dataset.Titles, entries []Entry) error {
	tw, err := NewTextWriter(w, h, titles)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := tw.Write(e); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// jsonItem is one recommended item in a JSON line.
type jsonItem struct {
	ItemID int     `json:"item_id"`
	Score  float64 `json:"score"`
	Title  string  `json:"title,omitempty"`
}

// jsonRecord is one JSON line.
type jsonRecord struct {
	UserID         int        `json:"user_id"`
	HitRate        float64    `json:"hit_rate"`
	MeanSimilarity float64    `json:"mean_similarity"`
	Neighbors      int        `json:"neighbors"`
	Fallback       bool       `json:"fallback"`
	Items          []jsonItem `json:"items"`
	Error          string     `json:"error,omitempty"`
}

// WriteJSONLines writes one JSON object per entry.
func WriteJSONLines(w io.Writer, titles dataset.Titles, entries []Entry) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, e := range entries {
		rec := jsonRecord{
			UserID:         e.UserID,
			HitRate:        e.HitRate,
			MeanSimilarity: e.MeanSimilarity,
			Neighbors:      e.Neighbors,
			Fallback:       e.Fallback,
			Items:          make([]jsonItem, 0, len(e.Items)),
		}
		if e.Err != nil {
			rec.Error = e.Err.Error()
		}
		for _, it := range e.Items {
			title, _ := titles.Title(it.ItemID)
			rec.Items = append(rec.Items, jsonItem{ItemID: it.ItemID, Score: it.Score, Title: title})
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode report line for user %d: %w", e.UserID, err)
		}
	}
	return bw.Flush()
}
