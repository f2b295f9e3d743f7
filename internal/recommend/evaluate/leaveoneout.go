// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package evaluate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// ErrNoPredictions is returned when no held-out rating could be predicted.
var ErrNoPredictions = errors.New("evaluate: no predictions made")

// Options controls LeaveOneOut.
type Options struct {
	// K is the number of neighbors used per prediction.
	K int

	// MaxUsers caps the evaluated users, taken in ascending id order.
	// Zero evaluates every user.
	MaxUsers int

	// Workers bounds concurrent users. Zero uses GOMAXPROCS.
	Workers int
}

// Report is the outcome of a leave-one-out run.
type Report struct {
	K           int           `json:"k"`
	Users       int           `json:"users"`
	Skipped     int           `json:"skipped"`
	Predictions int           `json:"predictions"`
	MAE         float64       `json:"mae"`
	RMSE        float64       `json:"rmse"`
	Duration    time.Duration `json:"duration"`
}

type userErrors struct {
	abs     []float64
	sq      []float64
	skipped bool
}

// LeaveOneOut evaluates brute-force user KNN on store. For every user with
// at least two ratings, each rating is hidden in turn; the K users most
// similar to the reduced profile are found among all other users, and those
// who rated the hidden item predict it by similarity-weighted mean.
func LeaveOneOut(ctx context.Context, store *recommend.Store, opts Options) (*Report, error) {
	if opts.K <= 0 {
		return nil, fmt.Errorf("%w: leave-one-out k must be positive, got %d", recommend.ErrConfiguration, opts.K)
	}
	start := time.Now()

	users := store.Users()
	if opts.MaxUsers > 0 && len(users) > opts.MaxUsers {
		users = users[:opts.MaxUsers]
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	perUser := make([]userErrors, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, uid := range users {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perUser[i] = evaluateUser(store, uid, opts.K)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{K: opts.K, Users: len(users)}
	var abs, sq []float64
	for _, ue := range perUser {
		if ue.skipped {
			report.Skipped++
			continue
		}
		abs = append(abs, ue.abs...)
		sq = append(sq, ue.sq...)
	}
	report.Predictions = len(abs)
	report.Duration = time.Since(start)
	if report.Predictions == 0 {
		return report, ErrNoPredictions
	}

	report.MAE = stat.Mean(abs, nil)
	report.RMSE = math.Sqrt(stat.Mean(sq, nil))
	return report, nil
}

func evaluateUser(store *recommend.Store, uid, k int) userErrors {
	full, _ := store.Vector(uid)
	if full.Len() < 2 {
		return userErrors{skipped: true}
	}

	var out userErrors
	for _, held := range full.Items() {
		actual, _ := full.Rating(held)
		profile := full.Without(held)
		neighbors := nearest(store, uid, profile, k)

		var num, den float64
		for _, n := range neighbors {
			v, _ := store.Vector(n.UserID)
			if r, ok := v.Rating(held); ok {
				num += r * n.Similarity
				den += n.Similarity
			}
		}
		if den <= 0 {
			continue
		}
		e := actual - num/den
		out.abs = append(out.abs, math.Abs(e))
		out.sq = append(out.sq, e*e)
	}
	return out
}

// nearest ranks every other user against profile by exact cosine similarity.
func nearest(store *recommend.Store, uid int, profile recommend.Vector, k int) []recommend.Neighbor {
	norm := profile.Norm()
	neighbors := make([]recommend.Neighbor, 0, k)
	for _, other := range store.Users() {
		if other == uid {
			continue
		}
		v, _ := store.Vector(other)
		if sim := recommend.Cosine(profile, v, norm, store.Norm(other)); sim > 0 {
			neighbors = append(neighbors, recommend.Neighbor{UserID: other, Similarity: sim})
		}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].UserID < neighbors[j].UserID
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}
