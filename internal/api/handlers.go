// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/validation"
)

// MaxLimit caps the limit query parameter.
const MaxLimit = 1000

// defaultQueryTimeout bounds a single recommendation query.
const defaultQueryTimeout = 10 * time.Second

// Handler serves the recommendation API from an engine.
type Handler struct {
	engine    *recommend.Engine
	titles    atomic.Pointer[dataset.Titles]
	startTime time.Time
	timeout   time.Duration
}

// NewHandler creates a handler for engine.
func NewHandler(engine *recommend.Engine) *Handler {
	return &Handler{
		engine:    engine,
		startTime: time.Now(),
		timeout:   defaultQueryTimeout,
	}
}

// SetTitles replaces the title lookup used in responses.
func (h *Handler) SetTitles(titles dataset.Titles) {
	h.titles.Store(&titles)
}

func (h *Handler) title(id int) string {
	titles := h.titles.Load()
	if titles == nil {
		return ""
	}
	title, _ := titles.Title(id)
	return title
}

// RecommendationItem is one recommended item in a response.
type RecommendationItem struct {
	ItemID int     `json:"item_id"`
	Score  float64 `json:"score"`
	Title  string  `json:"title,omitempty"`
}

// RecommendationsResponse is the data of GET /users/{userID}/recommendations.
type RecommendationsResponse struct {
	UserID         int                  `json:"user_id"`
	MeanSimilarity float64              `json:"mean_similarity"`
	Neighbors      int                  `json:"neighbors"`
	Candidates     int                  `json:"candidates"`
	Fallback       bool                 `json:"fallback"`
	Items          []RecommendationItem `json:"items"`
}

// NeighborsResponse is the data of GET /users/{userID}/neighbors.
type NeighborsResponse struct {
	UserID    int                  `json:"user_id"`
	Neighbors []recommend.Neighbor `json:"neighbors"`
}

// HealthResponse is the data of the health endpoints.
type HealthResponse struct {
	Status     string  `json:"status"`
	Ready      bool    `json:"ready"`
	Generation uint64  `json:"generation"`
	Users      int     `json:"users"`
	Uptime     float64 `json:"uptime_seconds"`
}

// recommendationsQuery holds validated query parameters.
type recommendationsQuery struct {
	Limit int `json:"limit" validate:"gte=0,lte=1000"`
}

// GetRecommendations handles GET /api/v1/users/{userID}/recommendations?limit=n.
// limit defaults to the configured top N; 0 returns the full list.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	query := recommendationsQuery{Limit: h.engine.Config().TopN}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, &APIError{
				Code:    CodeValidation,
				Message: "limit must be an integer",
			}, nil)
			return
		}
		query.Limit = limit
	}
	if apiErr := validateRequest(&query); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	start := time.Now()
	res, cached, err := h.engine.RecommendCached(ctx, userID)
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}

	top := res.Top(query.Limit)
	items := make([]RecommendationItem, len(top))
	for i, rec := range top {
		items[i] = RecommendationItem{ItemID: rec.ItemID, Score: rec.Score, Title: h.title(rec.ItemID)}
	}

	respondSuccess(w, r, RecommendationsResponse{
		UserID:         res.UserID,
		MeanSimilarity: res.MeanSimilarity,
		Neighbors:      len(res.Neighbors),
		Candidates:     res.Candidates,
		Fallback:       res.Fallback,
		Items:          items,
	}, Metadata{
		QueryTimeMS: time.Since(start).Milliseconds(),
		Generation:  res.Generation,
		Cached:      cached,
	})
}

// GetNeighbors handles GET /api/v1/users/{userID}/neighbors.
func (h *Handler) GetNeighbors(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	start := time.Now()
	neighbors, err := h.engine.Neighbors(ctx, userID)
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}
	if neighbors == nil {
		neighbors = []recommend.Neighbor{}
	}

	meta := Metadata{QueryTimeMS: time.Since(start).Milliseconds()}
	if snap := h.engine.Snapshot(); snap != nil {
		meta.Generation = snap.Generation
	}
	respondSuccess(w, r, NeighborsResponse{UserID: userID, Neighbors: neighbors}, meta)
}

// GetIndexStats handles GET /api/v1/index/stats.
func (h *Handler) GetIndexStats(w http.ResponseWriter, r *http.Request) {
	stats := h.engine.Stats()
	if stats.Generation == 0 {
		respondError(w, r, http.StatusServiceUnavailable, &APIError{
			Code:    CodeIndexUnavailable,
			Message: "Index has not been built yet",
		}, nil)
		return
	}
	respondSuccess(w, r, stats, Metadata{Generation: stats.Generation})
}

// Health handles GET /health. It always answers 200 while the process runs.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, h.health(), Metadata{})
}

// HealthReady handles GET /health/ready: 503 until the first snapshot exists.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	health := h.health()
	if !health.Ready {
		respondJSON(w, r, http.StatusServiceUnavailable, &APIResponse{
			Status:   "error",
			Data:     health,
			Metadata: Metadata{Timestamp: time.Now().UTC()},
			Error: &APIError{
				Code:    CodeIndexUnavailable,
				Message: "Index has not been built yet",
			},
		})
		return
	}
	respondSuccess(w, r, health, Metadata{Generation: health.Generation})
}

func (h *Handler) health() HealthResponse {
	health := HealthResponse{
		Status: "initializing",
		Uptime: time.Since(h.startTime).Seconds(),
	}
	if snap := h.engine.Snapshot(); snap != nil {
		health.Status = "healthy"
		health.Ready = true
		health.Generation = snap.Generation
		health.Users = snap.Store.Len()
	}
	return health
}

// respondEngineError maps engine errors to HTTP statuses.
func (h *Handler) respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrUserNotFound):
		respondError(w, r, http.StatusNotFound, &APIError{
			Code:    CodeUserNotFound,
			Message: "User not found",
		}, nil)
	case errors.Is(err, recommend.ErrNoSnapshot):
		respondError(w, r, http.StatusServiceUnavailable, &APIError{
			Code:    CodeIndexUnavailable,
			Message: "Index has not been built yet",
		}, nil)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, &APIError{
			Code:    CodeTimeout,
			Message: "Query timed out",
		}, err)
	default:
		respondError(w, r, http.StatusInternalServerError, &APIError{
			Code:    CodeInternal,
			Message: "Failed to generate recommendations",
		}, err)
	}
}

// parseUserID reads the {userID} path parameter, answering 400 when it is
// not an integer.
func parseUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, &APIError{
			Code:    CodeInvalidUserID,
			Message: "Invalid user ID",
		}, nil)
		return 0, false
	}
	return userID, true
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes.
func validateRequest(v interface{}) *APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}
	return &APIError{
		Code:    CodeValidation,
		Message: validationErr.Error(),
		Details: map[string]interface{}{"fields": validationErr.Fields},
	}
}
