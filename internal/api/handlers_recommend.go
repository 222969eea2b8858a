// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shoprec/shoprec/internal/metrics"
	"github.com/shoprec/shoprec/internal/models"
	"github.com/shoprec/shoprec/internal/recommend"
)

// SourceStatus reports the health of the event source feeding the
// recommendation engine. Implemented by store.BreakerSource.
type SourceStatus interface {
	State() string
}

// RecommendHandler handles recommendation API endpoints.
type RecommendHandler struct {
	svc     *recommend.Service
	updater *recommend.Updater
	source  SourceStatus
}

// NewRecommendHandler creates a new recommendation handler.
func NewRecommendHandler(svc *recommend.Service, updater *recommend.Updater, source SourceStatus) *RecommendHandler {
	return &RecommendHandler{
		svc:     svc,
		updater: updater,
		source:  source,
	}
}

// GetRecommendations handles GET /api/v1/recommendations/{productID}.
//
// Query parameters:
//   - user_id: enables the user-similarity tier when positive
//   - n: number of results, clamped by the engine's limits
//   - sample: switch the co-occurrence tier to weighted random sampling
func (h *RecommendHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	productIDStr := chi.URLParam(r, "productID")
	productID, err := strconv.Atoi(productIDStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid product ID", err)
		return
	}

	req := recommend.Request{
		ProductID: productID,
		UserID:    getIntParam(r, "user_id", 0),
		N:         getIntParam(r, "n", 0),
		Sample:    getBoolParam(r, "sample", false),
	}

	start := time.Now()
	result, err := h.svc.Recommend(req)
	if err != nil {
		if errors.Is(err, recommend.ErrProductNotFound) {
			metrics.RecommendNotFound.Inc()
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Product not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to generate recommendations", err)
		return
	}

	elapsed := time.Since(start)
	metrics.RecordRecommendQuery(string(result.Tier), elapsed)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   result,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: elapsed.Milliseconds(),
			Generation:  result.Generation,
		},
	})
}

// GetProductStats handles GET /api/v1/products/{id}/stats.
// Returns per-product interaction counters from the published snapshot.
func (h *RecommendHandler) GetProductStats(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid product ID", err)
		return
	}

	stats, ok := h.svc.Stats(id)
	if !ok {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Product not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   stats,
		Metadata: models.Metadata{
			Timestamp:  time.Now(),
			Generation: h.svc.CurrentGeneration(),
		},
	})
}

// Refresh handles POST /api/v1/recommendations/refresh.
// Triggers an asynchronous snapshot rebuild. Returns 202 when the trigger
// was accepted and 409 when a rebuild is already running or was requested
// too recently.
func (h *RecommendHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.updater.Refresh(); err != nil {
		if errors.Is(err, recommend.ErrBuildInProgress) {
			metrics.RefreshRejected.Inc()
			respondError(w, http.StatusConflict, models.ErrCodeRebuildBusy,
				"A rebuild is already in progress or was triggered too recently", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to trigger rebuild", err)
		return
	}

	respondJSON(w, http.StatusAccepted, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"message": "rebuild triggered",
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// GetStatus handles GET /api/v1/recommendations/status.
// Reports snapshot vitals, the last build outcome and source health.
func (h *RecommendHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := h.svc.Status()

	data := map[string]interface{}{
		"snapshot": status,
		"building": h.updater.Building(),
	}
	if last := h.updater.LastBuild(); last != nil {
		data["last_build"] = last
	}
	if h.source != nil {
		data["source_state"] = h.source.State()
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:  time.Now(),
			Generation: status.Generation,
		},
	})
}
