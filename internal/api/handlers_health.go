// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/shoprec/shoprec/internal/models"
	"github.com/shoprec/shoprec/internal/recommend"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	svc       *recommend.Service
	catalog   Catalog
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(svc *recommend.Service, catalog Catalog, version string) *HealthHandler {
	return &HealthHandler{
		svc:       svc,
		catalog:   catalog,
		version:   version,
		startTime: time.Now(),
	}
}

// Healthz handles GET /healthz. The service is degraded when the database
// does not answer a ping; recommendation serving keeps working off the last
// published snapshot either way.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthy := true
	if h.catalog != nil {
		if err := h.catalog.Ping(ctx); err != nil {
			healthy = false
		}
	}

	status := h.svc.Status()
	hs := models.HealthStatus{
		Status:     "ok",
		Version:    h.version,
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Generation: status.Generation,
		BuiltAt:    status.BuiltAt,
	}

	code := http.StatusOK
	if !healthy {
		hs.Status = "degraded"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, &models.APIResponse{
		Status: "success",
		Data:   hs,
		Metadata: models.Metadata{
			Timestamp:  time.Now(),
			Generation: status.Generation,
		},
	})
}
