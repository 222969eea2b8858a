// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shoprec/shoprec/internal/config"
	"github.com/shoprec/shoprec/internal/models"
	"github.com/shoprec/shoprec/internal/recommend"
	"github.com/shoprec/shoprec/internal/store"
)

// Catalog is the storage surface the catalog and event endpoints need.
// Implemented by store.Store.
type Catalog interface {
	InsertProduct(ctx context.Context, p recommend.Product) error
	GetProduct(ctx context.Context, id int) (recommend.Product, error)
	ListProducts(ctx context.Context, f models.ProductFilter) ([]recommend.Product, error)
	CountProducts(ctx context.Context) (int, error)
	InsertEvent(ctx context.Context, ev recommend.Event) error
	Ping(ctx context.Context) error
}

// CatalogHandler handles product catalog and event ingestion endpoints.
type CatalogHandler struct {
	catalog Catalog
	api     *config.APIConfig
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog Catalog, apiCfg *config.APIConfig) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		api:     apiCfg,
	}
}

// CreateProduct handles POST /api/v1/products.
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProductRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid request body", err)
		return
	}

	p := recommend.Product{
		ID:       req.ID,
		Title:    req.Title,
		Category: req.Category,
		Price:    req.Price,
		Color:    req.Color,
		Material: req.Material,
		Sizes:    req.Sizes,
		Brand:    req.Brand,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.catalog.InsertProduct(ctx, p); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			respondError(w, http.StatusConflict, models.ErrCodeDuplicate, "Product already exists", nil)
		case errors.Is(err, store.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Product ID and title are required", nil)
		default:
			respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to store product", err)
		}
		return
	}

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   p,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// GetProduct handles GET /api/v1/products/{id}.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid product ID", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	p, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Product not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load product", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   p,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// ListProducts handles GET /api/v1/products.
//
// Query parameters: category, brand, color, material, min_price,
// max_price, limit, offset. Limit is clamped to the configured maximum
// page size.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := models.ProductFilter{
		Category: r.URL.Query().Get("category"),
		Brand:    r.URL.Query().Get("brand"),
		Color:    r.URL.Query().Get("color"),
		Material: r.URL.Query().Get("material"),
		MinPrice: getFloatParam(r, "min_price", 0),
		MaxPrice: getFloatParam(r, "max_price", 0),
		Limit:    getIntParam(r, "limit", h.api.DefaultPageSize),
		Offset:   getIntParam(r, "offset", 0),
	}

	if filter.Limit <= 0 {
		filter.Limit = h.api.DefaultPageSize
	}
	if filter.Limit > h.api.MaxPageSize {
		filter.Limit = h.api.MaxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to list products", err)
		return
	}

	total, err := h.catalog.CountProducts(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to count products", err)
		return
	}

	if products == nil {
		products = []recommend.Product{}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"products": products,
			"count":    len(products),
			"total":    total,
			"limit":    filter.Limit,
			"offset":   filter.Offset,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// CreateEvent handles POST /api/v1/events.
// Stored events influence recommendations after the next snapshot rebuild.
func (h *CatalogHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid request body", err)
		return
	}

	ev := recommend.Event{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Action:    recommend.ActionKind(req.Action),
		SessionID: req.SessionID,
	}
	if req.Timestamp != nil {
		ev.Timestamp = *req.Timestamp
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.catalog.InsertEvent(ctx, ev); err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidAction):
			respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Action must be one of view, click, purchase", nil)
		case errors.Is(err, store.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "User ID must be positive", nil)
		case errors.Is(err, store.ErrNotFound):
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Referenced product does not exist", nil)
		default:
			respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to store event", err)
		}
		return
	}

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   ev,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
