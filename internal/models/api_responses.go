// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

// Package models defines the API data structures shared between the
// HTTP layer and its clients: the response envelope, error details, and
// request payloads for catalog and event ingestion.
package models

import (
	"time"
)

// APIResponse is the standardized wrapper returned by every HTTP
// endpoint, for both success and error outcomes.
//
// Status field values:
//   - "success": request completed, see Data
//   - "error": request failed, see Error
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"product_id": 1, "recommendations": [...]},
//	  "metadata": {"timestamp": "2026-08-30T12:00:00Z", "query_time_ms": 2}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response observability fields.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`

	// Generation is the recommendation snapshot generation that served
	// the request, when one was involved.
	Generation uint64 `json:"generation,omitempty"`
}

// APIError carries structured error details.
//
// Error codes used by the service:
//   - VALIDATION_ERROR: invalid input parameters
//   - NOT_FOUND: resource does not exist
//   - DUPLICATE: resource already exists
//   - REBUILD_IN_PROGRESS: a snapshot rebuild is already running
//   - SOURCE_UNAVAILABLE: the backing store rejected the request
//   - DATABASE_ERROR: query execution failure
//   - RATE_LIMIT_EXCEEDED: too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes shared by all endpoints.
const (
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeDuplicate   = "DUPLICATE"
	ErrCodeRebuildBusy = "REBUILD_IN_PROGRESS"
	ErrCodeSourceDown  = "SOURCE_UNAVAILABLE"
	ErrCodeDatabase    = "DATABASE_ERROR"
	ErrCodeRateLimited = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal    = "INTERNAL_ERROR"
)

// CreateProductRequest is the payload for POST /api/v1/products.
type CreateProductRequest struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Price    float64  `json:"price"`
	Color    string   `json:"color,omitempty"`
	Material string   `json:"material,omitempty"`
	Sizes    []string `json:"sizes,omitempty"`
	Brand    string   `json:"brand,omitempty"`
}

// CreateEventRequest is the payload for POST /api/v1/events.
type CreateEventRequest struct {
	UserID    int        `json:"user_id"`
	ProductID int        `json:"product_id"`
	Action    string     `json:"action"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	SessionID string     `json:"session_id,omitempty"`
}

// ProductFilter selects products in GET /api/v1/products.
// Zero values mean no constraint on that dimension.
type ProductFilter struct {
	Category string  `json:"category,omitempty"`
	Brand    string  `json:"brand,omitempty"`
	Color    string  `json:"color,omitempty"`
	Material string  `json:"material,omitempty"`
	MinPrice float64 `json:"min_price,omitempty"`
	MaxPrice float64 `json:"max_price,omitempty"`
	Limit    int     `json:"limit,omitempty"`
	Offset   int     `json:"offset,omitempty"`
}

// HealthStatus is the payload for GET /healthz.
type HealthStatus struct {
	Status     string    `json:"status"`
	Version    string    `json:"version,omitempty"`
	Uptime     string    `json:"uptime,omitempty"`
	Generation uint64    `json:"generation"`
	BuiltAt    time.Time `json:"built_at,omitempty"`
}
