// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ActionKind classifies user-product interactions.
type ActionKind string

const (
	// ActionView indicates the user viewed a product page.
	ActionView ActionKind = "view"
	// ActionClick indicates the user clicked through to a product.
	ActionClick ActionKind = "click"
	// ActionPurchase indicates the user purchased a product.
	ActionPurchase ActionKind = "purchase"
)

// ParseAction converts a string to an ActionKind.
// Returns an error for unrecognized actions.
func ParseAction(s string) (ActionKind, error) {
	switch ActionKind(s) {
	case ActionView, ActionClick, ActionPurchase:
		return ActionKind(s), nil
	default:
		return "", fmt.Errorf("invalid action %q", s)
	}
}

// Weight returns the interaction weight for this action under the given
// weighting scheme. Unknown actions weigh zero.
func (a ActionKind) Weight(w Weights) float64 {
	switch a {
	case ActionView:
		return w.View
	case ActionClick:
		return w.Click
	case ActionPurchase:
		return w.Purchase
	default:
		return 0
	}
}

// Product is a catalog record. Immutable once loaded; owned by the
// catalog store and referenced by ID everywhere else.
type Product struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Price    float64  `json:"price"`
	Color    string   `json:"color"`
	Material string   `json:"material"`
	Sizes    []string `json:"sizes"`
	Brand    string   `json:"brand"`
}

// Event is one recorded user-product interaction. Events are append-only
// facts; they are never mutated after ingestion.
type Event struct {
	// UserID identifies the user performing the action.
	UserID int `json:"user_id"`

	// ProductID identifies the product acted on.
	ProductID int `json:"product_id"`

	// Action is the interaction kind (view, click, purchase).
	Action ActionKind `json:"action"`

	// Timestamp is when the interaction occurred.
	Timestamp time.Time `json:"timestamp"`

	// SessionID groups co-temporal interactions. Empty means no session
	// was recorded; such events are partitioned by user instead.
	SessionID string `json:"session_id,omitempty"`
}

// Scored pairs a product ID with a recommendation score.
type Scored struct {
	ProductID int     `json:"product_id"`
	Score     float64 `json:"score"`
}

// Request describes one recommendation query. The configuration surface
// is deliberately small: reference product, optional user, result size,
// and the sampling flag.
type Request struct {
	// ProductID is the reference product. Must exist in the catalog.
	ProductID int `json:"product_id"`

	// UserID selects the collaborative-filtering tier when positive.
	// Zero or negative means no user context.
	UserID int `json:"user_id,omitempty"`

	// N is the number of recommendations to return.
	// Defaults to Config.Limits.DefaultN if zero.
	N int `json:"n,omitempty"`

	// Sample switches the co-occurrence tier from strict top-n to
	// weighted random sampling.
	Sample bool `json:"sample,omitempty"`
}

// ErrProductNotFound reports a reference product absent from the catalog
// snapshot. This is the only error Recommend surfaces to callers; index
// sparsity is absorbed by the fallback chain.
var ErrProductNotFound = errors.New("product not found in catalog")

// ErrBuildInProgress reports that a snapshot build is already running.
var ErrBuildInProgress = errors.New("snapshot build already in progress")

// EventSource supplies interaction events and catalog records.
// Implementations are read-only from the engine's perspective; the store
// package provides the DuckDB-backed implementation.
type EventSource interface {
	// FetchProducts returns the full product catalog.
	FetchProducts(ctx context.Context) ([]Product, error)

	// FetchEvents returns interaction events recorded at or after since.
	// A zero since returns all events.
	FetchEvents(ctx context.Context, since time.Time) ([]Event, error)
}
