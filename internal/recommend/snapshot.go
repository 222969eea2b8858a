// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package recommend

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Snapshot is one immutable, internally consistent view of all derived
// indexes. Snapshots are built off the request path and published with a
// single atomic pointer swap; readers never observe a partially built
// index.
type Snapshot struct {
	Stats        *StatsAggregator
	CoOccurrence *CoOccurrenceIndex
	Similarity   *UserSimilarityIndex

	// Products is the known-product catalog at build time, keyed by ID.
	Products map[int]Product

	BuiltAt    time.Time
	Generation uint64
	EventCount int
}

// HasProduct reports whether the product existed when the snapshot was built.
func (s *Snapshot) HasProduct(id int) bool {
	_, ok := s.Products[id]
	return ok
}

// snapshotHolder publishes snapshots for lock-free concurrent reads.
type snapshotHolder struct {
	current    atomic.Pointer[Snapshot]
	generation atomic.Uint64
}

func (h *snapshotHolder) load() *Snapshot {
	return h.current.Load()
}

func (h *snapshotHolder) publish(s *Snapshot) {
	s.Generation = h.generation.Add(1)
	h.current.Store(s)
}

// buildSnapshot fetches the full catalog and event history from the source
// and derives every index. The context bounds the whole build; a source
// error or context expiry aborts the build and leaves the previously
// published snapshot untouched.
func buildSnapshot(ctx context.Context, src EventSource, cfg Config) (*Snapshot, error) {
	start := time.Now()

	products, err := src.FetchProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("snapshot build canceled: %w", err)
	}

	events, err := src.FetchEvents(ctx, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("snapshot build canceled: %w", err)
	}

	catalog := make(map[int]Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	// Events referencing products outside the catalog are dropped so the
	// indexes never recommend an unknown product.
	kept := events[:0:0]
	for _, ev := range events {
		if _, ok := catalog[ev.ProductID]; ok {
			kept = append(kept, ev)
		}
	}

	snap := &Snapshot{
		Stats:        newStatsAggregator(products, kept, cfg.Weights),
		CoOccurrence: newCoOccurrenceIndex(kept, cfg.CoOccurrence.MaxPerProduct),
		Similarity:   newUserSimilarityIndex(kept, cfg.Weights, cfg.Similarity),
		Products:     catalog,
		BuiltAt:      start,
		EventCount:   len(kept),
	}
	return snap, nil
}
