// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package recommend

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Tier identifies which index produced a recommendation set.
type Tier string

const (
	// TierSimilarity is user-based collaborative filtering.
	TierSimilarity Tier = "similarity"
	// TierCoOccurrence is session/user co-occurrence ranking.
	TierCoOccurrence Tier = "co_occurrence"
	// TierPopularity is the global popularity fallback.
	TierPopularity Tier = "popularity"
)

// Result is one answered recommendation query.
type Result struct {
	// ProductID echoes the reference product.
	ProductID int `json:"product_id"`

	// Recommendations is the ranked result list, possibly empty.
	Recommendations []Scored `json:"recommendations"`

	// Tier names the index that produced the highest-ranked entry.
	// Shortfalls are padded from the tiers below it.
	Tier Tier `json:"tier"`

	// Generation is the snapshot generation that served the query.
	Generation uint64 `json:"generation"`
}

// Service answers recommendation queries against the currently published
// snapshot. It is safe for concurrent use; queries never block on builds.
type Service struct {
	cfg    *Config
	holder snapshotHolder

	// rng backs the sampling mode. Seeded once for reproducible runs;
	// math/rand sources are not goroutine safe, hence the mutex.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService creates a Service with no published snapshot. Queries fail
// until the first build publishes one; use an Updater to build.
func NewService(cfg *Config) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = 42
	}
	return &Service{
		cfg: cfg.Clone(),
		rng: rand.New(rand.NewSource(seed)),
	}, nil
}

// Config returns a copy of the service configuration.
func (s *Service) Config() *Config {
	return s.cfg.Clone()
}

// Snapshot returns the currently published snapshot, or nil before the
// first successful build.
func (s *Service) Snapshot() *Snapshot {
	return s.holder.load()
}

// CurrentGeneration returns the generation of the published snapshot,
// zero if none is published yet.
func (s *Service) CurrentGeneration() uint64 {
	if snap := s.holder.load(); snap != nil {
		return snap.Generation
	}
	return 0
}

// Recommend answers one query using the tiered fallback chain: user
// similarity when the request carries a user, then co-occurrence, then
// global popularity. A tier that yields fewer than n candidates is
// padded from the tiers below it, skipping products already included,
// so a valid reference product in a non-empty catalog always yields a
// non-empty result.
//
// The reference product must exist in the snapshot catalog; otherwise
// ErrProductNotFound is returned. The reference product itself is never
// part of the result.
func (s *Service) Recommend(req Request) (*Result, error) {
	snap := s.holder.load()
	if snap == nil {
		return nil, fmt.Errorf("no snapshot published yet: %w", ErrProductNotFound)
	}
	if !snap.HasProduct(req.ProductID) {
		return nil, fmt.Errorf("product %d: %w", req.ProductID, ErrProductNotFound)
	}

	n := req.N
	if n <= 0 {
		n = s.cfg.Limits.DefaultN
	}
	if n > s.cfg.Limits.MaxN {
		n = s.cfg.Limits.MaxN
	}

	res := &Result{
		ProductID:  req.ProductID,
		Generation: snap.Generation,
		Tier:       TierPopularity,
	}

	seen := make(map[int]struct{}, n+1)
	seen[req.ProductID] = struct{}{}
	recs := make([]Scored, 0, n)
	take := func(batch []Scored, tier Tier) {
		for _, r := range batch {
			if len(recs) == n {
				return
			}
			if _, dup := seen[r.ProductID]; dup {
				continue
			}
			seen[r.ProductID] = struct{}{}
			if len(recs) == 0 {
				res.Tier = tier
			}
			recs = append(recs, r)
		}
	}

	if req.UserID > 0 {
		take(snap.Similarity.RecommendForUser(req.UserID, req.ProductID, n), TierSimilarity)
	}
	if len(recs) < n {
		// Fetch extra so deduplication against higher tiers cannot
		// leave the result short while candidates remain.
		want := n + len(recs)
		var co []Scored
		if req.Sample {
			s.rngMu.Lock()
			co = snap.CoOccurrence.Sample(req.ProductID, want, s.rng)
			s.rngMu.Unlock()
		} else {
			co = snap.CoOccurrence.Related(req.ProductID, want)
		}
		take(co, TierCoOccurrence)
	}
	if len(recs) < n {
		take(snap.Stats.TopProducts(n+len(recs)+1), TierPopularity)
	}

	res.Recommendations = recs
	return res, nil
}

// Stats returns per-product interaction statistics from the published
// snapshot. The second return is false for unknown products or before
// the first build.
func (s *Service) Stats(productID int) (ProductStats, bool) {
	snap := s.holder.load()
	if snap == nil {
		return ProductStats{}, false
	}
	if !snap.HasProduct(productID) {
		return ProductStats{}, false
	}
	stats, ok := snap.Stats.ProductStats(productID)
	if !ok {
		// Known product with no recorded events.
		return ProductStats{}, true
	}
	return stats, true
}

// Status describes the published snapshot for operational endpoints.
type Status struct {
	Generation uint64    `json:"generation"`
	BuiltAt    time.Time `json:"built_at,omitempty"`
	Products   int       `json:"products"`
	Events     int       `json:"events"`
	Users      int       `json:"users"`
}

// Status reports the published snapshot's vital signs. Before the first
// build everything is zero.
func (s *Service) Status() Status {
	snap := s.holder.load()
	if snap == nil {
		return Status{}
	}
	return Status{
		Generation: snap.Generation,
		BuiltAt:    snap.BuiltAt,
		Products:   len(snap.Products),
		Events:     snap.EventCount,
		Users:      snap.Similarity.Users(),
	}
}
