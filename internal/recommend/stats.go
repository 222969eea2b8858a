// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package recommend

import "sort"

// ProductStats holds raw interaction counters for one product.
type ProductStats struct {
	Views     int     `json:"views"`
	Clicks    int     `json:"clicks"`
	Purchases int     `json:"purchases"`
	CTR       float64 `json:"ctr"`
}

// StatsAggregator ranks products by an action-weighted popularity score.
// It serves as the universal fallback: the ranking covers the whole
// catalog, so TopProducts yields a baseline even for an empty event log;
// products without events score zero and rank last, by ID ascending.
//
// The popularity score is computed as:
//
//	score(product) = sum of Weights[action] over all events for product
type StatsAggregator struct {
	scores map[int]float64
	counts map[int]ProductStats

	// ranked holds product IDs by score descending, ties by ID ascending.
	ranked []int
}

// newStatsAggregator builds the popularity ranking over the catalog
// from events.
func newStatsAggregator(products []Product, events []Event, w Weights) *StatsAggregator {
	s := &StatsAggregator{
		scores: make(map[int]float64, len(products)),
		counts: make(map[int]ProductStats),
	}

	for _, p := range products {
		s.scores[p.ID] = 0
	}

	for _, ev := range events {
		s.scores[ev.ProductID] += ev.Action.Weight(w)

		c := s.counts[ev.ProductID]
		switch ev.Action {
		case ActionView:
			c.Views++
		case ActionClick:
			c.Clicks++
		case ActionPurchase:
			c.Purchases++
		}
		s.counts[ev.ProductID] = c
	}

	for id, c := range s.counts {
		if c.Views > 0 {
			c.CTR = float64(c.Clicks) / float64(c.Views)
		}
		s.counts[id] = c
	}

	s.ranked = make([]int, 0, len(s.scores))
	for id := range s.scores {
		s.ranked = append(s.ranked, id)
	}
	sort.Slice(s.ranked, func(i, j int) bool {
		a, b := s.ranked[i], s.ranked[j]
		if s.scores[a] != s.scores[b] {
			return s.scores[a] > s.scores[b]
		}
		return a < b
	})

	return s
}

// TopProducts returns the n highest-scored products, ties broken by
// product ID ascending. An empty catalog yields an empty list.
func (s *StatsAggregator) TopProducts(n int) []Scored {
	if n <= 0 {
		return nil
	}
	if n > len(s.ranked) {
		n = len(s.ranked)
	}

	out := make([]Scored, 0, n)
	for _, id := range s.ranked[:n] {
		out = append(out, Scored{ProductID: id, Score: s.scores[id]})
	}
	return out
}

// Score returns the popularity score for a product. Unknown products
// score zero.
func (s *StatsAggregator) Score(productID int) float64 {
	return s.scores[productID]
}

// ProductStats returns the raw counters for a product.
func (s *StatsAggregator) ProductStats(productID int) (ProductStats, bool) {
	c, ok := s.counts[productID]
	return c, ok
}

// Len returns the number of ranked products.
func (s *StatsAggregator) Len() int {
	return len(s.ranked)
}
