// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package recommend

import (
	"math/rand"
	"sort"
	"strconv"
)

// CoOccurrenceIndex maps each product to the products most frequently
// interacted with in the same session. Sessions are identified by the
// event's session ID; events without one are partitioned by user, so a
// user's whole history acts as a single session.
//
// The index stores a sparse symmetric matrix of pair counts:
//
//	count[a][b] = number of partitions in which both a and b appeared
//
// count(a,b) == count(b,a) always holds and a product never pairs with
// itself.
type CoOccurrenceIndex struct {
	counts map[int]map[int]int

	// neighbors holds, per product, co-occurring products ranked by count
	// descending with ties by product ID ascending, truncated to
	// maxPerProduct when positive.
	neighbors map[int][]Scored
}

// newCoOccurrenceIndex builds the pair-count index from events.
func newCoOccurrenceIndex(events []Event, maxPerProduct int) *CoOccurrenceIndex {
	idx := &CoOccurrenceIndex{
		counts:    make(map[int]map[int]int),
		neighbors: make(map[int][]Scored),
	}

	// Partition events into sessions; a partition contributes each
	// distinct product once.
	partitions := make(map[string]map[int]struct{})
	for _, ev := range events {
		key := ev.SessionID
		if key == "" {
			key = "u:" + strconv.Itoa(ev.UserID)
		}
		set := partitions[key]
		if set == nil {
			set = make(map[int]struct{})
			partitions[key] = set
		}
		set[ev.ProductID] = struct{}{}
	}

	for _, set := range partitions {
		if len(set) < 2 {
			continue
		}
		products := make([]int, 0, len(set))
		for id := range set {
			products = append(products, id)
		}
		sort.Ints(products)

		for i := 0; i < len(products); i++ {
			for j := i + 1; j < len(products); j++ {
				idx.increment(products[i], products[j])
				idx.increment(products[j], products[i])
			}
		}
	}

	for id, row := range idx.counts {
		ranked := make([]Scored, 0, len(row))
		for other, count := range row {
			ranked = append(ranked, Scored{ProductID: other, Score: float64(count)})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Score != ranked[j].Score {
				return ranked[i].Score > ranked[j].Score
			}
			return ranked[i].ProductID < ranked[j].ProductID
		})
		if maxPerProduct > 0 && len(ranked) > maxPerProduct {
			ranked = ranked[:maxPerProduct]
		}
		idx.neighbors[id] = ranked
	}

	return idx
}

func (c *CoOccurrenceIndex) increment(a, b int) {
	row := c.counts[a]
	if row == nil {
		row = make(map[int]int)
		c.counts[a] = row
	}
	row[b]++
}

// Related returns up to n products paired with productID, by count
// descending with ties by product ID ascending. The reference product is
// never included. Unknown products yield an empty result so the caller
// can fall back to popularity.
func (c *CoOccurrenceIndex) Related(productID, n int) []Scored {
	ranked := c.neighbors[productID]
	if n <= 0 || len(ranked) == 0 {
		return nil
	}
	if n > len(ranked) {
		n = len(ranked)
	}

	out := make([]Scored, n)
	copy(out, ranked[:n])
	return out
}

// Sample draws up to n co-occurring products without replacement, with
// selection probability proportional to pair count. The draw is
// deterministic for a given rng state. Unknown products yield an empty
// result.
func (c *CoOccurrenceIndex) Sample(productID, n int, rng *rand.Rand) []Scored {
	ranked := c.neighbors[productID]
	if n <= 0 || len(ranked) == 0 {
		return nil
	}

	pool := make([]Scored, len(ranked))
	copy(pool, ranked)

	var total float64
	for _, s := range pool {
		total += s.Score
	}

	out := make([]Scored, 0, n)
	for len(out) < n && len(pool) > 0 {
		r := rng.Float64() * total
		picked := len(pool) - 1
		var acc float64
		for i, s := range pool {
			acc += s.Score
			if r < acc {
				picked = i
				break
			}
		}

		out = append(out, pool[picked])
		total -= pool[picked].Score
		pool = append(pool[:picked], pool[picked+1:]...)
	}

	return out
}

// Count returns the symmetric pair count for two products.
func (c *CoOccurrenceIndex) Count(a, b int) int {
	return c.counts[a][b]
}

// Products returns the number of products with at least one co-occurrence.
func (c *CoOccurrenceIndex) Products() int {
	return len(c.neighbors)
}
