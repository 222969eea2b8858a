// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package recommend

import (
	"math"
	"sort"
)

// Neighbor is one entry of a user's ranked neighbor set.
type Neighbor struct {
	UserID     int     `json:"user_id"`
	Similarity float64 `json:"similarity"`
}

// UserSimilarityIndex implements user-based collaborative filtering.
// Each user gets a sparse interaction vector (product -> accumulated
// action weight, capped) and a top-K neighbor set ranked by cosine
// similarity.
//
// Similarities are only computed between users sharing at least
// MinSharedProducts products; a product->users inverted list restricts
// the candidate pairs, keeping the build far from exhaustive all-pairs
// comparison.
type UserSimilarityIndex struct {
	vectors   map[int]map[int]float64
	neighbors map[int][]Neighbor
}

// newUserSimilarityIndex builds user vectors and neighbor sets from events.
func newUserSimilarityIndex(events []Event, w Weights, cfg SimilarityConfig) *UserSimilarityIndex {
	idx := &UserSimilarityIndex{
		vectors:   make(map[int]map[int]float64),
		neighbors: make(map[int][]Neighbor),
	}

	for _, ev := range events {
		vec := idx.vectors[ev.UserID]
		if vec == nil {
			vec = make(map[int]float64)
			idx.vectors[ev.UserID] = vec
		}
		weight := vec[ev.ProductID] + ev.Action.Weight(w)
		if weight > cfg.MaxInteractionWeight {
			weight = cfg.MaxInteractionWeight
		}
		vec[ev.ProductID] = weight
	}

	// Inverted list: product -> users who interacted with it.
	productUsers := make(map[int][]int)
	for userID, vec := range idx.vectors {
		for productID := range vec {
			productUsers[productID] = append(productUsers[productID], userID)
		}
	}

	// Precompute vector norms once.
	norms := make(map[int]float64, len(idx.vectors))
	for userID, vec := range idx.vectors {
		var sum float64
		for _, v := range vec {
			sum += v * v
		}
		norms[userID] = math.Sqrt(sum)
	}

	for userID, vec := range idx.vectors {
		// Count shared products per candidate via the inverted lists.
		shared := make(map[int]int)
		for productID := range vec {
			for _, other := range productUsers[productID] {
				if other != userID {
					shared[other]++
				}
			}
		}

		candidates := make([]Neighbor, 0, len(shared))
		for other, count := range shared {
			if count < cfg.MinSharedProducts {
				continue
			}
			sim := cosine(vec, idx.vectors[other], norms[userID], norms[other])
			if sim > 0 {
				candidates = append(candidates, Neighbor{UserID: other, Similarity: sim})
			}
		}

		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].Similarity != candidates[j].Similarity {
				return candidates[i].Similarity > candidates[j].Similarity
			}
			return candidates[i].UserID < candidates[j].UserID
		})
		if len(candidates) > cfg.TopK {
			candidates = candidates[:cfg.TopK]
		}
		if len(candidates) > 0 {
			idx.neighbors[userID] = candidates
		}
	}

	return idx
}

// cosine computes cosine similarity between two sparse vectors, iterating
// the smaller one for the dot product.
func cosine(a, b map[int]float64, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}

	var dot float64
	for id, v := range a {
		if w, ok := b[id]; ok {
			dot += v * w
		}
	}
	return dot / (normA * normB)
}

// Neighbors returns the ranked neighbor set for a user. Unknown users and
// users sharing no products with anyone get nil.
func (u *UserSimilarityIndex) Neighbors(userID int) []Neighbor {
	return u.neighbors[userID]
}

// RecommendForUser gathers candidate products from the user's neighbors,
// scoring each candidate by the sum of neighbor similarity times the
// neighbor's interaction weight. Products the user already interacted
// with and the reference product are excluded. Results are ranked by
// score descending, ties by product ID ascending, capped at n.
//
// An unknown user or an empty neighbor set yields an empty result; the
// caller falls back to co-occurrence and popularity.
func (u *UserSimilarityIndex) RecommendForUser(userID, excludeProductID, n int) []Scored {
	neighbors := u.neighbors[userID]
	if len(neighbors) == 0 || n <= 0 {
		return nil
	}

	own := u.vectors[userID]
	scores := make(map[int]float64)
	for _, nb := range neighbors {
		for productID, weight := range u.vectors[nb.UserID] {
			if productID == excludeProductID {
				continue
			}
			if _, interacted := own[productID]; interacted {
				continue
			}
			scores[productID] += nb.Similarity * weight
		}
	}

	ranked := make([]Scored, 0, len(scores))
	for id, score := range scores {
		ranked = append(ranked, Scored{ProductID: id, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Users returns the number of users with a recorded vector.
func (u *UserSimilarityIndex) Users() int {
	return len(u.vectors)
}
