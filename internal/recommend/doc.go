// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

// Package recommend implements the product recommendation engine.
//
// # Architecture
//
// The engine answers "related products" queries from two signal sources,
// with a popularity baseline as the universal fallback:
//
//   - CoOccurrenceIndex: products frequently interacted with in the same
//     session (or by the same user when no session is recorded)
//   - UserSimilarityIndex: user-based collaborative filtering over
//     cosine-similar interaction histories
//   - StatsAggregator: action-weighted popularity ranking
//
// All three indices are built together into an immutable Snapshot by the
// Updater and published with a single atomic pointer swap. Readers always
// observe one internally consistent snapshot; a rebuild never blocks a
// read and a read never blocks a rebuild.
//
// # Fallback Chain
//
// Service.Recommend selects strategies in order: collaborative filtering
// when the caller supplies a user with a non-empty neighbor set, then
// co-occurrence, then popularity. Shortfalls at each tier are padded from
// the next, so a valid product in a non-empty catalog always produces a
// result.
//
// # Determinism
//
// Given identical events and catalog, two builds produce identical indices
// and identical recommendations: every ranking breaks ties by ascending
// identifier, and the sampling mode draws from a seeded generator.
//
// # Thread Safety
//
// Snapshots are immutable after construction. The only mutable shared
// state is the current-snapshot pointer, written once per successful build.
// The engine is safe for concurrent use without further locking.
package recommend
