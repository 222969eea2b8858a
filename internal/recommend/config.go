// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights defines the interaction weight per action kind. The ratio
	// between actions is a tunable, not a constant: the defaults below
	// are a documented choice, not a requirement of the algorithms.
	Weights Weights `json:"weights"`

	// CoOccurrence contains parameters for the co-occurrence index.
	CoOccurrence CoOccurrenceConfig `json:"co_occurrence"`

	// Similarity contains parameters for the user-similarity index.
	Similarity SimilarityConfig `json:"similarity"`

	// Limits contains operational limits for queries.
	Limits LimitsConfig `json:"limits"`

	// Build contains snapshot build scheduling parameters.
	Build BuildConfig `json:"build"`

	// Seed is the random seed for the sampling mode.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed"`
}

// Weights defines the interaction weight per action kind.
type Weights struct {
	// View is the weight of a product view.
	// Default: 1.0.
	View float64 `json:"view"`

	// Click is the weight of a click-through.
	// Default: 3.0.
	Click float64 `json:"click"`

	// Purchase is the weight of a purchase.
	// Default: 10.0.
	Purchase float64 `json:"purchase"`
}

// CoOccurrenceConfig contains parameters for the co-occurrence index.
type CoOccurrenceConfig struct {
	// MaxPerProduct bounds the ranked neighbor list kept per product.
	// Zero keeps all co-occurring products.
	// Default: 200.
	MaxPerProduct int `json:"max_per_product"`
}

// SimilarityConfig contains parameters for the user-similarity index.
type SimilarityConfig struct {
	// TopK is the number of neighbors retained per user.
	// Default: 20.
	TopK int `json:"top_k"`

	// MinSharedProducts is the minimum number of products two users must
	// share before a similarity is computed. Pairs below this threshold
	// are never compared, which keeps the build far from all-pairs.
	// Default: 1.
	MinSharedProducts int `json:"min_shared_products"`

	// MaxInteractionWeight caps a user's accumulated weight for a single
	// product, so repeat actions cannot grow a vector without bound.
	// Default: 30.0.
	MaxInteractionWeight float64 `json:"max_interaction_weight"`
}

// LimitsConfig contains operational limits for queries.
type LimitsConfig struct {
	// DefaultN is the result size when the request leaves N unset.
	// Default: 5.
	DefaultN int `json:"default_n"`

	// MaxN is the maximum allowed result size.
	// Default: 50.
	MaxN int `json:"max_n"`
}

// BuildConfig contains snapshot build scheduling parameters.
type BuildConfig struct {
	// Interval is the time between scheduled rebuilds.
	// Default: 5m.
	Interval time.Duration `json:"interval"`

	// Timeout bounds a single build. A build exceeding it is abandoned
	// and the previous snapshot stays published.
	// Default: 2m.
	Timeout time.Duration `json:"timeout"`

	// MinRefreshInterval throttles external refresh triggers. Triggers
	// arriving faster than this are coalesced into the most recent build.
	// Default: 10s.
	MinRefreshInterval time.Duration `json:"min_refresh_interval"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{
			View:     1.0,
			Click:    3.0,
			Purchase: 10.0,
		},
		CoOccurrence: CoOccurrenceConfig{
			MaxPerProduct: 200,
		},
		Similarity: SimilarityConfig{
			TopK:                 20,
			MinSharedProducts:    1,
			MaxInteractionWeight: 30.0,
		},
		Limits: LimitsConfig{
			DefaultN: 5,
			MaxN:     50,
		},
		Build: BuildConfig{
			Interval:           5 * time.Minute,
			Timeout:            2 * time.Minute,
			MinRefreshInterval: 10 * time.Second,
		},
		Seed: 42,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Weights.View < 0 || c.Weights.Click < 0 || c.Weights.Purchase < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", c.Weights)
	}
	if c.Weights.View == 0 && c.Weights.Click == 0 && c.Weights.Purchase == 0 {
		return fmt.Errorf("at least one action weight must be positive")
	}

	if c.CoOccurrence.MaxPerProduct < 0 {
		return fmt.Errorf("co_occurrence.max_per_product must be non-negative, got %d", c.CoOccurrence.MaxPerProduct)
	}

	if c.Similarity.TopK < 1 {
		return fmt.Errorf("similarity.top_k must be positive, got %d", c.Similarity.TopK)
	}
	if c.Similarity.MinSharedProducts < 1 {
		return fmt.Errorf("similarity.min_shared_products must be positive, got %d", c.Similarity.MinSharedProducts)
	}
	if c.Similarity.MaxInteractionWeight <= 0 {
		return fmt.Errorf("similarity.max_interaction_weight must be positive, got %f", c.Similarity.MaxInteractionWeight)
	}

	if c.Limits.DefaultN < 1 {
		return fmt.Errorf("limits.default_n must be positive, got %d", c.Limits.DefaultN)
	}
	if c.Limits.MaxN < c.Limits.DefaultN {
		return fmt.Errorf("limits.max_n must be >= limits.default_n, got %d < %d", c.Limits.MaxN, c.Limits.DefaultN)
	}

	if c.Build.Interval <= 0 {
		return fmt.Errorf("build.interval must be positive, got %v", c.Build.Interval)
	}
	if c.Build.Timeout <= 0 {
		return fmt.Errorf("build.timeout must be positive, got %v", c.Build.Timeout)
	}
	if c.Build.MinRefreshInterval < 0 {
		return fmt.Errorf("build.min_refresh_interval must be non-negative, got %v", c.Build.MinRefreshInterval)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	out := *c
	return &out
}
