// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

// Package config loads and validates the application configuration.
//
// Configuration is layered with Koanf v2, later layers overriding
// earlier ones:
//
//  1. Built-in defaults
//  2. Optional YAML config file (CONFIG_PATH or the default paths)
//  3. Environment variables with the SHOPREC_ prefix
//
// Example: SHOPREC_SERVER_PORT=9090 overrides server.port.
package config

import (
	"fmt"
	"time"

	"github.com/shoprec/shoprec/internal/recommend"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Seed      SeedConfig      `koanf:"seed"`
	API       APIConfig       `koanf:"api"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig contains DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file location. Empty means in-memory.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB's memory usage (e.g. "1GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads limits DuckDB worker threads. Zero uses all cores.
	Threads int `koanf:"threads"`
}

// SeedConfig points at optional JSON seed files loaded at startup when
// the corresponding table is empty.
type SeedConfig struct {
	ProductsPath string `koanf:"products_path"`
	EventsPath   string `koanf:"events_path"`
}

// APIConfig contains HTTP API behavior settings.
type APIConfig struct {
	DefaultPageSize   int           `koanf:"default_page_size"`
	MaxPageSize       int           `koanf:"max_page_size"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// RecommendConfig contains the recommendation engine knobs exposed to
// operators. ToEngineConfig converts it to the engine's own config type.
type RecommendConfig struct {
	ViewWeight     float64 `koanf:"view_weight"`
	ClickWeight    float64 `koanf:"click_weight"`
	PurchaseWeight float64 `koanf:"purchase_weight"`

	MaxPerProduct        int     `koanf:"max_per_product"`
	TopKNeighbors        int     `koanf:"top_k_neighbors"`
	MinSharedProducts    int     `koanf:"min_shared_products"`
	MaxInteractionWeight float64 `koanf:"max_interaction_weight"`

	DefaultN int `koanf:"default_n"`
	MaxN     int `koanf:"max_n"`

	BuildInterval      time.Duration `koanf:"build_interval"`
	BuildTimeout       time.Duration `koanf:"build_timeout"`
	MinRefreshInterval time.Duration `koanf:"min_refresh_interval"`

	SampleSeed int64 `koanf:"sample_seed"`
}

// ToEngineConfig maps the operator-facing knobs onto the engine config.
func (r RecommendConfig) ToEngineConfig() *recommend.Config {
	return &recommend.Config{
		Weights: recommend.Weights{
			View:     r.ViewWeight,
			Click:    r.ClickWeight,
			Purchase: r.PurchaseWeight,
		},
		CoOccurrence: recommend.CoOccurrenceConfig{
			MaxPerProduct: r.MaxPerProduct,
		},
		Similarity: recommend.SimilarityConfig{
			TopK:                 r.TopKNeighbors,
			MinSharedProducts:    r.MinSharedProducts,
			MaxInteractionWeight: r.MaxInteractionWeight,
		},
		Limits: recommend.LimitsConfig{
			DefaultN: r.DefaultN,
			MaxN:     r.MaxN,
		},
		Build: recommend.BuildConfig{
			Interval:           r.BuildInterval,
			Timeout:            r.BuildTimeout,
			MinRefreshInterval: r.MinRefreshInterval,
		},
		Seed: r.SampleSeed,
	}
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config populated with production defaults.
// These are applied first, then overridden by file and environment.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "/data/shoprec.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Seed: SeedConfig{},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Recommend: RecommendConfig{
			ViewWeight:           engine.Weights.View,
			ClickWeight:          engine.Weights.Click,
			PurchaseWeight:       engine.Weights.Purchase,
			MaxPerProduct:        engine.CoOccurrence.MaxPerProduct,
			TopKNeighbors:        engine.Similarity.TopK,
			MinSharedProducts:    engine.Similarity.MinSharedProducts,
			MaxInteractionWeight: engine.Similarity.MaxInteractionWeight,
			DefaultN:             engine.Limits.DefaultN,
			MaxN:                 engine.Limits.MaxN,
			BuildInterval:        engine.Build.Interval,
			BuildTimeout:         engine.Build.Timeout,
			MinRefreshInterval:   engine.Build.MinRefreshInterval,
			SampleSeed:           engine.Seed,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}

	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("api.default_page_size must be positive, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size must be >= api.default_page_size, got %d < %d",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if !c.API.RateLimitDisabled {
		if c.API.RateLimitReqs < 1 {
			return fmt.Errorf("api.rate_limit_reqs must be positive, got %d", c.API.RateLimitReqs)
		}
		if c.API.RateLimitWindow <= 0 {
			return fmt.Errorf("api.rate_limit_window must be positive, got %v", c.API.RateLimitWindow)
		}
	}

	// Engine knobs are validated by the engine's own config type.
	if err := c.Recommend.ToEngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	return nil
}
