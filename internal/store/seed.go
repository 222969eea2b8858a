// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/shoprec/shoprec/internal/config"
	"github.com/shoprec/shoprec/internal/logging"
	"github.com/shoprec/shoprec/internal/recommend"
)

// Seed loads catalog and event data from the configured JSON files.
// Each file is applied only when the corresponding table is empty, so
// restarts never double-load. Missing paths are skipped silently;
// malformed files fail startup.
func (s *Store) Seed(ctx context.Context, cfg config.SeedConfig) error {
	log := logging.WithComponent("store")

	if cfg.ProductsPath != "" {
		n, err := s.seedProducts(ctx, cfg.ProductsPath)
		if err != nil {
			return fmt.Errorf("seed products from %s: %w", cfg.ProductsPath, err)
		}
		if n > 0 {
			log.Info().Int("products", n).Str("path", cfg.ProductsPath).Msg("Catalog seeded")
		}
	}

	if cfg.EventsPath != "" {
		n, err := s.seedEvents(ctx, cfg.EventsPath)
		if err != nil {
			return fmt.Errorf("seed events from %s: %w", cfg.EventsPath, err)
		}
		if n > 0 {
			log.Info().Int("events", n).Str("path", cfg.EventsPath).Msg("Event log seeded")
		}
	}

	return nil
}

func (s *Store) seedProducts(ctx context.Context, path string) (int, error) {
	count, err := s.CountProducts(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var products []recommend.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return 0, fmt.Errorf("parse products: %w", err)
	}

	loaded := 0
	for _, p := range products {
		if err := s.InsertProduct(ctx, p); err != nil {
			return loaded, fmt.Errorf("insert product %d: %w", p.ID, err)
		}
		loaded++
	}
	return loaded, nil
}

func (s *Store) seedEvents(ctx context.Context, path string) (int, error) {
	count, err := s.CountEvents(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var events []recommend.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return 0, fmt.Errorf("parse events: %w", err)
	}

	loaded := 0
	for _, ev := range events {
		if err := s.InsertEvent(ctx, ev); err != nil {
			// Seed files may reference products filtered out of the
			// catalog file; skip those rows rather than failing boot.
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return loaded, fmt.Errorf("insert event (user %d, product %d): %w", ev.UserID, ev.ProductID, err)
		}
		loaded++
	}
	return loaded, nil
}
