// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shoprec/shoprec/internal/config"
	"github.com/shoprec/shoprec/internal/models"
	"github.com/shoprec/shoprec/internal/recommend"
)

// newTestStore opens an in-memory database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(&config.DatabaseConfig{Path: "", MaxMemory: "256MB", Threads: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testProduct(id int) recommend.Product {
	return recommend.Product{
		ID:       id,
		Title:    "Linen Shirt",
		Category: "shirts",
		Price:    49.90,
		Color:    "white",
		Material: "linen",
		Sizes:    []string{"S", "M", "L"},
		Brand:    "Acme",
	}
}

func TestInsertAndGetProduct(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := testProduct(1)
	if err := s.InsertProduct(ctx, want); err != nil {
		t.Fatalf("InsertProduct: %v", err)
	}

	got, err := s.GetProduct(ctx, 1)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.ID != want.ID || got.Title != want.Title || got.Price != want.Price {
		t.Errorf("GetProduct = %+v, want %+v", got, want)
	}
	if len(got.Sizes) != 3 || got.Sizes[0] != "S" {
		t.Errorf("Sizes = %v, want %v", got.Sizes, want.Sizes)
	}
}

func TestInsertProductDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.InsertProduct(ctx, testProduct(1)); err != nil {
		t.Fatalf("InsertProduct: %v", err)
	}
	err := s.InsertProduct(ctx, testProduct(1))
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate insert error = %v, want ErrDuplicate", err)
	}
}

func TestInsertProductValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.InsertProduct(ctx, recommend.Product{ID: 0, Title: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero id error = %v, want ErrInvalidInput", err)
	}
	if err := s.InsertProduct(ctx, recommend.Product{ID: 1}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty title error = %v, want ErrInvalidInput", err)
	}
}

func TestGetProductNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetProduct(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProduct(99) error = %v, want ErrNotFound", err)
	}
}

func TestListProductsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	products := []recommend.Product{
		{ID: 1, Title: "Shirt", Category: "shirts", Brand: "Acme", Color: "white", Material: "cotton", Price: 40},
		{ID: 2, Title: "Shirt", Category: "shirts", Brand: "Zeta", Color: "blue", Material: "linen", Price: 60},
		{ID: 3, Title: "Pants", Category: "pants", Brand: "Acme", Color: "blue", Material: "cotton", Price: 80},
	}
	for _, p := range products {
		if err := s.InsertProduct(ctx, p); err != nil {
			t.Fatalf("InsertProduct(%d): %v", p.ID, err)
		}
	}

	tests := []struct {
		name    string
		filter  models.ProductFilter
		wantIDs []int
	}{
		{"no filter", models.ProductFilter{}, []int{1, 2, 3}},
		{"by category", models.ProductFilter{Category: "shirts"}, []int{1, 2}},
		{"by brand", models.ProductFilter{Brand: "Acme"}, []int{1, 3}},
		{"by color", models.ProductFilter{Color: "blue"}, []int{2, 3}},
		{"by material", models.ProductFilter{Material: "cotton"}, []int{1, 3}},
		{"price range", models.ProductFilter{MinPrice: 50, MaxPrice: 70}, []int{2}},
		{"combined", models.ProductFilter{Category: "shirts", Brand: "Acme"}, []int{1}},
		{"limit and offset", models.ProductFilter{Limit: 1, Offset: 1}, []int{2}},
		{"no match", models.ProductFilter{Category: "hats"}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListProducts(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListProducts: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d products, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("products[%d].ID = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestInsertEvent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.InsertProduct(ctx, testProduct(1)); err != nil {
		t.Fatalf("InsertProduct: %v", err)
	}

	ev := recommend.Event{
		UserID:    7,
		ProductID: 1,
		Action:    recommend.ActionClick,
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		SessionID: "s1",
	}
	if err := s.InsertEvent(ctx, ev); err != nil {
		t.Fatalf("InsertEvent: %v", err)
	}

	events, err := s.FetchEvents(ctx, time.Time{})
	if err != nil {
		t.Fatalf("FetchEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	got := events[0]
	if got.UserID != 7 || got.ProductID != 1 || got.Action != recommend.ActionClick || got.SessionID != "s1" {
		t.Errorf("event = %+v", got)
	}
}

func TestInsertEventRejections(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.InsertProduct(ctx, testProduct(1)); err != nil {
		t.Fatalf("InsertProduct: %v", err)
	}

	tests := []struct {
		name    string
		event   recommend.Event
		wantErr error
	}{
		{"invalid action", recommend.Event{UserID: 1, ProductID: 1, Action: "hover"}, ErrInvalidAction},
		{"unknown product", recommend.Event{UserID: 1, ProductID: 99, Action: recommend.ActionView}, ErrNotFound},
		{"zero user", recommend.Event{UserID: 0, ProductID: 1, Action: recommend.ActionView}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.InsertEvent(ctx, tt.event); !errors.Is(err, tt.wantErr) {
				t.Errorf("InsertEvent error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInsertEventDefaultsTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.InsertProduct(ctx, testProduct(1)); err != nil {
		t.Fatalf("InsertProduct: %v", err)
	}
	before := time.Now().UTC().Add(-time.Second)
	if err := s.InsertEvent(ctx, recommend.Event{UserID: 1, ProductID: 1, Action: recommend.ActionView}); err != nil {
		t.Fatalf("InsertEvent: %v", err)
	}

	events, err := s.FetchEvents(ctx, time.Time{})
	if err != nil {
		t.Fatalf("FetchEvents: %v", err)
	}
	if len(events) != 1 || events[0].Timestamp.Before(before) {
		t.Errorf("timestamp not defaulted: %+v", events)
	}
}

func TestFetchEventsSince(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.InsertProduct(ctx, testProduct(1)); err != nil {
		t.Fatalf("InsertProduct: %v", err)
	}

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ev := recommend.Event{
			UserID:    1,
			ProductID: 1,
			Action:    recommend.ActionView,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.InsertEvent(ctx, ev); err != nil {
			t.Fatalf("InsertEvent: %v", err)
		}
	}

	got, err := s.FetchEvents(ctx, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("FetchEvents: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d events since t+1h, want 2", len(got))
	}
}

func TestSeed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dir := t.TempDir()

	productsPath := filepath.Join(dir, "products.json")
	productsJSON := `[
		{"id": 1, "title": "Shirt", "category": "shirts", "price": 40, "sizes": ["M"]},
		{"id": 2, "title": "Pants", "category": "pants", "price": 80}
	]`
	if err := os.WriteFile(productsPath, []byte(productsJSON), 0o600); err != nil {
		t.Fatal(err)
	}

	eventsPath := filepath.Join(dir, "events.json")
	eventsJSON := `[
		{"user_id": 1, "product_id": 1, "action": "view", "timestamp": "2026-08-01T12:00:00Z"},
		{"user_id": 1, "product_id": 99, "action": "view", "timestamp": "2026-08-01T12:01:00Z"},
		{"user_id": 2, "product_id": 2, "action": "purchase", "timestamp": "2026-08-01T13:00:00Z"}
	]`
	if err := os.WriteFile(eventsPath, []byte(eventsJSON), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.SeedConfig{ProductsPath: productsPath, EventsPath: eventsPath}
	if err := s.Seed(ctx, cfg); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	if n, _ := s.CountProducts(ctx); n != 2 {
		t.Errorf("CountProducts = %d, want 2", n)
	}
	// The orphan event for product 99 is skipped.
	if n, _ := s.CountEvents(ctx); n != 2 {
		t.Errorf("CountEvents = %d, want 2", n)
	}

	// Re-seeding a non-empty store is a no-op.
	if err := s.Seed(ctx, cfg); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if n, _ := s.CountProducts(ctx); n != 2 {
		t.Errorf("CountProducts after reseed = %d, want 2", n)
	}
}

func TestSeedMissingFiles(t *testing.T) {
	s := newTestStore(t)
	cfg := config.SeedConfig{
		ProductsPath: "/nonexistent/products.json",
		EventsPath:   "/nonexistent/events.json",
	}
	if err := s.Seed(context.Background(), cfg); err != nil {
		t.Errorf("Seed with missing files: %v", err)
	}
}
