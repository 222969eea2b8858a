// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/shoprec/shoprec/internal/recommend"
)

// flakySource fails every call while failing is true.
type flakySource struct {
	failing  bool
	products []recommend.Product
	events   []recommend.Event
}

func (f *flakySource) FetchProducts(ctx context.Context) ([]recommend.Product, error) {
	if f.failing {
		return nil, errors.New("source down")
	}
	return f.products, nil
}

func (f *flakySource) FetchEvents(ctx context.Context, since time.Time) ([]recommend.Event, error) {
	if f.failing {
		return nil, errors.New("source down")
	}
	return f.events, nil
}

func TestBreakerSourcePassthrough(t *testing.T) {
	src := &flakySource{
		products: []recommend.Product{{ID: 1, Title: "Shirt"}},
		events:   []recommend.Event{{UserID: 1, ProductID: 1, Action: recommend.ActionView}},
	}
	b := NewBreakerSource(src)

	products, err := b.FetchProducts(context.Background())
	if err != nil {
		t.Fatalf("FetchProducts: %v", err)
	}
	if len(products) != 1 || products[0].ID != 1 {
		t.Errorf("products = %+v", products)
	}

	events, err := b.FetchEvents(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("FetchEvents: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("events = %+v", events)
	}
	if b.State() != "closed" {
		t.Errorf("State = %s, want closed", b.State())
	}
}

func TestBreakerSourceOpensOnFailures(t *testing.T) {
	src := &flakySource{failing: true}
	b := NewBreakerSource(src)

	// Drive enough failures to trip the breaker (>=5 requests, 60% rate).
	for i := 0; i < 6; i++ {
		if _, err := b.FetchProducts(context.Background()); err == nil {
			t.Fatal("FetchProducts succeeded against a failing source")
		}
	}

	if b.State() != "open" {
		t.Fatalf("State = %s, want open after repeated failures", b.State())
	}

	// Open breaker rejects without touching the source.
	src.failing = false
	if _, err := b.FetchProducts(context.Background()); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("open breaker error = %v, want ErrOpenState", err)
	}
}
