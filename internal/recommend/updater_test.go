// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestUpdaterBuildNow(t *testing.T) {
	src := &fakeSource{
		products: catalog(1, 2),
		events: []Event{
			{UserID: 1, ProductID: 1, Action: ActionView},
		},
	}
	svc, err := NewService(nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	u := NewUpdater(svc, src, zerolog.Nop())

	if svc.Snapshot() != nil {
		t.Fatal("snapshot published before first build")
	}
	if err := u.BuildNow(context.Background()); err != nil {
		t.Fatalf("BuildNow: %v", err)
	}

	snap := svc.Snapshot()
	if snap == nil {
		t.Fatal("no snapshot after BuildNow")
	}
	if snap.Generation != 1 {
		t.Errorf("Generation = %d, want 1", snap.Generation)
	}

	last := u.LastBuild()
	if last == nil || !last.Success {
		t.Fatalf("LastBuild = %+v, want success", last)
	}

	// A second build bumps the generation.
	if err := u.BuildNow(context.Background()); err != nil {
		t.Fatalf("second BuildNow: %v", err)
	}
	if got := svc.CurrentGeneration(); got != 2 {
		t.Errorf("CurrentGeneration = %d, want 2", got)
	}
}

func TestUpdaterFailedBuildKeepsSnapshot(t *testing.T) {
	src := &fakeSource{products: catalog(1)}
	svc, err := NewService(nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	u := NewUpdater(svc, src, zerolog.Nop())

	if err := u.BuildNow(context.Background()); err != nil {
		t.Fatalf("BuildNow: %v", err)
	}
	before := svc.Snapshot()

	src.mu.Lock()
	src.fetchErr = errors.New("source down")
	src.mu.Unlock()

	if err := u.BuildNow(context.Background()); err == nil {
		t.Fatal("BuildNow succeeded against a failing source")
	}
	if svc.Snapshot() != before {
		t.Error("failed build replaced the published snapshot")
	}
	if last := u.LastBuild(); last == nil || last.Success || last.Error == "" {
		t.Errorf("LastBuild = %+v, want a recorded failure", last)
	}
}

func TestUpdaterBuildTimeout(t *testing.T) {
	src := &fakeSource{products: catalog(1), delay: 200 * time.Millisecond}

	cfg := DefaultConfig()
	cfg.Build.Timeout = 20 * time.Millisecond
	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	u := NewUpdater(svc, src, zerolog.Nop())

	if err := u.BuildNow(context.Background()); err == nil {
		t.Fatal("BuildNow succeeded past the build timeout")
	}
	if svc.Snapshot() != nil {
		t.Error("timed-out build published a snapshot")
	}
}

func TestUpdaterSingleFlight(t *testing.T) {
	src := &fakeSource{products: catalog(1), delay: 50 * time.Millisecond}
	svc, err := NewService(nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	u := NewUpdater(svc, src, zerolog.Nop())

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = u.BuildNow(context.Background())
		}(i)
	}
	wg.Wait()

	var ran, rejected int
	for _, err := range results {
		switch {
		case err == nil:
			ran++
		case errors.Is(err, ErrBuildInProgress):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ran == 0 {
		t.Error("no build ran")
	}
	if ran+rejected != attempts {
		t.Errorf("ran=%d rejected=%d, want %d total", ran, rejected, attempts)
	}

	src.mu.Lock()
	fetches := src.fetches
	src.mu.Unlock()
	if fetches != ran {
		t.Errorf("source fetched %d times for %d builds", fetches, ran)
	}
}

func TestUpdaterRefreshCoalescing(t *testing.T) {
	cfg := DefaultConfig()
	// Disable throttling so coalescing alone is exercised.
	cfg.Build.MinRefreshInterval = 0
	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	u := NewUpdater(svc, &fakeSource{products: catalog(1)}, zerolog.Nop())

	if err := u.Refresh(); err != nil {
		t.Fatalf("first Refresh: %v", err)
	}
	// The trigger slot is full; further triggers coalesce.
	if err := u.Refresh(); !errors.Is(err, ErrBuildInProgress) {
		t.Errorf("second Refresh error = %v, want ErrBuildInProgress", err)
	}
}

func TestUpdaterRefreshThrottle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Build.MinRefreshInterval = time.Hour
	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	u := NewUpdater(svc, &fakeSource{products: catalog(1)}, zerolog.Nop())

	if err := u.Refresh(); err != nil {
		t.Fatalf("first Refresh: %v", err)
	}
	<-u.trigger // drain so the throttle, not coalescing, rejects
	if err := u.Refresh(); !errors.Is(err, ErrBuildInProgress) {
		t.Errorf("throttled Refresh error = %v, want ErrBuildInProgress", err)
	}
}

func TestUpdaterServe(t *testing.T) {
	src := &fakeSource{
		products: catalog(1, 2),
		events: []Event{
			{UserID: 1, ProductID: 1, Action: ActionView},
		},
	}
	cfg := DefaultConfig()
	cfg.Build.Interval = time.Hour
	cfg.Build.MinRefreshInterval = 0
	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	u := NewUpdater(svc, src, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- u.Serve(ctx) }()

	// Serve's initial build publishes the first snapshot.
	waitFor(t, func() bool { return svc.CurrentGeneration() >= 1 })

	// A refresh trigger produces a new generation.
	if err := u.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	waitFor(t, func() bool { return svc.CurrentGeneration() >= 2 })

	// Reads stay served throughout.
	if _, err := svc.Recommend(Request{ProductID: 1}); err != nil {
		t.Errorf("Recommend during Serve: %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop after cancel")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
