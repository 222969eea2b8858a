// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package services

import (
	"context"
	"errors"
	"testing"
)

type fakeRebuilder struct {
	err    error
	served bool
}

func (f *fakeRebuilder) Serve(ctx context.Context) error {
	f.served = true
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestUpdaterServiceDelegates(t *testing.T) {
	reb := &fakeRebuilder{}
	svc := NewUpdaterService(reb)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.Serve(ctx)
	if !reb.served {
		t.Error("expected Serve to delegate to the rebuilder")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Serve returned %v, want context.Canceled", err)
	}
}

func TestUpdaterServicePropagatesError(t *testing.T) {
	reb := &fakeRebuilder{err: errors.New("source unavailable")}
	svc := NewUpdaterService(reb)

	if err := svc.Serve(context.Background()); !errors.Is(err, reb.err) {
		t.Errorf("Serve returned %v, want rebuilder error", err)
	}
}

func TestUpdaterServiceString(t *testing.T) {
	svc := NewUpdaterService(&fakeRebuilder{})
	if svc.String() != "snapshot-updater" {
		t.Errorf("String() = %q", svc.String())
	}
}
