// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package services

import (
	"context"
)

// Rebuilder is the lifecycle surface of the snapshot updater.
// Satisfied by *recommend.Updater.
type Rebuilder interface {
	Serve(ctx context.Context) error
}

// UpdaterService wraps the snapshot updater for suture supervision.
// The updater's Serve already honors context cancellation, so the
// wrapper only contributes the service name for supervisor logs.
type UpdaterService struct {
	updater Rebuilder
	name    string
}

// NewUpdaterService creates a new updater service wrapper.
func NewUpdaterService(updater Rebuilder) *UpdaterService {
	return &UpdaterService{
		updater: updater,
		name:    "snapshot-updater",
	}
}

// Serve implements suture.Service.
func (s *UpdaterService) Serve(ctx context.Context) error {
	return s.updater.Serve(ctx)
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *UpdaterService) String() string {
	return s.name
}
