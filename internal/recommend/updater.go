// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// BuildInfo records the outcome of one snapshot build attempt.
type BuildInfo struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
	Generation uint64        `json:"generation,omitempty"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
}

// Updater owns snapshot builds for a Service. Exactly one build runs at
// a time; triggers arriving during a build are coalesced into a single
// follow-up build. Scheduled rebuilds and external refresh triggers go
// through the same path.
//
// Updater implements the suture service interface via Serve.
type Updater struct {
	svc *Service
	src EventSource
	log zerolog.Logger

	// limiter throttles external refresh triggers. Scheduled rebuilds
	// bypass it.
	limiter *rate.Limiter

	// trigger carries coalesced refresh requests. Capacity one: a full
	// channel means a follow-up build is already queued.
	trigger chan struct{}

	building atomic.Bool

	// OnBuild, when set before Serve, is called after every build
	// attempt. Used by the metrics layer; must not block.
	OnBuild func(BuildInfo)

	mu   sync.Mutex
	last *BuildInfo
}

// NewUpdater creates an Updater for the given service and source.
func NewUpdater(svc *Service, src EventSource, logger zerolog.Logger) *Updater {
	cfg := svc.cfg
	var limiter *rate.Limiter
	if cfg.Build.MinRefreshInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Build.MinRefreshInterval), 1)
	}
	return &Updater{
		svc:     svc,
		src:     src,
		log:     logger.With().Str("component", "recommend-updater").Logger(),
		limiter: limiter,
		trigger: make(chan struct{}, 1),
	}
}

// Refresh requests an out-of-band rebuild. It never blocks and never
// waits for the build.
//
// Returns nil when the trigger was accepted: a build observing data at
// least as fresh as this call will run. Returns ErrBuildInProgress when
// the trigger was throttled or a follow-up build is already queued; in
// both cases a build covering this request is running or imminent.
func (u *Updater) Refresh() error {
	if u.limiter != nil && !u.limiter.Allow() {
		return ErrBuildInProgress
	}
	select {
	case u.trigger <- struct{}{}:
		return nil
	default:
		return ErrBuildInProgress
	}
}

// Building reports whether a build is currently running.
func (u *Updater) Building() bool {
	return u.building.Load()
}

// LastBuild returns the most recent build outcome, or nil before the
// first attempt.
func (u *Updater) LastBuild() *BuildInfo {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.last == nil {
		return nil
	}
	out := *u.last
	return &out
}

// BuildNow runs one build synchronously, bounded by the configured
// timeout. Used at startup to publish the first snapshot before the
// HTTP listener opens; Serve uses the same path for all later builds.
func (u *Updater) BuildNow(ctx context.Context) error {
	if !u.building.CompareAndSwap(false, true) {
		return ErrBuildInProgress
	}
	defer u.building.Store(false)
	return u.buildOnce(ctx)
}

// Serve runs the rebuild loop until the context is canceled: an
// immediate build if no snapshot is published, then scheduled rebuilds
// every Build.Interval interleaved with coalesced refresh triggers.
func (u *Updater) Serve(ctx context.Context) error {
	if u.svc.Snapshot() == nil {
		u.runBuild(ctx)
	}

	ticker := time.NewTicker(u.svc.cfg.Build.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			u.runBuild(ctx)
		case <-u.trigger:
			u.runBuild(ctx)
		}
	}
}

func (u *Updater) runBuild(ctx context.Context) {
	if !u.building.CompareAndSwap(false, true) {
		return
	}
	defer u.building.Store(false)

	if err := u.buildOnce(ctx); err != nil && ctx.Err() == nil {
		u.log.Error().Err(err).Msg("Snapshot build failed, previous snapshot stays published")
	}
}

func (u *Updater) buildOnce(ctx context.Context) error {
	buildCtx, cancel := context.WithTimeout(ctx, u.svc.cfg.Build.Timeout)
	defer cancel()

	info := BuildInfo{StartedAt: time.Now()}
	snap, err := buildSnapshot(buildCtx, u.src, *u.svc.cfg)
	info.FinishedAt = time.Now()
	info.Duration = info.FinishedAt.Sub(info.StartedAt)

	if err != nil {
		info.Error = err.Error()
		u.record(info)
		return fmt.Errorf("build snapshot: %w", err)
	}

	u.svc.holder.publish(snap)
	info.Success = true
	info.Generation = snap.Generation
	u.record(info)

	u.log.Info().
		Uint64("generation", snap.Generation).
		Int("products", len(snap.Products)).
		Int("events", snap.EventCount).
		Int("users", snap.Similarity.Users()).
		Dur("duration", info.Duration).
		Msg("Snapshot published")
	return nil
}

func (u *Updater) record(info BuildInfo) {
	u.mu.Lock()
	u.last = &info
	u.mu.Unlock()

	if u.OnBuild != nil {
		u.OnBuild(info)
	}
}
