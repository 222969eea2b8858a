// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

// Command server runs the ShopRec recommendation service.
//
// Startup order:
//  1. Configuration: koanf layering of defaults, YAML file and environment
//  2. Logging: zerolog global logger
//  3. Storage: DuckDB catalog and event log, seeded from JSON files
//  4. Engine: recommendation service plus snapshot updater behind a
//     circuit-breaker-wrapped event source
//  5. Supervision: suture tree running the updater and the HTTP server
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shoprec/shoprec/internal/api"
	"github.com/shoprec/shoprec/internal/config"
	"github.com/shoprec/shoprec/internal/logging"
	"github.com/shoprec/shoprec/internal/metrics"
	"github.com/shoprec/shoprec/internal/recommend"
	"github.com/shoprec/shoprec/internal/store"
	"github.com/shoprec/shoprec/internal/supervisor"
	"github.com/shoprec/shoprec/internal/supervisor/services"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "shoprec: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	log := logging.WithComponent("main")
	log.Info().Str("version", Version).Str("addr", cfg.Server.Addr()).Msg("Starting ShopRec")

	db, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Closing store failed")
		}
	}()

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelSeed()
	if err := db.Seed(seedCtx, cfg.Seed); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}

	source := store.NewBreakerSource(db)

	svc, err := recommend.NewService(cfg.Recommend.ToEngineConfig())
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	updater := recommend.NewUpdater(svc, source, logging.Logger())
	updater.OnBuild = func(info recommend.BuildInfo) {
		var buildErr error
		if !info.Success {
			buildErr = errors.New(info.Error)
		}
		status := svc.Status()
		metrics.RecordSnapshotBuild(info.Duration, info.Generation, status.Events, buildErr)
	}

	// First build happens synchronously so the API never starts cold.
	// Failure is tolerated: the updater retries on its schedule and the
	// API answers 404s off the empty state until a build lands.
	buildCtx, cancelBuild := context.WithTimeout(context.Background(), cfg.Recommend.BuildTimeout)
	if err := updater.BuildNow(buildCtx); err != nil {
		log.Warn().Err(err).Msg("Initial snapshot build failed, continuing without snapshot")
	}
	cancelBuild()

	router := api.NewRouter(cfg, svc, updater, db, source, Version)
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddEngineService(services.NewUpdaterService(updater))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("Supervision tree starting")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	log.Info().Msg("Shutdown complete")
	return nil
}
