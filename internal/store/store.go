// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

// Package store provides DuckDB-backed persistence for the product
// catalog and the interaction event log. It implements the
// recommendation engine's EventSource, optionally behind a circuit
// breaker (see BreakerSource).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/shoprec/shoprec/internal/config"
	"github.com/shoprec/shoprec/internal/logging"
)

// ErrNotFound reports a missing row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate reports an insert conflicting with an existing row.
var ErrDuplicate = errors.New("already exists")

// ErrInvalidAction reports an event with an unrecognized action kind.
var ErrInvalidAction = errors.New("invalid action")

// ErrInvalidInput reports a malformed row rejected before insertion.
var ErrInvalidInput = errors.New("invalid input")

// Store wraps the DuckDB connection and provides catalog and event
// access. DuckDB allows a single writer; the connection pool is capped
// accordingly.
type Store struct {
	conn *sql.DB
}

// New opens (or creates) the database and initializes the schema. An
// empty path opens an in-memory database, used by tests.
func New(cfg *config.DatabaseConfig) (*Store, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	path := cfg.Path
	if path != "" {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, threads)
	if cfg.MaxMemory != "" {
		connStr += "&max_memory=" + cfg.MaxMemory
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// DuckDB handles concurrency internally; a small pool avoids write
	// contention on the single-writer engine.
	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	s := &Store{conn: conn}
	if err := s.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	storeLogger := logging.WithComponent("store")
	storeLogger.Info().
		Str("path", path).
		Int("threads", threads).
		Msg("Database opened")
	return s, nil
}

func (s *Store) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY,
			title VARCHAR NOT NULL,
			category VARCHAR NOT NULL DEFAULT '',
			price DOUBLE NOT NULL DEFAULT 0,
			color VARCHAR NOT NULL DEFAULT '',
			material VARCHAR NOT NULL DEFAULT '',
			sizes VARCHAR NOT NULL DEFAULT '[]',
			brand VARCHAR NOT NULL DEFAULT ''
		)`,
		`CREATE SEQUENCE IF NOT EXISTS events_id_seq`,
		`CREATE TABLE IF NOT EXISTS events (
			id BIGINT PRIMARY KEY DEFAULT nextval('events_id_seq'),
			user_id INTEGER NOT NULL,
			product_id INTEGER NOT NULL,
			action VARCHAR NOT NULL,
			ts TIMESTAMP NOT NULL,
			session_id VARCHAR NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_events_product ON events(product_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.conn.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
