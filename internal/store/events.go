// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shoprec/shoprec/internal/metrics"
	"github.com/shoprec/shoprec/internal/recommend"
)

// InsertEvent appends one interaction event. The action must parse as a
// known kind (ErrInvalidAction otherwise) and the referenced product
// must exist (ErrNotFound otherwise). A zero timestamp is set to now.
func (s *Store) InsertEvent(ctx context.Context, ev recommend.Event) error {
	start := time.Now()
	err := s.insertEvent(ctx, ev)
	metrics.RecordDBQuery("insert", "events", time.Since(start), ignoreRejection(err))
	return err
}

func (s *Store) insertEvent(ctx context.Context, ev recommend.Event) error {
	if _, err := recommend.ParseAction(string(ev.Action)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAction, ev.Action)
	}
	if ev.UserID <= 0 {
		return fmt.Errorf("user id must be positive: %w", ErrInvalidInput)
	}

	var exists bool
	if err := s.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, ev.ProductID).Scan(&exists); err != nil {
		return fmt.Errorf("check product %d: %w", ev.ProductID, err)
	}
	if !exists {
		return fmt.Errorf("product %d: %w", ev.ProductID, ErrNotFound)
	}

	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	if _, err := s.conn.ExecContext(ctx,
		`INSERT INTO events (user_id, product_id, action, ts, session_id)
		 VALUES (?, ?, ?, ?, ?)`,
		ev.UserID, ev.ProductID, string(ev.Action), ts, ev.SessionID,
	); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// FetchEvents returns events recorded at or after since, oldest first.
// A zero since returns the full log. Part of recommend.EventSource.
func (s *Store) FetchEvents(ctx context.Context, since time.Time) ([]recommend.Event, error) {
	start := time.Now()
	out, err := s.fetchEvents(ctx, since)
	metrics.RecordDBQuery("select", "events", time.Since(start), err)
	return out, err
}

func (s *Store) fetchEvents(ctx context.Context, since time.Time) ([]recommend.Event, error) {
	query := `SELECT user_id, product_id, action, ts, session_id FROM events`
	var args []interface{}
	if !since.IsZero() {
		query += ` WHERE ts >= ?`
		args = append(args, since)
	}
	query += ` ORDER BY ts, id`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []recommend.Event{}
	for rows.Next() {
		var ev recommend.Event
		var action string
		if err := rows.Scan(&ev.UserID, &ev.ProductID, &action, &ev.Timestamp, &ev.SessionID); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Action = recommend.ActionKind(action)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// CountEvents returns the event log size.
func (s *Store) CountEvents(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func ignoreRejection(err error) error {
	if errors.Is(err, ErrInvalidAction) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
		return nil
	}
	return err
}
