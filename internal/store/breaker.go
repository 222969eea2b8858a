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

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/shoprec/shoprec/internal/logging"
	"github.com/shoprec/shoprec/internal/metrics"
	"github.com/shoprec/shoprec/internal/recommend"
)

// BreakerSource wraps a recommend.EventSource with a circuit breaker, so
// snapshot builds fail fast instead of piling up on a struggling
// database. The previous snapshot keeps serving reads while the breaker
// is open.
//
// The breaker uses real time for its interval and timeout; tests
// exercising timing should drive the wrapped source instead.
type BreakerSource struct {
	src recommend.EventSource
	cb  *gobreaker.CircuitBreaker[interface{}]
}

// NewBreakerSource wraps src with a circuit breaker. Configuration:
// opens after a 60% failure rate over at least 5 requests, allows 2
// probes in half-open state, and waits 30 seconds before probing.
func NewBreakerSource(src recommend.EventSource) *BreakerSource {
	log := logging.WithComponent("event-source-breaker")

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "event-source",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			log.Warn().Str("from", fromStr).Str("to", toStr).Msg("Circuit breaker state change")
			metrics.BreakerStateChanges.WithLabelValues(fromStr, toStr).Inc()
		},
	})

	return &BreakerSource{src: src, cb: cb}
}

func (b *BreakerSource) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil && (errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)) {
		metrics.BreakerRejected.Inc()
	}
	return result, err
}

func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// FetchProducts fetches the catalog with circuit breaker protection.
func (b *BreakerSource) FetchProducts(ctx context.Context) ([]recommend.Product, error) {
	return castResult[[]recommend.Product](b.execute(func() (interface{}, error) {
		return b.src.FetchProducts(ctx)
	}))
}

// FetchEvents fetches events with circuit breaker protection.
func (b *BreakerSource) FetchEvents(ctx context.Context, since time.Time) ([]recommend.Event, error) {
	return castResult[[]recommend.Event](b.execute(func() (interface{}, error) {
		return b.src.FetchEvents(ctx, since)
	}))
}

// State returns the current breaker state as a string, for the status
// endpoint.
func (b *BreakerSource) State() string {
	return stateToString(b.cb.State())
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
