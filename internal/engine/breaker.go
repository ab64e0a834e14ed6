// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package engine

import (
	"context"
	"errors"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/wayfarerhq/wayfarer/internal/config"
	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/metrics"
	"github.com/wayfarerhq/wayfarer/internal/models"
	"github.com/wayfarerhq/wayfarer/internal/sources"
)

// guardedFetcher wraps a source fetcher with a per-source circuit breaker.
// A source that fails repeatedly inside the window is skipped without a
// network call until the window elapses.
type guardedFetcher struct {
	fetcher sources.Fetcher
	cb      *gobreaker.CircuitBreaker[[]models.RawItem]
}

func newGuardedFetcher(f sources.Fetcher, cfg config.BreakerConfig) *guardedFetcher {
	name := f.Name()
	metrics.BreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]models.RawItem](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Window,
		Timeout:     cfg.Window,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().
				Str("source", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("source breaker state transition")
			metrics.BreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.BreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &guardedFetcher{fetcher: f, cb: cb}
}

func (g *guardedFetcher) Name() string { return g.fetcher.Name() }

// Fetch runs the wrapped fetcher through the breaker. An open breaker
// rejects immediately with ErrOpenState.
func (g *guardedFetcher) Fetch(ctx context.Context, q sources.Query) ([]models.RawItem, error) {
	items, err := g.cb.Execute(func() ([]models.RawItem, error) {
		return g.fetcher.Fetch(ctx, q)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.FetchSkipped.WithLabelValues(g.Name(), "breaker_open").Inc()
		}
		return nil, err
	}
	return items, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
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
