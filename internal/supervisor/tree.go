// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

// Package supervisor runs the process's long-lived services under a suture
// tree: the HTTP server and the maintenance janitors. A crashing janitor is
// restarted with backoff without taking the API down.
package supervisor

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/wayfarerhq/wayfarer/internal/logging"
)

// TreeConfig carries the restart policy for every supervisor in the tree.
type TreeConfig struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

// DefaultTreeConfig mirrors suture's own defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree is the two-layer supervisor: maintenance janitors in one child,
// the API server in the other, so a janitor crash loop cannot starve the
// HTTP listener.
type Tree struct {
	root        *suture.Supervisor
	maintenance *suture.Supervisor
	api         *suture.Supervisor
}

func NewTree(cfg TreeConfig) *Tree {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5.0
	}
	if cfg.FailureDecay == 0 {
		cfg.FailureDecay = 30.0
	}
	if cfg.FailureBackoff == 0 {
		cfg.FailureBackoff = 15 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	spec := suture.Spec{
		EventHook: func(ev suture.Event) {
			logging.Warn().
				Str("event", ev.String()).
				Str("type", eventType(ev)).
				Msg("supervisor event")
		},
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	}
	childSpec := suture.Spec{
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	}

	root := suture.New("wayfarer", spec)
	maintenance := suture.New("maintenance", childSpec)
	api := suture.New("api", childSpec)
	root.Add(maintenance)
	root.Add(api)

	return &Tree{root: root, maintenance: maintenance, api: api}
}

func eventType(ev suture.Event) string {
	switch ev.Type() {
	case suture.EventTypeStopTimeout:
		return "stop_timeout"
	case suture.EventTypeServicePanic:
		return "service_panic"
	case suture.EventTypeServiceTerminate:
		return "service_terminate"
	case suture.EventTypeBackoff:
		return "backoff"
	case suture.EventTypeResume:
		return "resume"
	default:
		return "unknown"
	}
}

// AddMaintenance registers a janitor-style service.
func (t *Tree) AddMaintenance(svc suture.Service) {
	t.maintenance.Add(svc)
}

// AddAPI registers an API-layer service.
func (t *Tree) AddAPI(svc suture.Service) {
	t.api.Add(svc)
}

// Serve blocks until ctx is canceled, then shuts the whole tree down.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}
