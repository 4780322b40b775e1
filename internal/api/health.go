// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/toileapp/toile/internal/platform/constants"
	"github.com/toileapp/toile/internal/platform/respond"
)

// probeTimeout bounds each upstream check during readiness probing.
const probeTimeout = 3 * time.Second

// Pinger is any upstream dependency that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	upstreams map[string]Pinger
}

// NewHealthHandler registers the named upstream dependencies the readiness
// probe must verify (graph store, relational store, session store).
func NewHealthHandler(upstreams map[string]Pinger) *HealthHandler {
	return &HealthHandler{upstreams: upstreams}
}

func (h *HealthHandler) Register(router chi.Router) {
	router.Get("/health", h.health)
	router.Get("/ready", h.ready)
}

// health is the liveness probe: the process is up and serving.
func (h *HealthHandler) health(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{
		"status":  "ok",
		"service": constants.AppName,
		"version": constants.AppVersion,
	})
}

// ready checks every upstream and reports per-dependency status. Any failing
// upstream flips the response to 503.
func (h *HealthHandler) ready(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), probeTimeout)
	defer cancel()

	statuses := make(map[string]string, len(h.upstreams))
	healthy := true
	for name, upstream := range h.upstreams {
		if err := upstream.Ping(ctx); err != nil {
			statuses[name] = "unreachable"
			healthy = false
			continue
		}
		statuses[name] = "ok"
	}

	code := http.StatusOK
	status := "ready"
	if !healthy {
		code = http.StatusServiceUnavailable
		status = "degraded"
	}
	respond.JSON(writer, code, map[string]any{
		"status":    status,
		"upstreams": statuses,
	})
}
