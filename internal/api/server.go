// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

// Package api assembles the HTTP server: the middleware chain, the route
// table, and the health probes.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/toileapp/toile/internal/graph"
	"github.com/toileapp/toile/internal/platform/config"
	"github.com/toileapp/toile/internal/platform/constants"
	"github.com/toileapp/toile/internal/platform/middleware"
	"github.com/toileapp/toile/internal/proposal"
	"github.com/toileapp/toile/internal/snapshot"
	"github.com/toileapp/toile/internal/users/account"
)

// Handlers bundles every domain handler the server mounts.
type Handlers struct {
	Graph     *graph.Handler
	Proposals *proposal.Handler
	Snapshots *snapshot.Handler
	Accounts  *account.Handler
	Health    *HealthHandler
}

// NewServer builds the configured HTTP server with the full middleware chain
// and route table.
//
// Middleware order matters: identity resolution (ResolveViewer) runs before
// the access logger so the log line can name the viewer, and before the
// routes so that every handler sees a resolved identity.
func NewServer(cfg *config.Config, logger *slog.Logger, resolver middleware.SessionResolver, handlers Handlers) *http.Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID())
	router.Use(middleware.PanicRecovery(logger))
	router.Use(chimiddleware.Timeout(constants.GlobalRequestTimeout))
	router.Use(middleware.RateLimit(context.Background()))
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.ResolveViewer(resolver))
	router.Use(middleware.StructuredLogger(logger))
	router.Use(chimiddleware.CleanPath)

	handlers.Health.Register(router)
	handlers.Graph.Register(router)
	handlers.Proposals.Register(router)
	handlers.Snapshots.Register(router)
	handlers.Accounts.Register(router)

	return &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadTimeout:       constants.DefaultReadTimeout,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		WriteTimeout:      constants.DefaultWriteTimeout,
		IdleTimeout:       constants.DefaultIdleTimeout,
	}
}
