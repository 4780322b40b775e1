// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

// Command api runs the Toile HTTP server.
//
// Startup order: configuration, stores (Neo4j, Postgres, Redis), SQL
// migrations, graph identifier backfill, then the HTTP listener. Shutdown is
// graceful: in-flight requests get a draining window before the stores are
// closed.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/toileapp/toile/internal/api"
	"github.com/toileapp/toile/internal/audit"
	"github.com/toileapp/toile/internal/graph"
	"github.com/toileapp/toile/internal/platform/config"
	"github.com/toileapp/toile/internal/platform/constants"
	"github.com/toileapp/toile/internal/platform/migration"
	platformneo4j "github.com/toileapp/toile/internal/platform/neo4j"
	platformpostgres "github.com/toileapp/toile/internal/platform/postgres"
	platformredis "github.com/toileapp/toile/internal/platform/redis"
	"github.com/toileapp/toile/internal/proposal"
	"github.com/toileapp/toile/internal/snapshot"
	"github.com/toileapp/toile/internal/users/account"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})).
		With(slog.String("service", constants.AppName))
	slog.SetDefault(logger)

	logger.Info("starting",
		slog.String("version", constants.AppVersion),
		slog.String("environment", cfg.Environment),
	)

	// Stores.
	executor, err := platformneo4j.NewExecutor(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase, logger)
	must(logger, "neo4j", err)
	defer func() { _ = executor.Close(ctx) }()

	pool, err := platformpostgres.NewPool(ctx, cfg.DatabaseURL, logger)
	must(logger, "postgres", err)
	defer pool.Close()

	redisClient, err := platformredis.NewClient(ctx, cfg.RedisURL, logger)
	must(logger, "redis", err)
	defer func() { _ = redisClient.Close() }()

	must(logger, "migrations", migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger))

	// Domain wiring.
	graphStore := graph.NewNeo4jStore(executor)
	ledger := audit.NewLedger(pool, logger)
	graphService := graph.NewService(graphStore, graph.NewIDAllocator(graphStore), ledger, logger)

	if _, _, err := graphService.BackfillIDs(ctx); err != nil {
		must(logger, "identifier backfill", err)
	}

	snapshotStore, err := snapshot.NewFileStore(cfg.SnapshotDir)
	must(logger, "snapshot store", err)
	snapshotManager := snapshot.NewManager(snapshotStore, graphService, logger)

	proposalService := proposal.NewService(proposal.NewNeo4jStore(executor), graphService, snapshotManager, logger)

	accountService := account.NewService(
		account.NewPostgresRepository(pool),
		account.NewRedisSessionStore(redisClient),
		graphService,
		logger,
	)

	health := api.NewHealthHandler(map[string]api.Pinger{
		"neo4j":    executor,
		"postgres": pingFunc(func(ctx context.Context) error { return platformpostgres.Ping(ctx, pool) }),
		"redis":    pingFunc(func(ctx context.Context) error { return platformredis.Ping(ctx, redisClient) }),
	})

	server := api.NewServer(cfg, logger, accountService, api.Handlers{
		Graph:     graph.NewHandler(graphService),
		Proposals: proposal.NewHandler(proposalService),
		Snapshots: snapshot.NewHandler(snapshotManager),
		Accounts:  account.NewHandler(accountService, cfg.IsProduction()),
		Health:    health,
	})

	// Serve until interrupted.
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutting down", slog.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
		}
	}

	logger.Info("stopped")
}

// pingFunc adapts a plain function to the health probe interface.
type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func must(logger *slog.Logger, step string, err error) {
	if err != nil {
		logger.Error("startup failed",
			slog.String("step", step),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
}
