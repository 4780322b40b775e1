// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

/*
Package neo4j provides a managed executor for the graph database.

It wraps the official Neo4j Go driver behind a small [Runner] interface so
that the graph and proposal stores can be exercised against fakes in unit
tests, and so that session/transaction handling lives in exactly one place.

Core Responsibilities:

  - Connectivity: Driver construction and startup verification.
  - Execution: One entry point ([Executor.Run]) for all Cypher queries,
    buffering results eagerly for simple, predictable consumption.
  - Lifecycle: Explicit Close at shutdown; no package-level driver state.
*/
package neo4j

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// verifyTimeout bounds the startup connectivity check.
const verifyTimeout = 10 * time.Second

// Runner defines the interface for a generic Cypher query executor.
//
// It abstracts the execution of a query, allowing stores to be tested
// against in-memory fakes.
type Runner interface {
	// Run executes a Cypher query with parameters and returns a fully
	// buffered result.
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// Executor is the concrete [Runner] backed by the official Neo4j driver.
type Executor struct {
	driver neo4j.DriverWithContext
	dbName string
}

// NewExecutor creates the driver, verifies connectivity, and returns a
// ready-to-use executor.
//
// # Parameters
//   - ctx: Context for the startup connectivity check.
//   - uri: Connection URI (e.g. "bolt://127.0.0.1:7687").
//   - username, password: Basic-auth credentials.
//   - dbName: Target database name (e.g. "neo4j").
//   - logger: Structured logger for connection events.
func NewExecutor(ctx context.Context, uri, username, password, dbName string, logger *slog.Logger) (*Executor, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j: could not create driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: connectivity check failed: %w", err)
	}

	logger.Info("neo4j driver connected",
		slog.String("uri", uri),
		slog.String("database", dbName),
	)

	return &Executor{driver: driver, dbName: dbName}, nil
}

// Run executes a Cypher query using the driver's ExecuteQuery helper, which
// handles session and transaction management automatically. Results are
// buffered in memory before returning, which is the right trade-off for this
// workload (the whole graph is small enough to project in one pass).
func (e *Executor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(
		ctx,
		e.driver,
		query,
		params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(e.dbName),
	)
	if err != nil {
		return nil, fmt.Errorf("neo4j: query failed: %w", err)
	}

	return result, nil
}

// Ping verifies that the graph database is reachable.
func (e *Executor) Ping(ctx context.Context) error {
	verifyCtx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	if err := e.driver.VerifyConnectivity(verifyCtx); err != nil {
		return fmt.Errorf("neo4j: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying driver and all pooled connections.
func (e *Executor) Close(ctx context.Context) error {
	return e.driver.Close(ctx)
}
