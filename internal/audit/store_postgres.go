// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Ledger is the Postgres-backed [Recorder], writing to the node_events table.
type Ledger struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewLedger(pool *pgxpool.Pool, logger *slog.Logger) *Ledger {
	return &Ledger{pool: pool, logger: logger}
}

// Record inserts the event. Failures are logged at warn level and dropped.
func (l *Ledger) Record(ctx context.Context, e Event) {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := l.pool.Exec(ctx,
		`INSERT INTO node_events (node_id, action, created_by, visibility_level, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.NodeID, e.Action, e.CreatedBy, e.VisibilityLevel, createdAt,
	)
	if err != nil {
		l.logger.Warn("audit event not recorded",
			slog.String("node_id", e.NodeID),
			slog.String("action", e.Action),
			slog.String("error", err.Error()),
		)
	}
}
