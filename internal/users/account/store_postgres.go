// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toileapp/toile/internal/platform/apperr"
)

// pgUniqueViolation is the SQLSTATE for unique constraint violations.
const pgUniqueViolation = "23505"

// PostgresRepository is the pgx-backed [Repository] over the users table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, a *Account) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, person_node_id, visibility_level)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		a.Email, a.PasswordHash, a.PersonNodeID, a.VisibilityLevel,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// Both the email and the person binding are unique; the
			// constraint name tells us which one collided.
			if pgErr.ConstraintName == "users_person_node_id_key" {
				return apperr.ValidationError("This person is already associated with an account")
			}
			return apperr.Conflict("An account with this email already exists")
		}
		return apperr.Internal(fmt.Errorf("account: insert failed: %w", err))
	}
	return nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return r.findBy(ctx, "email", email)
}

func (r *PostgresRepository) FindByPersonNodeID(ctx context.Context, nodeID string) (*Account, error) {
	return r.findBy(ctx, "person_node_id", nodeID)
}

func (r *PostgresRepository) findBy(ctx context.Context, column, value string) (*Account, error) {
	a := &Account{}
	err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT id, email, password_hash, person_node_id, visibility_level, created_at
		 FROM users WHERE %s = $1`, column),
		value,
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.PersonNodeID, &a.VisibilityLevel, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, apperr.Internal(fmt.Errorf("account: lookup failed: %w", err))
	}
	return a, nil
}

func (r *PostgresRepository) ClaimedNodeIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := r.pool.Query(ctx, `SELECT person_node_id FROM users`)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("account: claimed ids query failed: %w", err))
	}
	defer rows.Close()

	claimed := make(map[string]bool)
	for rows.Next() {
		var nodeID string
		if err := rows.Scan(&nodeID); err != nil {
			return nil, apperr.Internal(fmt.Errorf("account: claimed ids scan failed: %w", err))
		}
		claimed[nodeID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Errorf("account: claimed ids iteration failed: %w", err))
	}
	return claimed, nil
}
