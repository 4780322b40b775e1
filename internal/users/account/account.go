// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

/*
Package account implements member accounts and cookie sessions.

An account binds an email/password pair to exactly one Person node in the
graph and carries the visibility level that widens what the graph projection
reveals to this member. Sessions are opaque random tokens handed out as an
HTTP-only cookie; only their digest is stored server-side.
*/
package account

import (
	"context"
	"time"
)

// DefaultVisibilityLevel is assigned to new accounts. An administrator
// raises a member's level directly in the relational database; no API
// endpoint exists for it.
const DefaultVisibilityLevel = 1

// Account is a registered member.
type Account struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	PersonNodeID    string    `json:"personNodeId"`
	VisibilityLevel int       `json:"visibilityLevel"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Session is the server-side state behind one session cookie.
type Session struct {
	Email           string `json:"email"`
	PersonNodeID    string `json:"person_node_id"`
	VisibilityLevel int    `json:"visibility_level"`
}

// Repository is the relational persistence boundary for accounts.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByPersonNodeID(ctx context.Context, nodeID string) (*Account, error)
	// ClaimedNodeIDs returns the set of person node ids already bound to an
	// account.
	ClaimedNodeIDs(ctx context.Context) (map[string]bool, error)
}

// SessionStore is the keyed session persistence boundary. Keys are token
// digests, never raw tokens.
type SessionStore interface {
	Set(ctx context.Context, tokenHash string, s *Session, ttl time.Duration) error
	Get(ctx context.Context, tokenHash string) (*Session, error)
	Delete(ctx context.Context, tokenHash string) error
}
