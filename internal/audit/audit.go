// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

// Package audit records node lifecycle events in the relational database.
//
// Recording is best-effort: an audit insert failure is logged and swallowed,
// never propagated, so a relational outage cannot block graph mutations.
package audit

import (
	"context"
	"time"
)

// Actions recorded in the ledger.
const (
	ActionCreate = "create"
	ActionDelete = "delete"
)

// Event is one node lifecycle event.
type Event struct {
	NodeID          string
	Action          string
	CreatedBy       string
	VisibilityLevel *int
	CreatedAt       time.Time
}

// Recorder accepts lifecycle events. Implementations must never fail the
// caller: Record returns nothing.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

// NopRecorder discards every event. Used in tests and as a safe default.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}
