// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/toileapp/toile/internal/platform/ctxkey"
	"github.com/toileapp/toile/internal/platform/viewer"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithViewer returns a new context with the resolved viewer attached.
func WithViewer(ctx context.Context, v viewer.Context) context.Context {
	return context.WithValue(ctx, ctxkey.KeyViewer, v)
}

// GetViewer retrieves the resolved [viewer.Context].
// Requests that never passed through the resolution middleware are Anonymous.
func GetViewer(ctx context.Context) viewer.Context {
	v, ok := ctx.Value(ctxkey.KeyViewer).(viewer.Context)
	if !ok {
		return viewer.Anonymous()
	}
	return v
}
