// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

// Package middleware provides the HTTP middleware chain for the Toile API server.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This file resolves the caller's
// viewer identity exactly once per request, so that downstream core logic
// (graph projection, proposal scoping) receives a plain [viewer.Context]
// value and never inspects transport details itself.
package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/toileapp/toile/internal/platform/apperr"
	"github.com/toileapp/toile/internal/platform/constants"
	"github.com/toileapp/toile/internal/platform/ctxutil"
	"github.com/toileapp/toile/internal/platform/respond"
	"github.com/toileapp/toile/internal/platform/viewer"
)

// SessionResolver defines the interface needed to resolve session tokens.
//
// # Why an interface?
//
// Defining SessionResolver here decouples the middleware from the account
// service implementation, allowing us to easily inject fakes during unit testing.
type SessionResolver interface {
	// ResolveSession maps a raw session token to the viewer it belongs to.
	// An unknown or expired token must return an error.
	ResolveSession(ctx context.Context, token string) (viewer.Context, error)
}

// ResolveViewer classifies every request as Admin, Anonymous, or Authenticated.
//
// # Flow
//  1. If a session cookie is present and resolves, the caller is Authenticated.
//  2. Otherwise, if the declared request host is a loopback address, Admin.
//  3. Otherwise, Anonymous.
//
// An invalid or expired session cookie is treated as absent (the caller simply
// falls back to step 2), never as a hard failure — logged-out browsers keep
// stale cookies around.
func ResolveViewer(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			resolved := viewer.Anonymous()

			if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
				if v, err := resolver.ResolveSession(request.Context(), cookie.Value); err == nil {
					resolved = v
				}
			}

			if !resolved.IsAuthenticated() && IsLoopbackHost(request.Host) {
				resolved = viewer.Admin()
			}

			ctx := ctxutil.WithViewer(request.Context(), resolved)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAdmin blocks requests whose resolved viewer is not Admin.
//
// # Usage
//
// Must be registered in the router AFTER [ResolveViewer].
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		v := ctxutil.GetViewer(request.Context())
		if !v.IsAdmin() {
			respond.Error(writer, request, apperr.Forbidden("Administrator access required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// IsLoopbackHost reports whether the declared request host names a loopback
// address (localhost, 127.0.0.1, or ::1), ignoring any port suffix.
//
// This is a declared-host check, not a credential: it mirrors the deployment
// model where the admin UI is only ever served from the same machine.
func IsLoopbackHost(host string) bool {
	if host == "" {
		return false
	}
	if stripped, _, err := net.SplitHostPort(host); err == nil {
		host = stripped
	}
	host = strings.Trim(host, "[]")
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
