// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/toileapp/toile/internal/platform/apperr"
	"github.com/toileapp/toile/internal/platform/ctxutil"
	"github.com/toileapp/toile/internal/platform/validate"
	"github.com/toileapp/toile/internal/platform/viewer"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Query retrieves a named query-string parameter from the request.
*/
func Query(request *http.Request, name string) string {
	return request.URL.Query().Get(name)
}

/*
Viewer extracts the resolved viewer identity from the request context.

Requests that never passed through the resolution middleware are Anonymous.
*/
func Viewer(request *http.Request) viewer.Context {
	return ctxutil.GetViewer(request.Context())
}

/*
RequireAuthenticated ensures the request carries an authenticated session.

The Admin viewer does NOT satisfy this requirement — admin identity comes from
the transport (loopback host), not from an account, so operations that need an
author identity must be backed by a real session.

Returns:
  - viewer.Context: The authenticated viewer
  - error: apperr.Unauthorized if the request is anonymous or admin-only
*/
func RequireAuthenticated(request *http.Request) (viewer.Context, error) {
	v := ctxutil.GetViewer(request.Context())
	if !v.IsAuthenticated() {
		return viewer.Context{}, apperr.Unauthorized("Authentication required")
	}
	return v, nil
}
