// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package snapshot

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toileapp/toile/internal/platform/middleware"
	requestutil "github.com/toileapp/toile/internal/platform/request"
	"github.com/toileapp/toile/internal/platform/respond"
)

// Handler exposes snapshot management over HTTP. Every route is admin-only.
type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

func (h *Handler) Register(router chi.Router) {
	router.Route("/snapshots", func(router chi.Router) {
		router.Use(middleware.RequireAdmin)

		router.Post("/", h.create)
		router.Get("/", h.list)
		router.Get("/{id}", h.get)
		router.Post("/restore/{id}", h.restore)
	})
}

func (h *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Message string `json:"message"`
	}
	// The body is optional; an empty message is fine.
	_ = requestutil.DecodeJSON(request, &input)

	created, err := h.manager.Create(request.Context(), input.Message, "admin")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, created)
}

func (h *Handler) list(writer http.ResponseWriter, request *http.Request) {
	metas, err := h.manager.List()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, metas)
}

func (h *Handler) get(writer http.ResponseWriter, request *http.Request) {
	s, err := h.manager.Get(requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, s)
}

func (h *Handler) restore(writer http.ResponseWriter, request *http.Request) {
	result, err := h.manager.Restore(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}
