// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package proposal

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toileapp/toile/internal/platform/middleware"
	requestutil "github.com/toileapp/toile/internal/platform/request"
	"github.com/toileapp/toile/internal/platform/respond"
)

// Handler exposes the proposal workflow over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(router chi.Router) {
	router.Route("/proposals", func(router chi.Router) {
		router.Post("/", h.submit)
		router.Get("/", h.list)
		router.Get("/stats", h.stats)
		router.Get("/{id}", h.get)

		router.Group(func(router chi.Router) {
			router.Use(middleware.RequireAdmin)
			router.Post("/{id}/approve", h.approve)
			router.Post("/{id}/reject", h.reject)
		})
	})
}

// submit requires a real authenticated session. The loopback admin identity
// carries no account, so it cannot author proposals.
func (h *Handler) submit(writer http.ResponseWriter, request *http.Request) {
	author, err := requestutil.RequireAuthenticated(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input SubmitInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	p, err := h.service.Submit(request.Context(), author, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, p)
}

func (h *Handler) list(writer http.ResponseWriter, request *http.Request) {
	status := requestutil.Query(request, "status")
	proposals, err := h.service.List(request.Context(), requestutil.Viewer(request), status)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, proposals)
}

func (h *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := h.service.Stats(request.Context(), requestutil.Viewer(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stats)
}

func (h *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")
	p, err := h.service.Get(request.Context(), requestutil.Viewer(request), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, p)
}

func (h *Handler) approve(writer http.ResponseWriter, request *http.Request) {
	var input ReviewInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	p, err := h.service.Approve(request.Context(), requestutil.Viewer(request), requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, p)
}

func (h *Handler) reject(writer http.ResponseWriter, request *http.Request) {
	var input ReviewInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	p, err := h.service.Reject(request.Context(), requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, p)
}
