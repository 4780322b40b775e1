// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package graph

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/toileapp/toile/internal/platform/middleware"
	requestutil "github.com/toileapp/toile/internal/platform/request"
	"github.com/toileapp/toile/internal/platform/respond"
)

// Handler exposes the graph domain over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the graph routes. GET /graph is public and filtered by the
// projector; GET /export is public and returns the raw dump unredacted. Every
// mutation is admin-only.
func (h *Handler) Register(router chi.Router) {
	router.Get("/graph", h.getGraph)
	router.Get("/export", h.exportGraph)

	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireAdmin)

		router.Get("/person/{name}", h.getPerson)
		router.Post("/person", h.createPerson)
		router.Patch("/person", h.updatePerson)
		router.Patch("/person/coordinates", h.moveNode)
		router.Delete("/person", h.deletePerson)

		router.Post("/relation", h.createRelation)
		router.Delete("/relation", h.deleteRelation)

		router.Post("/import", h.importGraph)
		router.Delete("/all", h.deleteAll)
	})
}

// getGraph returns the graph as the caller is allowed to see it.
func (h *Handler) getGraph(writer http.ResponseWriter, request *http.Request) {
	view, err := h.service.View(request.Context(), requestutil.Viewer(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

func (h *Handler) getPerson(writer http.ResponseWriter, request *http.Request) {
	name := requestutil.Param(request, "name")
	person, err := h.service.PersonByName(request.Context(), name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, person)
}

func (h *Handler) createPerson(writer http.ResponseWriter, request *http.Request) {
	var input CreatePersonInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	person, err := h.service.CreatePerson(request.Context(), requestutil.Viewer(request), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, person)
}

func (h *Handler) updatePerson(writer http.ResponseWriter, request *http.Request) {
	var input UpdatePersonInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := h.service.UpdatePerson(request.Context(), input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]string{"status": "updated"})
}

func (h *Handler) moveNode(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Name string  `json:"name"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := h.service.MoveNode(request.Context(), input.Name, input.X, input.Y); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]string{"status": "updated"})
}

func (h *Handler) deletePerson(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := h.service.DeletePerson(request.Context(), requestutil.Viewer(request), input.Name); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]string{"status": "deleted"})
}

func (h *Handler) createRelation(writer http.ResponseWriter, request *http.Request) {
	var input RelationInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	edgeID, err := h.service.CreateRelation(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, map[string]string{"edgeId": edgeID})
}

func (h *Handler) deleteRelation(writer http.ResponseWriter, request *http.Request) {
	var input RelationInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := h.service.DeleteRelation(request.Context(), input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]string{"status": "deleted"})
}

func (h *Handler) exportGraph(writer http.ResponseWriter, request *http.Request) {
	dump, err := h.service.Dump(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, struct {
		*Dump
		ExportDate time.Time `json:"exportDate"`
	}{Dump: dump, ExportDate: time.Now().UTC()})
}

func (h *Handler) importGraph(writer http.ResponseWriter, request *http.Request) {
	var dump Dump
	if err := requestutil.DecodeJSON(request, &dump); err != nil {
		respond.Error(writer, request, err)
		return
	}
	nodes, edges, err := h.service.RestoreDump(request.Context(), &dump)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]int{"nodes": nodes, "edges": edges})
}

func (h *Handler) deleteAll(writer http.ResponseWriter, request *http.Request) {
	if err := h.service.DeleteAll(request.Context()); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]string{"status": "deleted"})
}
