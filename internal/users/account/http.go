// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toileapp/toile/internal/platform/constants"
	requestutil "github.com/toileapp/toile/internal/platform/request"
	"github.com/toileapp/toile/internal/platform/respond"
)

// Handler exposes registration, sessions, and the signup search over HTTP.
type Handler struct {
	service *Service

	// secureCookies requires HTTPS for the session cookie; off in development.
	secureCookies bool
}

func NewHandler(service *Service, secureCookies bool) *Handler {
	return &Handler{service: service, secureCookies: secureCookies}
}

func (h *Handler) Register(router chi.Router) {
	router.Route("/auth", func(router chi.Router) {
		router.Post("/register", h.register)
		router.Post("/login", h.login)
		router.Post("/logout", h.logout)
		router.Get("/me", h.me)
	})
	router.Get("/persons/available-for-signup", h.availableForSignup)
}

func (h *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input RegisterInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	a, err := h.service.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, a)
}

func (h *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input LoginInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	a, token, err := h.service.Login(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, h.sessionCookie(token, int(constants.SessionTTL.Seconds())))
	respond.OK(writer, a)
}

func (h *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.service.Logout(request.Context(), cookie.Value); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	// Expire the cookie client-side whether or not a session existed.
	http.SetCookie(writer, h.sessionCookie("", -1))
	respond.OK(writer, map[string]string{"status": "logged_out"})
}

func (h *Handler) me(writer http.ResponseWriter, request *http.Request) {
	v, err := requestutil.RequireAuthenticated(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	a, err := h.service.Profile(request.Context(), v.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, a)
}

func (h *Handler) availableForSignup(writer http.ResponseWriter, request *http.Request) {
	options, err := h.service.AvailableForSignup(request.Context(), requestutil.Query(request, "q"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, options)
}

func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
