// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gatewarden/gatewarden/internal/auth"
	"github.com/gatewarden/gatewarden/internal/observability"
)

// Options configures the HTTP API router.
type Options struct {
	// SessionCookie names the cookie carrying the session token.
	SessionCookie string
	// ExcludedPaths are exempted from the authentication guard.
	// Entries ending in "*" match by prefix; all others must carry a
	// trailing slash to match.
	ExcludedPaths []string
	// Metrics receives request and login counters when non-nil.
	Metrics *observability.Metrics
	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

const requestTimeout = 30 * time.Second

// NewRouter assembles the authentication API routes.
func NewRouter(svc *auth.Service, opts Options) http.Handler {
	h := NewHandler(svc, opts.SessionCookie, opts.Logger, opts.Metrics)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	if opts.Metrics != nil {
		r.Use(CountRequests(opts.Metrics))
	}
	r.Use(Guard(svc, opts.SessionCookie, opts.ExcludedPaths))

	r.Get("/", h.Welcome)
	r.Post("/users", h.Register)
	r.Post("/sessions", h.Login)
	r.Delete("/sessions", h.Logout)
	r.Get("/profile", h.Profile)
	r.Post("/reset_password", h.RequestReset)
	r.Put("/reset_password", h.UpdatePassword)

	return r
}
