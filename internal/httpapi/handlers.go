// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package httpapi exposes the authentication service over HTTP.
//
// Endpoints accept form-encoded bodies and respond with JSON. Session
// state travels in a cookie; a bearer Authorization header is accepted
// as an alternative credential channel on guarded paths.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gatewarden/gatewarden/internal/auth"
	"github.com/gatewarden/gatewarden/internal/observability"
	"github.com/gatewarden/gatewarden/pkg/errutil"
)

// WelcomeMessage is served on the landing route and after logout.
const WelcomeMessage = "Bienvenue"

// Handler holds the HTTP endpoints of the authentication API.
type Handler struct {
	svc        *auth.Service
	cookieName string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewHandler creates a Handler. metrics may be nil, in which case no
// counters are recorded.
func NewHandler(svc *auth.Service, cookieName string, logger *slog.Logger, metrics *observability.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, cookieName: cookieName, logger: logger, metrics: metrics}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write error means the client went away
	json.NewEncoder(w).Encode(v)
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"message": msg})
}

// Welcome handles GET /.
func (h *Handler) Welcome(w http.ResponseWriter, _ *http.Request) {
	respondMessage(w, http.StatusOK, WelcomeMessage)
}

// Register handles POST /users.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := h.svc.Register(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, auth.ErrAlreadyExists) {
			respondMessage(w, http.StatusBadRequest, "email already registered")
			return
		}
		errutil.LogError(h.logger, "register failed", err)
		respondMessage(w, http.StatusBadRequest, "invalid registration")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"email":   user.Email,
		"message": "user created",
	})
}

// Login handles POST /sessions.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	ok, err := h.svc.Authenticate(r.Context(), email, password)
	if err != nil {
		errutil.LogError(h.logger, "authenticate failed", err)
		respondMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		h.countLogin("failure")
		observability.RecordAuthFailure("bad_credentials")
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	token, err := h.svc.CreateSession(r.Context(), email)
	if err != nil {
		errutil.LogError(h.logger, "create session failed", err)
		respondMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:  h.cookieName,
		Value: token,
		Path:  "/",
	})
	h.countLogin("success")
	respondJSON(w, http.StatusOK, map[string]string{
		"email":   email,
		"message": "logged in",
	})
}

// Profile handles GET /profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil {
		respondMessage(w, http.StatusForbidden, "Forbidden")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"email": user.Email})
}

// Logout handles DELETE /sessions. Logging out without a valid session
// is rejected; logging out twice therefore fails the second time with
// 403, since the first call cleared the session id.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil {
		respondMessage(w, http.StatusForbidden, "Forbidden")
		return
	}

	if err := h.svc.DestroySession(r.Context(), user.ID); err != nil {
		errutil.LogError(h.logger, "destroy session failed", err)
		respondMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondMessage(w, http.StatusOK, WelcomeMessage)
}

// RequestReset handles POST /reset_password.
func (h *Handler) RequestReset(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")

	token, err := h.svc.IssueResetToken(r.Context(), email)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			respondMessage(w, http.StatusBadRequest, "email not registered")
			return
		}
		errutil.LogError(h.logger, "issue reset token failed", err)
		respondMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.countReset("issued")
	respondJSON(w, http.StatusOK, map[string]string{
		"email":       email,
		"reset_token": token,
	})
}

// UpdatePassword handles PUT /reset_password.
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	token := r.PostFormValue("reset_token")
	newPassword := r.PostFormValue("new_password")

	if err := h.svc.ConsumeResetToken(r.Context(), token, newPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			respondMessage(w, http.StatusBadRequest, "invalid reset token")
			return
		}
		errutil.LogError(h.logger, "consume reset token failed", err)
		respondMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.countReset("consumed")
	respondJSON(w, http.StatusOK, map[string]string{
		"email":   email,
		"message": "Password updated",
	})
}

// currentUser resolves the caller's identity. The guard middleware
// stores the user in the request context for protected paths; handlers
// on excluded paths fall back to resolving the credential themselves.
func (h *Handler) currentUser(r *http.Request) *auth.User {
	if user := userFromContext(r.Context()); user != nil {
		return user
	}

	token := extractCredential(r, h.cookieName)
	if token == "" {
		return nil
	}

	user, err := h.svc.ResolveSession(r.Context(), token)
	if err != nil {
		return nil
	}
	return user
}

func (h *Handler) countLogin(result string) {
	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(result).Inc()
	}
}

func (h *Handler) countReset(stage string) {
	if h.metrics != nil {
		h.metrics.PasswordResets.WithLabelValues(stage).Inc()
	}
}
