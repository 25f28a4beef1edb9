package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tidecal/server/internal/api/middleware"
	"github.com/tidecal/server/internal/api/problem"
	"github.com/tidecal/server/internal/auth"
	"github.com/tidecal/server/internal/domain/users"
	"github.com/tidecal/server/internal/metrics"
)

type AuthHandler struct {
	Auth          *auth.Service
	Users         *users.Service
	Env           string
	SecureCookies bool
}

func NewAuthHandler(authService *auth.Service, userService *users.Service, env string, secureCookies bool) *AuthHandler {
	return &AuthHandler{Auth: authService, Users: userService, Env: env, SecureCookies: secureCookies}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username  string `json:"username"`
	ExpiresAt string `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, h.Env)
		return
	}

	session, err := h.Auth.Login(req.Username, req.Password)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		if errors.Is(err, auth.ErrInvalidCredentials) {
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Invalid credentials", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Login failed", err, h.Env)
		return
	}

	// The user row backs event ownership and the profile picture.
	if err := h.Users.EnsureUser(r.Context(), session.Username); err != nil {
		h.Auth.Logout(session.Token)
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Login failed", err, h.Env)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	metrics.SessionsActive.Set(float64(h.Auth.Active()))

	middleware.SetSessionCookie(w, session, h.SecureCookies)
	writeJSON(w, http.StatusOK, loginResponse{
		Username:  session.Username,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Logout is idempotent: a missing or unknown cookie still responds 204.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		h.Auth.Logout(cookie.Value)
	}
	metrics.SessionsActive.Set(float64(h.Auth.Active()))
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
