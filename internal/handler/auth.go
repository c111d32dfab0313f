package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/paragonmech/leadbook/internal/auth"
	"github.com/paragonmech/leadbook/internal/middleware"
)

type AuthHandler struct {
	service      *auth.Service
	secureCookie bool
	logger       *slog.Logger
}

func NewAuthHandler(service *auth.Service, secureCookie bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, secureCookie: secureCookie, logger: logger}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	session, err := h.service.Signup(req.Name, req.Email, req.Password)
	if err != nil {
		h.writeAuthError(w, "signup", err)
		return
	}

	h.setSessionCookie(w, session.Token)
	writeJSON(w, http.StatusCreated, session)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	session, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		h.writeAuthError(w, "login", err)
		return
	}

	h.setSessionCookie(w, session.Token)
	writeJSON(w, http.StatusOK, session)
}

type tokenRequest struct {
	Credential string `json:"credential"`
}

// GoogleLogin exchanges a verified identity token for a session, creating the
// account on first sight and linking the provider subject to an existing
// account that shares the email.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Credential == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "credential is required"})
		return
	}

	session, err := h.service.LoginWithToken(req.Credential)
	if err != nil {
		h.writeAuthError(w, "google login", err)
		return
	}

	h.setSessionCookie(w, session.Token)
	writeJSON(w, http.StatusOK, session)
}

// Logout destroys the server-side session and clears the cookie. It succeeds
// even when the session is already gone.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.service.Logout(cookie.Value); err != nil {
			h.logger.Error("logout", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to log out"})
			return
		}
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the identity of the active session. RequireAuth has already
// resolved the cookie, so a missing context is a server bug, not a 401.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sc, ok := auth.FromContext(r.Context())
	if !ok {
		h.logger.Error("me handler reached without session context")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "no session"})
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (h *AuthHandler) writeAuthError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, auth.ErrPasswordTooShort):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, auth.ErrDuplicateAccount):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "an account with this email already exists"})
	case errors.Is(err, auth.ErrAccountNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no account found for this email"})
	case errors.Is(err, auth.ErrInvalidCredential):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
	case errors.Is(err, auth.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid identity token"})
	default:
		h.logger.Error(op, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   90 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
