package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ojpb2000/voice-chatbot-backend/internal/logger"
	authservice "github.com/ojpb2000/voice-chatbot-backend/internal/service/auth"
	"github.com/ojpb2000/voice-chatbot-backend/pkg/utils"
)

const (
	sessionCookieName   = "sessionId"
	sessionCookieMaxAge = 3600
)

// Handler exposes login, session-check, and logout over a single route.
type Handler struct {
	authSvc *authservice.Service
}

// New creates the auth handler.
func New(authSvc *authservice.Service) *Handler {
	return &Handler{authSvc: authSvc}
}

// RegisterRoutes mounts the auth endpoint. Unregistered methods get chi's
// default 405 response.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth", h.handleLogin)
	r.Get("/auth", h.handleCheck)
	r.Delete("/auth", h.handleLogout)
}

// handleLogin validates the demo credential and issues a session cookie.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.authSvc.Login(payload.Username, payload.Password)
	if err != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"message": "Invalid credentials",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	logger.Log.Printf("[auth] login for user=%s", session.Username)

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"user":    map[string]string{"username": session.Username},
	})
}

// handleCheck reports whether the session cookie still maps to a live session.
func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	session, ok := h.authSvc.Authenticate(sessionToken(r))
	if !ok {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"authenticated": false,
		})
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user":          map[string]string{"username": session.Username},
	})
}

// handleLogout drops the session and clears the cookie. Always succeeds so a
// stale cookie never strands the client.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.authSvc.Logout(sessionToken(r))

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logout successful",
	})
}

func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
