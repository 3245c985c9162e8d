package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/madina-markt/api/internal/platform/httpx"
	"github.com/madina-markt/api/internal/platform/session"
	"github.com/madina-markt/api/internal/services"
)

const maxLoginBodySize = 4 * 1024

// AdminAuthHandlers serves the password login and logout endpoints and owns
// the session-based admin gate.
type AdminAuthHandlers struct {
	auth     services.AuthService
	sessions *session.Manager
	limiter  *simpleRateLimiter
}

// NewAdminAuthHandlers constructs the admin auth handlers. The rate limiter
// shields the login endpoint before the auth service's lockout kicks in.
func NewAdminAuthHandlers(auth services.AuthService, sessions *session.Manager) *AdminAuthHandlers {
	return &AdminAuthHandlers{
		auth:     auth,
		sessions: sessions,
		limiter:  newSimpleRateLimiter(20, time.Minute, time.Now),
	}
}

// Routes wires login and logout onto the admin group. Login and logout stay
// outside RequireAdmin so an unauthenticated caller can reach them.
func (h *AdminAuthHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

type loginRequest struct {
	Password string `json:"password"`
}

func (h *AdminAuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := clientKey(r)

	if !h.limiter.Allow(key) {
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many login requests", http.StatusTooManyRequests))
		return
	}

	body, err := readLimitedBody(r, maxLoginBodySize)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}

	if err := h.auth.Login(ctx, key, req.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrAuthLocked):
			httpx.WriteError(ctx, w, httpx.NewError("locked", "too many failed attempts, try again later", http.StatusTooManyRequests))
		case errors.Is(err, services.ErrAuthInvalidCredentials):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_credentials", "invalid password", http.StatusUnauthorized))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("internal_error", "login failed", http.StatusInternalServerError))
		}
		return
	}

	sess := h.sessions.New()
	sess.SetAuthenticated(true)
	if err := h.sessions.Save(w, sess); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to establish session", http.StatusInternalServerError))
		return
	}

	writeJSONResponse(w, http.StatusOK, struct {
		Authenticated bool   `json:"authenticated"`
		ExpiresAt     string `json:"expiresAt"`
	}{Authenticated: true, ExpiresAt: sess.ExpiresAt().UTC().Format(time.RFC3339)})
}

func (h *AdminAuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w)
	writeJSONResponse(w, http.StatusOK, struct {
		Authenticated bool `json:"authenticated"`
	}{Authenticated: false})
}

// RequireAdmin rejects requests that do not carry an authenticated admin
// session. Expired and anonymous sessions both fail closed.
func (h *AdminAuthHandlers) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.sessions.Load(r)
		if err != nil {
			if errors.Is(err, session.ErrExpired) {
				h.sessions.Destroy(w)
				httpx.WriteError(r.Context(), w, httpx.NewError("session_expired", "session expired, log in again", http.StatusUnauthorized))
				return
			}
			httpx.WriteError(r.Context(), w, httpx.NewError("unauthorized", "authentication required", http.StatusUnauthorized))
			return
		}
		if sess == nil || !sess.Authenticated() {
			httpx.WriteError(r.Context(), w, httpx.NewError("unauthorized", "authentication required", http.StatusUnauthorized))
			return
		}
		// Re-save to slide the idle expiry window.
		_ = h.sessions.Save(w, sess)
		next.ServeHTTP(w, r)
	})
}
