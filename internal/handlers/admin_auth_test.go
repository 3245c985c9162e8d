package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/madina-markt/api/internal/platform/session"
	"github.com/madina-markt/api/internal/services"
)

type stubAuthService struct {
	err      error
	attempts int
	lastKey  string
	lastPass string
}

func (s *stubAuthService) Login(ctx context.Context, clientKey, password string) error {
	s.attempts++
	s.lastKey = clientKey
	s.lastPass = password
	return s.err
}

func (s *stubAuthService) LockoutRemaining(clientKey string) (int, bool) {
	return s.attempts, s.err != nil
}

func newSessionManager(t *testing.T) *session.Manager {
	t.Helper()
	mgr, err := session.NewManager(session.Config{
		HashKey: []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return mgr
}

func newAuthMux(auth services.AuthService, sessions *session.Manager, protected http.HandlerFunc) (http.Handler, *AdminAuthHandlers) {
	h := NewAdminAuthHandlers(auth, sessions)
	mux := NewRouter(WithAdminRoutes(func(r chi.Router) {
		h.Routes(r)
		r.Group(func(pr chi.Router) {
			pr.Use(h.RequireAdmin)
			if protected != nil {
				pr.Get("/secure", protected)
			}
		})
	}))
	return mux, h
}

func TestAdminLoginEstablishesSession(t *testing.T) {
	auth := &stubAuthService{}
	sessions := newSessionManager(t)
	mux, _ := newAuthMux(auth, sessions, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"password":"hunter2"}`))
	req.RemoteAddr = "203.0.113.7:51422"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if auth.lastPass != "hunter2" {
		t.Fatalf("expected password forwarded, got %q", auth.lastPass)
	}
	if auth.lastKey != "203.0.113.7" {
		t.Fatalf("expected client key from remote addr, got %q", auth.lastKey)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie on successful login")
	}
}

func TestAdminLoginRejectsWrongPassword(t *testing.T) {
	auth := &stubAuthService{err: services.ErrAuthInvalidCredentials}
	mux, _ := newAuthMux(auth, newSessionManager(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"password":"nope"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("expected no session cookie on failed login")
	}
}

func TestAdminLoginLockedMapsTo429(t *testing.T) {
	auth := &stubAuthService{err: services.ErrAuthLocked}
	mux, _ := newAuthMux(auth, newSessionManager(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"password":"nope"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRequireAdminRejectsAnonymous(t *testing.T) {
	auth := &stubAuthService{}
	mux, _ := newAuthMux(auth, newSessionManager(t), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/secure", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous request, got %d", rec.Code)
	}
}

func TestRequireAdminAcceptsLoginSession(t *testing.T) {
	auth := &stubAuthService{}
	sessions := newSessionManager(t)
	reached := false
	mux, _ := newAuthMux(auth, sessions, func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})

	loginReq := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"password":"hunter2"}`))
	loginRec := httptest.NewRecorder()
	mux.ServeHTTP(loginRec, loginReq)
	if loginRec.Code != http.StatusOK {
		t.Fatalf("login failed: %d", loginRec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/secure", nil)
	for _, c := range loginRec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with session, got %d: %s", rec.Code, rec.Body.String())
	}
	if !reached {
		t.Fatal("expected protected handler to run")
	}
}

func TestAdminLogoutClearsSession(t *testing.T) {
	auth := &stubAuthService{}
	sessions := newSessionManager(t)
	mux, _ := newAuthMux(auth, sessions, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/logout", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected expired session cookie")
	}
	if cookies[0].MaxAge >= 0 && !cookies[0].Expires.IsZero() && cookies[0].Expires.Year() > 2000 {
		t.Fatalf("expected expired cookie, got %+v", cookies[0])
	}
}

func TestAdminLoginRateLimited(t *testing.T) {
	auth := &stubAuthService{err: services.ErrAuthInvalidCredentials}
	mux, _ := newAuthMux(auth, newSessionManager(t), nil)

	var last int
	for i := 0; i < 25; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"password":"nope"}`))
		req.RemoteAddr = "198.51.100.4:40000"
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after hammering login, got %d", last)
	}
	if auth.attempts > 20 {
		t.Fatalf("expected limiter to stop requests at 20, saw %d attempts", auth.attempts)
	}
}
