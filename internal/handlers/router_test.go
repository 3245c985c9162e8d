package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouterUnknownRouteReturnsJSONEnvelope(t *testing.T) {
	mux := NewRouter()

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("expected JSON error envelope: %v", err)
	}
	if payload.Error != errorNotFoundCode {
		t.Fatalf("expected %q, got %q", errorNotFoundCode, payload.Error)
	}
}

func TestRouterUnregisteredGroupsReturnNotImplemented(t *testing.T) {
	mux := NewRouter()

	for _, path := range []string{
		"/api/v1/public/products",
		"/api/v1/cart",
		"/api/v1/cart:toggle",
		"/api/v1/admin/products",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotImplemented {
			t.Fatalf("GET %s: expected 501, got %d", path, rec.Code)
		}
	}
}

func TestRouterServesHealthEndpoints(t *testing.T) {
	mux := NewRouter()

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, rec.Code)
		}
	}
}
