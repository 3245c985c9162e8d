package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "github.com/madina-markt/api/internal/domain"
	"github.com/madina-markt/api/internal/services"
)

type stubSystemService struct {
	report domain.SystemHealthReport
	err    error
}

func (s *stubSystemService) HealthReport(ctx context.Context) (domain.SystemHealthReport, error) {
	return s.report, s.err
}

func TestHealthzReportsBuildMetadata(t *testing.T) {
	started := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	h := NewHealthHandlers(
		WithHealthBuildInfo(services.BuildInfo{
			Version:     "1.4.0",
			CommitSHA:   "abc1234",
			Environment: "production",
			StartedAt:   started,
		}),
		WithHealthClock(func() time.Time { return started.Add(90 * time.Minute) }),
	)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Healthz(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if payload["version"] != "1.4.0" || payload["commitSha"] != "abc1234" {
		t.Fatalf("expected build metadata, got %v", payload)
	}
	if payload["uptime"] != "1h30m0s" {
		t.Fatalf("expected uptime 1h30m0s, got %v", payload["uptime"])
	}
}

func TestReadyzWithoutSystemServiceIsOK(t *testing.T) {
	h := NewHealthHandlers()

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	h.Readyz(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyzDegradedReturns503(t *testing.T) {
	system := &stubSystemService{report: domain.SystemHealthReport{
		Status:      domain.HealthStatusDegraded,
		GeneratedAt: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
		Checks: map[string]domain.SystemHealthCheck{
			"firestore": {Status: domain.HealthStatusError, Error: "deadline exceeded"},
			"storage":   {Status: domain.HealthStatusOK, Latency: 12 * time.Millisecond},
		},
	}}
	h := NewHealthHandlers(WithHealthSystemService(system))

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	h.Readyz(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var payload struct {
		Status  string                    `json:"status"`
		Checks  map[string]map[string]any `json:"checks"`
		Details []string                  `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if payload.Status != string(domain.HealthStatusDegraded) {
		t.Fatalf("expected degraded status, got %q", payload.Status)
	}
	if len(payload.Details) != 1 || payload.Details[0] != "firestore: deadline exceeded" {
		t.Fatalf("unexpected details %v", payload.Details)
	}
	if payload.Checks["storage"]["latencyMs"] != float64(12) {
		t.Fatalf("expected storage latency, got %v", payload.Checks["storage"])
	}
}

func TestReadyzReportFailureReturns503(t *testing.T) {
	system := &stubSystemService{err: context.DeadlineExceeded}
	h := NewHealthHandlers(WithHealthSystemService(system))

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	h.Readyz(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
