package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghuser/unitprice/pkg/httpx"
)

type stubChecker struct{ err error }

func (s *stubChecker) Ping(_ context.Context) error { return s.err }

func serveHealth(t *testing.T, checks ...httpx.HealthCheck) (int, map[string]string) {
	t.Helper()
	rr := httptest.NewRecorder()
	httpx.HealthHandler(checks...).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rr.Code, resp
}

func TestHealthHandler(t *testing.T) {
	down := errors.New("conn refused")

	tests := []struct {
		name       string
		checks     []httpx.HealthCheck
		wantStatus int
		want       map[string]string
	}{
		{
			name: "all healthy",
			checks: []httpx.HealthCheck{
				{Name: "database", Checker: &stubChecker{}},
				{Name: "redis", Checker: &stubChecker{}},
				{Name: "event_bus", Checker: &stubChecker{}},
			},
			wantStatus: http.StatusOK,
			want:       map[string]string{"status": "ok", "database": "ok", "redis": "ok", "event_bus": "ok"},
		},
		{
			name: "database down",
			checks: []httpx.HealthCheck{
				{Name: "database", Checker: &stubChecker{err: down}},
				{Name: "redis", Checker: &stubChecker{}},
			},
			wantStatus: http.StatusServiceUnavailable,
			want:       map[string]string{"status": "degraded", "database": "unreachable", "redis": "ok"},
		},
		{
			name: "shell cache down",
			checks: []httpx.HealthCheck{
				{Name: "redis", Checker: &stubChecker{}},
				{Name: "shell_cache", Checker: &stubChecker{err: down}},
			},
			wantStatus: http.StatusServiceUnavailable,
			want:       map[string]string{"status": "degraded", "redis": "ok", "shell_cache": "unreachable"},
		},
		{
			name: "all down",
			checks: []httpx.HealthCheck{
				{Name: "database", Checker: &stubChecker{err: down}},
				{Name: "redis", Checker: &stubChecker{err: down}},
				{Name: "event_bus", Checker: &stubChecker{err: down}},
			},
			wantStatus: http.StatusServiceUnavailable,
			want:       map[string]string{"status": "degraded", "database": "unreachable", "redis": "unreachable", "event_bus": "unreachable"},
		},
		{
			name:       "nil checker is skipped",
			checks:     []httpx.HealthCheck{{Name: "database", Checker: nil}},
			wantStatus: http.StatusOK,
			want:       map[string]string{"status": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := serveHealth(t, tt.checks...)
			if code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, code)
			}
			if len(resp) != len(tt.want) {
				t.Fatalf("unexpected response: %+v", resp)
			}
			for k, v := range tt.want {
				if resp[k] != v {
					t.Errorf("%s: got %q, want %q", k, resp[k], v)
				}
			}
		})
	}
}

func TestHealthHandler_ContentType(t *testing.T) {
	rr := httptest.NewRecorder()
	httpx.HealthHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json; charset=utf-8")
	}
}
