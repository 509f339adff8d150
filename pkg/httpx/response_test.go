package httpx_test

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghuser/unitprice/pkg/httpx"
)

func TestJSON_Headers(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": "abc", "unit_price": 4.0})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	for header, want := range map[string]string{
		"Content-Type":           "application/json; charset=utf-8",
		"X-Content-Type-Options": "nosniff",
		"Cache-Control":          "no-store",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s: got %q, want %q", header, got, want)
		}
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["id"] != "abc" || body["unit_price"] != 4.0 {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestJSON_UnencodableValue(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSON(w, http.StatusOK, map[string]float64{"unit_price": math.Inf(1)})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for an unencodable body, got %d", w.Code)
	}
	var body httpx.ErrorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("expected a complete JSON error body: %v", err)
	}
	if body.Error != "Internal Server Error" {
		t.Fatalf("unexpected error message: %q", body.Error)
	}
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSONError(w, http.StatusBadRequest, "invalid identifier")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body httpx.ErrorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body.Error != "invalid identifier" {
		t.Fatalf("unexpected error message: %q", body.Error)
	}
}

func TestClientMessage(t *testing.T) {
	err := errors.New("comparison not found")
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusNotFound, "comparison not found"},
		{http.StatusUnprocessableEntity, "comparison not found"},
		{http.StatusInternalServerError, "Internal Server Error"},
		{http.StatusBadGateway, "Bad Gateway"},
	}
	for _, tt := range tests {
		if got := httpx.ClientMessage(err, tt.status); got != tt.want {
			t.Errorf("ClientMessage(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
