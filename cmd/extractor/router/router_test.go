package router

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/HatiCode/fdynamics/pkg/client"
	"github.com/HatiCode/fdynamics/pkg/extraction"
	"github.com/HatiCode/fdynamics/pkg/storage"
)

func setup(t *testing.T, generatedAt time.Time) http.Handler {
	t.Helper()
	store := storage.NewMemoryStore()
	table := extraction.NewTable([]any{"a", "b"})
	table.Columns = []string{"value||mean@window_5__maximum"}
	table.Values["value||mean@window_5__maximum"] = []float64{3, 8}
	err := store.Put(context.Background(), storage.Result{
		Source:        "cpu",
		GeneratedAt:   generatedAt,
		WindowLengths: []int{5},
		Features:      table,
	})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	return SetupRoutes(store, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHealthEndpoint(t *testing.T) {
	w := get(setup(t, time.Now()), "/healthz")

	if w.Code != http.StatusOK {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusOK)
	}
	if body := w.Body.String(); body != "OK" {
		t.Errorf("body = %q, want %q", body, "OK")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	w := get(setup(t, time.Now()), "/metrics")

	if w.Code != http.StatusOK {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestGetResult(t *testing.T) {
	w := get(setup(t, time.Now()), "/features/current?source=cpu")

	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d (%s)", w.Code, http.StatusOK, w.Body.String())
	}
	if w.Header().Get(client.StaleHeader) != "" {
		t.Errorf("fresh result should not carry %s", client.StaleHeader)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var got storage.Result
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Source != "cpu" {
		t.Errorf("Source = %q, want cpu", got.Source)
	}
	if got.Features == nil || len(got.Features.Columns) != 1 {
		t.Fatalf("Features = %+v, want one column", got.Features)
	}
	if v := got.Features.Values["value||mean@window_5__maximum"]; len(v) != 2 || v[1] != 8 {
		t.Errorf("values = %v, want [3 8]", v)
	}
}

func TestGetResult_Stale(t *testing.T) {
	w := get(setup(t, time.Now().Add(-time.Hour)), "/features/current?source=cpu")

	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get(client.StaleHeader); got != "true" {
		t.Errorf("%s = %q, want true", client.StaleHeader, got)
	}
}

func TestGetResult_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"missing source", "/features/current", http.StatusBadRequest},
		{"unknown source", "/features/current?source=mem", http.StatusNotFound},
	}

	h := setup(t, time.Now())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(h, tt.target)
			if w.Code != tt.want {
				t.Errorf("status code = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestGetResult_MethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	setup(t, time.Now()).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/features/current?source=cpu", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}
