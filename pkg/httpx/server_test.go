package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var got ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal error body %q: %v", w.Body.String(), err)
	}
	return got.Error
}

func TestNewServer(t *testing.T) {
	logger := discard()
	s := NewServer(":8080", nil, logger)

	if s.server.Addr != ":8080" {
		t.Errorf("Addr = %q, want %q", s.server.Addr, ":8080")
	}
	if s.logger != logger {
		t.Error("logger not set")
	}

	timeouts := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"ReadHeaderTimeout", s.server.ReadHeaderTimeout, 10 * time.Second},
		{"ReadTimeout", s.server.ReadTimeout, 30 * time.Second},
		{"WriteTimeout", s.server.WriteTimeout, 30 * time.Second},
		{"IdleTimeout", s.server.IdleTimeout, 60 * time.Second},
	}
	for _, tt := range timeouts {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if NewServer(":8080", nil, nil).logger == nil {
		t.Error("nil logger not replaced by default")
	}
}

func TestServer_StartStop(t *testing.T) {
	s := NewServer("localhost:0", http.NewServeMux(), discard())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()
	time.Sleep(50 * time.Millisecond)

	if err := s.Stop(5 * time.Second); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := <-errCh; err != nil {
		t.Errorf("Start() error = %v", err)
	}
}

func TestWriteJSON(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusNotFound} {
		w := httptest.NewRecorder()
		if err := WriteJSON(w, status, map[string]int{"windows": 3}); err != nil {
			t.Fatalf("WriteJSON() error = %v", err)
		}
		if w.Code != status {
			t.Errorf("status = %d, want %d", w.Code, status)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		var got map[string]int
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || got["windows"] != 3 {
			t.Errorf("body = %q, err %v", w.Body.String(), err)
		}
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusBadRequest, errors.New("bad window length"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if got := decodeError(t, w); got != "bad window length" {
		t.Errorf("error = %q, want %q", got, "bad window length")
	}
}

func TestHealthHandlers(t *testing.T) {
	tests := []struct {
		name    string
		handler http.Handler
		status  int
		body    string
	}{
		{"plain", HealthHandler(), http.StatusOK, "OK"},
		{"passing check", HealthHandlerWithCheck(func() error { return nil }), http.StatusOK, "OK"},
		{"failing check", HealthHandlerWithCheck(func() error { return errors.New("store down") }), http.StatusServiceUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
			}
			if tt.status != http.StatusOK {
				if got := decodeError(t, w); got != "store down" {
					t.Errorf("error = %q, want %q", got, "store down")
				}
			}
		})
	}
}

func TestLoggingMiddleware(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError} {
		var buf bytes.Buffer
		handler := LoggingMiddleware(slog.New(slog.NewTextHandler(&buf, nil)))(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}),
		)

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/features/current", nil))

		for _, field := range []string{"HTTP request", "method=GET", "path=/features/current", fmt.Sprintf("status=%d", status), "duration_ms"} {
			if !strings.Contains(buf.String(), field) {
				t.Errorf("log output missing %q: %s", field, buf.String())
			}
		}
	}
}

func TestLoggingMiddleware_DefaultStatus(t *testing.T) {
	var buf bytes.Buffer
	handler := LoggingMiddleware(slog.New(slog.NewTextHandler(&buf, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("body only"))
		}),
	)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "status=200") {
		t.Errorf("log should contain status=200: %s", buf.String())
	}

	// nil logger falls back to the default one
	w := httptest.NewRecorder()
	LoggingMiddleware(nil)(http.NotFoundHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	var buf bytes.Buffer
	handler := RecoveryMiddleware(slog.New(slog.NewTextHandler(&buf, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("calculator exploded")
		}),
	)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if got := decodeError(t, w); got != "internal server error" {
		t.Errorf("error = %q, want %q", got, "internal server error")
	}
	for _, want := range []string{"panic recovered", "calculator exploded"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log output missing %q: %s", want, buf.String())
		}
	}

	w = httptest.NewRecorder()
	RecoveryMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fine"))
	})).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Body.String() != "fine" {
		t.Errorf("body = %q, want %q", w.Body.String(), "fine")
	}
}

func TestResponseWriter_WriteHeader(t *testing.T) {
	w := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusNotFound)
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("recorder Code = %d, want %d", w.Code, http.StatusNotFound)
	}
}
