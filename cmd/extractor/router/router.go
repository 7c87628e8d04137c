// Package router configures HTTP routes for the extractor's HTTP API.
//
// Routes configured:
//   - GET /features/current?source=<name> - Latest feature dynamics result
//   - GET /healthz - Health check endpoint (returns 200 OK)
//   - GET /metrics - Prometheus metrics endpoint
//
// Results older than the stale threshold carry an X-Fdynamics-Stale header.
package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HatiCode/fdynamics/pkg/client"
	"github.com/HatiCode/fdynamics/pkg/httpx"
	"github.com/HatiCode/fdynamics/pkg/storage"
)

// SetupRoutes configures HTTP endpoints for the extractor.
func SetupRoutes(store storage.Store, staleAfter time.Duration, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", httpx.HealthHandler())
	mux.HandleFunc("GET /features/current", handleGetResult(store, staleAfter, logger))
	mux.Handle("GET /metrics", promhttp.Handler())

	return httpx.RecoveryMiddleware(logger)(httpx.LoggingMiddleware(logger)(mux))
}

// handleGetResult returns a handler for GET /features/current?source=<name>.
func handleGetResult(store storage.Store, staleAfter time.Duration, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source := r.URL.Query().Get("source")
		if source == "" {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "source parameter required")
			return
		}

		result, found, err := store.GetLatest(r.Context(), source)
		if err != nil {
			logger.Error("failed to get result", "source", source, "error", err)
			httpx.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !found {
			httpx.WriteErrorMessage(w, http.StatusNotFound, fmt.Sprintf("result not found for source %q", source))
			return
		}

		if client.IsStale(result, staleAfter) {
			w.Header().Set(client.StaleHeader, "true")
		}

		if err := httpx.WriteJSON(w, http.StatusOK, result); err != nil {
			logger.Error("failed to write result", "source", source, "error", err)
		}
	}
}
