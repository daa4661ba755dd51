// Package httpapi wires the chi HTTP router that serves the dashboard's
// WebSocket endpoint alongside health and registry-stats routes, grounded
// on odin_wind/src/server.rs's axum Router (keeping the teacher's preferred
// chi muxer rather than introducing axum's Go analogue).
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/odin-fire/odin-go/internal/domain/registry"
)

// NewRouter builds the top-level mux: liveness/readiness probes, registry
// stats, and the WebSocket delivery endpoint.
func NewRouter(hub registry.Hubber, wsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(hub.Stats())
	})
	r.Get("/ws", wsHandler.ServeHTTP)

	return r
}
