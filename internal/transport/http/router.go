// Package httptransport assembles the HTTP surface: global middleware,
// health and metrics endpoints, and the draw routes.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	drawhandler "luckydraw/internal/draw/handler"
	"luckydraw/internal/platform/middleware"
	"luckydraw/pkg/platform/middleware/requesttime"
)

// Health reports readiness of a backing dependency.
type Health func(w http.ResponseWriter, r *http.Request)

// NewRouter wires all endpoints. Every request gets a request ID and a pinned
// request time before anything else runs.
func NewRouter(draws *drawhandler.Handler, logger *slog.Logger, health Health) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	r.Get("/healthz", http.HandlerFunc(health))
	r.Handle("/metrics", promhttp.Handler())

	draws.Register(r)
	return r
}
