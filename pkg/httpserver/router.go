package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OpsRoutes describes the operational endpoints.
type OpsRoutes struct {
	Logger *slog.Logger
	// Services are reported by /readyz under their map key.
	Services      map[string]HealthReporter
	HealthTimeout time.Duration
	// Gatherer backs /metrics. Nil omits the endpoint.
	Gatherer prometheus.Gatherer
}

// NewOpsRouter mounts /healthz, /readyz and, with a Gatherer, /metrics.
func NewOpsRouter(cfg OpsRoutes) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Get("/healthz", LivenessHandler())
	r.Get("/readyz", ReadinessHandler(cfg.Logger, cfg.HealthTimeout, cfg.Services))
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}
