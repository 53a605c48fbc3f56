package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/logger"
)

// HealthReporter is implemented by every capability service.
type HealthReporter interface {
	Health(ctx context.Context) map[string]failover.HealthInfo
}

// ReadinessReport is the /readyz response body.
type ReadinessReport struct {
	Status   string                                    `json:"status"`
	Services map[string]map[string]failover.HealthInfo `json:"services"`
}

const (
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// LivenessHandler always answers 200 ALIVE.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	}
}

// ReadinessHandler checks every service and answers 200 when all providers
// are healthy, 503 otherwise. A non-positive timeout disables the deadline.
func ReadinessHandler(log *slog.Logger, timeout time.Duration, services map[string]HealthReporter) http.HandlerFunc {
	log = logger.OrNop(log)
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	slices.Sort(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		report := ReadinessReport{Status: StatusReady, Services: make(map[string]map[string]failover.HealthInfo, len(services))}
		for _, name := range names {
			h := services[name].Health(ctx)
			report.Services[name] = h
			if !failover.Healthy(h) {
				report.Status = StatusNotReady
				log.WarnContext(ctx, "readiness check failed", logger.Service(name))
			}
		}

		status := http.StatusOK
		if report.Status != StatusReady {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(report); err != nil {
			log.ErrorContext(ctx, "failed to encode readiness report", logger.Error(err))
		}
	}
}
