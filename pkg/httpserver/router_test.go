package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/httpserver"
)

type staticHealth map[string]failover.HealthInfo

func (s staticHealth) Health(context.Context) map[string]failover.HealthInfo { return s }

func TestOpsRouter_Healthz(t *testing.T) {
	t.Parallel()

	h := httpserver.NewOpsRouter(httpserver.OpsRoutes{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ALIVE", rec.Body.String())
}

func TestOpsRouter_Readyz(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		services   map[string]httpserver.HealthReporter
		wantCode   int
		wantStatus string
	}{
		{
			name:       "no services",
			services:   nil,
			wantCode:   http.StatusOK,
			wantStatus: httpserver.StatusReady,
		},
		{
			name: "all healthy",
			services: map[string]httpserver.HealthReporter{
				"email": staticHealth{"ses": {OK: true}, "sendgrid": {OK: true, Message: "health check not supported"}},
				"cache": staticHealth{"redis": {OK: true, Message: "PONG"}},
			},
			wantCode:   http.StatusOK,
			wantStatus: httpserver.StatusReady,
		},
		{
			name: "one provider down",
			services: map[string]httpserver.HealthReporter{
				"email": staticHealth{"ses": {OK: true}},
				"queue": staticHealth{"sqs": {OK: false, Message: "throttled"}},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: httpserver.StatusNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := httpserver.NewOpsRouter(httpserver.OpsRoutes{Services: tt.services, HealthTimeout: time.Second})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var report httpserver.ReadinessReport
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
			assert.Equal(t, tt.wantStatus, report.Status)
			assert.Len(t, report.Services, len(tt.services))
		})
	}
}

func TestOpsRouter_Metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "basepack_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	h := httpserver.NewOpsRouter(httpserver.OpsRoutes{Gatherer: reg})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "basepack_test_total 1"))

	rec = httptest.NewRecorder()
	httpserver.NewOpsRouter(httpserver.OpsRoutes{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
