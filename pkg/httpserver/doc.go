// Package httpserver runs the operational HTTP endpoints with graceful
// shutdown.
//
// Server.Run blocks until its context is cancelled or SIGINT/SIGTERM arrives
// and then drains in-flight requests within the shutdown timeout. Listen
// errors are wrapped with ErrStart and shutdown errors with ErrShutdown.
//
// NewOpsRouter mounts:
//
//	GET /healthz  liveness, always 200
//	GET /readyz   per-service provider health as JSON, 503 if any provider is unhealthy
//	GET /metrics  Prometheus exposition
//
// Example:
//
//	router := httpserver.NewOpsRouter(httpserver.OpsRoutes{
//		Services: map[string]httpserver.HealthReporter{"email": emailSvc},
//		Gatherer: registry,
//	})
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	err := srv.Run(ctx, router)
package httpserver
