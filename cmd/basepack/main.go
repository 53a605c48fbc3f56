// Command basepack builds the configured email, notification, messaging,
// cache and queue services from the environment and serves their health and
// metrics over HTTP.
//
// Usage:
//
//	basepack [serve|check|version]
//
// serve is the default. check builds every service, prints the readiness
// report and exits non-zero when a provider is unhealthy.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/praveentcom/basepack-sub001/pkg/config"
	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/httpserver"
	"github.com/praveentcom/basepack-sub001/pkg/logger"
)

// Set via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitSuccess       = 0
	exitRuntimeError  = 1
	exitInvalidConfig = 2
	exitUnhealthy     = 3
)

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		os.Exit(run(serve))
	case "check":
		os.Exit(run(check))
	case "version":
		fmt.Printf("basepack %s (%s)\n", version, commit)
		os.Exit(exitSuccess)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\nusage: basepack [serve|check|version]\n", cmd)
		os.Exit(exitRuntimeError)
	}
}

func run(fn func(ctx context.Context, cfg appConfig, a *app) int) int {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return exitInvalidConfig
	}
	log, err := newLogger(cfg, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return exitInvalidConfig
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "failed to build services", logger.Error(err))
		return exitRuntimeError
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("failed to close services", logger.Error(err))
		}
	}()

	return fn(ctx, cfg, a)
}

func serve(ctx context.Context, cfg appConfig, a *app) int {
	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(a.log))
	if err := srv.Run(ctx, a.router(cfg)); err != nil {
		a.log.ErrorContext(ctx, "http server failed", logger.Error(err))
		return exitRuntimeError
	}
	return exitSuccess
}

func check(ctx context.Context, _ appConfig, a *app) int {
	report := make(map[string]map[string]failover.HealthInfo, len(a.health))
	healthy := true
	for name, svc := range a.health {
		report[name] = svc.Health(ctx)
		healthy = healthy && failover.Healthy(report[name])
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)

	if !healthy {
		return exitUnhealthy
	}
	return exitSuccess
}
