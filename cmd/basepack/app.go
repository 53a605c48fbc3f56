package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/praveentcom/basepack-sub001/pkg/cache"
	"github.com/praveentcom/basepack-sub001/pkg/email"
	"github.com/praveentcom/basepack-sub001/pkg/httpserver"
	"github.com/praveentcom/basepack-sub001/pkg/logger"
	"github.com/praveentcom/basepack-sub001/pkg/messaging"
	"github.com/praveentcom/basepack-sub001/pkg/metrics"
	"github.com/praveentcom/basepack-sub001/pkg/notification"
	"github.com/praveentcom/basepack-sub001/pkg/queue"
)

// Service names accepted in BASEPACK_SERVICES.
const (
	svcEmail        = "email"
	svcNotification = "notification"
	svcMessaging    = "messaging"
	svcCache        = "cache"
	svcQueue        = "queue"
)

var knownServices = []string{svcCache, svcEmail, svcMessaging, svcNotification, svcQueue}

var ErrUnknownService = errors.New("basepack: unknown service")

type appConfig struct {
	ServiceName string   `env:"SERVICE_NAME" envDefault:"basepack"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string   `env:"LOG_FORMAT" envDefault:"json"`
	Services    []string `env:"BASEPACK_SERVICES" envSeparator:"," envDefault:"email,cache,queue"`

	HTTP         httpserver.Config
	Email        email.Config
	Notification notification.Config
	Messaging    messaging.Config
	Cache        cache.Config
	Queue        queue.Config
}

func (c appConfig) enabled() ([]string, error) {
	var out []string
	for _, s := range c.Services {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || slices.Contains(out, s) {
			continue
		}
		if !slices.Contains(knownServices, s) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownService, s)
		}
		out = append(out, s)
	}
	return out, nil
}

func newLogger(cfg appConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	format := logger.Format(strings.ToLower(cfg.LogFormat))
	if format != logger.FormatJSON && format != logger.FormatText {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}
	return logger.New(
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithOutput(w),
		logger.WithAttr(logger.Service(cfg.ServiceName)),
	), nil
}

// app holds every configured service.
type app struct {
	log      *slog.Logger
	registry *prometheus.Registry
	health   map[string]httpserver.HealthReporter
	closers  []io.Closer
}

// newApp builds the enabled services. Services already built are closed
// when a later one fails.
func newApp(ctx context.Context, cfg appConfig, log *slog.Logger) (*app, error) {
	enabled, err := cfg.enabled()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	sink := metrics.NewPrometheusSink(reg)

	a := &app{log: log, registry: reg, health: make(map[string]httpserver.HealthReporter, len(enabled))}
	add := func(name string, svc interface {
		httpserver.HealthReporter
		io.Closer
	}) {
		a.health[name] = svc
		a.closers = append(a.closers, svc)
		log.InfoContext(ctx, "service ready", logger.Component(name))
	}

	for _, name := range enabled {
		var err error
		switch name {
		case svcEmail:
			var svc *email.Service
			if svc, err = email.NewService(ctx, cfg.Email.ServiceConfig(), email.WithLogger(log), email.WithMetrics(sink)); err == nil {
				add(name, svc)
			}
		case svcNotification:
			var svc *notification.Service
			if svc, err = notification.NewService(ctx, cfg.Notification.ServiceConfig(), notification.WithLogger(log), notification.WithMetrics(sink)); err == nil {
				add(name, svc)
			}
		case svcMessaging:
			var svc *messaging.Service
			if svc, err = messaging.NewService(ctx, cfg.Messaging.ServiceConfig(), messaging.WithLogger(log), messaging.WithMetrics(sink)); err == nil {
				add(name, svc)
			}
		case svcCache:
			var svc *cache.Service
			if svc, err = cache.NewService(ctx, cfg.Cache.ServiceConfig(), cache.WithLogger(log), cache.WithMetrics(sink)); err == nil {
				add(name, svc)
			}
		case svcQueue:
			var svc *queue.Service
			if svc, err = queue.NewService(ctx, cfg.Queue.ServiceConfig(), queue.WithLogger(log), queue.WithMetrics(sink)); err == nil {
				add(name, svc)
			}
		}
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return a, nil
}

func (a *app) router(cfg appConfig) http.Handler {
	return httpserver.NewOpsRouter(httpserver.OpsRoutes{
		Logger:        a.log,
		Services:      a.health,
		HealthTimeout: cfg.HTTP.HealthTimeout,
		Gatherer:      a.registry,
	})
}

// Close closes services in reverse build order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
