package failover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/praveentcom/basepack-sub001/pkg/logger"
)

var ErrUnknownProvider = errors.New("failover: unknown provider")

// Factory builds a provider from its configuration.
type Factory[M, C any] func(ctx context.Context, cfg C) (Provider[M], error)

// Registry maps provider names to factories. It is safe for concurrent use.
type Registry[M, C any] struct {
	mu        sync.RWMutex
	factories map[string]Factory[M, C]
}

// NewRegistry returns an empty registry.
func NewRegistry[M, C any]() *Registry[M, C] {
	return &Registry[M, C]{factories: make(map[string]Factory[M, C])}
}

// Register adds or replaces the factory for name.
func (r *Registry[M, C]) Register(name string, f Factory[M, C]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Names returns the registered provider names, sorted.
func (r *Registry[M, C]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Build resolves name and invokes its factory.
func (r *Registry[M, C]) Build(ctx context.Context, name string, cfg C) (Provider[M], error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return f(ctx, cfg)
}

// ChainSpec names the configs of a provider chain.
type ChainSpec[C any] struct {
	Primary C
	Backups []C
	// NameOf extracts the registry key from a config.
	NameOf func(C) string
	// Lenient skips backups that fail to build instead of failing the chain.
	Lenient bool
	Logger  *slog.Logger
}

// BuildChain builds the primary and every backup. In strict mode any failure
// closes what was already built and returns the error.
func (r *Registry[M, C]) BuildChain(ctx context.Context, spec ChainSpec[C]) (Provider[M], []Provider[M], error) {
	log := logger.OrNop(spec.Logger)

	primary, err := r.Build(ctx, spec.NameOf(spec.Primary), spec.Primary)
	if err != nil {
		return nil, nil, fmt.Errorf("primary provider %q: %w", spec.NameOf(spec.Primary), err)
	}

	backups := make([]Provider[M], 0, len(spec.Backups))
	for i, cfg := range spec.Backups {
		name := spec.NameOf(cfg)
		p, err := r.Build(ctx, name, cfg)
		if err == nil {
			backups = append(backups, p)
			continue
		}
		if spec.Lenient {
			log.WarnContext(ctx, "skipping backup provider",
				logger.Provider(name),
				slog.Int("index", i),
				logger.Error(err),
			)
			continue
		}
		closeAll(append([]Provider[M]{primary}, backups...))
		return nil, nil, fmt.Errorf("backup provider %q: %w", name, err)
	}
	return primary, backups, nil
}

func closeAll[M any](ps []Provider[M]) {
	for _, p := range ps {
		if c, ok := p.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}
}
