package failover

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/praveentcom/basepack-sub001/pkg/logger"
	"github.com/praveentcom/basepack-sub001/pkg/metrics"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// Orchestrator delivers messages through a primary provider and falls back
// to backups, in order, for whatever the previous provider did not deliver.
//
// Orchestrator holds no per-call state. Concurrent Send calls are safe as long
// as the providers themselves are safe for concurrent use.
type Orchestrator[M any] struct {
	primary Provider[M]
	backups []Provider[M]

	logger  *slog.Logger
	metrics metrics.Sink
	service string
}

// New builds an orchestrator over primary and the ordered backups.
func New[M any](primary Provider[M], backups []Provider[M], opts ...Option) (*Orchestrator[M], error) {
	if primary == nil {
		return nil, ErrNoProvider
	}
	for _, b := range backups {
		if b == nil {
			return nil, ErrNilBackup
		}
	}

	o := options{
		logger:  logger.Nop(),
		metrics: metrics.NoopSink{},
		service: "failover",
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Orchestrator[M]{
		primary: primary,
		backups: append([]Provider[M](nil), backups...),
		logger:  o.logger.With(logger.Service(o.service)),
		metrics: o.metrics,
		service: o.service,
	}, nil
}

// Primary returns the primary provider.
func (o *Orchestrator[M]) Primary() Provider[M] { return o.primary }

// Backups returns a copy of the backup chain.
func (o *Orchestrator[M]) Backups() []Provider[M] {
	return append([]Provider[M](nil), o.backups...)
}

// Providers returns the primary followed by the backups.
func (o *Orchestrator[M]) Providers() []Provider[M] {
	all := make([]Provider[M], 0, len(o.backups)+1)
	all = append(all, o.primary)
	return append(all, o.backups...)
}

// Send delivers messages and returns one Result per message in input order.
//
// Each provider in the chain gets its own retry budget and only sees the
// messages that are still undelivered. The chain stops at the first provider
// that leaves nothing unresolved.
//
// When the chain is exhausted:
//   - without backups, the partial results are returned, unless the primary
//     failed as a whole, in which case its error is returned unchanged;
//   - with backups, an *AggregateError listing every failure is returned.
func (o *Orchestrator[M]) Send(ctx context.Context, messages []M, opts retry.Options) ([]Result, error) {
	if len(messages) == 0 {
		return []Result{}, nil
	}

	results := make([]Result, len(messages))
	pending := make([]int, len(messages))
	for i := range pending {
		pending[i] = i
	}

	var (
		attempts  []Attempt
		lastThrow error
		returned  bool
	)

	chain := o.Providers()
	for step, p := range chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if step > 0 {
			prev := chain[step-1].Name()
			o.logger.InfoContext(ctx, "failing over to backup provider",
				logger.Provider(p.Name()),
				slog.String("from", prev),
				logger.MessageCount(len(pending)),
			)
			o.metrics.Failover(o.service, prev, p.Name(), len(pending))
		}

		subset := make([]M, len(pending))
		for i, idx := range pending {
			subset[i] = messages[idx]
		}

		start := time.Now()
		stepResults, err := o.sendWithRetry(ctx, p, subset, opts)
		elapsed := time.Since(start)

		if err != nil {
			// Nothing in the subset was delivered by this provider.
			lastThrow = err
			attempts = append(attempts, Attempt{Provider: p.Name(), Err: err})
			o.metrics.ProviderAttempt(o.service, p.Name(), metrics.OutcomeError, elapsed)
			o.logger.WarnContext(ctx, "provider send failed",
				logger.Provider(p.Name()),
				logger.MessageCount(len(subset)),
				logger.Duration(elapsed),
				logger.Error(err),
			)
			continue
		}

		returned = true
		stillPending := make([]int, 0, len(pending))
		for i, idx := range pending {
			r := withMetadata(stepResults[i].normalize(p.Name()), messages[idx])
			results[idx] = r
			if r.Success {
				continue
			}
			stillPending = append(stillPending, idx)
			attempts = append(attempts, Attempt{Provider: p.Name(), Err: errors.New(r.Error)})
		}

		delivered := len(pending) - len(stillPending)
		o.metrics.MessagesResolved(o.service, p.Name(), delivered)
		o.metrics.ProviderAttempt(o.service, p.Name(), outcome(delivered, len(stillPending)), elapsed)
		o.logger.DebugContext(ctx, "provider send completed",
			logger.Provider(p.Name()),
			slog.Int("delivered", delivered),
			slog.Int("failed", len(stillPending)),
			logger.Duration(elapsed),
		)

		pending = stillPending
		if len(pending) == 0 {
			return results, nil
		}
	}

	if len(o.backups) == 0 {
		if !returned {
			return nil, lastThrow
		}
		return results, nil
	}

	agg := &AggregateError{Attempts: attempts}
	o.logger.ErrorContext(ctx, "all providers failed",
		logger.MessageCount(len(pending)),
		logger.Error(agg),
	)
	return nil, agg
}

// sendWithRetry runs one provider step under the retry executor.
func (o *Orchestrator[M]) sendWithRetry(ctx context.Context, p Provider[M], subset []M, opts retry.Options) ([]Result, error) {
	userHook := opts.OnRetry
	opts.OnRetry = func(err error, attempt int) {
		o.metrics.RetryAttempt(o.service, p.Name())
		o.logger.DebugContext(ctx, "retrying provider send",
			logger.Provider(p.Name()),
			logger.Attempt(attempt),
			logger.Error(err),
		)
		if userHook != nil {
			userHook(err, attempt)
		}
	}

	return retry.Do(ctx, func(ctx context.Context) ([]Result, error) {
		res, err := p.Send(ctx, subset)
		if err != nil {
			return nil, err
		}
		if len(res) != len(subset) {
			return nil, ErrResultCountMismatch
		}
		return res, nil
	}, opts)
}

func outcome(delivered, failed int) string {
	switch {
	case failed == 0:
		return metrics.OutcomeSuccess
	case delivered == 0:
		return metrics.OutcomeFailed
	default:
		return metrics.OutcomePartial
	}
}

// Close closes every provider that implements io.Closer.
func (o *Orchestrator[M]) Close() error {
	var errs []error
	for _, p := range o.Providers() {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
