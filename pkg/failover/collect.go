package failover

import (
	"context"
	"errors"

	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// SendFunc delivers a single message and returns the provider's message id.
type SendFunc[M any] func(ctx context.Context, msg M) (string, error)

// Collect sends messages one by one and returns a Result per message.
//
// Adapters whose API takes one message per call use it to implement
// Provider.Send. When every message failed with a retryable error the
// provider is considered down: Collect returns the joined errors instead of
// results so the caller retries or fails over the whole batch.
func Collect[M any](ctx context.Context, provider string, messages []M, send SendFunc[M]) ([]Result, error) {
	results := make([]Result, len(messages))
	errs := make([]error, 0, len(messages))
	allRetryable := true

	for i, msg := range messages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, err := send(ctx, msg)
		if err != nil {
			results[i] = Failed(provider, err)
			errs = append(errs, err)
			allRetryable = allRetryable && retry.IsRetryable(err)
			continue
		}
		results[i] = Succeeded(provider, id)
	}

	if len(messages) > 0 && len(errs) == len(messages) && allRetryable {
		if len(errs) == 1 {
			return nil, errs[0]
		}
		return nil, errors.Join(errs...)
	}
	return results, nil
}
