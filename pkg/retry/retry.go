package retry

import (
	"context"
	"time"
)

// Do runs op until it succeeds, the retry budget is spent, or it fails with
// an error IsRetryable rejects. The last error is returned as-is, never wrapped.
//
// Between attempts Do waits min(MinTimeout*Factor^attempt, MaxTimeout) plus up
// to 10% jitter. The wait is the only suspension point besides op itself and
// ends early with ctx.Err() when ctx is cancelled.
func Do[T any](ctx context.Context, op func(context.Context) (T, error), opts Options) (T, error) {
	opts = opts.normalized()
	backoff := opts.Backoff()

	var zero T
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		if attempt == opts.Retries || !IsRetryable(err) {
			return zero, err
		}

		delay := backoff.NextInterval(attempt + 1)
		if opts.OnRetry != nil {
			opts.OnRetry(err, attempt+1)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	// Unreachable: the loop always returns on its final iteration.
	return zero, nil
}

// DoErr is Do for operations that only return an error.
func DoErr(ctx context.Context, op func(context.Context) error, opts Options) error {
	_, err := Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, opts)
	return err
}
