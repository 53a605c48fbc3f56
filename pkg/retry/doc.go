// Package retry runs a single operation with bounded exponential backoff.
//
// Do retries only failures IsRetryable accepts: errors flagged Retryable(),
// errors carrying a retryable HTTP StatusCode(), timeouts, and errors whose
// text names a network, socket, lookup or rate-limit problem. Anything else
// stops the loop at once, leaving the remaining budget unused.
//
//	id, err := retry.Do(ctx, func(ctx context.Context) (string, error) {
//	    return client.Send(ctx, msg)
//	}, retry.Options{Retries: 2, MinTimeout: time.Second, MaxTimeout: 10 * time.Second, Factor: 2})
//
// Errors are returned exactly as op produced them so callers can inspect the
// provider's own error types.
package retry
