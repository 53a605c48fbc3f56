package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// Connect establishes a connection to a Redis server using the provided configuration.
// A failed ping is retried up to ConnectRetries times with exponential backoff
// starting at RetryInterval.
//
// Returns:
//   - *redis.Client: A connected Redis client if successful
//   - error: ErrEmptyConnectionURL, ErrFailedToParseRedisConnString if the
//     connection URL is invalid, ErrRedisNotReady if every ping failed
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyConnectionURL
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = time.Second
	}

	client := redis.NewClient(opts)
	err = retry.DoErr(ctx, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}, retry.Options{
		Retries:    max(cfg.ConnectRetries, 0),
		MinTimeout: interval,
		MaxTimeout: 8 * interval,
		Factor:     2,
	})
	if err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrRedisNotReady, err)
	}
	return client, nil
}
