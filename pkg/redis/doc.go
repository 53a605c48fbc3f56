// Package redis connects to Redis for the cache and queue adapters.
//
// Connect parses a redis:// URL, pings the server and retries failed pings
// with exponential backoff until ConnectTimeout elapses:
//
//	client, err := redis.Connect(ctx, redis.Config{URL: "redis://localhost:6379/0"})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// Healthcheck wraps PING for readiness probes and ScanKeys lists keys with
// SCAN instead of the blocking KEYS command.
//
// Errors are sentinels joined with the driver error (errors.Join), so both
// errors.Is(err, redis.ErrRedisNotReady) and the underlying cause are
// available.
package redis
