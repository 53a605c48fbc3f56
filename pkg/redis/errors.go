package redis

import "errors"

// Connection and health errors. Callers match them with errors.Is; the
// underlying go-redis error is joined alongside.
var (
	ErrEmptyConnectionURL           = errors.New("redis: connection URL is empty")
	ErrFailedToParseRedisConnString = errors.New("redis: cannot parse connection URL")
	ErrRedisNotReady                = errors.New("redis: server not ready before connect timeout")
	ErrHealthcheckFailed            = errors.New("redis: ping failed")
)
