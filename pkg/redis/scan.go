package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// ScanKeys returns every key matching pattern using SCAN, so large databases
// are never blocked by KEYS.
func ScanKeys(ctx context.Context, client redis.UniversalClient, pattern string, batch int64) ([]string, error) {
	if batch <= 0 {
		batch = 1000
	}

	var (
		keys   []string
		cursor uint64
	)
	for {
		page, next, err := client.Scan(ctx, cursor, pattern, batch).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, page...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}
