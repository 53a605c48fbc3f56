// Package cache is a key-value facade over Redis, memcached or an in-process
// LRU store.
//
// The Service adds a key prefix, a default TTL, logging and metrics, and
// otherwise proxies to the configured store: expiry and eviction follow the
// store's own rules. Missing keys return ErrNotFound; TTL returns
// NoExpiration for keys stored without expiry.
//
//	var cfg cache.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//	svc, err := cache.NewService(ctx, cfg.ServiceConfig(), cache.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer svc.Close()
//
//	if err := cache.SetJSON(ctx, svc, "user:42", user, time.Hour); err != nil {
//	    return err
//	}
//	u, err := cache.GetJSON[User](ctx, svc, "user:42")
//
// Environment variables: CACHE_PROVIDER (redis, memcached or memory),
// CACHE_PREFIX, CACHE_DEFAULT_TTL, CACHE_REDIS_URL, CACHE_MEMCACHED_SERVERS
// and CACHE_MEMORY_MAX_ENTRIES.
package cache
