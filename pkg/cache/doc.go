// Package cache provides an optional Redis-backed page cache for
// research API responses.
//
// The research API sends no cache-control, ETag, or expires headers, so
// entries carry a configuration-driven TTL instead of a server-derived
// one. Caching is purely an optimization for repeated runs against an
// unchanged backend; the collector behaves identically with the cache
// disabled.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient, 10*time.Minute)
//
//	key := cache.Key{
//		Endpoint:    "/api/coins/research/groups/",
//		QueryParams: url.Values{"page": []string{"1"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// fetch from the API, then manager.Set(ctx, key, entry)
//	}
package cache
