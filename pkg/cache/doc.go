// Package cache provides the per-resource result cache for upstream catalog
// lookups, backed by Redis.
//
// Every successful upstream body is stored under a deterministic key with a
// fixed TTL. A later lookup for the same resource is served from Redis and
// tagged with source "cache" by the client.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	manager := cache.NewManager(redisClient)
//
//	key := cache.Key{Resource: "database", ID: 3, Query: url.Values{"include": {"tables"}}}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API, then:
//		_ = manager.Set(ctx, key, cache.NewEntry(body, 10*time.Minute))
//	}
//
// # Storage Format
//
// Entries are JSON documents compressed as zstd frames. A value that fails to
// decompress or decode is reported as ErrInvalidEntry and treated by callers
// like a miss.
//
// # Metrics
//
//   - metabase_cache_hits_total{resource} - Cache hits
//   - metabase_cache_misses_total{resource} - Cache misses
//   - metabase_cache_stored_bytes_total - Compressed bytes written
//   - metabase_cache_errors_total{operation} - Cache operation errors
package cache
