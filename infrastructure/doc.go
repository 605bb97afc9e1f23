// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package.
//
// The infrastructure package is organized by technical concern:
//
// - ai/openai: text generation over OpenAI-compatible chat completions
// - cache/memory: in-process payload cache (go-cache)
// - cache/redis: Redis payload cache
// - cache/sqlite: on-disk payload cache
// - http/standard: HTTP client with retries and per-host rate limiting
// - logger/standard: logrus-backed structured logger
//
// # Cache Implementations
//
// All caches return interfaces.ErrCacheMiss for absent or expired keys.
//
//	cache := memory.NewMemoryCache()
//	err := cache.Set(ctx, "key", []byte("value"), time.Hour)
//	value, err := cache.Get(ctx, "key")
//
//	cache, err := redis.NewRedisCache(config.RedisConfig{Address: "localhost:6379"})
//
//	cache, err := sqlite.NewSQLiteCache("daily-feed-cache.db")
//	defer cache.Close()
//
// # HTTP Client
//
//	client := standard.NewClient(standard.Options{
//	    Timeout:           30 * time.Second,
//	    RequestsPerSecond: 2,
//	})
//	resp, err := client.Get(ctx, "https://example.com/feed.xml")
//	if err != nil {
//	    return err
//	}
//	defer resp.Body().Close()
//
// # Logger
//
//	logger := standard.New(os.Stderr, "debug")
//	logger.Info("Document built", map[string]interface{}{
//	    "feeds":    3,
//	    "articles": 42,
//	})
package infrastructure
