package main

import (
	"context"
	"fmt"
	"time"

	"daily-feed/core/comments"
	"daily-feed/core/feed"
	"daily-feed/core/frontpage"
	"daily-feed/core/interfaces"
	"daily-feed/core/parser"
	"daily-feed/core/reader"
	"daily-feed/core/sources"
	"daily-feed/infrastructure/ai/openai"
	"daily-feed/infrastructure/cache/memory"
	"daily-feed/infrastructure/cache/redis"
	"daily-feed/infrastructure/cache/sqlite"
	stdhttp "daily-feed/infrastructure/http/standard"
	"daily-feed/pkg/config"
	"daily-feed/pkg/featureflags"
)

// pipeline is everything a run needs, built from configuration
type pipeline struct {
	service *feed.FeedService
	sources []interfaces.Source
	meta    parser.DocumentMeta
	closers []func() error
}

func (p *pipeline) Close() {
	for _, closeFn := range p.closers {
		_ = closeFn()
	}
}

func buildPipeline(ctx context.Context, cfg *config.Config, logger interfaces.Logger) (*pipeline, error) {
	p := &pipeline{
		meta: parser.DocumentMeta{
			Title:  cfg.Output.Title,
			Author: cfg.Output.Author,
		},
	}

	httpClient := stdhttp.NewClient(stdhttp.Options{
		Timeout:           time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		UserAgent:         cfg.HTTP.UserAgent,
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
	})

	cache, closeCache, err := newCache(cfg, logger)
	if err != nil {
		return nil, err
	}
	if closeCache != nil {
		p.closers = append(p.closers, closeCache)
	}

	configured, err := cfg.ResolveSources()
	if err != nil {
		p.Close()
		return nil, err
	}
	for _, sc := range configured {
		src, err := sources.New(sources.Config{
			Name:        sc.Name,
			Kind:        interfaces.SourceKind(sc.Type),
			URL:         sc.URL,
			Description: sc.Description,
			APIToken:    sc.APIToken,
			FullText:    sc.FullText,
			RawEmbeds:   sc.RawEmbeds,
			Comments:    sc.CommentsEnabled(),
		}, httpClient)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.sources = append(p.sources, src)
	}

	docParser := parser.New(parser.Config{
		WordsPerMinute: cfg.WordsPerMinute,
		CommentLimit:   cfg.Comments.Limit,
	}, logger)
	logger.Debug("Parser configured", map[string]interface{}{
		"words_per_minute": docParser.WordsPerMinute(),
	})

	if featureflags.IsEnabled(ctx, featureflags.Comments) {
		docParser.SetCommentFetcher(comments.NewArsForum(comments.Options{
			UserAgent: cfg.HTTP.UserAgent,
			Timeout:   time.Duration(cfg.Comments.TimeoutSeconds) * time.Second,
		}, logger))
	}
	if featureflags.IsEnabled(ctx, featureflags.FullText) {
		docParser.SetArticleReader(reader.NewService(httpClient, cache, logger))
	}

	p.service = feed.NewFeedService(interfaces.Dependencies{
		Cache:      cache,
		HTTPClient: httpClient,
		Logger:     logger,
	}, docParser, feed.Options{
		CacheTTL: time.Duration(cfg.Cache.TTLSeconds) * time.Second,
	})

	if cfg.FrontPage != nil && cfg.FrontPage.Enabled {
		generator, err := openai.NewClient(openai.Config{
			Type:    cfg.FrontPage.Provider.Type,
			BaseURL: cfg.FrontPage.Provider.BaseURL,
			APIKey:  cfg.FrontPage.Provider.APIKey,
			Model:   cfg.FrontPage.Provider.Model,
		}, logger)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.service.SetFrontPageGenerator(frontpage.New(generator, logger))
	}

	return p, nil
}

// newCache returns a nil cache for type none. A redis cache that cannot be
// reached falls back to memory.
func newCache(cfg *config.Config, logger interfaces.Logger) (interfaces.Cache, func() error, error) {
	switch cfg.Cache.Type {
	case "memory":
		logger.Debug("Using memory cache", nil)
		return memory.NewMemoryCacheWithCleanup(time.Minute), nil, nil
	case "redis":
		redisCache, err := redis.NewRedisCache(cfg.Cache.Redis)
		if err != nil {
			logger.Warn("Failed to create Redis cache, falling back to memory", map[string]interface{}{
				"address": cfg.Cache.Redis.Address,
				"error":   err.Error(),
			})
			return memory.NewMemoryCache(), nil, nil
		}
		logger.Debug("Using Redis cache", map[string]interface{}{"address": cfg.Cache.Redis.Address})
		return redisCache, redisCache.Close, nil
	case "sqlite":
		path := cfg.Cache.SQLite.Path
		if path == "" {
			path = sqlite.DefaultPath
		}
		sqliteCache, err := sqlite.NewSQLiteCacheWithLogger(path, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		logger.Debug("Using SQLite cache", map[string]interface{}{"path": path})
		return sqliteCache, sqliteCache.Close, nil
	}
	return nil, nil, nil
}
