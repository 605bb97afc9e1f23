// ABOUTME: Feed service builds the digest document from every configured source
// ABOUTME: Fetches in parallel through the payload cache, parses, and assembles in configured order

package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"daily-feed/core/domain"
	coreerrors "daily-feed/core/errors"
	"daily-feed/core/interfaces"
	"daily-feed/core/parser"
	"daily-feed/pkg/featureflags"
	"daily-feed/pkg/utils/duration"
)

const (
	defaultConcurrency = 10
	defaultCacheTTL    = 30 * time.Minute
)

// Options tunes the feed service
type Options struct {
	// Concurrency bounds simultaneous source fetches
	Concurrency int

	// CacheTTL is how long raw payloads stay cached. Negative disables caching.
	CacheTTL time.Duration
}

// Report describes everything that went wrong during a build without aborting it
type Report struct {
	Failures       []*coreerrors.SourceError
	Issues         []parser.Issue
	FrontPageError error
}

// OK reports whether the build had no problems at all
func (r *Report) OK() bool {
	return len(r.Failures) == 0 && len(r.Issues) == 0 && r.FrontPageError == nil
}

// FeedService orchestrates sources, the parser and the optional front page
type FeedService struct {
	deps      interfaces.Dependencies
	parser    *parser.Parser
	frontPage interfaces.FrontPageGenerator
	opts      Options
	now       func() time.Time
}

// NewFeedService creates a new feed service instance
func NewFeedService(deps interfaces.Dependencies, p *parser.Parser, opts Options) *FeedService {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	return &FeedService{
		deps:   deps,
		parser: p,
		opts:   opts,
		now:    time.Now,
	}
}

// SetFrontPageGenerator sets the front page collaborator
func (s *FeedService) SetFrontPageGenerator(gen interfaces.FrontPageGenerator) {
	s.frontPage = gen
}

// SetClock replaces the clock used for the generation timestamp
func (s *FeedService) SetClock(now func() time.Time) {
	s.now = now
}

type sourceResult struct {
	feed   *domain.Feed
	issues []parser.Issue
	err    *coreerrors.SourceError
}

// BuildDocument fetches and parses every source and assembles the document.
// Failing sources are left out and recorded in the report; only context
// cancellation fails the call.
func (s *FeedService) BuildDocument(ctx context.Context, meta parser.DocumentMeta, sources []interfaces.Source) (*domain.Document, *Report, error) {
	start := time.Now()
	results := make([]sourceResult, len(sources))

	semaphore := make(chan struct{}, s.opts.Concurrency)
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(index int, src interfaces.Source) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[index] = sourceResult{err: &coreerrors.SourceError{Source: src.Name(), Stage: coreerrors.StageFetch, Err: ctx.Err()}}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[index] = s.processSource(ctx, src)
		}(i, src)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	report := &Report{}
	feeds := make([]domain.Feed, 0, len(sources))
	for _, res := range results {
		report.Issues = append(report.Issues, res.issues...)
		if res.err != nil {
			report.Failures = append(report.Failures, res.err)
			s.logError("Source failed", map[string]interface{}{
				"source": res.err.Source,
				"stage":  string(res.err.Stage),
				"error":  res.err.Err.Error(),
			})
			continue
		}
		feeds = append(feeds, *res.feed)
	}

	doc := parser.AssembleDocument(meta, feeds, s.now())

	if s.frontPage != nil && featureflags.IsEnabled(ctx, featureflags.FrontPage) {
		blocks, err := s.frontPage.Generate(ctx, doc)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, nil, err
			}
			report.FrontPageError = err
			s.logError("Front page generation failed", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			doc.FrontPage = blocks
		}
	}

	if s.deps.Logger != nil {
		s.deps.Logger.Info("Document built", map[string]interface{}{
			"feeds":    len(doc.Feeds),
			"articles": doc.TotalArticles(),
			"failures": len(report.Failures),
			"issues":   len(report.Issues),
			"elapsed":  duration.Elapsed(start),
		})
	}

	return doc, report, nil
}

func (s *FeedService) processSource(ctx context.Context, src interfaces.Source) sourceResult {
	payload, err := s.payload(ctx, src)
	if err != nil {
		return sourceResult{err: &coreerrors.SourceError{Source: src.Name(), Stage: coreerrors.StageFetch, Err: err}}
	}

	feed, issues, err := s.parser.ParseSource(ctx, src, payload)
	if err != nil {
		// A cached payload that no longer parses should not survive
		s.evict(ctx, src)
		return sourceResult{err: &coreerrors.SourceError{Source: src.Name(), Stage: coreerrors.StageParse, Err: err}}
	}
	return sourceResult{feed: feed, issues: issues}
}

// payload returns the raw source payload, from cache when possible.
func (s *FeedService) payload(ctx context.Context, src interfaces.Source) ([]byte, error) {
	key := cacheKey(src)
	if s.cacheEnabled() {
		if data, err := s.deps.Cache.Get(ctx, key); err == nil && len(data) > 0 {
			if s.deps.Logger != nil {
				s.deps.Logger.Debug("Payload cache hit", map[string]interface{}{"source": src.Name()})
			}
			return data, nil
		}
	}

	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	// Cache errors are not fatal
	if s.cacheEnabled() {
		_ = s.deps.Cache.Set(ctx, key, data, s.opts.CacheTTL)
	}
	return data, nil
}

func (s *FeedService) evict(ctx context.Context, src interfaces.Source) {
	if s.cacheEnabled() {
		_ = s.deps.Cache.Delete(ctx, cacheKey(src))
	}
}

func (s *FeedService) cacheEnabled() bool {
	return s.deps.Cache != nil && s.opts.CacheTTL > 0
}

func (s *FeedService) logError(msg string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Error(msg, fields)
	}
}

func cacheKey(src interfaces.Source) string {
	return fmt.Sprintf("payload:%s:%s", src.Kind(), src.URL())
}
