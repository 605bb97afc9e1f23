// ABOUTME: Document parser turning one source payload into a Feed of normalised articles
// ABOUTME: Attaches comments and full text best-effort and computes reading times

package parser

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"daily-feed/core/domain"
	"daily-feed/core/interfaces"
	"daily-feed/core/normalize"
	"daily-feed/core/readingtime"
	timeutil "daily-feed/pkg/utils/time"
)

const (
	// DefaultCommentLimit is the number of top comments kept per article.
	DefaultCommentLimit = 5

	defaultConcurrency      = 4
	defaultFullTextMinWords = 50
	untitled                = "Untitled"
	anonymous               = "Anonymous"
)

// IssueKind classifies a recoverable, item-level problem.
type IssueKind string

const (
	IssueBadTimestamp        IssueKind = "bad_timestamp"
	IssueMissingTimestamp    IssueKind = "missing_timestamp"
	IssueMarkup              IssueKind = "markup"
	IssueCommentsUnavailable IssueKind = "comments_unavailable"
	IssueFullTextUnavailable IssueKind = "full_text_unavailable"
)

// Issue is a problem confined to a single article. The article is still produced.
type Issue struct {
	Source  string
	Article string
	Kind    IssueKind
	Message string
}

// Config holds parser tuning.
type Config struct {
	// WordsPerMinute is clamped to the supported range; invalid values use the default.
	WordsPerMinute int

	// CommentLimit is the maximum number of comments requested per article.
	CommentLimit int

	// Concurrency bounds simultaneous comment and full-text calls per source.
	Concurrency int

	// FullTextMinWords is the body length below which full text is fetched.
	FullTextMinWords int
}

// Parser builds Feeds from source payloads.
type Parser struct {
	cfg      Config
	logger   interfaces.Logger
	comments interfaces.CommentFetcher
	reader   interfaces.ArticleReader
	now      func() time.Time
}

// New creates a parser. Zero config values fall back to defaults.
func New(cfg Config, logger interfaces.Logger) *Parser {
	cfg.WordsPerMinute = readingtime.EffectiveWPM(cfg.WordsPerMinute)
	if cfg.CommentLimit <= 0 {
		cfg.CommentLimit = DefaultCommentLimit
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.FullTextMinWords <= 0 {
		cfg.FullTextMinWords = defaultFullTextMinWords
	}
	return &Parser{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// SetCommentFetcher sets the collaborator used for sources with comment support
func (p *Parser) SetCommentFetcher(fetcher interfaces.CommentFetcher) {
	p.comments = fetcher
}

// SetArticleReader sets the collaborator used for sources with full-text support
func (p *Parser) SetArticleReader(reader interfaces.ArticleReader) {
	p.reader = reader
}

// SetClock replaces the wall clock used for missing timestamps
func (p *Parser) SetClock(now func() time.Time) {
	p.now = now
}

// WordsPerMinute returns the effective reading speed.
func (p *Parser) WordsPerMinute() int {
	return p.cfg.WordsPerMinute
}

// ParseSource converts a payload fetched for src into a Feed. An error means the
// payload could not be read at all; item-level problems are returned as issues.
func (p *Parser) ParseSource(ctx context.Context, src interfaces.Source, payload []byte) (*domain.Feed, []Issue, error) {
	raw, err := src.Items(payload)
	if err != nil {
		return nil, nil, err
	}

	caps := src.Capabilities()
	n := normalize.New(normalize.Options{RawEmbeds: caps.RawEmbeds})
	parsedAt := p.now().UTC()

	feed := &domain.Feed{
		Name:        src.Name(),
		Description: firstNonEmpty(src.Description(), n.Inline(raw.Description).PlainText()),
		URL:         src.URL(),
		Articles:    make([]domain.Article, 0, len(raw.Items)),
	}

	var issues []Issue
	for _, item := range raw.Items {
		article, itemIssues := p.buildArticle(n, src.Name(), item, parsedAt)
		feed.Articles = append(feed.Articles, article)
		issues = append(issues, itemIssues...)
	}

	if caps.FullText && p.reader != nil {
		issues = append(issues, p.fillFullText(ctx, n, src.Name(), feed.Articles)...)
	}

	if caps.Comments {
		if p.comments != nil {
			issues = append(issues, p.attachComments(ctx, n, src.Name(), feed.Articles)...)
		} else if p.logger != nil {
			p.logger.Debug("Comment fetcher not configured", map[string]interface{}{
				"source": src.Name(),
			})
		}
	}

	for i := range feed.Articles {
		rt := readingtime.ForBlocks(feed.Articles[i].Blocks, p.cfg.WordsPerMinute)
		feed.Articles[i].ReadingTime = &rt
	}
	feed.UpdateTotal()

	for _, issue := range issues {
		p.logIssue(issue)
	}

	return feed, issues, nil
}

func (p *Parser) buildArticle(n *normalize.Normalizer, source string, item interfaces.RawItem, parsedAt time.Time) (domain.Article, []Issue) {
	var issues []Issue

	title := normalize.NormalizeText(item.Title).PlainText()
	if title == "" {
		title = untitled
	}

	article := domain.Article{
		Title:  title,
		Source: source,
		Link:   strings.TrimSpace(item.Link),
		Author: normalize.NormalizeText(item.Author).PlainText(),
	}

	if item.Published != nil && !item.Published.IsZero() {
		article.Published = item.Published.UTC()
	} else if strings.TrimSpace(item.PublishedText) == "" {
		issues = append(issues, Issue{
			Source:  source,
			Article: title,
			Kind:    IssueMissingTimestamp,
			Message: "no timestamp, using parse time",
		})
		article.Published = parsedAt
	} else {
		published, ok := timeutil.ParseWithDefault(item.PublishedText, parsedAt)
		if !ok {
			issues = append(issues, Issue{
				Source:  source,
				Article: title,
				Kind:    IssueBadTimestamp,
				Message: "unparseable timestamp " + strconv.Quote(item.PublishedText) + ", using parse time",
			})
		}
		article.Published = published.UTC()
	}

	body := n.Blocks(item.Body)
	article.Blocks = body.Blocks
	for _, issue := range body.Issues {
		issues = append(issues, Issue{
			Source:  source,
			Article: title,
			Kind:    IssueMarkup,
			Message: string(issue.Kind) + ": " + issue.Detail,
		})
	}

	if len(item.Comments) > 0 {
		article.Comments = convertComments(n, item.Comments)
	}

	return article, issues
}

// fillFullText replaces short bodies with the reader's extraction of the article page.
func (p *Parser) fillFullText(ctx context.Context, n *normalize.Normalizer, source string, articles []domain.Article) []Issue {
	results := make([]*Issue, len(articles))
	p.forEach(ctx, articles, func(i int, article *domain.Article) {
		if article.Link == "" || readingtime.CountBlocks(article.Blocks) >= p.cfg.FullTextMinWords {
			return
		}

		markup, err := p.reader.ReadArticle(ctx, article.Link)
		if err == nil {
			if blocks := n.Blocks(markup).Blocks; len(blocks) > 0 {
				article.Blocks = blocks
				return
			}
		}

		message := "reader returned no content"
		if err != nil {
			message = err.Error()
		}
		results[i] = &Issue{Source: source, Article: article.Title, Kind: IssueFullTextUnavailable, Message: message}
	})
	return collect(results)
}

// attachComments fetches comments for every article. A failing or slow article only
// affects itself: it ends up with an empty comment list.
func (p *Parser) attachComments(ctx context.Context, n *normalize.Normalizer, source string, articles []domain.Article) []Issue {
	results := make([]*Issue, len(articles))
	p.forEach(ctx, articles, func(i int, article *domain.Article) {
		article.Comments = []domain.Comment{}
		if article.Link == "" {
			return
		}

		raw, err := p.comments.FetchComments(ctx, article.Link, p.cfg.CommentLimit)
		if err != nil {
			results[i] = &Issue{Source: source, Article: article.Title, Kind: IssueCommentsUnavailable, Message: err.Error()}
			return
		}
		if len(raw) > p.cfg.CommentLimit {
			raw = raw[:p.cfg.CommentLimit]
		}
		article.Comments = convertComments(n, raw)
	})
	return collect(results)
}

// forEach runs fn for every article with bounded concurrency. Each call owns its article.
func (p *Parser) forEach(ctx context.Context, articles []domain.Article, fn func(i int, article *domain.Article)) {
	semaphore := make(chan struct{}, p.cfg.Concurrency)
	var wg sync.WaitGroup

	for i := range articles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				fn(i, &articles[i])
				return
			}
			defer func() { <-semaphore }()

			fn(i, &articles[i])
		}(i)
	}

	wg.Wait()
}

func convertComments(n *normalize.Normalizer, raw []interfaces.RawComment) []domain.Comment {
	comments := make([]domain.Comment, 0, len(raw))
	for _, c := range raw {
		author := normalize.NormalizeText(c.Author).PlainText()
		if author == "" {
			author = anonymous
		}

		var ts time.Time
		if parsed := timeutil.ParseFlexibleTime(c.Timestamp); !parsed.IsZero() {
			ts = parsed.UTC()
		}

		comments = append(comments, domain.Comment{
			Author:    author,
			Body:      n.Blocks(c.Body).Blocks,
			Score:     c.Score(),
			Timestamp: ts,
		})
	}
	return comments
}

func (p *Parser) logIssue(issue Issue) {
	if p.logger == nil {
		return
	}
	p.logger.Warn("Article issue", map[string]interface{}{
		"source":  issue.Source,
		"article": issue.Article,
		"kind":    string(issue.Kind),
		"message": issue.Message,
	})
}

func collect(results []*Issue) []Issue {
	var issues []Issue
	for _, issue := range results {
		if issue != nil {
			issues = append(issues, *issue)
		}
	}
	return issues
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
