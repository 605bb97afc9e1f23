// ABOUTME: Full-text article reader that extracts the main content of a web page
// ABOUTME: Uses go-readability over the shared HTTP client with a payload cache

package reader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	coreerrors "daily-feed/core/errors"
	"daily-feed/core/interfaces"

	readability "github.com/go-shiori/go-readability"
)

const (
	cacheTTL     = 1 * time.Hour
	maxPageBytes = 10 << 20
)

// Service extracts readable article markup. It implements interfaces.ArticleReader.
type Service struct {
	client interfaces.HTTPClient
	cache  interfaces.Cache
	logger interfaces.Logger
}

// NewService creates a reader. The cache is optional.
func NewService(client interfaces.HTTPClient, cache interfaces.Cache, logger interfaces.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		logger: logger,
	}
}

// ReadArticle downloads pageURL and returns the extracted article HTML
func (s *Service) ReadArticle(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return "", &coreerrors.ValidationError{Field: "url", Message: fmt.Sprintf("invalid URL %q", pageURL)}
	}

	cacheKey := fmt.Sprintf("reader:%s", pageURL)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil && len(data) > 0 {
			return string(data), nil
		}
	}

	content, err := s.extract(ctx, parsed)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("Failed to extract article", map[string]interface{}{
				"url":   pageURL,
				"error": err.Error(),
			})
		}
		return "", err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, []byte(content), cacheTTL)
	}
	return content, nil
}

func (s *Service) extract(ctx context.Context, pageURL *url.URL) (string, error) {
	resp, err := s.client.Get(ctx, pageURL.String())
	if err != nil {
		return "", err
	}
	defer resp.Body().Close()

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return "", &coreerrors.ExternalAPIError{
			StatusCode: resp.StatusCode(),
			Message:    http.StatusText(resp.StatusCode()),
			API:        pageURL.Host,
		}
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body(), maxPageBytes), pageURL)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}

	content := strings.TrimSpace(article.Content)
	if content == "" {
		return "", &coreerrors.NotFoundError{Resource: "article content", ID: pageURL.String()}
	}
	return content, nil
}
