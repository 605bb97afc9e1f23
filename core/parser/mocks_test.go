package parser

import (
	"context"
	"sync"

	"daily-feed/core/interfaces"
)

// stubSource is a Source whose items are fixed in advance
type stubSource struct {
	name        string
	description string
	url         string
	caps        interfaces.Capabilities
	feed        *interfaces.RawFeed
	itemsErr    error
}

func (s *stubSource) Name() string                             { return s.name }
func (s *stubSource) Kind() interfaces.SourceKind              { return interfaces.KindRSS }
func (s *stubSource) Description() string                      { return s.description }
func (s *stubSource) URL() string                              { return s.url }
func (s *stubSource) Capabilities() interfaces.Capabilities    { return s.caps }
func (s *stubSource) Fetch(ctx context.Context) ([]byte, error) { return nil, nil }

func (s *stubSource) Items(payload []byte) (*interfaces.RawFeed, error) {
	if s.itemsErr != nil {
		return nil, s.itemsErr
	}
	return s.feed, nil
}

// mockCommentFetcher is a mock implementation of the CommentFetcher interface
type mockCommentFetcher struct {
	mu        sync.Mutex
	calls     []string
	fetchFunc func(ctx context.Context, articleURL string, limit int) ([]interfaces.RawComment, error)
}

func (m *mockCommentFetcher) FetchComments(ctx context.Context, articleURL string, limit int) ([]interfaces.RawComment, error) {
	m.mu.Lock()
	m.calls = append(m.calls, articleURL)
	m.mu.Unlock()
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, articleURL, limit)
	}
	return nil, nil
}

// mockArticleReader is a mock implementation of the ArticleReader interface
type mockArticleReader struct {
	readFunc func(ctx context.Context, articleURL string) (string, error)
}

func (m *mockArticleReader) ReadArticle(ctx context.Context, articleURL string) (string, error) {
	if m.readFunc != nil {
		return m.readFunc(ctx, articleURL)
	}
	return "", nil
}

// mockLogger is a mock implementation of the Logger interface
type mockLogger struct {
	mu    sync.Mutex
	warns []string
}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {}
func (m *mockLogger) Info(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Error(msg string, fields map[string]interface{}) {}

func (m *mockLogger) Warn(msg string, fields map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warns = append(m.warns, msg)
}
