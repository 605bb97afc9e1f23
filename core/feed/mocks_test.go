package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"daily-feed/core/domain"
	"daily-feed/core/interfaces"
)

// mockCache is a mock implementation of the Cache interface
type mockCache struct {
	getFunc    func(ctx context.Context, key string) ([]byte, error)
	setFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	deleteFunc func(ctx context.Context, key string) error
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, key)
	}
	return nil, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, key)
	}
	return nil
}

// mockLogger is a mock implementation of the Logger interface
type mockLogger struct {
	debugFunc func(msg string, fields map[string]interface{})
	infoFunc  func(msg string, fields map[string]interface{})
	warnFunc  func(msg string, fields map[string]interface{})
	errorFunc func(msg string, fields map[string]interface{})
}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {
	if m.debugFunc != nil {
		m.debugFunc(msg, fields)
	}
}

func (m *mockLogger) Info(msg string, fields map[string]interface{}) {
	if m.infoFunc != nil {
		m.infoFunc(msg, fields)
	}
}

func (m *mockLogger) Warn(msg string, fields map[string]interface{}) {
	if m.warnFunc != nil {
		m.warnFunc(msg, fields)
	}
}

func (m *mockLogger) Error(msg string, fields map[string]interface{}) {
	if m.errorFunc != nil {
		m.errorFunc(msg, fields)
	}
}
// mockSource is a function-field Source
type mockSource struct {
	name      string
	kind      interfaces.SourceKind
	url       string
	caps      interfaces.Capabilities
	fetchFunc func(ctx context.Context) ([]byte, error)
	itemsFunc func(payload []byte) (*interfaces.RawFeed, error)
	fetches   atomic.Int32
}

func (m *mockSource) Name() string                          { return m.name }
func (m *mockSource) Kind() interfaces.SourceKind           { return m.kind }
func (m *mockSource) Description() string                   { return m.name + " feed" }
func (m *mockSource) URL() string                           { return m.url }
func (m *mockSource) Capabilities() interfaces.Capabilities { return m.caps }

func (m *mockSource) Fetch(ctx context.Context) ([]byte, error) {
	m.fetches.Add(1)
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx)
	}
	return []byte(m.name), nil
}

func (m *mockSource) Items(payload []byte) (*interfaces.RawFeed, error) {
	if m.itemsFunc != nil {
		return m.itemsFunc(payload)
	}
	published := fixedNow.Add(-time.Hour)
	return &interfaces.RawFeed{Items: []interfaces.RawItem{{
		Title:     m.name + " story",
		Link:      m.url + "/story",
		Published: &published,
		Body:      "<p>" + string(payload) + " body text</p>",
	}}}, nil
}

// mockFrontPage is a mock implementation of the FrontPageGenerator interface
type mockFrontPage struct {
	generateFunc func(ctx context.Context, doc *domain.Document) ([]domain.Block, error)
}

func (m *mockFrontPage) Generate(ctx context.Context, doc *domain.Document) ([]domain.Block, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, doc)
	}
	return nil, nil
}

// mapCache is a map-backed Cache
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (m *mapCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("cache miss")
}

func (m *mapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mapCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
