package reader

import (
	"context"
	"errors"
	"strings"
	"testing"

	coreerrors "daily-feed/core/errors"
	"daily-feed/core/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var articlePage = `<!DOCTYPE html>
<html><head><title>Deep dive</title></head>
<body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<article>
  <h1>Deep dive</h1>
  <p>` + strings.Repeat("The main body of the article talks about many interesting things. ", 20) + `</p>
  <p>` + strings.Repeat("A second paragraph carries on with even more detail and commentary. ", 20) + `</p>
</article>
<footer>Copyright</footer>
</body></html>`

func pageClient(status int, body string) *mockHTTPClient {
	return &mockHTTPClient{getFunc: func(ctx context.Context, url string) (interfaces.Response, error) {
		return &mockResponse{statusCode: status, body: body}, nil
	}}
}

func TestReadArticle(t *testing.T) {
	client := pageClient(200, articlePage)
	s := NewService(client, nil, nil)

	content, err := s.ReadArticle(context.Background(), "https://example.com/post")

	require.NoError(t, err)
	assert.Contains(t, content, "The main body of the article")
	assert.Contains(t, content, "A second paragraph")
}

func TestReadArticle_UsesCache(t *testing.T) {
	client := pageClient(200, articlePage)
	cache := newMemoryCache()
	s := NewService(client, cache, nil)

	first, err := s.ReadArticle(context.Background(), "https://example.com/post")
	require.NoError(t, err)
	second, err := s.ReadArticle(context.Background(), "https://example.com/post")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.calls)
	_, err = cache.Get(context.Background(), "reader:https://example.com/post")
	assert.NoError(t, err)
}

func TestReadArticle_Errors(t *testing.T) {
	t.Run("invalid url", func(t *testing.T) {
		_, err := NewService(pageClient(200, articlePage), nil, nil).ReadArticle(context.Background(), "::nope")
		assert.True(t, coreerrors.IsValidation(err))
	})

	t.Run("status", func(t *testing.T) {
		_, err := NewService(pageClient(404, ""), nil, nil).ReadArticle(context.Background(), "https://example.com/gone")
		var apiErr *coreerrors.ExternalAPIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 404, apiErr.StatusCode)
	})

	t.Run("transport", func(t *testing.T) {
		client := &mockHTTPClient{getFunc: func(ctx context.Context, url string) (interfaces.Response, error) {
			return nil, errors.New("dial tcp: refused")
		}}
		cache := newMemoryCache()
		_, err := NewService(client, cache, nil).ReadArticle(context.Background(), "https://example.com/post")
		assert.EqualError(t, err, "dial tcp: refused")
		assert.Empty(t, cache.data, "failures are not cached")
	})
}
