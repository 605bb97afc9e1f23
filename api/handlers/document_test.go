package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"daily-feed/core/domain"
	"daily-feed/core/interchange"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument() *domain.Document {
	published := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	two := domain.ReadingTime(2)

	feeds := []domain.Feed{
		{
			Name:        "Tech",
			Description: "Technology news",
			URL:         "https://tech.example/feed",
			Articles: []domain.Article{
				{
					Title:       "Chips & Things",
					Published:   published,
					Link:        "https://tech.example/chips",
					Blocks:      []domain.Block{domain.Paragraph{Text: domain.Plain("Silicon everywhere.")}},
					Comments:    []domain.Comment{{Author: "ann", Body: []domain.Block{domain.Paragraph{Text: domain.Plain("Nice")}}, Score: 3}},
					ReadingTime: two.Ptr(),
				},
			},
		},
		{
			Name: "World",
			URL:  "https://world.example/rss",
			Articles: []domain.Article{
				{Title: "Elections", Link: "https://world.example/elections", ReadingTime: domain.BelowOneMinute.Ptr()},
				{Title: "Weather"},
			},
		},
	}
	for i := range feeds {
		feeds[i].UpdateTotal()
	}

	doc := &domain.Document{
		Title:       "Daily Feed Digest",
		Author:      "RSS Aggregator",
		GeneratedAt: time.Date(2025, 6, 1, 7, 30, 0, 0, time.UTC),
		Feeds:       feeds,
	}
	doc.UpdateTotal()
	return doc
}

func newTestAPI(t *testing.T) humatest.TestAPI {
	t.Helper()
	handler, err := NewDocumentHandler(testDocument())
	require.NoError(t, err)

	_, api := humatest.New(t)
	handler.RegisterRoutes(api)
	return api
}

func TestDocumentHandler_RegistersRoutes(t *testing.T) {
	api := newTestAPI(t)
	paths := api.OpenAPI().Paths

	for _, path := range []string{"/health", "/document", "/feeds", "/feeds/{index}/headlines", "/headlines", "/render/{format}"} {
		require.Contains(t, paths, path)
		assert.NotNil(t, paths[path].Get, path)
	}
}

func TestNewDocumentHandler_Nil(t *testing.T) {
	_, err := NewDocumentHandler(nil)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	resp := newTestAPI(t).Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, strings.TrimSpace(stripSchema(t, resp.Body.Bytes())))
}

func TestGetDocument_RoundTrips(t *testing.T) {
	resp := newTestAPI(t).Get("/document")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))

	decoded, err := interchange.Decode(resp.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Daily Feed Digest", decoded.Title)
	require.Len(t, decoded.Feeds, 2)
	assert.Equal(t, "Chips & Things", decoded.Feeds[0].Articles[0].Title)

	reencoded, err := interchange.Encode(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, resp.Body.String(), string(reencoded))
}

func TestListFeeds(t *testing.T) {
	resp := newTestAPI(t).Get("/feeds")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Title         string        `json:"title"`
		GeneratedAt   string        `json:"generated_at"`
		TotalArticles int           `json:"total_articles"`
		Feeds         []FeedSummary `json:"feeds"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	assert.Equal(t, "Daily Feed Digest", body.Title)
	assert.Equal(t, "2025-06-01T07:30:00Z", body.GeneratedAt)
	assert.Equal(t, 3, body.TotalArticles)
	require.Len(t, body.Feeds, 2)
	assert.Equal(t, FeedSummary{
		Index:         0,
		Name:          "Tech",
		Description:   "Technology news",
		URL:           "https://tech.example/feed",
		TotalArticles: 1,
		ReadingTime:   "2 min",
	}, body.Feeds[0])
	assert.Equal(t, "World", body.Feeds[1].Name)
}

func TestListHeadlines(t *testing.T) {
	resp := newTestAPI(t).Get("/headlines")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Headlines []HeadlineResponse `json:"headlines"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	require.Len(t, body.Headlines, 3)
	assert.Equal(t, HeadlineResponse{
		Feed:        "Tech",
		Title:       "Chips & Things",
		Link:        "https://tech.example/chips",
		Published:   "2025-06-01T06:00:00Z",
		ReadingTime: "2 min",
		Comments:    1,
	}, body.Headlines[0])
	assert.Equal(t, "Elections", body.Headlines[1].Title)
	assert.Equal(t, "Weather", body.Headlines[2].Title)
	assert.Empty(t, body.Headlines[2].Published)
}

func TestFeedHeadlines(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Get("/feeds/1/headlines")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Headlines []HeadlineResponse `json:"headlines"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Headlines, 2)
	assert.Equal(t, "World", body.Headlines[0].Feed)

	resp = api.Get("/feeds/5/headlines")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "feed not found: 5")
}

func TestRender(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Get("/render/markdown")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "daily-feed.md")
	assert.Contains(t, resp.Body.String(), "# Daily Feed Digest")
	assert.Contains(t, resp.Body.String(), "Silicon everywhere.")

	resp = api.Get("/render/epub")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/epub+zip", resp.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Body.String(), "PK"))
}

func TestRender_UnknownFormat(t *testing.T) {
	resp := newTestAPI(t).Get("/render/pdf")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "unsupported output format")
}

// stripSchema drops the $schema link huma adds to JSON object bodies.
func stripSchema(t *testing.T, body []byte) string {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &m))
	delete(m, "$schema")
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return string(out)
}
