// ABOUTME: Read-only handlers serving a decoded document tree
// ABOUTME: Exposes the interchange JSON, feed summaries, headlines and rendered output

package handlers

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"daily-feed/core/domain"
	coreerrors "daily-feed/core/errors"
	"daily-feed/core/interchange"
	"daily-feed/core/render"

	"github.com/danielgtaylor/huma/v2"
)

var contentTypes = map[string]string{
	render.FormatEPUB:     "application/epub+zip",
	render.FormatMarkdown: "text/markdown; charset=utf-8",
}

// DocumentHandler serves one document. The tree is never modified after construction.
type DocumentHandler struct {
	doc     *domain.Document
	encoded []byte
}

// NewDocumentHandler encodes the document once up front
func NewDocumentHandler(doc *domain.Document) (*DocumentHandler, error) {
	encoded, err := interchange.Encode(doc)
	if err != nil {
		return nil, err
	}
	return &DocumentHandler{doc: doc, encoded: encoded}, nil
}

// RegisterRoutes registers document routes
func (h *DocumentHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Liveness check",
		Tags:        []string{"Health"},
	}, h.Health)

	huma.Register(api, huma.Operation{
		OperationID: "getDocument",
		Method:      http.MethodGet,
		Path:        "/document",
		Summary:     "Full document in interchange format",
		Tags:        []string{"Document"},
	}, h.GetDocument)

	huma.Register(api, huma.Operation{
		OperationID: "listFeeds",
		Method:      http.MethodGet,
		Path:        "/feeds",
		Summary:     "Feeds in configured order",
		Tags:        []string{"Document"},
	}, h.ListFeeds)

	huma.Register(api, huma.Operation{
		OperationID: "getFeedHeadlines",
		Method:      http.MethodGet,
		Path:        "/feeds/{index}/headlines",
		Summary:     "Headlines of one feed",
		Tags:        []string{"Document"},
	}, h.FeedHeadlines)

	huma.Register(api, huma.Operation{
		OperationID: "listHeadlines",
		Method:      http.MethodGet,
		Path:        "/headlines",
		Summary:     "Every headline in document order",
		Tags:        []string{"Document"},
	}, h.ListHeadlines)

	huma.Register(api, huma.Operation{
		OperationID: "renderDocument",
		Method:      http.MethodGet,
		Path:        "/render/{format}",
		Summary:     "Render the document",
		Description: "Renders the document with the named output backend (epub or markdown)",
		Tags:        []string{"Render"},
	}, h.Render)
}

// HealthOutput reports liveness
type HealthOutput struct {
	Body struct {
		Status string `json:"status" example:"ok"`
	}
}

// Health handles GET /health
func (h *DocumentHandler) Health(ctx context.Context, input *struct{}) (*HealthOutput, error) {
	out := &HealthOutput{}
	out.Body.Status = "ok"
	return out, nil
}

// RawOutput is a pre-serialised response body
type RawOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

// GetDocument handles GET /document
func (h *DocumentHandler) GetDocument(ctx context.Context, input *struct{}) (*RawOutput, error) {
	return &RawOutput{ContentType: "application/json", Body: h.encoded}, nil
}

// FeedSummary describes a feed without its articles
type FeedSummary struct {
	Index         int    `json:"index"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	URL           string `json:"url"`
	TotalArticles int    `json:"total_articles"`
	ReadingTime   string `json:"reading_time,omitempty" doc:"Human-readable total reading time"`
}

// FeedsOutput lists feeds
type FeedsOutput struct {
	Body struct {
		Title         string        `json:"title"`
		GeneratedAt   string        `json:"generated_at"`
		TotalArticles int           `json:"total_articles"`
		ReadingTime   string        `json:"reading_time,omitempty"`
		Feeds         []FeedSummary `json:"feeds"`
	}
}

// ListFeeds handles GET /feeds
func (h *DocumentHandler) ListFeeds(ctx context.Context, input *struct{}) (*FeedsOutput, error) {
	out := &FeedsOutput{}
	out.Body.Title = h.doc.Title
	out.Body.GeneratedAt = h.doc.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z")
	out.Body.TotalArticles = h.doc.TotalArticles()
	out.Body.ReadingTime = readingTime(h.doc.TotalReadingTime)
	out.Body.Feeds = make([]FeedSummary, 0, len(h.doc.Feeds))

	for i, feed := range h.doc.Feeds {
		out.Body.Feeds = append(out.Body.Feeds, FeedSummary{
			Index:         i,
			Name:          feed.Name,
			Description:   feed.Description,
			URL:           feed.URL,
			TotalArticles: len(feed.Articles),
			ReadingTime:   readingTime(feed.TotalReadingTime),
		})
	}
	return out, nil
}

// HeadlineResponse is one article reference
type HeadlineResponse struct {
	Feed        string `json:"feed"`
	Title       string `json:"title"`
	Link        string `json:"link,omitempty"`
	Published   string `json:"published,omitempty"`
	ReadingTime string `json:"reading_time,omitempty"`
	Comments    int    `json:"comments"`
}

// HeadlinesOutput lists headlines
type HeadlinesOutput struct {
	Body struct {
		Headlines []HeadlineResponse `json:"headlines"`
	}
}

// ListHeadlines handles GET /headlines
func (h *DocumentHandler) ListHeadlines(ctx context.Context, input *struct{}) (*HeadlinesOutput, error) {
	out := &HeadlinesOutput{}
	out.Body.Headlines = make([]HeadlineResponse, 0, h.doc.TotalArticles())
	for i := range h.doc.Feeds {
		out.Body.Headlines = append(out.Body.Headlines, headlines(&h.doc.Feeds[i])...)
	}
	return out, nil
}

// FeedInput addresses a feed by position
type FeedInput struct {
	Index int `path:"index" minimum:"0" doc:"Zero-based feed position"`
}

// FeedHeadlines handles GET /feeds/{index}/headlines
func (h *DocumentHandler) FeedHeadlines(ctx context.Context, input *FeedInput) (*HeadlinesOutput, error) {
	if input.Index < 0 || input.Index >= len(h.doc.Feeds) {
		return nil, toHumaError(&coreerrors.NotFoundError{Resource: "feed", ID: strconv.Itoa(input.Index)})
	}

	out := &HeadlinesOutput{}
	out.Body.Headlines = headlines(&h.doc.Feeds[input.Index])
	return out, nil
}

// RenderInput selects the output backend
type RenderInput struct {
	Format string `path:"format" doc:"Output format: epub or markdown"`
}

// Render handles GET /render/{format}
func (h *DocumentHandler) Render(ctx context.Context, input *RenderInput) (*RawOutput, error) {
	renderer, err := render.New(input.Format)
	if err != nil {
		return nil, toHumaError(err)
	}

	var buf bytes.Buffer
	if err := renderer.Render(ctx, h.doc, &buf); err != nil {
		return nil, toHumaError(err)
	}

	return &RawOutput{
		ContentType:        contentTypes[renderer.Format()],
		ContentDisposition: `attachment; filename="` + render.OutputPath("daily-feed", renderer) + `"`,
		Body:               buf.Bytes(),
	}, nil
}

func headlines(feed *domain.Feed) []HeadlineResponse {
	out := make([]HeadlineResponse, 0, len(feed.Articles))
	for _, article := range feed.Articles {
		hl := HeadlineResponse{
			Feed:        feed.Name,
			Title:       article.Title,
			Link:        article.Link,
			ReadingTime: readingTime(article.ReadingTime),
			Comments:    len(article.Comments),
		}
		if !article.Published.IsZero() {
			hl.Published = article.Published.UTC().Format("2006-01-02T15:04:05Z")
		}
		out = append(out, hl)
	}
	return out
}

func readingTime(rt *domain.ReadingTime) string {
	if rt == nil {
		return ""
	}
	return rt.String()
}
