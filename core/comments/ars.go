// ABOUTME: Ars Technica comment fetcher scraping the XenForo forum thread behind an article
// ABOUTME: Uses colly for page retrieval and goquery selectors for comment extraction

package comments

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	coreerrors "daily-feed/core/errors"
	"daily-feed/core/interfaces"
	"daily-feed/pkg/utils/parse"
	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
)

const (
	// DefaultUserAgent identifies the scraper to the forum
	DefaultUserAgent = "daily-feed/0.1.0"

	// DefaultTimeout bounds one article's comment retrieval
	DefaultTimeout = 15 * time.Second

	maxBodySize  = 5 * 1024 * 1024
	expandMarker = "Click to expand..."
)

var combinedVotes = regexp.MustCompile(`\(\s*(\d+)\s*[/\s]*(\d+)\s*\)`)

// Options configures the Ars Technica comment fetcher
type Options struct {
	UserAgent string
	Timeout   time.Duration
}

// ArsForum fetches top comments for Ars Technica articles.
type ArsForum struct {
	opts   Options
	logger interfaces.Logger
}

// NewArsForum creates a comment fetcher
func NewArsForum(opts Options, logger interfaces.Logger) *ArsForum {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &ArsForum{opts: opts, logger: logger}
}

type scrapeResult struct {
	comments []interfaces.RawComment
	err      error
}

// FetchComments returns up to limit comments for the article, highest net score first.
// The whole exchange is bounded by the configured timeout and by ctx.
func (f *ArsForum) FetchComments(ctx context.Context, articleURL string, limit int) ([]interfaces.RawComment, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	done := make(chan scrapeResult, 1)
	go func() {
		comments, err := f.scrape(ctx, articleURL)
		done <- scrapeResult{comments: comments, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetching comments for %s: %w", articleURL, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		return TopComments(res.comments, limit), nil
	}
}

// scrape visits the article and then its forum thread. Both requests are bound
// to ctx, so nothing is fetched once it is done.
func (f *ArsForum) scrape(ctx context.Context, articleURL string) ([]interfaces.RawComment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	forumURL, err := f.forumURL(ctx, articleURL)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if f.logger != nil {
		f.logger.Debug("Fetching forum thread", map[string]interface{}{
			"article": articleURL,
			"forum":   forumURL,
		})
	}

	var comments []interfaces.RawComment
	c := f.collector(ctx)
	c.OnHTML("html", func(e *colly.HTMLElement) {
		comments = parseMessages(e.DOM)
	})
	if err := c.Visit(forumURL); err != nil {
		return nil, visitError(forumURL, err)
	}
	return comments, nil
}

// forumURL finds the comment thread referenced by the article page's data-url attribute.
func (f *ArsForum) forumURL(ctx context.Context, articleURL string) (string, error) {
	var forum string
	c := f.collector(ctx)
	c.OnHTML("[data-url]", func(e *colly.HTMLElement) {
		if forum == "" {
			forum = e.Request.AbsoluteURL(e.Attr("data-url"))
		}
	})
	if err := c.Visit(articleURL); err != nil {
		return "", visitError(articleURL, err)
	}
	if forum == "" {
		return "", &coreerrors.NotFoundError{Resource: "comment thread", ID: articleURL}
	}
	return forum, nil
}

func (f *ArsForum) collector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(f.opts.UserAgent),
		colly.MaxBodySize(maxBodySize),
		colly.AllowURLRevisit(),
	)
	c.WithTransport(&contextTransport{ctx: ctx, base: http.DefaultTransport})
	c.SetRequestTimeout(f.opts.Timeout)
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
	return c
}

// contextTransport cancels colly's in-flight requests along with ctx.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

func visitError(target string, err error) error {
	return fmt.Errorf("visiting %s: %w", target, err)
}

// ParseForumComments extracts every non-empty comment from a XenForo thread page.
func ParseForumComments(r io.Reader) ([]interfaces.RawComment, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return parseMessages(doc.Selection), nil
}

func parseMessages(root *goquery.Selection) []interfaces.RawComment {
	var comments []interfaces.RawComment

	root.Find(".message").Each(func(_ int, msg *goquery.Selection) {
		content := msg.Find(".message-content .bbWrapper").First()
		content.Find(".bbCodeBlock-expandLink").Remove()

		if strings.TrimSpace(strings.ReplaceAll(content.Text(), expandMarker, "")) == "" {
			return
		}
		body, err := content.Html()
		if err != nil {
			return
		}

		author := strings.TrimSpace(msg.Find(".username").First().Text())
		up, down := votes(msg)

		comments = append(comments, interfaces.RawComment{
			Author:    author,
			Body:      strings.TrimSpace(strings.ReplaceAll(body, expandMarker, "")),
			Upvotes:   up,
			Downvotes: down,
			Timestamp: timestamp(msg),
		})
	})

	return comments
}

// votes reads the individual score elements and the combined "(up/down)" text,
// keeping the larger value of each.
func votes(msg *goquery.Selection) (int, int) {
	up := parse.IntOrZero(strings.TrimSpace(msg.Find(".contentVote-score--positive").First().Text()))
	downText := strings.TrimSpace(msg.Find(".contentVote-score--negative").First().Text())
	down := parse.IntOrZero(strings.TrimPrefix(downText, "-"))

	if m := combinedVotes.FindStringSubmatch(msg.Find(".contentVote-scores").First().Text()); m != nil {
		up = max(up, parse.IntOrZero(m[1]))
		down = max(down, parse.IntOrZero(m[2]))
	}
	return max(up, 0), max(down, 0)
}

func timestamp(msg *goquery.Selection) string {
	for _, sel := range []string{".message-meta time", ".message-attribution time", ".message-date time", "time"} {
		if ts, ok := msg.Find(sel).First().Attr("datetime"); ok {
			return ts
		}
	}
	return ""
}

// TopComments orders comments by net score, highest first, and keeps at most limit.
// Equal scores keep page order.
func TopComments(comments []interfaces.RawComment, limit int) []interfaces.RawComment {
	sorted := make([]interfaces.RawComment, len(comments))
	copy(sorted, comments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score() > sorted[j].Score()
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
