// ABOUTME: Source contracts: fetching raw payloads and extracting feed items from them
// ABOUTME: Also defines the comment and full-text collaborators a source may opt into

package interfaces

import (
	"context"
	"time"
)

// SourceKind identifies a source integration. The set is closed.
type SourceKind string

const (
	KindRSS         SourceKind = "rss"
	KindArsTechnica SourceKind = "ars_technica"
	KindHackerNews  SourceKind = "hackernews"
)

// Capabilities declares optional enrichment a source supports.
type Capabilities struct {
	// Comments enables per-article comment fetching.
	Comments bool

	// FullText replaces short item bodies with the extracted article page.
	FullText bool

	// RawEmbeds keeps embeds (iframes, video) as raw HTML blocks.
	RawEmbeds bool
}

// Source is one configured content source.
type Source interface {
	Name() string
	Kind() SourceKind
	Description() string
	URL() string
	Capabilities() Capabilities

	// Fetch retrieves the raw payload for this source.
	Fetch(ctx context.Context) ([]byte, error)

	// Items extracts feed items from a payload returned by Fetch. It performs no I/O.
	Items(payload []byte) (*RawFeed, error)
}

// RawFeed is the source-specific view of a payload before normalisation.
type RawFeed struct {
	Title       string
	Description string
	Link        string
	Items       []RawItem
}

// RawItem is one entry of a RawFeed. Body and comment bodies are markup; titles
// and authors are plain text with entities already decoded.
type RawItem struct {
	Title  string
	Link   string
	Author string

	// Published is the source's parsed timestamp when available,
	// otherwise PublishedText holds whatever the source supplied.
	Published     *time.Time
	PublishedText string

	Body string

	// Comments are attached by sources that deliver them inline.
	Comments []RawComment
}

// RawComment is a comment as delivered by a source or comment fetcher.
type RawComment struct {
	Author    string
	Body      string
	Upvotes   int
	Downvotes int

	// Timestamp is free-form and parsed leniently.
	Timestamp string
}

// Score returns the net vote count.
func (c RawComment) Score() int {
	return c.Upvotes - c.Downvotes
}

// CommentFetcher retrieves the top comments for an article.
// Implementations bound each call with their own timeout.
type CommentFetcher interface {
	FetchComments(ctx context.Context, articleURL string, limit int) ([]RawComment, error)
}

// ArticleReader extracts the main content of an article page as markup.
type ArticleReader interface {
	ReadArticle(ctx context.Context, articleURL string) (string, error)
}
