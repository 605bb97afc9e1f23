package parser

import (
	"time"

	"daily-feed/core/domain"
)

// DocumentMeta carries the document-level fields that do not come from sources.
type DocumentMeta struct {
	Title       string
	Author      string
	Description string
}

// AssembleDocument builds the document root from feeds in the given order and
// computes its reading-time total.
func AssembleDocument(meta DocumentMeta, feeds []domain.Feed, generatedAt time.Time) *domain.Document {
	if feeds == nil {
		feeds = []domain.Feed{}
	}
	doc := &domain.Document{
		Title:       meta.Title,
		Author:      meta.Author,
		Description: meta.Description,
		GeneratedAt: generatedAt.UTC(),
		Feeds:       feeds,
	}
	doc.UpdateTotal()
	return doc
}
