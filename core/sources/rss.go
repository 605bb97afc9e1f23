package sources

import (
	"bytes"
	"errors"
	"strings"

	"daily-feed/core/interfaces"
	"github.com/mmcdole/gofeed"
)

// RSS is a generic RSS, Atom or JSON Feed source.
type RSS struct {
	base
}

// NewRSS creates a generic feed source
func NewRSS(cfg Config, client interfaces.HTTPClient) *RSS {
	return &RSS{base: base{
		name:        cfg.Name,
		kind:        interfaces.KindRSS,
		description: cfg.Description,
		url:         cfg.URL,
		caps:        interfaces.Capabilities{FullText: cfg.FullText, RawEmbeds: cfg.RawEmbeds},
		client:      client,
	}}
}

// Items parses the payload as a feed
func (s *RSS) Items(payload []byte) (*interfaces.RawFeed, error) {
	return parseFeed(payload)
}

// parseFeed converts any format gofeed understands into a RawFeed.
func parseFeed(payload []byte) (*interfaces.RawFeed, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, errors.New("empty feed content")
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	feed := &interfaces.RawFeed{
		Title:       parsed.Title,
		Description: parsed.Description,
		Link:        parsed.Link,
		Items:       make([]interfaces.RawItem, 0, len(parsed.Items)),
	}
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		feed.Items = append(feed.Items, convertItem(item))
	}
	return feed, nil
}

func convertItem(item *gofeed.Item) interfaces.RawItem {
	raw := interfaces.RawItem{
		Title: item.Title,
		Link:  item.Link,
		Body:  item.Content,
	}

	// Content carries the full body when present; description is often a teaser
	if strings.TrimSpace(raw.Body) == "" {
		raw.Body = item.Description
	}

	if raw.Link == "" && strings.HasPrefix(item.GUID, "http") {
		raw.Link = item.GUID
	}

	switch {
	case item.Author != nil && item.Author.Name != "":
		raw.Author = item.Author.Name
	case len(item.Authors) > 0 && item.Authors[0] != nil:
		raw.Author = item.Authors[0].Name
	case item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0:
		raw.Author = item.DublinCoreExt.Creator[0]
	}

	switch {
	case item.PublishedParsed != nil:
		raw.Published = item.PublishedParsed
	case item.UpdatedParsed != nil:
		raw.Published = item.UpdatedParsed
	}
	raw.PublishedText = item.Published
	if raw.PublishedText == "" {
		raw.PublishedText = item.Updated
	}

	return raw
}
