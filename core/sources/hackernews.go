package sources

import (
	"strings"
	"time"

	"daily-feed/core/interfaces"
)

const (
	hackerNewsName        = "Hacker News"
	hackerNewsFeed        = "https://hnrss.org/bestcomments.jsonfeed"
	hackerNewsDescription = "Hacker News best comments and parent articles"
)

// HackerNews turns the best-comments feed into one article per discussed story,
// with the comments attached inline.
type HackerNews struct {
	base
}

// NewHackerNews creates the Hacker News source
func NewHackerNews(cfg Config, client interfaces.HTTPClient) *HackerNews {
	feedURL := cfg.URL
	if feedURL == "" {
		feedURL = hackerNewsFeed
	}
	name := cfg.Name
	if name == "" {
		name = hackerNewsName
	}
	description := cfg.Description
	if description == "" {
		description = hackerNewsDescription
	}

	return &HackerNews{base: base{
		name:        name,
		kind:        interfaces.KindHackerNews,
		description: description,
		url:         feedURL,
		caps:        interfaces.Capabilities{RawEmbeds: cfg.RawEmbeds},
		client:      client,
	}}
}

// Items groups comment entries by story, keeping the order stories first appear in.
func (s *HackerNews) Items(payload []byte) (*interfaces.RawFeed, error) {
	comments, err := parseFeed(payload)
	if err != nil {
		return nil, err
	}

	feed := &interfaces.RawFeed{
		Title:       comments.Title,
		Description: comments.Description,
		Link:        comments.Link,
	}
	index := make(map[string]int)

	for _, entry := range comments.Items {
		story := storyTitle(entry.Title)
		i, ok := index[story]
		if !ok {
			i = len(feed.Items)
			index[story] = i
			feed.Items = append(feed.Items, interfaces.RawItem{
				Title:         story,
				Link:          storyLink(entry.Link),
				Published:     entry.Published,
				PublishedText: entry.PublishedText,
			})
		}

		feed.Items[i].Comments = append(feed.Items[i].Comments, interfaces.RawComment{
			Author:    entry.Author,
			Body:      entry.Body,
			Timestamp: commentTimestamp(entry),
		})
	}

	return feed, nil
}

// storyTitle extracts the story from `New comment by user in "Story title"`.
func storyTitle(title string) string {
	start := strings.Index(title, ` in "`)
	end := strings.LastIndex(title, `"`)
	if start >= 0 && end > start+5 {
		return title[start+5 : end]
	}
	return title
}

// storyLink drops the comment anchor from a comment URL.
func storyLink(link string) string {
	if i := strings.Index(link, "#"); i >= 0 {
		return link[:i]
	}
	return link
}

func commentTimestamp(entry interfaces.RawItem) string {
	if entry.Published != nil {
		return entry.Published.UTC().Format(time.RFC3339)
	}
	return entry.PublishedText
}
