// ABOUTME: Lossless JSON interchange format for the document tree
// ABOUTME: Encoding writes every field explicitly so absent and empty values stay distinct

package interchange

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"daily-feed/core/domain"
)

// FormatVersion is written to every document and checked on decode.
const FormatVersion = 1

// belowOneMinute is the wire form of domain.BelowOneMinute.
const belowOneMinute = "below_one_minute"

type documentWire struct {
	Version          int           `json:"version"`
	Title            string        `json:"title"`
	Author           string        `json:"author"`
	Description      string        `json:"description"`
	GeneratedAt      *string       `json:"generated_at"`
	Feeds            []feedWire    `json:"feeds"`
	FrontPage        []interface{} `json:"front_page"`
	TotalReadingTime interface{}   `json:"total_reading_time"`
}

type feedWire struct {
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	URL              string        `json:"url"`
	Articles         []articleWire `json:"articles"`
	TotalReadingTime interface{}   `json:"total_reading_time"`
}

type articleWire struct {
	Title       string        `json:"title"`
	Published   *string       `json:"published"`
	Source      string        `json:"source"`
	Link        string        `json:"link"`
	Author      string        `json:"author"`
	Blocks      []interface{} `json:"blocks"`
	Comments    []commentWire `json:"comments"`
	ReadingTime interface{}   `json:"reading_time"`
}

type commentWire struct {
	Author    string        `json:"author"`
	Body      []interface{} `json:"body"`
	Score     int           `json:"score"`
	Timestamp *string       `json:"timestamp"`
}

type spanWire struct {
	Text   string  `json:"text"`
	Bold   bool    `json:"bold"`
	Italic bool    `json:"italic"`
	Code   bool    `json:"code"`
	Link   *string `json:"link"`
}

type paragraphWire struct {
	Type string     `json:"type"`
	Text []spanWire `json:"text"`
}

type headingWire struct {
	Type  string     `json:"type"`
	Level int        `json:"level"`
	Text  []spanWire `json:"text"`
}

type listItemWire struct {
	Type    string     `json:"type"`
	Ordered bool       `json:"ordered"`
	Number  int        `json:"number"`
	Text    []spanWire `json:"text"`
}

type blockQuoteWire struct {
	Type     string        `json:"type"`
	Children []interface{} `json:"children"`
}

type inlineCodeWire struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

type codeBlockWire struct {
	Type     string  `json:"type"`
	Language *string `json:"language"`
	Code     string  `json:"code"`
}

type linkWire struct {
	Type   string     `json:"type"`
	Label  []spanWire `json:"label"`
	Target string     `json:"target"`
}

type imageWire struct {
	Type   string `json:"type"`
	Alt    string `json:"alt"`
	Source string `json:"source"`
}

type rawHTMLWire struct {
	Type string `json:"type"`
	HTML string `json:"html"`
}

// Encode serialises the document to indented JSON
func Encode(doc *domain.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("interchange: nil document")
	}
	wire, err := encodeDocument(doc)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(wire, "", "  ")
}

// Write encodes the document to w
func Write(w io.Writer, doc *domain.Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// SaveFile writes the document to path, replacing the file atomically
func SaveFile(path string, doc *domain.Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".daily-feed-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func encodeDocument(doc *domain.Document) (*documentWire, error) {
	wire := &documentWire{
		Version:          FormatVersion,
		Title:            doc.Title,
		Author:           doc.Author,
		Description:      doc.Description,
		GeneratedAt:      encodeTime(doc.GeneratedAt),
		TotalReadingTime: encodeReadingTime(doc.TotalReadingTime),
	}

	if doc.Feeds != nil {
		wire.Feeds = make([]feedWire, 0, len(doc.Feeds))
		for i := range doc.Feeds {
			f, err := encodeFeed(&doc.Feeds[i])
			if err != nil {
				return nil, fmt.Errorf("feeds[%d]: %w", i, err)
			}
			wire.Feeds = append(wire.Feeds, f)
		}
	}

	frontPage, err := encodeBlocks(doc.FrontPage)
	if err != nil {
		return nil, fmt.Errorf("front_page: %w", err)
	}
	wire.FrontPage = frontPage
	return wire, nil
}

func encodeFeed(feed *domain.Feed) (feedWire, error) {
	wire := feedWire{
		Name:             feed.Name,
		Description:      feed.Description,
		URL:              feed.URL,
		TotalReadingTime: encodeReadingTime(feed.TotalReadingTime),
	}
	if feed.Articles != nil {
		wire.Articles = make([]articleWire, 0, len(feed.Articles))
		for i := range feed.Articles {
			a, err := encodeArticle(&feed.Articles[i])
			if err != nil {
				return wire, fmt.Errorf("articles[%d]: %w", i, err)
			}
			wire.Articles = append(wire.Articles, a)
		}
	}
	return wire, nil
}

func encodeArticle(article *domain.Article) (articleWire, error) {
	wire := articleWire{
		Title:       article.Title,
		Published:   encodeTime(article.Published),
		Source:      article.Source,
		Link:        article.Link,
		Author:      article.Author,
		ReadingTime: encodeReadingTime(article.ReadingTime),
	}

	blocks, err := encodeBlocks(article.Blocks)
	if err != nil {
		return wire, fmt.Errorf("blocks: %w", err)
	}
	wire.Blocks = blocks

	if article.Comments != nil {
		wire.Comments = make([]commentWire, 0, len(article.Comments))
		for i, c := range article.Comments {
			body, err := encodeBlocks(c.Body)
			if err != nil {
				return wire, fmt.Errorf("comments[%d].body: %w", i, err)
			}
			wire.Comments = append(wire.Comments, commentWire{
				Author:    c.Author,
				Body:      body,
				Score:     c.Score,
				Timestamp: encodeTime(c.Timestamp),
			})
		}
	}
	return wire, nil
}

func encodeBlocks(blocks []domain.Block) ([]interface{}, error) {
	if blocks == nil {
		return nil, nil
	}
	out := make([]interface{}, 0, len(blocks))
	for i, b := range blocks {
		w, err := encodeBlock(b)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, w)
	}
	return out, nil
}

func encodeBlock(b domain.Block) (interface{}, error) {
	switch v := b.(type) {
	case domain.Paragraph:
		return paragraphWire{Type: string(v.Kind()), Text: encodeText(v.Text)}, nil
	case domain.Heading:
		return headingWire{Type: string(v.Kind()), Level: v.Level, Text: encodeText(v.Text)}, nil
	case domain.ListItem:
		return listItemWire{Type: string(v.Kind()), Ordered: v.Ordered, Number: v.Number, Text: encodeText(v.Text)}, nil
	case domain.BlockQuote:
		children, err := encodeBlocks(v.Children)
		if err != nil {
			return nil, err
		}
		return blockQuoteWire{Type: string(v.Kind()), Children: children}, nil
	case domain.InlineCode:
		return inlineCodeWire{Type: string(v.Kind()), Code: v.Code}, nil
	case domain.CodeBlock:
		return codeBlockWire{Type: string(v.Kind()), Language: v.Language, Code: v.Code}, nil
	case domain.Link:
		return linkWire{Type: string(v.Kind()), Label: encodeText(v.Label), Target: v.Target}, nil
	case domain.Image:
		return imageWire{Type: string(v.Kind()), Alt: v.Alt, Source: v.Source}, nil
	case domain.RawHTML:
		return rawHTMLWire{Type: string(v.Kind()), HTML: v.HTML}, nil
	case nil:
		return nil, fmt.Errorf("nil block")
	}
	return nil, fmt.Errorf("unsupported block %T", b)
}

func encodeText(text domain.TextContent) []spanWire {
	if text.Spans == nil {
		return nil
	}
	spans := make([]spanWire, 0, len(text.Spans))
	for _, s := range text.Spans {
		w := spanWire{
			Text:   s.Text,
			Bold:   s.Formatting.Bold,
			Italic: s.Formatting.Italic,
			Code:   s.Formatting.Code,
		}
		if s.Formatting.Link != "" {
			link := s.Formatting.Link
			w.Link = &link
		}
		spans = append(spans, w)
	}
	return spans
}

func encodeTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

func encodeReadingTime(rt *domain.ReadingTime) interface{} {
	switch {
	case rt == nil:
		return nil
	case rt.IsBelowOneMinute():
		return belowOneMinute
	}
	return int(*rt)
}
