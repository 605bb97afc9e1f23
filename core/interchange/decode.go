package interchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"daily-feed/core/domain"
	coreerrors "daily-feed/core/errors"
)

// Decode parses interchange JSON into a document. Every failure is a
// *errors.DecodeError naming the offending path.
func Decode(data []byte) (*domain.Document, error) {
	root, err := parseObject("", data)
	if err != nil {
		return nil, err
	}

	version, err := root.integer("version")
	if err != nil {
		return nil, err
	}
	if version != FormatVersion {
		return nil, &coreerrors.DecodeError{Path: "version", Message: fmt.Sprintf("unsupported format version %d", version)}
	}

	doc := &domain.Document{}
	if doc.Title, err = root.str("title"); err != nil {
		return nil, err
	}
	if doc.Author, err = root.str("author"); err != nil {
		return nil, err
	}
	if doc.Description, err = root.str("description"); err != nil {
		return nil, err
	}
	if doc.GeneratedAt, err = root.timestamp("generated_at"); err != nil {
		return nil, err
	}
	if doc.TotalReadingTime, err = root.readingTime("total_reading_time"); err != nil {
		return nil, err
	}
	if doc.FrontPage, err = root.blocks("front_page"); err != nil {
		return nil, err
	}

	items, path, err := root.array("feeds")
	if err != nil {
		return nil, err
	}
	if items != nil {
		doc.Feeds = make([]domain.Feed, 0, len(items))
		for i, raw := range items {
			feed, err := decodeFeed(index(path, i), raw)
			if err != nil {
				return nil, err
			}
			doc.Feeds = append(doc.Feeds, feed)
		}
	}

	return doc, nil
}

// Read decodes a document from r
func Read(r io.Reader) (*domain.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// LoadFile decodes the document stored at path
func LoadFile(path string) (*domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func decodeFeed(path string, raw json.RawMessage) (domain.Feed, error) {
	var feed domain.Feed
	obj, err := parseObject(path, raw)
	if err != nil {
		return feed, err
	}

	if feed.Name, err = obj.str("name"); err != nil {
		return feed, err
	}
	if feed.Description, err = obj.str("description"); err != nil {
		return feed, err
	}
	if feed.URL, err = obj.str("url"); err != nil {
		return feed, err
	}
	if feed.TotalReadingTime, err = obj.readingTime("total_reading_time"); err != nil {
		return feed, err
	}

	items, itemsPath, err := obj.array("articles")
	if err != nil {
		return feed, err
	}
	if items != nil {
		feed.Articles = make([]domain.Article, 0, len(items))
		for i, raw := range items {
			article, err := decodeArticle(index(itemsPath, i), raw)
			if err != nil {
				return feed, err
			}
			feed.Articles = append(feed.Articles, article)
		}
	}
	return feed, nil
}

func decodeArticle(path string, raw json.RawMessage) (domain.Article, error) {
	var article domain.Article
	obj, err := parseObject(path, raw)
	if err != nil {
		return article, err
	}

	if article.Title, err = obj.str("title"); err != nil {
		return article, err
	}
	if article.Published, err = obj.timestamp("published"); err != nil {
		return article, err
	}
	if article.Source, err = obj.str("source"); err != nil {
		return article, err
	}
	if article.Link, err = obj.str("link"); err != nil {
		return article, err
	}
	if article.Author, err = obj.str("author"); err != nil {
		return article, err
	}
	if article.Blocks, err = obj.blocks("blocks"); err != nil {
		return article, err
	}
	if article.ReadingTime, err = obj.readingTime("reading_time"); err != nil {
		return article, err
	}

	items, commentsPath, err := obj.array("comments")
	if err != nil {
		return article, err
	}
	if items != nil {
		article.Comments = make([]domain.Comment, 0, len(items))
		for i, raw := range items {
			comment, err := decodeComment(index(commentsPath, i), raw)
			if err != nil {
				return article, err
			}
			article.Comments = append(article.Comments, comment)
		}
	}
	return article, nil
}

func decodeComment(path string, raw json.RawMessage) (domain.Comment, error) {
	var comment domain.Comment
	obj, err := parseObject(path, raw)
	if err != nil {
		return comment, err
	}

	if comment.Author, err = obj.str("author"); err != nil {
		return comment, err
	}
	if comment.Body, err = obj.blocks("body"); err != nil {
		return comment, err
	}
	if comment.Score, err = obj.integer("score"); err != nil {
		return comment, err
	}
	if comment.Timestamp, err = obj.timestamp("timestamp"); err != nil {
		return comment, err
	}
	return comment, nil
}

func decodeBlock(path string, raw json.RawMessage) (domain.Block, error) {
	obj, err := parseObject(path, raw)
	if err != nil {
		return nil, err
	}

	kind, err := obj.str("type")
	if err != nil {
		return nil, err
	}

	switch domain.BlockKind(kind) {
	case domain.KindParagraph:
		text, err := obj.text("text")
		return domain.Paragraph{Text: text}, err

	case domain.KindHeading:
		level, err := obj.integer("level")
		if err != nil {
			return nil, err
		}
		if !domain.ValidHeadingLevel(level) {
			return nil, &coreerrors.DecodeError{Path: join(path, "level"), Message: fmt.Sprintf("heading level %d out of range 1-6", level)}
		}
		text, err := obj.text("text")
		return domain.Heading{Level: level, Text: text}, err

	case domain.KindListItem:
		ordered, err := obj.boolean("ordered")
		if err != nil {
			return nil, err
		}
		number, err := obj.integer("number")
		if err != nil {
			return nil, err
		}
		text, err := obj.text("text")
		return domain.ListItem{Ordered: ordered, Number: number, Text: text}, err

	case domain.KindBlockQuote:
		children, err := obj.blocks("children")
		return domain.BlockQuote{Children: children}, err

	case domain.KindInlineCode:
		code, err := obj.str("code")
		return domain.InlineCode{Code: code}, err

	case domain.KindCodeBlock:
		language, err := obj.optionalString("language")
		if err != nil {
			return nil, err
		}
		code, err := obj.str("code")
		return domain.CodeBlock{Language: language, Code: code}, err

	case domain.KindLink:
		label, err := obj.text("label")
		if err != nil {
			return nil, err
		}
		target, err := obj.str("target")
		return domain.Link{Label: label, Target: target}, err

	case domain.KindImage:
		alt, err := obj.str("alt")
		if err != nil {
			return nil, err
		}
		source, err := obj.str("source")
		return domain.Image{Alt: alt, Source: source}, err

	case domain.KindRawHTML:
		markup, err := obj.str("html")
		return domain.RawHTML{HTML: markup}, err
	}

	return nil, &coreerrors.DecodeError{Path: join(path, "type"), Message: fmt.Sprintf("unknown block type %q", kind)}
}

func decodeSpan(path string, raw json.RawMessage) (domain.TextSpan, error) {
	var span domain.TextSpan
	obj, err := parseObject(path, raw)
	if err != nil {
		return span, err
	}

	if span.Text, err = obj.str("text"); err != nil {
		return span, err
	}
	if span.Formatting.Bold, err = obj.boolean("bold"); err != nil {
		return span, err
	}
	if span.Formatting.Italic, err = obj.boolean("italic"); err != nil {
		return span, err
	}
	if span.Formatting.Code, err = obj.boolean("code"); err != nil {
		return span, err
	}
	link, err := obj.optionalString("link")
	if err != nil {
		return span, err
	}
	if link != nil {
		if *link == "" {
			return span, &coreerrors.DecodeError{Path: join(path, "link"), Message: "empty link target, use null"}
		}
		span.Formatting.Link = *link
	}
	return span, nil
}

// object is one decoded JSON object with its location in the document.
type object struct {
	path   string
	fields map[string]json.RawMessage
}

func parseObject(path string, raw json.RawMessage) (*object, error) {
	if isNull(raw) {
		return nil, &coreerrors.DecodeError{Path: path, Message: "expected object, got null"}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &coreerrors.DecodeError{Path: path, Message: "expected object", Err: err}
	}
	return &object{path: path, fields: fields}, nil
}

// field returns the raw value of a required key.
func (o *object) field(key string) (json.RawMessage, string, error) {
	path := join(o.path, key)
	raw, ok := o.fields[key]
	if !ok {
		return nil, path, &coreerrors.DecodeError{Path: path, Message: "missing required field"}
	}
	return raw, path, nil
}

// scalar decodes a required, non-null value into dst.
func (o *object) scalar(key, kind string, dst interface{}) error {
	raw, path, err := o.field(key)
	if err != nil {
		return err
	}
	if isNull(raw) {
		return &coreerrors.DecodeError{Path: path, Message: "expected " + kind + ", got null"}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &coreerrors.DecodeError{Path: path, Message: "expected " + kind, Err: err}
	}
	return nil
}

func (o *object) str(key string) (string, error) {
	var s string
	err := o.scalar(key, "string", &s)
	return s, err
}

func (o *object) boolean(key string) (bool, error) {
	var b bool
	err := o.scalar(key, "boolean", &b)
	return b, err
}

func (o *object) integer(key string) (int, error) {
	var n int
	err := o.scalar(key, "integer", &n)
	return n, err
}

func (o *object) optionalString(key string) (*string, error) {
	raw, path, err := o.field(key)
	if err != nil || isNull(raw) {
		return nil, err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, &coreerrors.DecodeError{Path: path, Message: "expected string or null", Err: err}
	}
	return &s, nil
}

func (o *object) timestamp(key string) (time.Time, error) {
	value, err := o.optionalString(key)
	if err != nil || value == nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, *value)
	if err != nil {
		return time.Time{}, &coreerrors.DecodeError{Path: join(o.path, key), Message: "expected RFC 3339 timestamp", Err: err}
	}
	return t.UTC(), nil
}

func (o *object) readingTime(key string) (*domain.ReadingTime, error) {
	raw, path, err := o.field(key)
	if err != nil || isNull(raw) {
		return nil, err
	}

	var label string
	if json.Unmarshal(raw, &label) == nil {
		if label != belowOneMinute {
			return nil, &coreerrors.DecodeError{Path: path, Message: fmt.Sprintf("unknown reading time %q", label)}
		}
		return domain.BelowOneMinute.Ptr(), nil
	}

	var minutes int
	if err := json.Unmarshal(raw, &minutes); err != nil {
		return nil, &coreerrors.DecodeError{Path: path, Message: "expected minutes, \"" + belowOneMinute + "\" or null", Err: err}
	}
	if minutes < 0 {
		return nil, &coreerrors.DecodeError{Path: path, Message: fmt.Sprintf("negative reading time %d", minutes)}
	}
	return domain.ReadingTime(minutes).Ptr(), nil
}

// array returns the elements of a required array field; null yields a nil slice.
func (o *object) array(key string) ([]json.RawMessage, string, error) {
	raw, path, err := o.field(key)
	if err != nil || isNull(raw) {
		return nil, path, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, path, &coreerrors.DecodeError{Path: path, Message: "expected array or null", Err: err}
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, path, nil
}

func (o *object) blocks(key string) ([]domain.Block, error) {
	items, path, err := o.array(key)
	if err != nil || items == nil {
		return nil, err
	}
	blocks := make([]domain.Block, 0, len(items))
	for i, raw := range items {
		b, err := decodeBlock(index(path, i), raw)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func (o *object) text(key string) (domain.TextContent, error) {
	items, path, err := o.array(key)
	if err != nil || items == nil {
		return domain.TextContent{}, err
	}
	spans := make([]domain.TextSpan, 0, len(items))
	for i, raw := range items {
		s, err := decodeSpan(index(path, i), raw)
		if err != nil {
			return domain.TextContent{}, err
		}
		spans = append(spans, s)
	}
	return domain.TextContent{Spans: spans}, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
