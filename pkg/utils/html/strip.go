// ABOUTME: HTML utilities for stripping tags and decoding entities
// ABOUTME: Provides common HTML processing functions used across the application

package html

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML removes HTML tags, decodes entities and collapses whitespace.
// Script and style contents are dropped.
func StripHTML(markup string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	skip := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way keep what was readable.
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if isSkipped(name) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if isSkipped(name) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}
}

// DecodeEntities decodes HTML entities
func DecodeEntities(text string) string {
	return html.UnescapeString(text)
}

func isSkipped(name []byte) bool {
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}
