// ABOUTME: Inline text model shared by every block that carries prose
// ABOUTME: A TextContent is an ordered run of spans, each with its own formatting

package domain

import "strings"

// Formatting describes how a span of text is presented.
// The zero value is plain text. A non-empty Link makes the span a hyperlink.
type Formatting struct {
	Bold   bool
	Italic bool
	Code   bool
	Link   string
}

// IsPlain reports whether no formatting is applied.
func (f Formatting) IsPlain() bool {
	return f == Formatting{}
}

// TextSpan is a run of text with a single formatting.
type TextSpan struct {
	Text       string
	Formatting Formatting
}

// TextContent is an ordered sequence of spans, read left to right.
type TextContent struct {
	Spans []TextSpan
}

// Plain builds a TextContent holding a single unformatted span.
// An empty string yields an empty TextContent.
func Plain(text string) TextContent {
	if text == "" {
		return TextContent{}
	}
	return TextContent{Spans: []TextSpan{{Text: text}}}
}

// Spans builds a TextContent from the given spans.
func Spans(spans ...TextSpan) TextContent {
	return TextContent{Spans: spans}
}

// PlainText concatenates the text of every span, dropping formatting.
func (t TextContent) PlainText() string {
	if len(t.Spans) == 1 {
		return t.Spans[0].Text
	}
	var b strings.Builder
	for _, span := range t.Spans {
		b.WriteString(span.Text)
	}
	return b.String()
}

// IsEmpty reports whether the content has no visible text.
func (t TextContent) IsEmpty() bool {
	for _, span := range t.Spans {
		if span.Text != "" {
			return false
		}
	}
	return true
}
