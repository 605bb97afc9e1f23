// ABOUTME: Inline run collection: formatted spans, whitespace collapsing and span merging
// ABOUTME: Images met inside a run are hoisted out as blocks

package normalize

import (
	"strings"
	"unicode"

	"daily-feed/core/domain"
	"golang.org/x/net/html"
)

// run accumulates inline content until a block boundary.
type run struct {
	spans  []domain.TextSpan
	images []domain.Block
}

func (r *run) empty() bool {
	for _, span := range r.spans {
		if strings.TrimSpace(span.Text) != "" {
			return false
		}
	}
	return len(r.images) == 0
}

func (r *run) text(s string, f domain.Formatting) {
	if s = collapse(s); s != "" {
		r.spans = append(r.spans, domain.TextSpan{Text: s, Formatting: f})
	}
}

func (r *run) collectChildren(node *html.Node, f domain.Formatting) {
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		r.collect(c, f)
	}
}

// collect adds node and its descendants to the run under formatting f.
func (r *run) collect(node *html.Node, f domain.Formatting) {
	switch node.Type {
	case html.TextNode:
		r.text(node.Data, f)
		return
	case html.ElementNode:
	default:
		return
	}

	tag := node.Data
	switch {
	case droppedTags[tag], embedTags[tag]:
		return
	case tag == "br":
		r.text(" ", f)
		return
	case tag == "img":
		if src := strings.TrimSpace(attr(node, "src")); src != "" {
			alt := strings.TrimSpace(collapse(attr(node, "alt")))
			r.images = append(r.images, domain.Image{Alt: alt, Source: src})
		}
		return
	case boldTags[tag]:
		f.Bold = true
	case italicTags[tag]:
		f.Italic = true
	case codeTags[tag]:
		f.Code = true
	case tag == "a":
		if href := strings.TrimSpace(attr(node, "href")); href != "" {
			f.Link = href
		}
	case isBlockTag(tag):
		r.text(" ", f)
		r.collectChildren(node, f)
		r.text(" ", f)
		return
	}
	r.collectChildren(node, f)
}

// finish trims and merges the collected spans into TextContent.
func (r *run) finish() domain.TextContent {
	spans := make([]domain.TextSpan, 0, len(r.spans))
	afterSpace := true
	for _, span := range r.spans {
		if afterSpace {
			span.Text = strings.TrimLeft(span.Text, " ")
		}
		if span.Text == "" {
			continue
		}
		afterSpace = strings.HasSuffix(span.Text, " ")
		spans = append(spans, span)
	}

	for len(spans) > 0 {
		last := &spans[len(spans)-1]
		last.Text = strings.TrimRight(last.Text, " ")
		if last.Text != "" {
			break
		}
		spans = spans[:len(spans)-1]
	}

	return merge(spans)
}

// merge joins adjacent spans that share formatting and drops empty ones.
func merge(spans []domain.TextSpan) domain.TextContent {
	var out []domain.TextSpan
	for _, span := range spans {
		if span.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Formatting == span.Formatting {
			out[n-1].Text += span.Text
			continue
		}
		out = append(out, span)
	}
	return domain.TextContent{Spans: out}
}

// collapse replaces every run of whitespace with a single space. Leading and
// trailing whitespace is kept as one space so span boundaries stay intact.
func collapse(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	if pendingSpace {
		b.WriteByte(' ')
	}
	return b.String()
}
