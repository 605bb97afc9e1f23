// ABOUTME: Markdown render backend for the document tree
// ABOUTME: Emits a single Markdown file with a table of contents, articles and top comments

package markdown

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"daily-feed/core/domain"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// TimeLayout formats timestamps in rendered output
const TimeLayout = "January 2, 2006 at 3:04 PM MST"

// Heading offsets place content headings below the section they belong to.
const (
	FrontPageHeadingOffset = 1
	ArticleHeadingOffset   = 3
)

// Renderer renders documents as Markdown. It implements interfaces.Renderer.
type Renderer struct {
	converter *md.Converter
}

// New creates a Markdown renderer
func New() *Renderer {
	return &Renderer{converter: md.NewConverter("", true, nil)}
}

// Format returns the configuration name of this backend
func (r *Renderer) Format() string { return "markdown" }

// Extension returns the output file extension
func (r *Renderer) Extension() string { return ".md" }

// Render writes the whole document to w
func (r *Renderer) Render(ctx context.Context, doc *domain.Document, w io.Writer) error {
	if doc == nil {
		return fmt.Errorf("markdown: nil document")
	}

	var b strings.Builder
	r.header(&b, doc)

	if len(doc.FrontPage) > 0 {
		b.WriteString("## Front Page\n\n")
		b.WriteString(r.Blocks(doc.FrontPage, FrontPageHeadingOffset))
		b.WriteString("---\n\n")
	}

	r.tableOfContents(&b, doc)

	for i := range doc.Feeds {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.feed(&b, &doc.Feeds[i])
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) header(b *strings.Builder, doc *domain.Document) {
	fmt.Fprintf(b, "# %s\n\n", escape(doc.Title))
	if doc.Description != "" {
		fmt.Fprintf(b, "%s\n\n", escape(doc.Description))
	}
	if doc.Author != "" {
		fmt.Fprintf(b, "**Author:** %s\n", escape(doc.Author))
	}
	if !doc.GeneratedAt.IsZero() {
		fmt.Fprintf(b, "**Generated:** %s\n", doc.GeneratedAt.Format(TimeLayout))
	}
	fmt.Fprintf(b, "**Total Articles:** %d\n", doc.TotalArticles())
	if doc.TotalReadingTime != nil {
		fmt.Fprintf(b, "**Reading Time:** %s\n", doc.TotalReadingTime)
	}
	b.WriteString("\n")
}

func (r *Renderer) tableOfContents(b *strings.Builder, doc *domain.Document) {
	b.WriteString("## Table of Contents\n\n")
	for _, feed := range doc.Feeds {
		fmt.Fprintf(b, "- [%s](#%s)\n", escape(feed.Name), Anchor(feed.Name))
		for _, article := range feed.Articles {
			fmt.Fprintf(b, "  - [%s](#%s)\n", escape(article.Title), Anchor(article.Title))
		}
	}
	b.WriteString("\n---\n\n")
}

func (r *Renderer) feed(b *strings.Builder, feed *domain.Feed) {
	fmt.Fprintf(b, "## %s\n\n", escape(feed.Name))
	if feed.Description != "" {
		fmt.Fprintf(b, "%s\n\n", escape(feed.Description))
	}
	fmt.Fprintf(b, "**Total Articles:** %d\n", len(feed.Articles))
	if feed.TotalReadingTime != nil {
		fmt.Fprintf(b, "**Reading Time:** %s\n", feed.TotalReadingTime)
	}
	b.WriteString("\n")

	for i := range feed.Articles {
		b.WriteString(r.Article(&feed.Articles[i]))
		b.WriteString("\n---\n\n")
	}
}

// Article renders one article with its metadata and comments, starting at an h3.
func (r *Renderer) Article(article *domain.Article) string {
	var b strings.Builder

	fmt.Fprintf(&b, "### %s\n\n", escape(article.Title))
	if !article.Published.IsZero() {
		fmt.Fprintf(&b, "**Published:** %s  \n", article.Published.Format(TimeLayout))
	}
	if article.Author != "" {
		fmt.Fprintf(&b, "**Author:** %s  \n", escape(article.Author))
	}
	fmt.Fprintf(&b, "**Source:** %s  \n", escape(article.Source))
	if article.ReadingTime != nil {
		fmt.Fprintf(&b, "**Reading Time:** %s  \n", article.ReadingTime)
	}
	if article.Link != "" {
		fmt.Fprintf(&b, "**Link:** [Read original article](%s)\n", destination(article.Link))
	}
	b.WriteString("\n")

	b.WriteString(r.Blocks(article.Blocks, ArticleHeadingOffset))

	if article.HasComments() {
		b.WriteString("#### Top Comments\n\n")
		for _, c := range article.Comments {
			b.WriteString(r.Comment(c))
		}
	}
	return b.String()
}

// Comment renders a comment as a block quote.
func (r *Renderer) Comment(c domain.Comment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "> **%s** (Score: %d)\n", escape(c.Author), c.Score)
	if !c.Timestamp.IsZero() {
		fmt.Fprintf(&b, "> *%s*\n", c.Timestamp.Format(TimeLayout))
	}
	b.WriteString(">\n")
	b.WriteString(quote(r.Blocks(c.Body, ArticleHeadingOffset)))
	b.WriteString("\n")
	return b.String()
}

// Blocks renders content blocks. Heading levels are shifted down by offset and
// capped at h6.
func (r *Renderer) Blocks(blocks []domain.Block, offset int) string {
	var b strings.Builder
	for i, block := range blocks {
		item, isItem := block.(domain.ListItem)
		if !isItem {
			b.WriteString(r.block(block, offset))
			continue
		}

		if item.Ordered {
			fmt.Fprintf(&b, "%d. %s\n", max(item.Number, 1), r.Text(item.Text))
		} else {
			fmt.Fprintf(&b, "- %s\n", r.Text(item.Text))
		}
		if next := i + 1; next == len(blocks) || !sameList(item, blocks[next]) {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (r *Renderer) block(block domain.Block, offset int) string {
	switch v := block.(type) {
	case domain.Paragraph:
		if v.Text.IsEmpty() {
			return ""
		}
		return r.Text(v.Text) + "\n\n"
	case domain.Heading:
		level := min(v.Level+offset, 6)
		return strings.Repeat("#", level) + " " + r.Text(v.Text) + "\n\n"
	case domain.BlockQuote:
		return quote(r.Blocks(v.Children, offset)) + "\n"
	case domain.InlineCode:
		return codeSpan(v.Code) + "\n\n"
	case domain.CodeBlock:
		return fence(v.Code, language(v.Language))
	case domain.Link:
		label := r.Text(v.Label)
		if label == "" {
			label = escape(v.Target)
		}
		return fmt.Sprintf("[%s](%s)\n\n", label, destination(v.Target))
	case domain.Image:
		return fmt.Sprintf("![%s](%s)\n\n", escape(v.Alt), destination(v.Source))
	case domain.RawHTML:
		return r.rawHTML(v.HTML)
	}
	return ""
}

// rawHTML converts embedded markup to Markdown, keeping the source as a fenced
// block when conversion yields nothing.
func (r *Renderer) rawHTML(markup string) string {
	converted, err := r.converter.ConvertString(markup)
	if err == nil && strings.TrimSpace(converted) != "" {
		return strings.TrimSpace(converted) + "\n\n"
	}
	return fence(markup, "html")
}

// Text renders inline spans
func (r *Renderer) Text(text domain.TextContent) string {
	var b strings.Builder
	for i, span := range text.Spans {
		if span.Text == "" {
			continue
		}

		var s string
		if span.Formatting.Code {
			s = codeSpan(span.Text)
		} else {
			s = escape(span.Text)
			if i == 0 {
				s = escapeLineStart(s)
			}
		}
		if span.Formatting.Bold {
			s = "**" + s + "**"
		}
		if span.Formatting.Italic {
			s = "*" + s + "*"
		}
		if span.Formatting.Link != "" {
			s = "[" + s + "](" + destination(span.Formatting.Link) + ")"
		}
		b.WriteString(s)
	}
	return b.String()
}

// Anchor converts a heading into the fragment identifier Markdown viewers generate for it.
func Anchor(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r == ' ':
			b.WriteRune('-')
		case r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

func sameList(item domain.ListItem, next domain.Block) bool {
	n, ok := next.(domain.ListItem)
	return ok && n.Ordered == item.Ordered
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
)

// entityLike matches text that a Markdown processor would read as a character reference.
var entityLike = regexp.MustCompile(`&(#?[A-Za-z0-9]+;)`)

func escape(s string) string {
	return entityLike.ReplaceAllString(escaper.Replace(s), `\&$1`)
}

// escapeLineStart keeps text at the start of a line from turning into a list,
// heading or thematic break.
func escapeLineStart(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '#', '-', '+', '=':
		return `\` + s
	}
	digits := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if digits > 0 && (s[digits] == '.' || s[digits] == ')') {
		return s[:digits] + `\` + s[digits:]
	}
	return s
}

func codeSpan(code string) string {
	ticks := "`"
	for strings.Contains(code, ticks) {
		ticks += "`"
	}
	if strings.HasPrefix(code, "`") || strings.HasSuffix(code, "`") {
		return ticks + " " + code + " " + ticks
	}
	return ticks + code + ticks
}

func fence(code, lang string) string {
	ticks := "```"
	for strings.Contains(code, ticks) {
		ticks += "`"
	}
	return ticks + lang + "\n" + strings.TrimRight(code, "\n") + "\n" + ticks + "\n\n"
}

func language(lang *string) string {
	if lang == nil {
		return ""
	}
	return *lang
}

func destination(url string) string {
	if strings.ContainsAny(url, " ()<>") {
		return "<" + strings.NewReplacer("<", "%3C", ">", "%3E").Replace(url) + ">"
	}
	return url
}

func quote(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	var b strings.Builder
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			b.WriteString(">\n")
			continue
		}
		b.WriteString("> " + line + "\n")
	}
	return b.String()
}
