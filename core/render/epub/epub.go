// ABOUTME: EPUB render backend packaging the document as an EPUB 3 book
// ABOUTME: Chapter bodies go through the Markdown renderer and goldmark's XHTML output

package epub

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"text/template"
	"time"

	"daily-feed/core/domain"
	"daily-feed/core/render/markdown"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

const (
	contentDir = "OEBPS"
	language   = "en"
)

// chapter is one XHTML file in reading order.
type chapter struct {
	File     string
	Title    string
	Body     string
	Children []*chapter
	nav      bool
}

// Renderer renders documents as EPUB files. It implements interfaces.Renderer.
type Renderer struct {
	markdown *markdown.Renderer
	xhtml    goldmark.Markdown
}

// New creates an EPUB renderer
func New() *Renderer {
	return &Renderer{
		markdown: markdown.New(),
		xhtml:    goldmark.New(goldmark.WithRendererOptions(gmhtml.WithXHTML())),
	}
}

// Format returns the configuration name of this backend
func (r *Renderer) Format() string { return "epub" }

// Extension returns the output file extension
func (r *Renderer) Extension() string { return ".epub" }

// Render writes the document as an EPUB container to w
func (r *Renderer) Render(ctx context.Context, doc *domain.Document, w io.Writer) error {
	if doc == nil {
		return fmt.Errorf("epub: nil document")
	}

	chapters, err := r.chapters(ctx, doc)
	if err != nil {
		return err
	}

	book := &book{
		ID:       Identifier(doc),
		Title:    doc.Title,
		Author:   doc.Author,
		Desc:     doc.Description,
		Language: language,
		Modified: modified(doc).Format("2006-01-02T15:04:05Z"),
		Chapters: chapters,
	}
	return book.write(w, modified(doc))
}

// Identifier derives a stable book identifier from the document title and generation time.
func Identifier(doc *domain.Document) string {
	name := doc.Title + "|" + doc.GeneratedAt.UTC().Format(time.RFC3339Nano)
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func modified(doc *domain.Document) time.Time {
	if doc.GeneratedAt.IsZero() {
		return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return doc.GeneratedAt.UTC().Truncate(time.Second)
}

func (r *Renderer) chapters(ctx context.Context, doc *domain.Document) ([]*chapter, error) {
	var chapters []*chapter

	title, err := r.titlePage(doc)
	if err != nil {
		return nil, err
	}
	chapters = append(chapters, &chapter{File: "title.xhtml", Title: "Title Page", Body: title})

	if len(doc.FrontPage) > 0 {
		body, err := r.toXHTML(r.markdown.Blocks(doc.FrontPage, 1))
		if err != nil {
			return nil, fmt.Errorf("front page: %w", err)
		}
		chapters = append(chapters, &chapter{
			File:  "front_page.xhtml",
			Title: "Front Page Summary",
			Body:  "<h1>Front Page Summary</h1>\n<div class=\"content\">" + body + "</div>",
		})
	}

	toc := &chapter{File: "toc.xhtml", Title: "Table of Contents", nav: true}
	chapters = append(chapters, toc)

	index := 0
	for fi := range doc.Feeds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		feed := &doc.Feeds[fi]
		index++
		section := &chapter{
			File:  fmt.Sprintf("feed_%d.xhtml", index),
			Title: feed.Name,
			Body:  feedPage(feed),
		}
		for ai := range feed.Articles {
			index++
			article := &feed.Articles[ai]
			body, err := r.articlePage(article)
			if err != nil {
				return nil, fmt.Errorf("feed %q article %q: %w", feed.Name, article.Title, err)
			}
			section.Children = append(section.Children, &chapter{
				File:  fmt.Sprintf("article_%d.xhtml", index),
				Title: article.Title,
				Body:  body,
			})
		}
		chapters = append(chapters, section)
	}

	toc.Body = tocPage(chapters)
	return chapters, nil
}

func (r *Renderer) titlePage(doc *domain.Document) (string, error) {
	var b bytes.Buffer
	err := titleTemplate.Execute(&b, map[string]interface{}{
		"Doc":       doc,
		"Generated": formatTime(doc.GeneratedAt),
		"Articles":  doc.TotalArticles(),
	})
	return b.String(), err
}

func feedPage(feed *domain.Feed) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<h1>%s</h1>\n", esc(feed.Name))
	description := feed.Description
	if description == "" {
		description = "No description"
	}
	fmt.Fprintf(&b, "<p><strong>Description:</strong> %s</p>\n", esc(description))
	fmt.Fprintf(&b, "<p><strong>Total Articles:</strong> %d</p>\n", len(feed.Articles))
	if feed.TotalReadingTime != nil {
		fmt.Fprintf(&b, "<p><strong>Reading Time:</strong> %s</p>\n", esc(feed.TotalReadingTime.String()))
	}
	b.WriteString("<hr />")
	return b.String()
}

func (r *Renderer) articlePage(article *domain.Article) (string, error) {
	content, err := r.toXHTML(r.markdown.Blocks(article.Blocks, 1))
	if err != nil {
		return "", err
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "<h1>%s</h1>\n<div class=\"pub-date\">", esc(article.Title))
	if !article.Published.IsZero() {
		fmt.Fprintf(&b, "%s - ", esc(formatTime(article.Published)))
	}
	fmt.Fprintf(&b, "<strong>Source:</strong> %s", esc(article.Source))
	if article.Author != "" {
		fmt.Fprintf(&b, " - <strong>Author:</strong> %s", esc(article.Author))
	}
	if article.ReadingTime != nil {
		fmt.Fprintf(&b, " - %s", esc(article.ReadingTime.String()))
	}
	b.WriteString("</div>\n")
	fmt.Fprintf(&b, "<div class=\"content\">%s</div>\n", content)

	if article.Link != "" {
		fmt.Fprintf(&b, "<div class=\"link\"><a href=\"%s\">Read original article</a></div>\n", esc(article.Link))
	}

	if article.HasComments() {
		b.WriteString("<div class=\"comments-section\">\n<h2>Top Comments</h2>\n")
		for _, c := range article.Comments {
			body, err := r.toXHTML(r.markdown.Blocks(c.Body, 2))
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "<div class=\"comment\">\n<div class=\"comment-author\">%s<span class=\"comment-score\">Score: %d</span></div>\n", esc(c.Author), c.Score)
			if !c.Timestamp.IsZero() {
				fmt.Fprintf(&b, "<div class=\"comment-date\">%s</div>\n", esc(formatTime(c.Timestamp)))
			}
			fmt.Fprintf(&b, "<div class=\"comment-content\">%s</div>\n</div>\n", body)
		}
		b.WriteString("</div>")
	}
	return b.String(), nil
}

func tocPage(chapters []*chapter) string {
	var b bytes.Buffer
	b.WriteString("<div class=\"toc\">\n<h1>Table of Contents</h1>\n<ul>\n")
	for _, c := range chapters {
		if c.File == "title.xhtml" || c.nav {
			continue
		}
		fmt.Fprintf(&b, "<li class=\"feed-section\"><a href=\"%s\">%s</a>", c.File, esc(c.Title))
		if len(c.Children) > 0 {
			b.WriteString("\n<ul>\n")
			for _, child := range c.Children {
				fmt.Fprintf(&b, "<li class=\"article-item\"><a href=\"%s\">%s</a></li>\n", child.File, esc(child.Title))
			}
			b.WriteString("</ul>\n")
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>\n</div>")
	return b.String()
}

// toXHTML converts Markdown to an XHTML fragment.
func (r *Renderer) toXHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.xhtml.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(markdown.TimeLayout)
}

func esc(s string) string {
	return html.EscapeString(s)
}

var funcs = template.FuncMap{"esc": esc}

var titleTemplate = template.Must(template.New("title").Funcs(funcs).Parse(`<h1>{{esc .Doc.Title}}</h1>
{{- if .Doc.Description}}
<p>{{esc .Doc.Description}}</p>
{{- end}}
{{- if .Doc.Author}}
<p><strong>Author:</strong> {{esc .Doc.Author}}</p>
{{- end}}
{{- if .Generated}}
<p><strong>Generated:</strong> {{esc .Generated}}</p>
{{- end}}
<p><strong>Total Articles:</strong> {{.Articles}}</p>
{{- if .Doc.TotalReadingTime}}
<p><strong>Reading Time:</strong> {{esc .Doc.TotalReadingTime.String}}</p>
{{- end}}
<h2>Feeds</h2>
<ul>
{{- range .Doc.Feeds}}
<li><strong>{{esc .Name}}:</strong> {{if .Description}}{{esc .Description}}{{else}}No description{{end}} ({{len .Articles}} articles)</li>
{{- end}}
</ul>`))
