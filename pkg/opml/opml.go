// Package opml imports feed subscriptions from OPML files and exports the
// configured sources back out.
package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// OPML represents the root of an OPML document.
type OPML struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    Head     `xml:"head"`
	Body    Body     `xml:"body"`
}

// Head contains OPML metadata.
type Head struct {
	Title       string `xml:"title,omitempty"`
	DateCreated string `xml:"dateCreated,omitempty"`
}

// Body contains the outlines.
type Body struct {
	Outlines []Outline `xml:"outline"`
}

// Outline is a folder or a feed.
type Outline struct {
	Text        string    `xml:"text,attr"`
	Title       string    `xml:"title,attr,omitempty"`
	Type        string    `xml:"type,attr,omitempty"`
	XMLURL      string    `xml:"xmlUrl,attr,omitempty"`
	HTMLURL     string    `xml:"htmlUrl,attr,omitempty"`
	Description string    `xml:"description,attr,omitempty"`
	Outlines    []Outline `xml:"outline,omitempty"`
}

// FeedEntry is a flattened feed with its folder path.
type FeedEntry struct {
	FolderPath  []string // e.g., ["Tech", "Google"]
	Title       string
	URL         string
	Description string
}

// Parse reads an OPML document and returns its feeds in document order.
func Parse(r io.Reader) ([]FeedEntry, error) {
	var doc OPML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode opml: %w", err)
	}

	var entries []FeedEntry
	var walk func(outlines []Outline, path []string)
	walk = func(outlines []Outline, path []string) {
		for _, o := range outlines {
			if o.XMLURL != "" {
				title := o.Title
				if title == "" {
					title = o.Text
				}
				if title == "" {
					title = o.XMLURL
				}
				entries = append(entries, FeedEntry{
					FolderPath:  append([]string{}, path...),
					Title:       strings.TrimSpace(title),
					URL:         strings.TrimSpace(o.XMLURL),
					Description: o.Description,
				})
			} else if len(o.Outlines) > 0 {
				name := o.Text
				if name == "" {
					name = o.Title
				}
				walk(o.Outlines, append(append([]string{}, path...), name))
			}
		}
	}
	walk(doc.Body.Outlines, nil)
	return entries, nil
}

// ParseFile opens and parses an OPML file
func ParseFile(path string) ([]FeedEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Export renders entries as an OPML 2.0 document. Feeds are grouped under their
// full folder path in first-seen order.
func Export(title string, entries []FeedEntry, created time.Time) ([]byte, error) {
	doc := OPML{
		Version: "2.0",
		Head:    Head{Title: title},
	}
	if !created.IsZero() {
		doc.Head.DateCreated = created.Format(time.RFC1123Z)
	}

	var root []Outline
	folders := make(map[string]int)

	for _, e := range entries {
		feed := Outline{
			Text:        e.Title,
			Title:       e.Title,
			Type:        "rss",
			XMLURL:      e.URL,
			Description: e.Description,
		}
		if len(e.FolderPath) == 0 {
			root = append(root, feed)
			continue
		}

		name := strings.Join(e.FolderPath, "/")
		if idx, ok := folders[name]; ok {
			root[idx].Outlines = append(root[idx].Outlines, feed)
			continue
		}
		folders[name] = len(root)
		root = append(root, Outline{Text: name, Title: name, Outlines: []Outline{feed}})
	}
	doc.Body.Outlines = root

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), output...), nil
}
