package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"daily-feed/core/domain"
	coreerrors "daily-feed/core/errors"
	"daily-feed/core/feed"
	"daily-feed/core/interchange"
	"daily-feed/core/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example News</title>
    <link>https://news.example</link>
    <description>Example headlines</description>
    <item>
      <title>First story</title>
      <link>https://news.example/first</link>
      <pubDate>Sun, 01 Jun 2025 06:00:00 GMT</pubDate>
      <description><![CDATA[<p>The <b>first</b> story body.</p>]]></description>
    </item>
    <item>
      <title>Second story</title>
      <link>https://news.example/second</link>
      <pubDate>Sun, 01 Jun 2025 05:00:00 GMT</pubDate>
      <description><![CDATA[<p>Another body.</p>]]></description>
    </item>
  </channel>
</rss>`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feed.xml":
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = io.WriteString(w, testFeed)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRun_RendersMarkdown(t *testing.T) {
	server := newFeedServer(t)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, fmt.Sprintf(`{
		"sources": [{"name": "Example", "url": %q}],
		"output": {"filename": %q, "format": "markdown", "title": "Morning Paper"},
		"log_level": "error"
	}`, server.URL+"/feed.xml", filepath.Join(dir, "digest")))

	out, err := execute(t, "run", "-c", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Wrote "+filepath.Join(dir, "digest.md"))
	assert.Contains(t, out, "1 feeds, 2 articles")

	data, err := os.ReadFile(filepath.Join(dir, "digest.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Morning Paper")
	assert.Contains(t, string(data), "First story")
	assert.Contains(t, string(data), "**first**")
}

func TestRun_ExportThenConvert(t *testing.T) {
	server := newFeedServer(t)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, fmt.Sprintf(`{
		"sources": [{"name": "Example", "url": %q}],
		"log_level": "error"
	}`, server.URL+"/feed.xml"))
	astPath := filepath.Join(dir, "digest.json")

	out, err := execute(t, "run", "-c", cfgPath, "--export-ast", astPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported document tree to "+astPath)

	doc, err := interchange.LoadFile(astPath)
	require.NoError(t, err)
	require.Len(t, doc.Feeds, 1)
	assert.Equal(t, "Example", doc.Feeds[0].Name)
	assert.Equal(t, "First story", doc.Feeds[0].Articles[0].Title)

	out, err = execute(t, "convert", "-i", astPath, "-f", "md")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "digest.md"))

	out, err = execute(t, "convert", "-i", astPath, "-o", filepath.Join(dir, "book"))
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "book.epub"))

	data, err := os.ReadFile(filepath.Join(dir, "book.epub"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestRun_SkipsFailingSource(t *testing.T) {
	server := newFeedServer(t)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, fmt.Sprintf(`{
		"sources": [
			{"name": "Broken", "url": %q},
			{"name": "Example", "url": %q}
		],
		"output": {"filename": %q, "format": "markdown"},
		"log_level": "error"
	}`, server.URL+"/missing.xml", server.URL+"/feed.xml", filepath.Join(dir, "digest")))

	out, err := execute(t, "run", "-c", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, out, "1 feeds, 2 articles")
	assert.Contains(t, out, "Skipped 1 source(s):")
	assert.Contains(t, out, "Broken (fetch)")
}

func TestRun_UnsupportedFormatFlag(t *testing.T) {
	server := newFeedServer(t)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, fmt.Sprintf(`{
		"sources": [{"name": "Example", "url": %q}],
		"output": {"filename": %q},
		"log_level": "error"
	}`, server.URL+"/feed.xml", filepath.Join(dir, "digest")))

	_, err := execute(t, "run", "-c", cfgPath, "--format", "pdf")
	assert.True(t, coreerrors.IsValidation(err))
}

func TestRun_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, `{"sources": [`)

	_, err := execute(t, "run", "-c", cfgPath)
	assert.True(t, coreerrors.IsConfig(err))
}

func TestConvert_RequiresInput(t *testing.T) {
	_, err := execute(t, "convert")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input")
}

func TestConvert_MalformedTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 1}`), 0o644))

	_, err := execute(t, "convert", "-i", path)
	assert.True(t, coreerrors.IsDecode(err))
}

func TestSources_List(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, `{
		"sources": [
			{"name": "Example", "url": "https://news.example/feed.xml"},
			{"name": "HN", "type": "hackernews", "comments": false}
		],
		"feeds": [{"type": "ars_technica"}]
	}`)

	out, err := execute(t, "sources", "-c", cfgPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "https://news.example/feed.xml")
	assert.Contains(t, lines[2], "hackernews")
	assert.Contains(t, lines[2], "false")
	assert.Contains(t, lines[3], "Ars Technica")
	assert.Contains(t, lines[3], "true")
}

func TestSources_ExportOPML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, `{
		"sources": [
			{"name": "Example", "url": "https://news.example/feed.xml"},
			{"name": "HN", "type": "hackernews"}
		]
	}`)

	out, err := execute(t, "sources", "-c", cfgPath, "--opml", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `xmlUrl="https://news.example/feed.xml"`)
	assert.NotContains(t, out, "HN")

	target := filepath.Join(dir, "subs.opml")
	out, err = execute(t, "sources", "-c", cfgPath, "--opml", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 feeds")
	assert.FileExists(t, target)
}

func TestPrintSummary(t *testing.T) {
	two := domain.ReadingTime(2)
	doc := &domain.Document{Feeds: []domain.Feed{{Name: "A", Articles: []domain.Article{{Title: "x", ReadingTime: two.Ptr()}}}}}
	doc.Feeds[0].UpdateTotal()
	doc.UpdateTotal()

	report := &feed.Report{
		Failures: []*coreerrors.SourceError{{Source: "B", Stage: coreerrors.StageParse, Err: errors.New("bad xml")}},
		Issues: []parser.Issue{
			{Kind: parser.IssueMarkup},
			{Kind: parser.IssueBadTimestamp},
			{Kind: parser.IssueMarkup},
		},
		FrontPageError: errors.New("provider down"),
	}

	var buf bytes.Buffer
	printSummary(&buf, doc, report)

	assert.Equal(t, `1 feeds, 1 articles, total reading time 2 min
Skipped 1 source(s):
  - B (parse): bad xml
3 article issue(s):
  - bad_timestamp: 1
  - markup: 2
Front page skipped: provider down
`, buf.String())
}

func TestPrintSummary_Clean(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &domain.Document{}, &feed.Report{})
	assert.Equal(t, "0 feeds, 0 articles, total reading time none\n", buf.String())
}

func TestServeUntilDone(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveUntilDone(ctx, srv, listener) }()

	resp, err := http.Get("http://" + listener.Addr().String())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
