package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"daily-feed/core/domain"
	"daily-feed/core/feed"
	"daily-feed/core/parser"
	"daily-feed/core/render"
)

// renderToFile renders doc with the named backend and returns the written path
func renderToFile(ctx context.Context, doc *domain.Document, format, filename string) (string, error) {
	renderer, err := render.New(format)
	if err != nil {
		return "", err
	}
	path := render.OutputPath(filename, renderer)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}

	w := bufio.NewWriter(f)
	err = renderer.Render(ctx, doc, w)
	if err == nil {
		err = w.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err := removeOnError(path, err); err != nil {
		return "", fmt.Errorf("render %s: %w", renderer.Format(), err)
	}
	return path, nil
}

// printSummary reports what was built and what was skipped
func printSummary(w io.Writer, doc *domain.Document, report *feed.Report) {
	total := "none"
	if doc.TotalReadingTime != nil {
		total = doc.TotalReadingTime.String()
	}
	fmt.Fprintf(w, "%d feeds, %d articles, total reading time %s\n", len(doc.Feeds), doc.TotalArticles(), total)

	if report == nil || report.OK() {
		return
	}

	if len(report.Failures) > 0 {
		fmt.Fprintf(w, "Skipped %d source(s):\n", len(report.Failures))
		for _, failure := range report.Failures {
			fmt.Fprintf(w, "  - %s (%s): %v\n", failure.Source, failure.Stage, failure.Err)
		}
	}

	if len(report.Issues) > 0 {
		counts := make(map[parser.IssueKind]int)
		for _, issue := range report.Issues {
			counts[issue.Kind]++
		}
		kinds := make([]string, 0, len(counts))
		for kind := range counts {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)

		fmt.Fprintf(w, "%d article issue(s):\n", len(report.Issues))
		for _, kind := range kinds {
			fmt.Fprintf(w, "  - %s: %d\n", kind, counts[parser.IssueKind(kind)])
		}
	}

	if report.FrontPageError != nil {
		fmt.Fprintf(w, "Front page skipped: %v\n", report.FrontPageError)
	}
}

// removeOnError cleans up a partially written file
func removeOnError(path string, err error) error {
	if err != nil {
		_ = os.Remove(path)
	}
	return err
}
