// Package core contains the digest pipeline: it turns source payloads into a
// typed document tree and hands that tree to serializers and renderers.
// Nothing in core depends on a concrete cache, HTTP client or logger.
//
// The core package is organized into several sub-packages:
//
// - domain: the document tree (Document, Feed, Article, Comment, Block, TextContent)
// - normalize: HTML fragment to block/span conversion
// - readingtime: word counting and minute estimates
// - parser: one source payload to one Feed, with comments and full text
// - sources: RSS, Ars Technica and Hacker News integrations
// - comments: Ars Technica forum scraping
// - reader: full-text extraction for short feed bodies
// - feed: concurrent orchestration of sources into a Document
// - frontpage: AI summary prompt and response parsing
// - interchange: lossless JSON encoding of the tree
// - render: output backends (markdown, epub)
// - errors: typed errors
// - interfaces: contracts for external dependencies
//
// # Usage Example
//
//	deps := interfaces.Dependencies{
//	    Cache:      myCache,
//	    HTTPClient: myHTTPClient,
//	    Logger:     myLogger,
//	}
//
//	p := parser.New(parser.Config{WordsPerMinute: 200}, myLogger)
//	service := feed.NewFeedService(deps, p, feed.Options{})
//
//	src, _ := sources.New(sources.Config{Name: "Go Blog", Kind: interfaces.KindRSS, URL: "https://go.dev/blog/feed.atom"}, myHTTPClient)
//	doc, report, err := service.BuildDocument(ctx, parser.DocumentMeta{Title: "Daily Feed Digest"}, []interfaces.Source{src})
//	if err != nil {
//	    return err
//	}
//	for _, failure := range report.Failures {
//	    log.Printf("skipped %s: %v", failure.Source, failure.Err)
//	}
//
//	renderer, _ := render.New("markdown")
//	err = renderer.Render(ctx, doc, os.Stdout)
package core
