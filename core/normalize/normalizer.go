// ABOUTME: HTML normalizer turning arbitrary article markup into content blocks
// ABOUTME: Decodes entities, collapses whitespace, drops scripts and keeps only href/src attributes

package normalize

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"daily-feed/core/domain"
	htmlutil "daily-feed/pkg/utils/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxDepth bounds block nesting (blockquotes, nested lists, containers).
// Deeper subtrees are dropped and reported.
const MaxDepth = 32

// IssueKind classifies a recoverable normalisation problem.
type IssueKind string

const (
	IssueMalformedHeading IssueKind = "malformed_heading"
	IssueDepthExceeded    IssueKind = "depth_exceeded"
	IssueUnparseable      IssueKind = "unparseable_markup"
)

// Issue is a recoverable problem found while normalising. The output is still usable.
type Issue struct {
	Kind   IssueKind
	Detail string
}

// Options tunes a Normalizer.
type Options struct {
	// RawEmbeds keeps iframes, video, audio and similar embeds as RawHTML blocks
	// instead of dropping them.
	RawEmbeds bool
}

// Result is the output of Blocks.
type Result struct {
	Blocks []domain.Block
	Issues []Issue
}

// Normalizer converts markup into the block model. It holds no mutable state and
// is safe for concurrent use.
type Normalizer struct {
	opts Options
}

var languageClass = regexp.MustCompile(`(?:^|\s)(?:language|lang)-([A-Za-z0-9_+#.\-]+)`)

var (
	droppedTags = map[string]bool{
		"script": true, "style": true, "noscript": true, "template": true,
		"head": true, "title": true, "meta": true, "link": true, "base": true,
		"form": true, "input": true, "button": true, "select": true, "textarea": true,
		"svg": true, "canvas": true, "nav": true, "map": true, "area": true,
	}

	embedTags = map[string]bool{
		"iframe": true, "video": true, "audio": true, "object": true, "embed": true,
	}

	containerTags = map[string]bool{
		"html": true, "body": true, "div": true, "section": true, "article": true,
		"main": true, "header": true, "footer": true, "aside": true, "figure": true,
		"figcaption": true, "details": true, "summary": true, "center": true,
		"table": true, "thead": true, "tbody": true, "tfoot": true, "tr": true,
		"td": true, "th": true, "caption": true, "dl": true, "dt": true, "dd": true,
		"address": true, "hgroup": true,
	}

	structuralTags = map[string]bool{
		"p": true, "ul": true, "ol": true, "li": true, "blockquote": true,
		"pre": true, "hr": true,
	}

	boldTags   = map[string]bool{"strong": true, "b": true}
	italicTags = map[string]bool{"em": true, "i": true, "cite": true, "dfn": true, "var": true}
	codeTags   = map[string]bool{"code": true, "kbd": true, "samp": true, "tt": true}
)

// New creates a Normalizer.
func New(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Blocks normalises markup into an ordered block sequence. It never panics;
// problems it can recover from are returned as issues.
func (n *Normalizer) Blocks(markup string) Result {
	var result Result
	nodes, err := parseFragment(markup)
	if err != nil {
		result.Issues = append(result.Issues, Issue{Kind: IssueUnparseable, Detail: err.Error()})
		if text := NormalizeText(htmlutil.DecodeEntities(markup)); !text.IsEmpty() {
			result.Blocks = []domain.Block{domain.Paragraph{Text: text}}
		}
		return result
	}

	result.Blocks = n.blocks(nodes, 0, &result.Issues)

	if len(result.Blocks) == 0 && !hasIssue(result.Issues, IssueDepthExceeded) {
		var b strings.Builder
		for _, node := range nodes {
			textContent(node, &b)
		}
		if text := strings.TrimSpace(collapse(b.String())); text != "" {
			result.Blocks = []domain.Block{domain.Paragraph{Text: domain.Plain(text)}}
		}
	}
	return result
}

// Inline flattens markup into a single TextContent, keeping inline formatting.
// Block structure is reduced to word separation and images are dropped.
func (n *Normalizer) Inline(markup string) domain.TextContent {
	nodes, err := parseFragment(markup)
	if err != nil {
		return NormalizeText(htmlutil.DecodeEntities(markup))
	}
	var r run
	for _, node := range nodes {
		r.collect(node, domain.Formatting{})
	}
	return r.finish()
}

// NormalizeText collapses the whitespace of plain text and trims it. The text is
// taken literally: entities and angle brackets are not markup here, so applying
// it to its own output returns the same content.
func NormalizeText(text string) domain.TextContent {
	return domain.Plain(strings.TrimSpace(collapse(text)))
}

func parseFragment(markup string) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	return html.ParseFragment(strings.NewReader(markup), context)
}

// blocks normalises sibling nodes at the given nesting depth.
func (n *Normalizer) blocks(nodes []*html.Node, depth int, issues *[]Issue) []domain.Block {
	b := &builder{n: n, issues: issues}
	for _, node := range nodes {
		b.walk(node, depth)
	}
	b.flush()
	return b.out
}

type builder struct {
	n       *Normalizer
	issues  *[]Issue
	out     []domain.Block
	pending run
}

func (b *builder) emit(block domain.Block) {
	b.out = append(b.out, block)
}

func (b *builder) report(kind IssueKind, detail string) {
	*b.issues = append(*b.issues, Issue{Kind: kind, Detail: detail})
}

// flush turns the pending inline run into a paragraph followed by its hoisted images.
func (b *builder) flush() {
	text := b.pending.finish()
	if !text.IsEmpty() {
		b.emit(domain.Paragraph{Text: text})
	}
	for _, img := range b.pending.images {
		b.emit(img)
	}
	b.pending = run{}
}

func (b *builder) walk(node *html.Node, depth int) {
	switch node.Type {
	case html.TextNode:
		b.pending.collect(node, domain.Formatting{})
		return
	case html.DocumentNode:
		b.children(node, depth)
		return
	case html.ElementNode:
	default:
		return
	}

	if depth > MaxDepth {
		b.flush()
		b.report(IssueDepthExceeded, "<"+node.Data+"> nested deeper than "+strconv.Itoa(MaxDepth)+" levels")
		return
	}

	tag := node.Data
	switch {
	case droppedTags[tag]:
	case embedTags[tag]:
		b.flush()
		if b.n.opts.RawEmbeds {
			if raw := renderNode(node); raw != "" {
				b.emit(domain.RawHTML{HTML: raw})
			}
		}
	case tag == "p":
		b.flush()
		b.pending.collectChildren(node, domain.Formatting{})
		b.flush()
	case isHeadingTag(tag):
		b.flush()
		b.heading(node)
	case tag == "ul" || tag == "ol":
		b.flush()
		b.list(node, depth)
	case tag == "li":
		b.flush()
		b.listItem(node, false, 0, depth)
	case tag == "blockquote":
		b.flush()
		children := b.n.blocks(childNodes(node), depth+1, b.issues)
		if len(children) > 0 {
			b.emit(domain.BlockQuote{Children: children})
		}
	case tag == "pre":
		b.flush()
		b.preformatted(node)
	case tag == "code" && b.standalone(node):
		b.flush()
		if code := strings.TrimSpace(rawText(node)); code != "" {
			b.emit(domain.InlineCode{Code: code})
		}
	case tag == "a" && attr(node, "href") != "" && b.standalone(node):
		b.flush()
		b.link(node)
	case tag == "img":
		b.pending.collect(node, domain.Formatting{})
	case tag == "br" || tag == "hr":
		b.flush()
	case containerTags[tag] || hasBlockDescendant(node):
		b.flush()
		b.children(node, depth+1)
		b.flush()
	default:
		b.pending.collect(node, domain.Formatting{})
	}
}

func (b *builder) children(node *html.Node, depth int) {
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		b.walk(c, depth)
	}
}

func (b *builder) heading(node *html.Node) {
	var r run
	r.collectChildren(node, domain.Formatting{})
	text := r.finish()

	level, ok := headingLevel(node.Data)
	if !ok {
		b.report(IssueMalformedHeading, "<"+node.Data+"> is not a heading level 1-6; kept as paragraph")
		if !text.IsEmpty() {
			b.emit(domain.Paragraph{Text: text})
		}
	} else if !text.IsEmpty() {
		b.emit(domain.Heading{Level: level, Text: text})
	}
	for _, img := range r.images {
		b.emit(img)
	}
}

func (b *builder) list(node *html.Node, depth int) {
	ordered := node.Data == "ol"
	number := 1
	if ordered {
		if start, err := strconv.Atoi(strings.TrimSpace(attr(node, "start"))); err == nil {
			number = start
		}
	}

	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "li" {
			if ordered {
				b.listItem(c, true, number, depth)
				number++
			} else {
				b.listItem(c, false, 0, depth)
			}
			continue
		}
		b.walk(c, depth+1)
		b.flush()
	}
}

func (b *builder) listItem(node *html.Node, ordered bool, number int, depth int) {
	var r run
	var nested []*html.Node
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
			nested = append(nested, c)
			continue
		}
		r.collect(c, domain.Formatting{})
	}

	if text := r.finish(); !text.IsEmpty() {
		b.emit(domain.ListItem{Ordered: ordered, Number: number, Text: text})
	}
	for _, img := range r.images {
		b.emit(img)
	}
	for _, list := range nested {
		if depth+1 > MaxDepth {
			b.report(IssueDepthExceeded, "list nested deeper than "+strconv.Itoa(MaxDepth)+" levels")
			continue
		}
		b.list(list, depth+1)
	}
}

func (b *builder) preformatted(node *html.Node) {
	lang := languageOf(node)
	if lang == "" {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "code" {
				lang = languageOf(c)
				break
			}
		}
	}

	code := strings.Trim(rawText(node), "\r\n")
	if strings.TrimSpace(code) == "" {
		return
	}
	b.emit(domain.CodeBlock{Language: domain.Language(lang), Code: code})
}

func (b *builder) link(node *html.Node) {
	var r run
	r.collectChildren(node, domain.Formatting{})
	label := r.finish()
	target := strings.TrimSpace(attr(node, "href"))

	// The label's own link formatting is redundant with the block target.
	for i := range label.Spans {
		label.Spans[i].Formatting.Link = ""
	}
	label = merge(label.Spans)
	if label.IsEmpty() && len(r.images) == 0 {
		label = domain.Plain(target)
	}
	if !label.IsEmpty() {
		b.emit(domain.Link{Label: label, Target: target})
	}
	for _, img := range r.images {
		b.emit(img)
	}
}

// standalone reports whether node is the only content of its line: nothing is
// pending before it and only whitespace follows until the next block element.
func (b *builder) standalone(node *html.Node) bool {
	if !b.pending.empty() {
		return false
	}
	for s := node.NextSibling; s != nil; s = s.NextSibling {
		switch s.Type {
		case html.TextNode:
			if strings.TrimSpace(s.Data) != "" {
				return false
			}
		case html.ElementNode:
			if isBlockTag(s.Data) || s.Data == "br" {
				return true
			}
			if !droppedTags[s.Data] {
				return false
			}
		}
	}
	return true
}

func isHeadingTag(tag string) bool {
	if tag == "" || tag[0] != 'h' || len(tag) > 3 {
		return false
	}
	return tag != "hr"
}

func headingLevel(tag string) (int, bool) {
	level, err := strconv.Atoi(tag[1:])
	if err != nil || !domain.ValidHeadingLevel(level) {
		return 0, false
	}
	return level, true
}

func isBlockTag(tag string) bool {
	return containerTags[tag] || structuralTags[tag] || isHeadingTag(tag) || embedTags[tag]
}

func hasBlockDescendant(node *html.Node) bool {
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if isBlockTag(c.Data) || hasBlockDescendant(c) {
			return true
		}
	}
	return false
}

func hasIssue(issues []Issue, kind IssueKind) bool {
	for _, issue := range issues {
		if issue.Kind == kind {
			return true
		}
	}
	return false
}

func childNodes(node *html.Node) []*html.Node {
	var nodes []*html.Node
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		nodes = append(nodes, c)
	}
	return nodes
}

func attr(node *html.Node, key string) string {
	for _, a := range node.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func languageOf(node *html.Node) string {
	if m := languageClass.FindStringSubmatch(attr(node, "class")); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}

// rawText concatenates descendant text verbatim, turning <br> into newlines.
func rawText(node *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			b.WriteByte('\n')
		case n.Type == html.ElementNode && droppedTags[n.Data]:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(node)
	return b.String()
}

// textContent appends readable text, separating elements with spaces.
func textContent(node *html.Node, b *strings.Builder) {
	switch node.Type {
	case html.TextNode:
		b.WriteString(node.Data)
		return
	case html.ElementNode:
		if droppedTags[node.Data] || embedTags[node.Data] {
			return
		}
		b.WriteByte(' ')
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		textContent(c, b)
	}
}

func renderNode(node *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return ""
	}
	return buf.String()
}
