package normalize

import (
	"strings"
	"testing"

	"daily-feed/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plain(text string) domain.TextContent {
	return domain.Plain(text)
}

func TestBlocks_DecodesEntitiesOnce(t *testing.T) {
	result := New(Options{}).Blocks("A &amp; B &lt;tag&gt;")

	require.Len(t, result.Blocks, 1)
	assert.Equal(t, domain.Paragraph{Text: plain("A & B <tag>")}, result.Blocks[0])
	assert.Empty(t, result.Issues)
}

func TestBlocks_DoesNotDoubleDecode(t *testing.T) {
	result := New(Options{}).Blocks("<p>&amp;lt;b&amp;gt;</p>")

	require.Len(t, result.Blocks, 1)
	assert.Equal(t, domain.Paragraph{Text: plain("&lt;b&gt;")}, result.Blocks[0])
}

func TestBlocks_ParagraphFormatting(t *testing.T) {
	markup := `<p>Hello <strong>bold</strong> and <em>it</em> <a href="https://x.test">link</a></p>`

	result := New(Options{}).Blocks(markup)

	require.Len(t, result.Blocks, 1)
	expected := domain.Paragraph{Text: domain.Spans(
		domain.TextSpan{Text: "Hello "},
		domain.TextSpan{Text: "bold", Formatting: domain.Formatting{Bold: true}},
		domain.TextSpan{Text: " and "},
		domain.TextSpan{Text: "it", Formatting: domain.Formatting{Italic: true}},
		domain.TextSpan{Text: " "},
		domain.TextSpan{Text: "link", Formatting: domain.Formatting{Link: "https://x.test"}},
	)}
	assert.Equal(t, expected, result.Blocks[0])
}

func TestBlocks_NestedFormattingCombines(t *testing.T) {
	result := New(Options{}).Blocks(`<p><strong><em>both</em></strong></p>`)

	require.Len(t, result.Blocks, 1)
	expected := domain.Paragraph{Text: domain.Spans(
		domain.TextSpan{Text: "both", Formatting: domain.Formatting{Bold: true, Italic: true}},
	)}
	assert.Equal(t, expected, result.Blocks[0])
}

func TestBlocks_CollapsesWhitespace(t *testing.T) {
	result := New(Options{}).Blocks("<p>  many   spaces\n\there&nbsp; </p>")

	require.Len(t, result.Blocks, 1)
	assert.Equal(t, domain.Paragraph{Text: plain("many spaces here")}, result.Blocks[0])
}

func TestBlocks_Headings(t *testing.T) {
	result := New(Options{}).Blocks(`<h1>Top</h1><h2>Title</h2><h6>Small</h6>`)

	assert.Equal(t, []domain.Block{
		domain.Heading{Level: 1, Text: plain("Top")},
		domain.Heading{Level: 2, Text: plain("Title")},
		domain.Heading{Level: 6, Text: plain("Small")},
	}, result.Blocks)
	assert.Empty(t, result.Issues)
}

func TestBlocks_MalformedHeadingFallsBackToParagraph(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		text   string
	}{
		{"non-digit suffix", "<hx>Bad heading</hx>", "Bad heading"},
		{"level out of range", "<h7>Too deep</h7>", "Too deep"},
		{"bare h", "<h>Nothing</h>", "Nothing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result Result
			require.NotPanics(t, func() {
				result = New(Options{}).Blocks(tt.markup)
			})

			require.Len(t, result.Blocks, 1)
			assert.Equal(t, domain.Paragraph{Text: plain(tt.text)}, result.Blocks[0])
			require.Len(t, result.Issues, 1)
			assert.Equal(t, IssueMalformedHeading, result.Issues[0].Kind)
		})
	}
}

func TestBlocks_MalformedHeadingDoesNotStopParsing(t *testing.T) {
	result := New(Options{}).Blocks("<p>Before</p><hz>Broken</hz><p>After</p>")

	assert.Equal(t, []domain.Block{
		domain.Paragraph{Text: plain("Before")},
		domain.Paragraph{Text: plain("Broken")},
		domain.Paragraph{Text: plain("After")},
	}, result.Blocks)
}

func TestBlocks_Lists(t *testing.T) {
	markup := `<ul><li>One</li><li>Two</li></ul><ol start="3"><li>Three</li><li>Four</li></ol>`

	result := New(Options{}).Blocks(markup)

	assert.Equal(t, []domain.Block{
		domain.ListItem{Text: plain("One")},
		domain.ListItem{Text: plain("Two")},
		domain.ListItem{Ordered: true, Number: 3, Text: plain("Three")},
		domain.ListItem{Ordered: true, Number: 4, Text: plain("Four")},
	}, result.Blocks)
}

func TestBlocks_NestedListFollowsItem(t *testing.T) {
	markup := `<ul><li>Parent<ol><li>Child</li></ol></li><li>Sibling</li></ul>`

	result := New(Options{}).Blocks(markup)

	assert.Equal(t, []domain.Block{
		domain.ListItem{Text: plain("Parent")},
		domain.ListItem{Ordered: true, Number: 1, Text: plain("Child")},
		domain.ListItem{Text: plain("Sibling")},
	}, result.Blocks)
}

func TestBlocks_BlockQuoteRecursion(t *testing.T) {
	markup := `<blockquote><p>Quoted</p><blockquote>Inner</blockquote></blockquote>`

	result := New(Options{}).Blocks(markup)

	assert.Equal(t, []domain.Block{
		domain.BlockQuote{Children: []domain.Block{
			domain.Paragraph{Text: plain("Quoted")},
			domain.BlockQuote{Children: []domain.Block{
				domain.Paragraph{Text: plain("Inner")},
			}},
		}},
	}, result.Blocks)
}

func TestBlocks_DeepNestingIsBounded(t *testing.T) {
	markup := strings.Repeat("<blockquote>", 40) + "deep" + strings.Repeat("</blockquote>", 40)

	var result Result
	require.NotPanics(t, func() {
		result = New(Options{}).Blocks(markup)
	})

	found := false
	for _, issue := range result.Issues {
		if issue.Kind == IssueDepthExceeded {
			found = true
		}
	}
	assert.True(t, found, "expected a depth issue")
	for _, block := range result.Blocks {
		assert.NotEqual(t, domain.KindRawHTML, block.Kind())
	}
}

func TestBlocks_CodeBlockKeepsLanguageAndWhitespace(t *testing.T) {
	markup := "<pre><code class=\"language-go\">func main() {\n    fmt.Println(1)\n}\n</code></pre>"

	result := New(Options{}).Blocks(markup)

	require.Len(t, result.Blocks, 1)
	block, ok := result.Blocks[0].(domain.CodeBlock)
	require.True(t, ok, "expected CodeBlock, got %T", result.Blocks[0])
	require.NotNil(t, block.Language)
	assert.Equal(t, "go", *block.Language)
	assert.Equal(t, "func main() {\n    fmt.Println(1)\n}", block.Code)
}

func TestBlocks_CodeBlockWithoutLanguage(t *testing.T) {
	result := New(Options{}).Blocks("<pre>plain &lt;text&gt;</pre>")

	assert.Equal(t, []domain.Block{domain.CodeBlock{Code: "plain <text>"}}, result.Blocks)
}

func TestBlocks_StandaloneAndInlineCode(t *testing.T) {
	result := New(Options{}).Blocks("<code>go test ./...</code><p>Run <code>make</code> first</p>")

	assert.Equal(t, []domain.Block{
		domain.InlineCode{Code: "go test ./..."},
		domain.Paragraph{Text: domain.Spans(
			domain.TextSpan{Text: "Run "},
			domain.TextSpan{Text: "make", Formatting: domain.Formatting{Code: true}},
			domain.TextSpan{Text: " first"},
		)},
	}, result.Blocks)
}

func TestBlocks_DropsScriptsAndStyles(t *testing.T) {
	markup := `<script>alert(1)</script><style>p { color: red }</style><p>Visible</p><noscript>hidden</noscript>`

	result := New(Options{}).Blocks(markup)

	assert.Equal(t, []domain.Block{domain.Paragraph{Text: plain("Visible")}}, result.Blocks)
}

func TestBlocks_UnknownTagsKeepText(t *testing.T) {
	result := New(Options{}).Blocks(`<p>Some <custom-tag data-x="1">inner</custom-tag> <span class="y">text</span></p>`)

	assert.Equal(t, []domain.Block{domain.Paragraph{Text: plain("Some inner text")}}, result.Blocks)
}

func TestBlocks_ImagesAreHoisted(t *testing.T) {
	result := New(Options{}).Blocks(`<p>Before <img src="a.png" alt="An image" width="10"> after</p>`)

	assert.Equal(t, []domain.Block{
		domain.Paragraph{Text: plain("Before after")},
		domain.Image{Alt: "An image", Source: "a.png"},
	}, result.Blocks)
}

func TestBlocks_Links(t *testing.T) {
	t.Run("standalone link becomes a block", func(t *testing.T) {
		result := New(Options{}).Blocks(`<a href="https://example.com" rel="nofollow">Example</a>`)
		assert.Equal(t, []domain.Block{
			domain.Link{Label: plain("Example"), Target: "https://example.com"},
		}, result.Blocks)
	})

	t.Run("link inside text stays inline", func(t *testing.T) {
		result := New(Options{}).Blocks(`Read <a href="https://x.test">more</a> here`)
		assert.Equal(t, []domain.Block{
			domain.Paragraph{Text: domain.Spans(
				domain.TextSpan{Text: "Read "},
				domain.TextSpan{Text: "more", Formatting: domain.Formatting{Link: "https://x.test"}},
				domain.TextSpan{Text: " here"},
			)},
		}, result.Blocks)
	})

	t.Run("linked image keeps only the image", func(t *testing.T) {
		result := New(Options{}).Blocks(`<a href="https://x.test/full.png"><img src="thumb.png"></a>`)
		assert.Equal(t, []domain.Block{domain.Image{Source: "thumb.png"}}, result.Blocks)
	})
}

func TestBlocks_ContainersAreLinearized(t *testing.T) {
	result := New(Options{}).Blocks(`<div><p>One</p><section><div><p>Two</p></div></section></div>`)

	assert.Equal(t, []domain.Block{
		domain.Paragraph{Text: plain("One")},
		domain.Paragraph{Text: plain("Two")},
	}, result.Blocks)
}

func TestBlocks_LineBreaksSplitBareText(t *testing.T) {
	result := New(Options{}).Blocks("Line one<br>Line two")

	assert.Equal(t, []domain.Block{
		domain.Paragraph{Text: plain("Line one")},
		domain.Paragraph{Text: plain("Line two")},
	}, result.Blocks)
}

func TestBlocks_Embeds(t *testing.T) {
	markup := `<p>Watch:</p><iframe src="https://video.test/embed"></iframe>`

	dropped := New(Options{}).Blocks(markup)
	assert.Equal(t, []domain.Block{domain.Paragraph{Text: plain("Watch:")}}, dropped.Blocks)

	kept := New(Options{RawEmbeds: true}).Blocks(markup)
	require.Len(t, kept.Blocks, 2)
	raw, ok := kept.Blocks[1].(domain.RawHTML)
	require.True(t, ok)
	assert.Equal(t, `<iframe src="https://video.test/embed"></iframe>`, raw.HTML)
}

func TestBlocks_EmptyInput(t *testing.T) {
	result := New(Options{}).Blocks("")
	assert.Empty(t, result.Blocks)
	assert.Empty(t, result.Issues)

	result = New(Options{}).Blocks("   \n\t ")
	assert.Empty(t, result.Blocks)
}

func TestBlocks_Deterministic(t *testing.T) {
	markup := `<h2>Head</h2><p>Text <b>bold</b></p><ul><li>a</li></ul><blockquote>q</blockquote>`
	n := New(Options{})

	first := n.Blocks(markup)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, n.Blocks(markup))
	}
}

func TestBlocks_MalformedMarkupDoesNotPanic(t *testing.T) {
	inputs := []string{
		"<p><b>unclosed",
		"</div></p>text",
		"<<<>>>",
		"<h1><h2>nested</h1></h2>",
		"<table><tr><td>cell</td><td>cell two",
		"<a href=>empty href</a>",
	}
	n := New(Options{})
	for _, input := range inputs {
		assert.NotPanics(t, func() { n.Blocks(input) }, "input %q", input)
	}
}

func TestInline(t *testing.T) {
	got := New(Options{}).Inline("<b>Bold</b> title &amp; <p>more</p>")

	assert.Equal(t, domain.Spans(
		domain.TextSpan{Text: "Bold", Formatting: domain.Formatting{Bold: true}},
		domain.TextSpan{Text: " title & more"},
	), got)
}

func TestNormalizeText_Idempotent(t *testing.T) {
	inputs := []string{
		"A &amp; B &lt;tag&gt;",
		"AT&amp;amp;T",
		"AT&T uses <b>",
		"  spaced\n\nout   text ",
		"caf\u00e9 \u2019quoted\u2019",
		"",
	}
	for _, input := range inputs {
		once := NormalizeText(input)
		twice := NormalizeText(once.PlainText())
		assert.Equal(t, once, twice, "input %q", input)
	}
}

func TestNormalizeText_TakesTextLiterally(t *testing.T) {
	assert.Equal(t, plain("AT&amp;T uses <b>"), NormalizeText("  AT&amp;T\tuses <b> "))
	assert.Equal(t, domain.TextContent{}, NormalizeText(" \n "))
}

func TestNormalizeText_StableOnInlineOutput(t *testing.T) {
	once := New(Options{}).Inline("AT&amp;amp;T uses &amp;lt;b&amp;gt;")
	require.Equal(t, plain("AT&amp;T uses &lt;b&gt;"), once)

	twice := NormalizeText(once.PlainText())
	assert.Equal(t, once, twice)
}
