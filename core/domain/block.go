// ABOUTME: Content block model, the closed set of structural elements an article body is made of
// ABOUTME: Every block variant implements the sealed Block interface

package domain

// BlockKind names a block variant. The values double as the serialized type tags.
type BlockKind string

const (
	KindParagraph  BlockKind = "paragraph"
	KindHeading    BlockKind = "heading"
	KindListItem   BlockKind = "list_item"
	KindBlockQuote BlockKind = "blockquote"
	KindInlineCode BlockKind = "inline_code"
	KindCodeBlock  BlockKind = "code_block"
	KindLink       BlockKind = "link"
	KindImage      BlockKind = "image"
	KindRawHTML    BlockKind = "raw_html"
)

// Heading levels outside this range are never produced.
const (
	MinHeadingLevel = 1
	MaxHeadingLevel = 6
)

// Block is one structural element of an article body.
// The set of implementations is closed; consumers switch on the concrete type.
type Block interface {
	Kind() BlockKind
	block()
}

// Paragraph is a run of prose.
type Paragraph struct {
	Text TextContent
}

// Heading is a section title with a level between 1 and 6.
type Heading struct {
	Level int
	Text  TextContent
}

// ListItem is a single entry of a bulleted or numbered list.
// Number is the 1-based position for ordered lists and 0 otherwise.
type ListItem struct {
	Ordered bool
	Number  int
	Text    TextContent
}

// BlockQuote holds quoted blocks. Children are owned by value.
type BlockQuote struct {
	Children []Block
}

// InlineCode is a short code fragment standing on its own.
type InlineCode struct {
	Code string
}

// CodeBlock is preformatted code. Language is nil when unknown.
type CodeBlock struct {
	Language *string
	Code     string
}

// Link is a standalone hyperlink.
type Link struct {
	Label  TextContent
	Target string
}

// Image references a picture. Alt is descriptive data and is not counted as prose.
type Image struct {
	Alt    string
	Source string
}

// RawHTML is markup passed through verbatim for a whole block.
type RawHTML struct {
	HTML string
}

func (Paragraph) Kind() BlockKind  { return KindParagraph }
func (Heading) Kind() BlockKind    { return KindHeading }
func (ListItem) Kind() BlockKind   { return KindListItem }
func (BlockQuote) Kind() BlockKind { return KindBlockQuote }
func (InlineCode) Kind() BlockKind { return KindInlineCode }
func (CodeBlock) Kind() BlockKind  { return KindCodeBlock }
func (Link) Kind() BlockKind       { return KindLink }
func (Image) Kind() BlockKind      { return KindImage }
func (RawHTML) Kind() BlockKind    { return KindRawHTML }

func (Paragraph) block()  {}
func (Heading) block()    {}
func (ListItem) block()   {}
func (BlockQuote) block() {}
func (InlineCode) block() {}
func (CodeBlock) block()  {}
func (Link) block()       {}
func (Image) block()      {}
func (RawHTML) block()    {}

// ValidHeadingLevel reports whether level can be carried by a Heading.
func ValidHeadingLevel(level int) bool {
	return level >= MinHeadingLevel && level <= MaxHeadingLevel
}

// Language returns a pointer to lang, or nil when lang is empty.
func Language(lang string) *string {
	if lang == "" {
		return nil
	}
	return &lang
}
