// ABOUTME: Word counting over content blocks and reading-time estimation
// ABOUTME: Counts prose and code, skips image alt text and link targets

package readingtime

import (
	"strings"

	"daily-feed/core/domain"
	htmlutil "daily-feed/pkg/utils/html"
)

const (
	// DefaultWPM is used when no valid reading speed is configured.
	DefaultWPM = 200

	MinWPM = 50
	MaxWPM = 500
)

// EffectiveWPM returns wpm when it lies in [MinWPM, MaxWPM] and DefaultWPM otherwise.
func EffectiveWPM(wpm int) int {
	if wpm < MinWPM || wpm > MaxWPM {
		return DefaultWPM
	}
	return wpm
}

// Estimate converts a word count to whole minutes, rounding up.
// Zero words yields domain.BelowOneMinute.
func Estimate(words, wpm int) domain.ReadingTime {
	if words <= 0 {
		return domain.BelowOneMinute
	}
	wpm = EffectiveWPM(wpm)
	return domain.ReadingTime((words + wpm - 1) / wpm)
}

// ForBlocks counts the words in blocks and estimates their reading time.
func ForBlocks(blocks []domain.Block, wpm int) domain.ReadingTime {
	return Estimate(CountBlocks(blocks), wpm)
}

// CountBlocks returns the number of words reachable from blocks.
func CountBlocks(blocks []domain.Block) int {
	total := 0
	for _, block := range blocks {
		total += CountBlock(block)
	}
	return total
}

// CountBlock returns the number of words in a single block.
func CountBlock(block domain.Block) int {
	switch b := block.(type) {
	case domain.Paragraph:
		return CountText(b.Text)
	case domain.Heading:
		return CountText(b.Text)
	case domain.ListItem:
		return CountText(b.Text)
	case domain.BlockQuote:
		return CountBlocks(b.Children)
	case domain.InlineCode:
		return len(strings.Fields(b.Code))
	case domain.CodeBlock:
		return len(strings.Fields(b.Code))
	case domain.Link:
		return CountText(b.Label)
	case domain.Image:
		return 0
	case domain.RawHTML:
		return len(strings.Fields(htmlutil.StripHTML(b.HTML)))
	}
	return 0
}

// CountText counts whitespace-separated words across all spans, link text included.
func CountText(text domain.TextContent) int {
	return len(strings.Fields(text.PlainText()))
}
