// ABOUTME: AI front-page generator summarising a finished document per source
// ABOUTME: Builds the prompt from headlines, parses the structured reply and converts it to blocks

package frontpage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"daily-feed/core/domain"
	"daily-feed/core/interfaces"
)

const (
	themeLabel   = "Today's World"
	contextLabel = "Looking Ahead"
	defaultTheme = "Multiple developing stories shape today's landscape"
)

// ErrUnparseable is returned when the model reply is neither the requested JSON nor
// recognisable Markdown.
var ErrUnparseable = errors.New("could not parse structured front page from AI response")

// Summary is the structured front page the model is asked to produce.
type Summary struct {
	Theme   string          `json:"theme"`
	Sources []SourceSummary `json:"sources"`
	Context string          `json:"context,omitempty"`
}

// SourceSummary covers one feed.
type SourceSummary struct {
	Name       string   `json:"name"`
	Summary    string   `json:"summary"`
	KeyStories []string `json:"key_stories"`
}

// Generator implements interfaces.FrontPageGenerator on top of a TextGenerator.
type Generator struct {
	text   interfaces.TextGenerator
	logger interfaces.Logger
}

// New creates a front-page generator
func New(text interfaces.TextGenerator, logger interfaces.Logger) *Generator {
	return &Generator{text: text, logger: logger}
}

// Generate asks the model for a summary of doc and returns it as blocks. The document
// itself is not modified. A document without articles yields no blocks.
func (g *Generator) Generate(ctx context.Context, doc *domain.Document) ([]domain.Block, error) {
	if doc == nil || doc.TotalArticles() == 0 {
		return nil, nil
	}
	if g.text == nil {
		return nil, errors.New("front page: no text generator configured")
	}

	prompt := BuildPrompt(PrepareContent(doc))
	start := time.Now()
	response, err := g.text.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("front page generation: %w", err)
	}

	summary, err := g.parse(response)
	if err != nil {
		return nil, err
	}

	if g.logger != nil {
		g.logger.Info("Front page generated", map[string]interface{}{
			"sources":  len(summary.Sources),
			"duration": time.Since(start).Round(time.Millisecond).String(),
		})
	}
	return summary.Blocks(), nil
}

func (g *Generator) parse(response string) (*Summary, error) {
	if summary, err := parseJSON(ExtractJSON(response)); err == nil {
		return summary, nil
	} else if g.logger != nil {
		g.logger.Debug("Front page reply is not JSON, trying Markdown", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return parseMarkdown(response)
}

// ParseResponse turns a model reply into a Summary. JSON, fenced or bare, is preferred;
// otherwise the reply is read as Markdown.
func ParseResponse(response string) (*Summary, error) {
	return (&Generator{}).parse(response)
}

// PrepareContent lists every feed with its description, URL and headlines.
func PrepareContent(doc *domain.Document) string {
	var b strings.Builder
	for _, feed := range doc.Feeds {
		fmt.Fprintf(&b, "# Source: %s\n", feed.Name)
		if feed.Description != "" {
			fmt.Fprintf(&b, "**Description:** %s\n", feed.Description)
		}
		if feed.URL != "" {
			fmt.Fprintf(&b, "**URL:** %s\n", feed.URL)
		}
		b.WriteString("\n**Articles:**\n")
		for _, article := range feed.Articles {
			fmt.Fprintf(&b, "- %s", article.Title)
			if !article.Published.IsZero() {
				fmt.Fprintf(&b, " (%s)", article.Published.UTC().Format(time.RFC3339))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// BuildPrompt wraps prepared content in the editor instructions.
func BuildPrompt(content string) string {
	return fmt.Sprintf(promptTemplate, content)
}

const promptTemplate = `You are a senior news editor creating a structured "Front Page" summary organized by news sources.

Analyze the provided content and return a JSON response with this exact structure:

{
  "theme": "One sentence capturing the day's most significant theme or development across all sources",
  "sources": [
    {
      "name": "Source name",
      "summary": "2-3 sentences summarizing the main themes and developments from this source",
      "key_stories": ["Key story title 1", "Key story title 2", "Key story title 3"]
    }
  ],
  "context": "Optional sentence connecting stories across sources to broader trends"
}

Guidelines:
- For each source, provide a thematic summary of their coverage
- Include 2-4 most important story titles from each source
- Maintain neutral tone
- Focus on what each source is emphasizing or covering uniquely
- Keep source summaries concise but informative
- The overall theme should reflect patterns across all sources

Daily feed content organized by source:
%s
Return only valid JSON with the structure above.`

// Blocks converts the summary into front-page content: a theme paragraph, a heading,
// summary and key-story list per source, and an optional closing section.
func (s *Summary) Blocks() []domain.Block {
	blocks := []domain.Block{
		domain.Paragraph{Text: domain.Spans(
			domain.TextSpan{Text: themeLabel + ": ", Formatting: domain.Formatting{Bold: true}},
			domain.TextSpan{Text: s.Theme},
		)},
	}

	for _, source := range s.Sources {
		blocks = append(blocks,
			domain.Heading{Level: 2, Text: domain.Plain(source.Name)},
			domain.Paragraph{Text: domain.Plain(source.Summary)},
		)
		if len(source.KeyStories) == 0 {
			continue
		}
		blocks = append(blocks, domain.Heading{Level: 3, Text: domain.Plain("Key Stories")})
		for _, story := range source.KeyStories {
			blocks = append(blocks, domain.ListItem{Text: domain.Plain(story)})
		}
	}

	if s.Context != "" {
		blocks = append(blocks,
			domain.Heading{Level: 2, Text: domain.Plain(contextLabel)},
			domain.Paragraph{Text: domain.Plain(s.Context)},
		)
	}
	return blocks
}
