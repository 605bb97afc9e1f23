package frontpage

import (
	"encoding/json"
	"errors"
	"strings"
)

type summaryWire struct {
	Theme   *string `json:"theme"`
	Sources []struct {
		Name       string   `json:"name"`
		Summary    string   `json:"summary"`
		KeyStories []string `json:"key_stories"`
	} `json:"sources"`
	Context *string `json:"context"`
}

func parseJSON(content string) (*Summary, error) {
	var wire summaryWire
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return nil, err
	}
	if wire.Theme == nil || wire.Sources == nil {
		return nil, errors.New("missing theme or sources")
	}

	summary := &Summary{Theme: *wire.Theme, Sources: make([]SourceSummary, 0, len(wire.Sources))}
	for _, s := range wire.Sources {
		summary.Sources = append(summary.Sources, SourceSummary{Name: s.Name, Summary: s.Summary, KeyStories: s.KeyStories})
	}
	if wire.Context != nil {
		summary.Context = strings.TrimSpace(*wire.Context)
	}
	return summary, nil
}

// ExtractJSON pulls the JSON object out of a reply: a ```json fence, a generic fence
// holding an object, or the first balanced run of lines starting with "{". The reply
// is returned unchanged when none is found.
func ExtractJSON(response string) string {
	if start := strings.Index(response, "```json"); start >= 0 {
		rest := response[start+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}

	if start := strings.Index(response, "```"); start >= 0 {
		rest := response[start+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			content := strings.TrimSpace(rest[:end])
			if strings.HasPrefix(content, "{") && strings.HasSuffix(content, "}") {
				return content
			}
		}
	}

	lines := strings.Split(response, "\n")
	first, depth := -1, 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if first < 0 {
			if !strings.HasPrefix(trimmed, "{") {
				continue
			}
			first = i
		}
		depth += strings.Count(trimmed, "{") - strings.Count(trimmed, "}")
		if depth <= 0 {
			return strings.Join(lines[first:i+1], "\n")
		}
	}
	return response
}

type section int

const (
	sectionTheme section = iota
	sectionSource
	sectionContext
)

// parseMarkdown reads replies where the model ignored the JSON instruction and wrote
// a "Today's World" line, bold or "##" source headings with bullet stories, and a
// "Looking Ahead" paragraph.
func parseMarkdown(response string) (*Summary, error) {
	var (
		theme   []string
		context []string
		sources []SourceSummary
		current *SourceSummary
		state   = sectionTheme
	)

	flush := func() {
		if current != nil {
			sources = append(sources, *current)
			current = nil
		}
	}

	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case strings.Contains(line, themeLabel):
			state = sectionTheme
			if rest := stripThemeLabel(line); rest != "" {
				theme = append(theme, rest)
			}
			continue
		case strings.Contains(line, contextLabel):
			flush()
			state = sectionContext
			continue
		case state == sectionSource && isBullet(line):
			current.KeyStories = append(current.KeyStories, strings.TrimSpace(strings.TrimLeft(line, "•-* ")))
			continue
		case strings.HasPrefix(line, "##") || strings.Contains(line, "**"):
			flush()
			name := strings.NewReplacer("##", "", "**", "", ":", "").Replace(line)
			current = &SourceSummary{Name: strings.TrimSpace(strings.TrimLeft(name, "#"))}
			state = sectionSource
			continue
		}

		switch state {
		case sectionTheme:
			theme = append(theme, line)
		case sectionSource:
			if current.Summary != "" {
				current.Summary += " "
			}
			current.Summary += line
		case sectionContext:
			context = append(context, line)
		}
	}
	flush()

	if len(theme) == 0 && len(sources) == 0 {
		return nil, ErrUnparseable
	}

	summary := &Summary{
		Theme:   strings.Join(theme, " "),
		Sources: sources,
		Context: strings.Join(context, " "),
	}
	if summary.Theme == "" {
		summary.Theme = defaultTheme
	}
	return summary, nil
}

func stripThemeLabel(line string) string {
	line = strings.NewReplacer("**"+themeLabel+"**:", "", themeLabel+":", "", "**"+themeLabel+"**", "").Replace(line)
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "# "))
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "• ") || strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ")
}
