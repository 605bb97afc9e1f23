// ABOUTME: Output backend registry resolving a configured format name to a renderer
// ABOUTME: Backends render the document tree read-only to an io.Writer

package render

import (
	"fmt"
	"sort"
	"strings"

	"daily-feed/core/errors"
	"daily-feed/core/interfaces"
	"daily-feed/core/render/epub"
	"daily-feed/core/render/markdown"
)

const (
	FormatEPUB     = "epub"
	FormatMarkdown = "markdown"
)

var backends = map[string]func() interfaces.Renderer{
	FormatEPUB:     func() interfaces.Renderer { return epub.New() },
	FormatMarkdown: func() interfaces.Renderer { return markdown.New() },
}

// aliases accepted from config files and the command line
var aliases = map[string]string{
	"md": FormatMarkdown,
}

// New returns the backend for format. Names are case-insensitive.
func New(format string) (interfaces.Renderer, error) {
	name := strings.ToLower(strings.TrimSpace(format))
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	constructor, ok := backends[name]
	if !ok {
		return nil, &errors.ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("unsupported output format %q (supported: %s)", format, strings.Join(Formats(), ", ")),
		}
	}
	return constructor(), nil
}

// Formats lists the supported format names
func Formats() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OutputPath makes sure filename carries the backend's extension.
func OutputPath(filename string, r interfaces.Renderer) string {
	if strings.HasSuffix(strings.ToLower(filename), r.Extension()) {
		return filename
	}
	return filename + r.Extension()
}
