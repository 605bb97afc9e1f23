// ABOUTME: Service interfaces for the core business logic
// ABOUTME: Defines contracts for text generation, front pages and renderers

package interfaces

import (
	"context"
	"io"

	"daily-feed/core/domain"
)

// TextGenerator produces a completion for a prompt, typically through an LLM API.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// FrontPageGenerator builds an opaque summary for a finished document.
// It must not modify the document.
type FrontPageGenerator interface {
	Generate(ctx context.Context, doc *domain.Document) ([]domain.Block, error)
}

// Renderer writes a document in one output format. Renderers never mutate the tree.
type Renderer interface {
	// Format is the configuration name of the format, e.g. "epub".
	Format() string

	// Extension is the default file extension including the dot.
	Extension() string

	Render(ctx context.Context, doc *domain.Document, w io.Writer) error
}
