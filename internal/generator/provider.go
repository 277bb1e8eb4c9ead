package generator

import (
	"context"

	"stockmate/internal/catalog"
)

// Input carries everything a provider may use to draft metadata.
type Input struct {
	SourcePath  string
	FileName    string
	Analysis    catalog.Analysis
	MaxKeywords int
	Languages   []string
}

// Provider drafts metadata for a single image.
type Provider interface {
	Name() string
	Generate(ctx context.Context, input Input) (catalog.Draft, error)
}
