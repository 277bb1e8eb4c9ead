package generator

import (
	"context"
	"fmt"
	"os"
	"strings"

	"stockmate/internal/analysis"
	"stockmate/internal/catalog"
	"stockmate/internal/config"
	"stockmate/internal/services/vision"
)

// VisionDescriber is the subset of the vision client the provider needs.
type VisionDescriber interface {
	Describe(ctx context.Context, req vision.Request) (vision.Description, error)
	HealthCheck(ctx context.Context) error
}

// VisionProvider drafts metadata by sending the image to a multimodal model.
type VisionProvider struct {
	client VisionDescriber
}

// NewVisionProvider builds a provider from the configured vision settings.
func NewVisionProvider(cfg *config.Config) *VisionProvider {
	vc := cfg.GetVision()
	client := vision.NewClient(vision.Config{
		APIKey:         vc.APIKey,
		BaseURL:        vc.BaseURL,
		Model:          vc.Model,
		Referer:        vc.Referer,
		Title:          vc.Title,
		TimeoutSeconds: vc.TimeoutSeconds,
		Temperature:    vc.Temperature,
	})
	return &VisionProvider{client: client}
}

// NewVisionProviderWithClient allows injecting the vision client (used in tests).
func NewVisionProviderWithClient(client VisionDescriber) *VisionProvider {
	return &VisionProvider{client: client}
}

func (p *VisionProvider) Name() string { return "vision" }

func (p *VisionProvider) Generate(ctx context.Context, input Input) (catalog.Draft, error) {
	var draft catalog.Draft

	data, err := os.ReadFile(input.SourcePath)
	if err != nil {
		return draft, fmt.Errorf("read image: %w", err)
	}

	description, err := p.client.Describe(ctx, vision.Request{
		ImageData:   data,
		MIMEType:    analysis.MIMETypeForPath(input.SourcePath),
		MaxKeywords: input.MaxKeywords,
		Languages:   input.Languages,
		Hints:       analysisHints(input.Analysis),
	})
	if err != nil {
		return draft, err
	}

	draft = catalog.Draft{
		Title:       description.Title,
		Description: description.Description,
		Keywords:    description.Keywords,
		KeywordsZH:  description.KeywordsZH,
		Category:    description.Category,
		Source:      p.Name(),
	}
	return draft, nil
}

// analysisHints summarizes measured image properties as prompt cues.
func analysisHints(a catalog.Analysis) []string {
	var hints []string
	if len(a.DominantColors) > 0 {
		hints = append(hints, "dominant colors: "+strings.Join(a.DominantColors, ", "))
	}
	if a.Composition != "" {
		hints = append(hints, "orientation: "+a.Composition)
	}
	switch {
	case a.Brightness > 0 && a.Brightness < 60:
		hints = append(hints, "low-key, dark exposure")
	case a.Brightness > 200:
		hints = append(hints, "high-key, bright exposure")
	}
	if a.CameraMake != "" || a.CameraModel != "" {
		hints = append(hints, strings.TrimSpace("shot on "+strings.TrimSpace(a.CameraMake+" "+a.CameraModel)))
	}
	return hints
}
