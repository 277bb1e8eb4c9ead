package generator

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"stockmate/internal/catalog"
	"stockmate/internal/config"
	"stockmate/internal/logging"
	"stockmate/internal/services"
	"stockmate/internal/stage"
)

// Generator drafts metadata for analyzed images using the configured provider.
type Generator struct {
	cfg       *config.Config
	store     *catalog.Store
	logger    *slog.Logger
	vision    Provider
	heuristic Provider
}

// NewGenerator constructs the generate stage handler using default providers.
func NewGenerator(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Generator {
	var visionProvider Provider
	if cfg.VisionAvailable() {
		visionProvider = NewVisionProvider(cfg)
	}
	return NewGeneratorWithProviders(cfg, store, logger, visionProvider, NewHeuristicProvider())
}

// NewGeneratorWithProviders allows injecting providers (used in tests).
func NewGeneratorWithProviders(cfg *config.Config, store *catalog.Store, logger *slog.Logger, visionProvider, heuristicProvider Provider) *Generator {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "generator"))
	}
	return &Generator{
		cfg:       cfg,
		store:     store,
		logger:    stageLogger,
		vision:    visionProvider,
		heuristic: heuristicProvider,
	}
}

func (g *Generator) Prepare(ctx context.Context, item *catalog.Item) error {
	logger := logging.WithContext(ctx, g.logger)
	item.InitProgress("Generating", "Preparing metadata generation")
	logger.Info("starting generation preparation", logging.String("file_name", item.FileName))
	return nil
}

func (g *Generator) Execute(ctx context.Context, item *catalog.Item) error {
	logger := logging.WithContext(ctx, g.logger)

	analysisData, err := item.Analysis()
	if err != nil {
		return services.Wrap(services.ErrValidation, "generating", "decode analysis", "Stored analysis payload is unreadable", err)
	}

	provider, err := g.selectProvider()
	if err != nil {
		return err
	}
	logger.Info("starting metadata generation", logging.String("provider", provider.Name()))

	input := Input{
		SourcePath:  item.SourcePath,
		FileName:    item.FileName,
		Analysis:    analysisData,
		MaxKeywords: g.cfg.Generator.MaxKeywords,
		Languages:   g.cfg.Generator.Languages,
	}

	g.updateProgress(ctx, item, fmt.Sprintf("Drafting metadata via %s provider", provider.Name()), 20)
	draft, err := provider.Generate(ctx, input)
	if err != nil && provider == g.vision && g.cfg.Generator.FallbackHeuristic && g.heuristic != nil {
		logger.Warn("vision provider failed, falling back to heuristic", logging.Error(err))
		provider = g.heuristic
		draft, err = provider.Generate(ctx, input)
	}
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "generating", "draft metadata", "Metadata provider failed", err)
	}

	if strings.TrimSpace(draft.Title) == "" {
		return services.Wrap(services.ErrValidation, "generating", "validate draft", "Provider returned an empty title", nil)
	}
	if err := item.SetDraft(draft); err != nil {
		return services.Wrap(services.ErrTransient, "generating", "encode draft", "Failed to encode draft payload", err)
	}

	item.SetProgressComplete("Generating", fmt.Sprintf("Draft ready: %s (%d keywords)", draft.Title, len(draft.Keywords)))
	logger.Info(
		"metadata generation completed",
		logging.String("provider", draft.Source),
		logging.String("title", draft.Title),
		logging.Int("keywords", len(draft.Keywords)),
	)
	return nil
}

func (g *Generator) selectProvider() (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(g.cfg.Generator.Provider)) {
	case "heuristic":
		if g.heuristic == nil {
			return nil, services.Wrap(services.ErrConfiguration, "generating", "select provider", "Heuristic provider unavailable", nil)
		}
		return g.heuristic, nil
	case "vision":
		if g.vision == nil {
			return nil, services.Wrap(
				services.ErrConfiguration,
				"generating",
				"select provider",
				"Vision provider forced but no api_key is configured; set [vision] api_key or switch provider",
				nil,
			)
		}
		return g.vision, nil
	default:
		if g.vision != nil {
			return g.vision, nil
		}
		if g.heuristic == nil {
			return nil, services.Wrap(services.ErrConfiguration, "generating", "select provider", "No metadata provider available", nil)
		}
		return g.heuristic, nil
	}
}

// HealthCheck verifies a provider is available for the configured mode.
func (g *Generator) HealthCheck(ctx context.Context) stage.Health {
	const name = "generator"
	if g.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if _, err := g.selectProvider(); err != nil {
		return stage.Unhealthy(name, "no usable metadata provider for configured mode")
	}
	return stage.Healthy(name)
}

func (g *Generator) updateProgress(ctx context.Context, item *catalog.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, g.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := g.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist generator progress", logging.Error(err))
		return
	}
	*item = copy
}
