package curator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"stockmate/internal/catalog"
	"stockmate/internal/config"
	"stockmate/internal/logging"
	"stockmate/internal/platform"
	"stockmate/internal/services"
	"stockmate/internal/stage"
)

// Curator applies marketplace rules to drafts and stores the renditions.
type Curator struct {
	cfg    *config.Config
	store  *catalog.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewCurator constructs the curate stage handler.
func NewCurator(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Curator {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "curator"))
	}
	return &Curator{cfg: cfg, store: store, logger: stageLogger, now: time.Now}
}

func (c *Curator) Prepare(ctx context.Context, item *catalog.Item) error {
	logger := logging.WithContext(ctx, c.logger)
	item.InitProgress("Curating", "Preparing marketplace curation")
	logger.Info("starting curation preparation", logging.String("file_name", item.FileName))
	return nil
}

func (c *Curator) Execute(ctx context.Context, item *catalog.Item) error {
	logger := logging.WithContext(ctx, c.logger)

	draft, err := item.Draft()
	if err != nil {
		return services.Wrap(services.ErrValidation, "curating", "decode draft", "Stored draft payload is unreadable", err)
	}
	if strings.TrimSpace(draft.Title) == "" {
		return services.Wrap(services.ErrValidation, "curating", "validate draft", "No draft title present; run generation before curation", nil)
	}

	targets, err := c.targets()
	if err != nil {
		return err
	}
	logger.Info("starting curation", logging.Int("targets", len(targets)))

	processedAt := c.now()
	renditions := make(map[platform.Platform]platform.ImageMetadata, len(targets))
	var thinTargets []string
	for _, target := range targets {
		meta, report, err := platform.Render(item.FileName, draft.Title, draft.Description, draft.Keywords, target, processedAt)
		if err != nil {
			return services.Wrap(services.ErrValidation, "curating", "render rendition", "Failed to render marketplace rendition", err)
		}
		renditions[target] = meta

		if report.TitleTrimmed || report.DescriptionTrimmed || len(report.BannedRemoved) > 0 || report.KeywordsCapped > 0 {
			logger.Info(
				"rendition adjusted",
				logging.String("marketplace", string(target)),
				logging.Bool("title_trimmed", report.TitleTrimmed),
				logging.Bool("description_trimmed", report.DescriptionTrimmed),
				logging.Int("duplicates_dropped", report.KeywordsDeduped),
				logging.Int("keywords_capped", report.KeywordsCapped),
				logging.Any("banned_removed", report.BannedRemoved),
			)
		}
		if report.BelowMinKeywords {
			rule, _ := platform.RuleFor(target)
			thinTargets = append(thinTargets, fmt.Sprintf("%s has %d keywords, minimum is %d", target.DisplayName(), len(meta.Keywords), rule.MinKeywords))
		}
	}

	if err := item.SetRenditions(renditions); err != nil {
		return services.Wrap(services.ErrTransient, "curating", "encode renditions", "Failed to encode renditions payload", err)
	}

	if len(thinTargets) > 0 {
		reason := "Keyword set too thin after curation: " + strings.Join(thinTargets, "; ")
		logger.Info("routing thin rendition to review", logging.Int("thin_targets", len(thinTargets)))
		item.SetReview(reason)
		return nil
	}

	item.SetProgressComplete("Curating", fmt.Sprintf("%d marketplace renditions ready", len(renditions)))
	logger.Info("curation completed", logging.Int("renditions", len(renditions)))
	return nil
}

func (c *Curator) targets() ([]platform.Platform, error) {
	names := c.cfg.Platforms.Targets
	if len(names) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "curating", "resolve targets", "No marketplace targets configured; set [platforms] targets", nil)
	}
	targets := make([]platform.Platform, 0, len(names))
	for _, name := range names {
		target, ok := platform.Parse(name)
		if !ok {
			return nil, services.Wrap(services.ErrConfiguration, "curating", "resolve targets", fmt.Sprintf("Unknown marketplace %q", name), nil)
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// HealthCheck verifies the configured marketplace targets resolve to rules.
func (c *Curator) HealthCheck(ctx context.Context) stage.Health {
	const name = "curator"
	if c.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if _, err := c.targets(); err != nil {
		return stage.Unhealthy(name, "marketplace targets not configured")
	}
	return stage.Healthy(name)
}
