package export

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"stockmate/internal/catalog"
	"stockmate/internal/config"
	"stockmate/internal/logging"
	"stockmate/internal/platform"
	"stockmate/internal/services"
	"stockmate/internal/stage"
)

// Exporter appends curated renditions to the marketplace CSVs.
type Exporter struct {
	cfg    *config.Config
	store  *catalog.Store
	logger *slog.Logger
}

// NewExporter constructs the export stage handler.
func NewExporter(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Exporter {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "exporter"))
	}
	return &Exporter{cfg: cfg, store: store, logger: stageLogger}
}

func (e *Exporter) Prepare(ctx context.Context, item *catalog.Item) error {
	logger := logging.WithContext(ctx, e.logger)
	item.InitProgress("Exporting", "Preparing CSV export")
	logger.Info("starting export preparation", logging.String("file_name", item.FileName))
	return nil
}

func (e *Exporter) Execute(ctx context.Context, item *catalog.Item) error {
	logger := logging.WithContext(ctx, e.logger)

	renditions, err := item.Renditions()
	if err != nil {
		return services.Wrap(services.ErrValidation, "exporting", "decode renditions", "Stored renditions payload is unreadable", err)
	}
	if len(renditions) == 0 {
		return services.Wrap(services.ErrValidation, "exporting", "validate renditions", "No renditions present; run curation before export", nil)
	}
	exportDir := strings.TrimSpace(e.cfg.Paths.ExportDir)
	if exportDir == "" {
		return services.Wrap(services.ErrConfiguration, "exporting", "resolve export dir", "Export directory not configured; set export_dir in your stockmate config.toml", nil)
	}

	exported := 0
	for _, target := range platform.All() {
		meta, ok := renditions[target]
		if !ok {
			continue
		}
		path, err := Upsert(exportDir, target, meta)
		if err != nil {
			return services.Wrap(services.ErrTransient, "exporting", "write csv", fmt.Sprintf("Failed to update %s export", target.DisplayName()), err)
		}
		exported++
		logger.Info("export row written", logging.String("marketplace", string(target)), logging.String("csv_path", path))
	}

	item.SetProgressComplete("Exporting", fmt.Sprintf("Exported to %d marketplace CSVs", exported))
	logger.Info("export completed", logging.Int("marketplaces", exported))
	return nil
}

// RewriteAll regenerates every marketplace CSV from the catalog, covering all
// items that have renditions. Used by the export command to rebuild files
// after manual edits or catalog cleanup.
func RewriteAll(ctx context.Context, cfg *config.Config, store *catalog.Store) (map[platform.Platform]int, error) {
	items, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	grouped := make(map[platform.Platform][]platform.ImageMetadata)
	for _, item := range items {
		renditions, err := item.Renditions()
		if err != nil {
			return nil, fmt.Errorf("decode renditions for %s: %w", item.FileName, err)
		}
		for target, meta := range renditions {
			grouped[target] = append(grouped[target], meta)
		}
	}

	counts := make(map[platform.Platform]int, len(grouped))
	for target, metas := range grouped {
		if _, err := WriteAll(cfg.Paths.ExportDir, target, metas); err != nil {
			return nil, err
		}
		counts[target] = len(metas)
	}
	return counts, nil
}

// HealthCheck verifies the export directory is configured.
func (e *Exporter) HealthCheck(ctx context.Context) stage.Health {
	const name = "exporter"
	if e.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(e.cfg.Paths.ExportDir) == "" {
		return stage.Unhealthy(name, "export directory not configured")
	}
	return stage.Healthy(name)
}
