package embedder

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"log/slog"

	"stockmate/internal/catalog"
	"stockmate/internal/config"
	"stockmate/internal/logging"
	"stockmate/internal/services"
	"stockmate/internal/stage"
)

// Embedder writes curated metadata into the source image and its sidecar.
type Embedder struct {
	cfg    *config.Config
	store  *catalog.Store
	logger *slog.Logger
}

// NewEmbedder constructs the embed stage handler.
func NewEmbedder(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Embedder {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "embedder"))
	}
	return &Embedder{cfg: cfg, store: store, logger: stageLogger}
}

func (e *Embedder) Prepare(ctx context.Context, item *catalog.Item) error {
	logger := logging.WithContext(ctx, e.logger)
	item.InitProgress("Embedding", "Preparing metadata embedding")
	logger.Info("starting embed preparation", logging.String("file_name", item.FileName))
	return nil
}

func (e *Embedder) Execute(ctx context.Context, item *catalog.Item) error {
	logger := logging.WithContext(ctx, e.logger)

	if !e.cfg.Embedder.Enabled {
		item.SetProgressComplete("Embedding", "Embedding disabled")
		logger.Info("embedding disabled, skipping")
		return nil
	}

	draft, err := item.Draft()
	if err != nil {
		return services.Wrap(services.ErrValidation, "embedding", "decode draft", "Stored draft payload is unreadable", err)
	}
	if strings.TrimSpace(draft.Title) == "" {
		return services.Wrap(services.ErrValidation, "embedding", "validate draft", "No draft metadata present; run generation before embedding", nil)
	}
	if _, err := os.Stat(item.SourcePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "embedding", "stat source", "Source image no longer exists on disk", err)
		}
		return services.Wrap(services.ErrTransient, "embedding", "stat source", "Unable to read source image", err)
	}

	if e.cfg.Embedder.WriteEXIF {
		if exifWritable(item.SourcePath) {
			e.updateProgress(ctx, item, "Writing EXIF metadata", 30)
			description := draft.Description
			if strings.TrimSpace(description) == "" {
				description = draft.Title
			}
			if err := writeExifMetadata(item.SourcePath, draft.Title, description, draft.Keywords); err != nil {
				return services.Wrap(services.ErrExternalTool, "embedding", "write exif", "Failed to rewrite EXIF metadata", err)
			}
			logger.Info("exif metadata written", logging.String("source_path", item.SourcePath))
		} else {
			logger.Info("skipping exif write for non-jpeg source", logging.String("source_path", item.SourcePath))
		}
	}

	if e.cfg.Embedder.WriteSidecar {
		e.updateProgress(ctx, item, "Writing XMP sidecar", 70)
		sidecarPath, err := writeSidecar(item.SourcePath, draft)
		if err != nil {
			return services.Wrap(services.ErrTransient, "embedding", "write sidecar", "Failed to write XMP sidecar", err)
		}
		item.SidecarPath = sidecarPath
		logger.Info("sidecar written", logging.String("sidecar_path", sidecarPath))
	}

	item.SetProgressComplete("Embedding", "Metadata embedded")
	return nil
}

// HealthCheck verifies embedding has something to do when enabled.
func (e *Embedder) HealthCheck(ctx context.Context) stage.Health {
	const name = "embedder"
	if e.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if e.cfg.Embedder.Enabled && !e.cfg.Embedder.WriteEXIF && !e.cfg.Embedder.WriteSidecar {
		return stage.Unhealthy(name, "embedding enabled but both exif and sidecar writes are off")
	}
	return stage.Healthy(name)
}

func (e *Embedder) updateProgress(ctx context.Context, item *catalog.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, e.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := e.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist embedder progress", logging.Error(err))
		return
	}
	*item = copy
}
