package analysis

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/corona10/goimagehash"

	"stockmate/internal/catalog"
	"stockmate/internal/config"
	"stockmate/internal/logging"
	"stockmate/internal/services"
	"stockmate/internal/stage"
)

// Analyzer inspects source images and flags duplicates and undersized files.
type Analyzer struct {
	cfg    *config.Config
	store  *catalog.Store
	logger *slog.Logger
}

// NewAnalyzer constructs the analyze stage handler.
func NewAnalyzer(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Analyzer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "analyzer"))
	}
	return &Analyzer{cfg: cfg, store: store, logger: stageLogger}
}

func (a *Analyzer) Prepare(ctx context.Context, item *catalog.Item) error {
	logger := logging.WithContext(ctx, a.logger)
	item.InitProgress("Analyzing", "Preparing image analysis")
	logger.Info("starting analysis preparation", logging.String("source_path", item.SourcePath))
	return nil
}

func (a *Analyzer) Execute(ctx context.Context, item *catalog.Item) error {
	logger := logging.WithContext(ctx, a.logger)
	logger.Info("starting image analysis", logging.String("source_path", item.SourcePath))

	info, err := os.Stat(item.SourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "analyzing", "stat source", "Source image no longer exists on disk", err)
		}
		return services.Wrap(services.ErrTransient, "analyzing", "stat source", "Unable to read source image", err)
	}
	if !SupportedImage(item.SourcePath) {
		return services.Wrap(
			services.ErrValidation,
			"analyzing",
			"validate extension",
			fmt.Sprintf("Unsupported image type %q", filepath.Ext(item.SourcePath)),
			nil,
		)
	}

	a.updateProgress(ctx, item, "Decoding image", 20)
	analysis, err := Inspect(item.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "analyzing", "decode image", "Image could not be decoded", err)
	}
	analysis.FileSizeBytes = info.Size()

	if err := fillCameraInfo(item.SourcePath, &analysis); err != nil {
		logger.Warn("exif read failed", logging.Error(err))
	}

	if err := item.SetAnalysis(analysis); err != nil {
		return services.Wrap(services.ErrTransient, "analyzing", "encode analysis", "Failed to encode analysis payload", err)
	}
	item.ContentHash = analysis.DifferenceHash

	if minMP := a.cfg.Analyzer.MinMegapixels; minMP > 0 && analysis.Megapixels < minMP {
		reason := fmt.Sprintf("Resolution %.2f MP below minimum %.2f MP", analysis.Megapixels, minMP)
		logger.Info("routing undersized image to review", logging.Float64("megapixels", analysis.Megapixels))
		item.SetReview(reason)
		return nil
	}

	a.updateProgress(ctx, item, "Checking for duplicates", 70)
	if a.cfg.Analyzer.DedupeEnabled && analysis.DifferenceHash != "" {
		duplicateOf, err := a.findDuplicate(ctx, item.ID, analysis.DifferenceHash)
		if err != nil {
			return services.Wrap(services.ErrTransient, "analyzing", "scan duplicates", "Duplicate scan failed", err)
		}
		if duplicateOf != "" {
			reason := fmt.Sprintf("Near-duplicate of %s", duplicateOf)
			logger.Info("routing duplicate image to review", logging.String("duplicate_of", duplicateOf))
			item.SetReview(reason)
			return nil
		}
	}

	item.SetProgressComplete("Analyzing", fmt.Sprintf("%dx%d, %.1f MP", analysis.Width, analysis.Height, analysis.Megapixels))
	logger.Info(
		"image analysis completed",
		logging.Int("width", analysis.Width),
		logging.Int("height", analysis.Height),
		logging.Float64("megapixels", analysis.Megapixels),
		logging.String("composition", analysis.Composition),
	)
	return nil
}

// findDuplicate returns the file name of a previously cataloged image whose
// difference hash is within the configured Hamming distance, or "" when the
// image is unique.
func (a *Analyzer) findDuplicate(ctx context.Context, itemID int64, hashValue string) (string, error) {
	current, err := goimagehash.ImageHashFromString(hashValue)
	if err != nil {
		return "", fmt.Errorf("parse hash: %w", err)
	}
	records, err := a.store.KnownHashes(ctx, itemID)
	if err != nil {
		return "", err
	}
	threshold := a.cfg.Analyzer.DedupeThreshold
	for _, rec := range records {
		known, err := goimagehash.ImageHashFromString(rec.Hash)
		if err != nil {
			continue
		}
		distance, err := current.Distance(known)
		if err != nil {
			continue
		}
		if distance <= threshold {
			name := strings.TrimSpace(rec.FileName)
			if name == "" {
				name = fmt.Sprintf("item %d", rec.ItemID)
			}
			return name, nil
		}
	}
	return "", nil
}

// HealthCheck verifies the analyzer can reach its catalog store.
func (a *Analyzer) HealthCheck(ctx context.Context) stage.Health {
	const name = "analyzer"
	if a.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if a.store == nil {
		return stage.Unhealthy(name, "catalog store unavailable")
	}
	if a.cfg.Analyzer.DedupeEnabled && a.cfg.Analyzer.DedupeThreshold <= 0 {
		return stage.Unhealthy(name, "dedupe threshold not configured")
	}
	return stage.Healthy(name)
}

func (a *Analyzer) updateProgress(ctx context.Context, item *catalog.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, a.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := a.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist analyzer progress", logging.Error(err))
		return
	}
	*item = copy
}
