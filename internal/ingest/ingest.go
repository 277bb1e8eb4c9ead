// Package ingest scans folders for supported images and enqueues them into
// the catalog as pending work.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"stockmate/internal/analysis"
	"stockmate/internal/catalog"
	"stockmate/internal/logging"
)

// Result summarizes an ingestion run.
type Result struct {
	BatchID string
	Queued  []*catalog.Item
	Skipped []string
}

// ScanDir walks a directory and returns the supported image paths in sorted
// order. Hidden files and subdirectory entries beyond one level are skipped;
// marketplace folders are flat by convention.
func ScanDir(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("directory does not exist: %s", dir)
		}
		return nil, fmt.Errorf("inspect directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		if !analysis.SupportedImage(path) {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

// Enqueue inserts the given paths as pending catalog items under a fresh
// batch id. Paths already cataloged are reported as skipped rather than
// failing the run.
func Enqueue(ctx context.Context, store *catalog.Store, logger *slog.Logger, paths []string) (Result, error) {
	result := Result{BatchID: uuid.NewString()}
	if logger == nil {
		logger = logging.NewNop()
	}

	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return result, fmt.Errorf("resolve path: %w", err)
		}
		item, err := store.NewImage(ctx, absPath, result.BatchID)
		if err != nil {
			if errors.Is(err, catalog.ErrDuplicateSource) {
				result.Skipped = append(result.Skipped, absPath)
				logger.Info("skipping already cataloged image", logging.String(logging.FieldSourcePath, absPath))
				continue
			}
			return result, err
		}
		result.Queued = append(result.Queued, item)
	}
	return result, nil
}

// EnqueueFiles validates explicit file paths and enqueues the supported ones.
func EnqueueFiles(ctx context.Context, store *catalog.Store, logger *slog.Logger, paths []string) (Result, error) {
	valid := make([]string, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Result{}, fmt.Errorf("file does not exist: %s", path)
			}
			return Result{}, fmt.Errorf("inspect file: %w", err)
		}
		if info.IsDir() {
			return Result{}, fmt.Errorf("%s is a directory; use a folder scan instead", path)
		}
		if !analysis.SupportedImage(path) {
			return Result{}, fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
		}
		valid = append(valid, path)
	}
	return Enqueue(ctx, store, logger, valid)
}
