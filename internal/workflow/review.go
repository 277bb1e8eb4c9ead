package workflow

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"stockmate/internal/catalog"
	"stockmate/internal/logging"
)

// copySourceToReview places a copy of the original image in the review
// directory so flagged items can be inspected without digging through the
// source folder. Failures are logged and swallowed; review routing must not
// depend on the copy succeeding.
func (m *Manager) copySourceToReview(ctx context.Context, item *catalog.Item) {
	base := m.logger
	if base == nil {
		base = logging.NewNop()
	}
	logger := logging.WithContext(ctx, base).With(logging.String(logging.FieldComponent, "workflow-review"))

	reviewDir := strings.TrimSpace(m.cfg.Paths.ReviewDir)
	if reviewDir == "" {
		return
	}
	source := strings.TrimSpace(item.SourcePath)
	if source == "" {
		return
	}
	if err := os.MkdirAll(reviewDir, 0o755); err != nil {
		logger.Warn("create review directory failed", logging.Error(err))
		return
	}

	target, err := nextReviewPath(reviewDir, item.FileName)
	if err != nil {
		logger.Warn("allocate review filename failed", logging.Error(err))
		return
	}
	if err := copyFile(source, target); err != nil {
		logger.Warn("copy to review directory failed", logging.Error(err))
		return
	}
	logger.Info("copied image for review", logging.String("review_path", target))
}

// nextReviewPath returns a path in dir for fileName that does not collide
// with an existing file, suffixing a counter when needed.
func nextReviewPath(dir, fileName string) (string, error) {
	ext := filepath.Ext(fileName)
	stem := strings.TrimSuffix(fileName, ext)
	for attempt := 0; attempt < 1000; attempt++ {
		name := fileName
		if attempt > 0 {
			name = fmt.Sprintf("%s-%d%s", stem, attempt, ext)
		}
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err != nil {
			if os.IsNotExist(err) {
				return candidate, nil
			}
			return "", err
		}
	}
	return "", fmt.Errorf("no free review filename for %s", fileName)
}

func copyFile(source, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(target)
		return err
	}
	return out.Close()
}
