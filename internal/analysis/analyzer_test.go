package analysis_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"stockmate/internal/analysis"
	"stockmate/internal/catalog"
	"stockmate/internal/logging"
	"stockmate/internal/services"
	"stockmate/internal/testsupport"
)

func TestAnalyzerRecordsAnalysis(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	path := filepath.Join(testsupport.BaseDir(cfg), "in", "meadow.jpg")
	testsupport.WriteGradientImage(t, path, 320, 240)
	item := testsupport.NewImage(t, store, path, "")

	analyzer := analysis.NewAnalyzer(cfg, store, logging.NewNop())
	if err := analyzer.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := analyzer.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	result, err := item.Analysis()
	if err != nil {
		t.Fatalf("Analysis: %v", err)
	}
	if result.Width != 320 || result.Height != 240 {
		t.Fatalf("unexpected dimensions %dx%d", result.Width, result.Height)
	}
	if result.FileSizeBytes == 0 {
		t.Fatal("expected file size recorded")
	}
	if !strings.HasPrefix(item.ContentHash, "d:") {
		t.Fatalf("expected content hash set, got %q", item.ContentHash)
	}
	if item.NeedsReview {
		t.Fatalf("did not expect review flag: %q", item.ReviewReason)
	}
}

func TestAnalyzerRoutesUndersizedToReview(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMinMegapixels(4.0))
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	path := filepath.Join(testsupport.BaseDir(cfg), "in", "tiny.jpg")
	testsupport.WriteGradientImage(t, path, 200, 150)
	item := testsupport.NewImage(t, store, path, "")

	analyzer := analysis.NewAnalyzer(cfg, store, logging.NewNop())
	if err := analyzer.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.Status != catalog.StatusReview || !item.NeedsReview {
		t.Fatalf("expected review status, got %+v", item)
	}
	if !strings.Contains(item.ReviewReason, "below minimum") {
		t.Fatalf("unexpected review reason %q", item.ReviewReason)
	}
}

func TestAnalyzerFlagsNearDuplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDedupe(10))
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := testsupport.BaseDir(cfg)
	first := filepath.Join(base, "in", "original.jpg")
	second := filepath.Join(base, "in", "copy.jpg")
	testsupport.WriteGradientImage(t, first, 320, 240)
	testsupport.WriteGradientImage(t, second, 320, 240)

	analyzer := analysis.NewAnalyzer(cfg, store, logging.NewNop())

	original := testsupport.NewImage(t, store, first, "")
	if err := analyzer.Execute(ctx, original); err != nil {
		t.Fatalf("Execute original: %v", err)
	}
	if err := store.Update(ctx, original); err != nil {
		t.Fatalf("Update original: %v", err)
	}

	duplicate := testsupport.NewImage(t, store, second, "")
	if err := analyzer.Execute(ctx, duplicate); err != nil {
		t.Fatalf("Execute duplicate: %v", err)
	}
	if duplicate.Status != catalog.StatusReview {
		t.Fatalf("expected duplicate routed to review, got %s", duplicate.Status)
	}
	if !strings.Contains(duplicate.ReviewReason, "original.jpg") {
		t.Fatalf("expected reason naming the original, got %q", duplicate.ReviewReason)
	}
}

func TestAnalyzerMissingSourceMapsToReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewImage(t, store, filepath.Join(testsupport.BaseDir(cfg), "gone.jpg"), "")
	analyzer := analysis.NewAnalyzer(cfg, store, logging.NewNop())

	err := analyzer.Execute(ctx, item)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	if status := services.FailureStatus(err); status != catalog.StatusReview {
		t.Fatalf("expected review failure status, got %s", status)
	}
}

func TestAnalyzerRejectsUnsupportedExtension(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	path := filepath.Join(testsupport.BaseDir(cfg), "in", "clip.mp4")
	testsupport.WriteFile(t, path, 64)
	item := testsupport.NewImage(t, store, path, "")

	analyzer := analysis.NewAnalyzer(cfg, store, logging.NewNop())
	err := analyzer.Execute(ctx, item)
	if err == nil || !strings.Contains(err.Error(), "Unsupported image type") {
		t.Fatalf("expected unsupported type error, got %v", err)
	}
}

func TestAnalyzerHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	analyzer := analysis.NewAnalyzer(cfg, store, logging.NewNop())
	if health := analyzer.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy analyzer, got %+v", health)
	}

	broken := analysis.NewAnalyzer(cfg, nil, logging.NewNop())
	if health := broken.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy analyzer without store")
	}
}
