package ingest_test

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"stockmate/internal/catalog"
	"stockmate/internal/ingest"
	"stockmate/internal/logging"
	"stockmate/internal/testsupport"
)

func TestScanDirFiltersUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteImage(t, filepath.Join(dir, "b.jpg"), 32, 32, color.White)
	testsupport.WriteImage(t, filepath.Join(dir, "a.png"), 32, 32, color.White)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".hidden.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	paths, err := ingest.ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 images, got %d: %v", len(paths), paths)
	}
	if filepath.Base(paths[0]) != "a.png" || filepath.Base(paths[1]) != "b.jpg" {
		t.Fatalf("expected sorted paths, got %v", paths)
	}
}

func TestScanDirRejectsMissingDirectory(t *testing.T) {
	if _, err := ingest.ScanDir(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestEnqueueSkipsDuplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	dir := t.TempDir()
	path := filepath.Join(dir, "dunes.jpg")
	testsupport.WriteImage(t, path, 32, 32, color.White)

	first, err := ingest.Enqueue(context.Background(), store, logging.NewNop(), []string{path})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if len(first.Queued) != 1 {
		t.Fatalf("expected 1 queued item, got %d", len(first.Queued))
	}
	if first.BatchID == "" {
		t.Fatal("expected batch id")
	}
	if first.Queued[0].Status != catalog.StatusPending {
		t.Fatalf("expected pending status, got %s", first.Queued[0].Status)
	}

	second, err := ingest.Enqueue(context.Background(), store, logging.NewNop(), []string{path})
	if err != nil {
		t.Fatalf("Enqueue repeat: %v", err)
	}
	if len(second.Queued) != 0 || len(second.Skipped) != 1 {
		t.Fatalf("expected duplicate to be skipped, got queued=%d skipped=%d", len(second.Queued), len(second.Skipped))
	}
}

func TestEnqueueFilesRejectsUnsupported(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	dir := t.TempDir()
	path := filepath.Join(dir, "document.pdf")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := ingest.EnqueueFiles(context.Background(), store, logging.NewNop(), []string{path}); err == nil {
		t.Fatal("expected unsupported extension error")
	}
}
