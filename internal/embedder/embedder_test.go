package embedder

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stockmate/internal/catalog"
	"stockmate/internal/logging"
	"stockmate/internal/services"
	"stockmate/internal/testsupport"
)

func newEmbeddableItem(t *testing.T, store *catalog.Store, path string) *catalog.Item {
	t.Helper()
	testsupport.WriteGradientImage(t, path, 160, 120)
	item := testsupport.NewImage(t, store, path, "")
	if err := item.SetDraft(catalog.Draft{
		Title:       "Quiet mountain lake at dawn",
		Description: "Still water reflects snowy peaks in early light.",
		Keywords:    []string{"lake", "mountain", "dawn", "reflection"},
		Source:      "heuristic",
	}); err != nil {
		t.Fatalf("SetDraft: %v", err)
	}
	item.Status = catalog.StatusEmbedding
	return item
}

func TestEmbedderWritesExifAndSidecar(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	path := filepath.Join(testsupport.BaseDir(cfg), "in", "lake.jpg")
	item := newEmbeddableItem(t, store, path)

	handler := NewEmbedder(cfg, store, logging.NewNop())
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	description, err := readExifText(path, "ImageDescription")
	if err != nil {
		t.Fatalf("readExifText: %v", err)
	}
	if !strings.Contains(description, "Still water reflects") {
		t.Fatalf("unexpected embedded description %q", description)
	}
	title, err := readExifText(path, "XPTitle")
	if err != nil {
		t.Fatalf("readExifText: %v", err)
	}
	if title != "Quiet mountain lake at dawn" {
		t.Fatalf("unexpected embedded title %q", title)
	}
	keywords, err := readExifText(path, "XPKeywords")
	if err != nil {
		t.Fatalf("readExifText: %v", err)
	}
	if keywords != "lake;mountain;dawn;reflection" {
		t.Fatalf("unexpected embedded keywords %q", keywords)
	}

	if item.SidecarPath != SidecarPath(path) {
		t.Fatalf("unexpected sidecar path %q", item.SidecarPath)
	}
	sidecar, err := os.ReadFile(item.SidecarPath)
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	content := string(sidecar)
	if !strings.Contains(content, "Quiet mountain lake at dawn") {
		t.Fatalf("sidecar missing title: %s", content)
	}
	if !strings.Contains(content, "<rdf:li>mountain</rdf:li>") {
		t.Fatalf("sidecar missing keywords: %s", content)
	}
}

func TestEmbedderSkipsExifForPNG(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	path := filepath.Join(testsupport.BaseDir(cfg), "in", "lake.png")
	item := newEmbeddableItem(t, store, path)

	handler := NewEmbedder(cfg, store, logging.NewNop())
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.SidecarPath == "" {
		t.Fatal("expected sidecar written for png source")
	}
}

func TestEmbedderDisabledIsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Embedder.Enabled = false
	store := testsupport.MustOpenStore(t, cfg)

	path := filepath.Join(testsupport.BaseDir(cfg), "in", "noop.jpg")
	item := newEmbeddableItem(t, store, path)

	handler := NewEmbedder(cfg, store, logging.NewNop())
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.SidecarPath != "" {
		t.Fatal("did not expect sidecar when disabled")
	}
	if _, err := os.Stat(SidecarPath(path)); !os.IsNotExist(err) {
		t.Fatal("sidecar file should not exist when disabled")
	}
}

func TestEmbedderMissingSourceMapsToReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	item := testsupport.NewImage(t, store, filepath.Join(testsupport.BaseDir(cfg), "gone.jpg"), "")
	if err := item.SetDraft(catalog.Draft{Title: "Gone"}); err != nil {
		t.Fatalf("SetDraft: %v", err)
	}

	handler := NewEmbedder(cfg, store, logging.NewNop())
	err := handler.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	if status := services.FailureStatus(err); status != catalog.StatusReview {
		t.Fatalf("expected review failure status, got %s", status)
	}
}

func TestEscapeXML(t *testing.T) {
	if got := escapeXML(`Sun & "sand" <beach>`); !strings.Contains(got, "&amp;") || strings.Contains(got, "<beach>") {
		t.Fatalf("unexpected escape result %q", got)
	}
}

func TestEmbedderHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	handler := NewEmbedder(cfg, store, logging.NewNop())
	if health := handler.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy embedder, got %+v", health)
	}

	cfg.Embedder.WriteEXIF = false
	cfg.Embedder.WriteSidecar = false
	if health := handler.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy embedder with nothing to write")
	}
}
