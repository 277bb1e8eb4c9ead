package generator_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"stockmate/internal/catalog"
	"stockmate/internal/generator"
	"stockmate/internal/logging"
	"stockmate/internal/services"
	"stockmate/internal/testsupport"
)

type stubProvider struct {
	name  string
	draft catalog.Draft
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(ctx context.Context, input generator.Input) (catalog.Draft, error) {
	s.calls++
	if s.err != nil {
		return catalog.Draft{}, s.err
	}
	draft := s.draft
	draft.Source = s.name
	return draft, nil
}

func newAnalyzedItem(t *testing.T, store *catalog.Store, path string) *catalog.Item {
	t.Helper()
	item, err := store.NewImage(context.Background(), path, "")
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	if err := item.SetAnalysis(catalog.Analysis{Width: 4000, Height: 3000, Megapixels: 12}); err != nil {
		t.Fatalf("SetAnalysis: %v", err)
	}
	item.Status = catalog.StatusGenerating
	return item
}

func TestGeneratorUsesVisionWhenAvailable(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithVisionKey("key"))
	store := testsupport.MustOpenStore(t, cfg)

	vision := &stubProvider{name: "vision", draft: catalog.Draft{Title: "Alpine lake", Keywords: []string{"lake", "alps"}}}
	heuristic := &stubProvider{name: "heuristic", draft: catalog.Draft{Title: "Fallback"}}
	gen := generator.NewGeneratorWithProviders(cfg, store, logging.NewNop(), vision, heuristic)

	item := newAnalyzedItem(t, store, filepath.Join(testsupport.BaseDir(cfg), "lake.jpg"))
	if err := gen.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	draft, err := item.Draft()
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if draft.Title != "Alpine lake" || draft.Source != "vision" {
		t.Fatalf("unexpected draft %+v", draft)
	}
	if heuristic.calls != 0 {
		t.Fatalf("heuristic should not run, got %d calls", heuristic.calls)
	}
}

func TestGeneratorFallsBackToHeuristic(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithVisionKey("key"))
	store := testsupport.MustOpenStore(t, cfg)

	vision := &stubProvider{name: "vision", err: errors.New("api down")}
	heuristic := &stubProvider{name: "heuristic", draft: catalog.Draft{Title: "Offline draft", Keywords: []string{"offline"}}}
	gen := generator.NewGeneratorWithProviders(cfg, store, logging.NewNop(), vision, heuristic)

	item := newAnalyzedItem(t, store, filepath.Join(testsupport.BaseDir(cfg), "down.jpg"))
	if err := gen.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	draft, _ := item.Draft()
	if draft.Source != "heuristic" {
		t.Fatalf("expected heuristic fallback, got %+v", draft)
	}
	if vision.calls != 1 || heuristic.calls != 1 {
		t.Fatalf("unexpected call counts vision=%d heuristic=%d", vision.calls, heuristic.calls)
	}
}

func TestGeneratorForcedVisionWithoutKeyFails(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithProvider("vision"))
	store := testsupport.MustOpenStore(t, cfg)

	heuristic := &stubProvider{name: "heuristic", draft: catalog.Draft{Title: "Unused"}}
	gen := generator.NewGeneratorWithProviders(cfg, store, logging.NewNop(), nil, heuristic)

	item := newAnalyzedItem(t, store, filepath.Join(testsupport.BaseDir(cfg), "x.jpg"))
	err := gen.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if status := services.FailureStatus(err); status != catalog.StatusReview {
		t.Fatalf("expected review failure status, got %s", status)
	}
	if heuristic.calls != 0 {
		t.Fatal("heuristic should not run when vision is forced")
	}
}

func TestGeneratorNoFallbackPropagatesError(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithVisionKey("key"))
	cfg.Generator.FallbackHeuristic = false
	store := testsupport.MustOpenStore(t, cfg)

	vision := &stubProvider{name: "vision", err: errors.New("quota exceeded")}
	gen := generator.NewGeneratorWithProviders(cfg, store, logging.NewNop(), vision, &stubProvider{name: "heuristic"})

	item := newAnalyzedItem(t, store, filepath.Join(testsupport.BaseDir(cfg), "q.jpg"))
	err := gen.Execute(context.Background(), item)
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestGeneratorHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	gen := generator.NewGeneratorWithProviders(cfg, store, logging.NewNop(), nil, &stubProvider{name: "heuristic"})
	if health := gen.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy generator, got %+v", health)
	}

	forced := testsupport.NewConfig(t, testsupport.WithProvider("vision"))
	broken := generator.NewGeneratorWithProviders(forced, store, logging.NewNop(), nil, &stubProvider{name: "heuristic"})
	if health := broken.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy generator when vision forced without key")
	}
}
