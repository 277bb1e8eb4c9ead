package curator_test

import (
	"context"
	"strings"
	"testing"

	"stockmate/internal/catalog"
	"stockmate/internal/curator"
	"stockmate/internal/logging"
	"stockmate/internal/platform"
	"stockmate/internal/services"
	"stockmate/internal/testsupport"
)

func newDraftedItem(t *testing.T, store *catalog.Store, draft catalog.Draft) *catalog.Item {
	t.Helper()
	item := testsupport.NewImage(t, store, "/photos/harbor-sunset.jpg", "")
	if err := item.SetDraft(draft); err != nil {
		t.Fatalf("SetDraft: %v", err)
	}
	item.Status = catalog.StatusCurating
	return item
}

func TestCuratorRendersAllTargets(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTargets("shutterstock", "adobe_stock"))
	store := testsupport.MustOpenStore(t, cfg)

	draft := catalog.Draft{
		Title:       "Harbor at sunset with fishing boats",
		Description: "Small fishing boats moored in a harbor under an orange sky.",
		Keywords:    []string{"harbor", "sunset", "boat", "fishing", "sea", "orange", "sky", "stock photo", "evening"},
		Source:      "vision",
	}
	item := newDraftedItem(t, store, draft)

	handler := curator.NewCurator(cfg, store, logging.NewNop())
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	renditions, err := item.Renditions()
	if err != nil {
		t.Fatalf("Renditions: %v", err)
	}
	if len(renditions) != 2 {
		t.Fatalf("expected 2 renditions, got %d", len(renditions))
	}

	adobe := renditions[platform.AdobeStock]
	for _, kw := range adobe.Keywords {
		if strings.Contains(strings.ToLower(kw), "stock") {
			t.Fatalf("banned keyword survived: %q", kw)
		}
	}
	if len(adobe.Keywords) != 8 {
		t.Fatalf("unexpected adobe keywords %v", adobe.Keywords)
	}
	shutter := renditions[platform.Shutterstock]
	if len(shutter.Keywords) != 9 {
		t.Fatalf("unexpected shutterstock keywords %v", shutter.Keywords)
	}
	if item.NeedsReview {
		t.Fatalf("did not expect review: %q", item.ReviewReason)
	}
}

func TestCuratorRoutesThinKeywordsToReview(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTargets("shutterstock"))
	store := testsupport.MustOpenStore(t, cfg)

	item := newDraftedItem(t, store, catalog.Draft{
		Title:    "Plain wall",
		Keywords: []string{"wall", "plain", "gray"},
		Source:   "heuristic",
	})

	handler := curator.NewCurator(cfg, store, logging.NewNop())
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.Status != catalog.StatusReview {
		t.Fatalf("expected review status, got %s", item.Status)
	}
	if !strings.Contains(item.ReviewReason, "minimum is 7") {
		t.Fatalf("unexpected review reason %q", item.ReviewReason)
	}

	renditions, err := item.Renditions()
	if err != nil {
		t.Fatalf("Renditions: %v", err)
	}
	if len(renditions) != 1 {
		t.Fatal("expected renditions preserved for review")
	}
}

func TestCuratorRequiresDraft(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	item := testsupport.NewImage(t, store, "/photos/empty.jpg", "")
	handler := curator.NewCurator(cfg, store, logging.NewNop())

	err := handler.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected error without draft")
	}
	if status := services.FailureStatus(err); status != catalog.StatusReview {
		t.Fatalf("expected review failure status, got %s", status)
	}
}

func TestCuratorRejectsUnknownTarget(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTargets("flickr"))
	store := testsupport.MustOpenStore(t, cfg)

	item := newDraftedItem(t, store, catalog.Draft{Title: "Anything", Keywords: []string{"a", "b", "c", "d", "e", "f", "g"}})
	handler := curator.NewCurator(cfg, store, logging.NewNop())

	err := handler.Execute(context.Background(), item)
	if err == nil || !strings.Contains(err.Error(), "flickr") {
		t.Fatalf("expected unknown marketplace error, got %v", err)
	}
}

func TestCuratorHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	handler := curator.NewCurator(cfg, store, logging.NewNop())
	if health := handler.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy curator, got %+v", health)
	}

	empty := testsupport.NewConfig(t, testsupport.WithTargets())
	broken := curator.NewCurator(empty, store, logging.NewNop())
	if health := broken.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy curator without targets")
	}
}
