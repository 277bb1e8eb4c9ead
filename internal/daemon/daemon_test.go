package daemon_test

import (
	"context"
	"strings"
	"testing"

	"stockmate/internal/daemon"
	"stockmate/internal/logging"
	"stockmate/internal/testsupport"
	"stockmate/internal/workflow"
)

func newTestDaemon(t *testing.T) (*daemon.Daemon, func()) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 0
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	manager := workflow.NewManager(cfg, store, logger)
	manager.ConfigureStages(daemon.BuildStageSet(cfg, store, logger))

	d, err := daemon.New(cfg, store, logger, manager)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	sibling := workflow.NewManager(cfg, store, logger)
	sibling.ConfigureStages(daemon.BuildStageSet(cfg, store, logger))
	second, err := daemon.New(cfg, store, logger, sibling)
	if err != nil {
		t.Fatalf("New (second) failed: %v", err)
	}

	return d, func() {
		if err := second.Start(context.Background()); err == nil {
			second.Stop()
			t.Error("expected second daemon instance to be rejected while lock is held")
		} else if !strings.Contains(err.Error(), "already running") {
			t.Errorf("unexpected second instance error: %v", err)
		}
	}
}

func TestDaemonStartEnforcesSingleInstance(t *testing.T) {
	d, assertLocked := newTestDaemon(t)
	t.Cleanup(func() { d.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.LockFilePath == "" || status.CatalogDBPath == "" {
		t.Fatalf("expected populated status paths, got %+v", status)
	}

	assertLocked()

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("expected daemon to report stopped")
	}
}

func TestDaemonRequiresDependencies(t *testing.T) {
	if _, err := daemon.New(nil, nil, nil, nil); err == nil {
		t.Fatal("expected constructor error for missing dependencies")
	}
}

func TestBuildStageSetHonorsOptionalStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	set := daemon.BuildStageSet(cfg, store, logging.NewNop())
	if set.Analyzer == nil || set.Generator == nil || set.Curator == nil || set.Exporter == nil {
		t.Fatalf("expected core stage handlers to be constructed: %+v", set)
	}
	if set.Embedder == nil {
		t.Fatal("expected embedder handler while embedding is enabled")
	}
	if set.Uploader != nil {
		t.Fatal("expected no uploader handler while uploading is disabled")
	}

	cfg.Embedder.Enabled = false
	cfg.Uploader.Enabled = true
	set = daemon.BuildStageSet(cfg, store, logging.NewNop())
	if set.Embedder != nil {
		t.Fatal("expected no embedder handler while embedding is disabled")
	}
	if set.Uploader == nil {
		t.Fatal("expected uploader handler while uploading is enabled")
	}
}
