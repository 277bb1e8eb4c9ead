package main

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"stockmate/internal/catalog"
)

func TestQueueStatusAndList(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	if _, err := env.store.NewImage(ctx, "/images/alpha.jpg", "batch-1"); err != nil {
		t.Fatalf("alpha: %v", err)
	}

	beta, err := env.store.NewImage(ctx, "/images/beta.jpg", "batch-1")
	if err != nil {
		t.Fatalf("beta: %v", err)
	}
	beta.Status = catalog.StatusFailed
	if err := env.store.Update(ctx, beta); err != nil {
		t.Fatalf("mark beta failed: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "queue", "status")
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "pending")
	requireContains(t, out, "failed")

	out, _, err = runCLI(t, env.configPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "alpha.jpg")
	requireContains(t, out, "beta.jpg")

	out, _, err = runCLI(t, env.configPath, "queue", "list", "--status", "failed")
	if err != nil {
		t.Fatalf("queue list --status failed: %v", err)
	}
	requireContains(t, out, "beta.jpg")
	if strings.Contains(out, "alpha.jpg") {
		t.Fatalf("expected alpha.jpg to be filtered out, got:\n%s", out)
	}
}

func TestQueueRetryAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	alpha, err := env.store.NewImage(ctx, "/images/alpha.jpg", "batch-1")
	if err != nil {
		t.Fatalf("alpha: %v", err)
	}
	alpha.Status = catalog.StatusFailed
	if err := env.store.Update(ctx, alpha); err != nil {
		t.Fatalf("mark alpha failed: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "queue", "retry")
	if err != nil {
		t.Fatalf("queue retry: %v", err)
	}
	requireContains(t, out, "Reset 1 items for retry")

	updated, err := env.store.GetByID(ctx, alpha.ID)
	if err != nil {
		t.Fatalf("lookup alpha: %v", err)
	}
	if updated.Status != catalog.StatusPending {
		t.Fatalf("expected pending after retry, got %s", updated.Status)
	}

	updated.Status = catalog.StatusFailed
	if err := env.store.Update(ctx, updated); err != nil {
		t.Fatalf("mark failed again: %v", err)
	}

	out, _, err = runCLI(t, env.configPath, "queue", "clear", "--failed")
	if err != nil {
		t.Fatalf("queue clear --failed: %v", err)
	}
	requireContains(t, out, "Cleared 1 failed items")

	items, err := env.store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty catalog, got %d items", len(items))
	}
}

func TestQueueRemove(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	item, err := env.store.NewImage(ctx, "/images/alpha.jpg", "batch-1")
	if err != nil {
		t.Fatalf("alpha: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "queue", "remove", "99999")
	if err != nil {
		t.Fatalf("queue remove missing: %v", err)
	}
	requireContains(t, out, "not found")

	out, _, err = runCLI(t, env.configPath, "queue", "remove", strconv.FormatInt(item.ID, 10))
	if err != nil {
		t.Fatalf("queue remove: %v", err)
	}
	requireContains(t, out, "Removed item")

	if got, err := env.store.GetByID(ctx, item.ID); err != nil {
		t.Fatalf("lookup: %v", err)
	} else if got != nil {
		t.Fatalf("expected item removed, got %+v", got)
	}
}

func TestQueueHealthJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	if _, err := env.store.NewImage(ctx, "/images/alpha.jpg", "batch-1"); err != nil {
		t.Fatalf("alpha: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "queue", "health", "--json")
	if err != nil {
		t.Fatalf("queue health --json: %v", err)
	}
	requireContains(t, out, `"Total": 1`)
}
