package testsupport

import (
	"context"
	"testing"

	"stockmate/internal/catalog"
	"stockmate/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewImage creates a new catalog item for tests using the provided store.
func NewImage(t testing.TB, store *catalog.Store, sourcePath, batchID string) *catalog.Item {
	t.Helper()

	item, err := store.NewImage(context.Background(), sourcePath, batchID)
	if err != nil {
		t.Fatalf("store.NewImage: %v", err)
	}
	return item
}
