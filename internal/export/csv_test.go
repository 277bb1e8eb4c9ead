package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stockmate/internal/platform"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return records
}

func sampleMeta(filename string) platform.ImageMetadata {
	return platform.ImageMetadata{
		Filename:    filename,
		Title:       "Harbor at dusk",
		Description: "Boats moored in a quiet harbor at dusk.",
		Keywords:    []string{"harbor", "dusk", "boat"},
		Platform:    platform.Shutterstock,
		ProcessedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestUpsertCreatesFileWithHeader(t *testing.T) {
	dir := t.TempDir()

	path, err := Upsert(dir, platform.Shutterstock, sampleMeta("harbor.jpg"))
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if filepath.Base(path) != "shutterstock.csv" {
		t.Fatalf("unexpected path %q", path)
	}

	records := readCSV(t, path)
	if len(records) != 2 {
		t.Fatalf("expected header and one row, got %d records", len(records))
	}
	header := records[0]
	if header[0] != "filename" || header[1] != "description" || header[2] != "keywords" {
		t.Fatalf("unexpected header %v", header)
	}
	row := records[1]
	if row[0] != "harbor.jpg" || row[2] != "harbor, dusk, boat" {
		t.Fatalf("unexpected row %v", row)
	}
}

func TestUpsertReplacesExistingRow(t *testing.T) {
	dir := t.TempDir()

	if _, err := Upsert(dir, platform.AdobeStock, sampleMeta("a.jpg")); err != nil {
		t.Fatalf("Upsert first: %v", err)
	}
	updated := sampleMeta("a.jpg")
	updated.Title = "Updated title"
	if _, err := Upsert(dir, platform.AdobeStock, updated); err != nil {
		t.Fatalf("Upsert updated: %v", err)
	}
	if _, err := Upsert(dir, platform.AdobeStock, sampleMeta("b.jpg")); err != nil {
		t.Fatalf("Upsert second file: %v", err)
	}

	records := readCSV(t, filepath.Join(dir, "adobe_stock.csv"))
	if len(records) != 3 {
		t.Fatalf("expected header and two rows, got %d", len(records))
	}
	if records[1][1] != "Updated title" {
		t.Fatalf("expected replaced row, got %v", records[1])
	}
}

func TestHeaderLayoutPerMarketplace(t *testing.T) {
	cases := []struct {
		target platform.Platform
		want   []string
	}{
		{platform.Shutterstock, []string{"filename", "description", "keywords"}},
		{platform.AdobeStock, []string{"filename", "title", "keywords"}},
		{platform.GettyImages, []string{"file name", "title", "description", "keywords"}},
		{platform.IStock, []string{"file name", "title", "description", "keywords"}},
	}
	for _, tc := range cases {
		got := headerFor(tc.target)
		if len(got) != len(tc.want) {
			t.Errorf("headerFor(%s) = %v, want %v", tc.target, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("headerFor(%s) = %v, want %v", tc.target, got, tc.want)
				break
			}
		}
	}
}

func TestWriteAllRewritesFile(t *testing.T) {
	dir := t.TempDir()

	if _, err := Upsert(dir, platform.GettyImages, sampleMeta("old.jpg")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	metas := []platform.ImageMetadata{sampleMeta("one.jpg"), sampleMeta("two.jpg")}
	if _, err := WriteAll(dir, platform.GettyImages, metas); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	records := readCSV(t, filepath.Join(dir, "getty_images.csv"))
	if len(records) != 3 {
		t.Fatalf("expected header and two rows, got %d", len(records))
	}
	if records[1][0] != "one.jpg" || records[2][0] != "two.jpg" {
		t.Fatalf("unexpected rows %v", records[1:])
	}
}
