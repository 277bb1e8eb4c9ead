package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"stockmate/internal/platform"
)

// Filename returns the CSV file name used for a marketplace.
func Filename(p platform.Platform) string {
	return string(p) + ".csv"
}

// headerFor returns the column layout each marketplace's bulk upload expects.
func headerFor(p platform.Platform) []string {
	switch p {
	case platform.Shutterstock:
		return []string{"filename", "description", "keywords"}
	case platform.AdobeStock:
		return []string{"filename", "title", "keywords"}
	default:
		return []string{"file name", "title", "description", "keywords"}
	}
}

func rowFor(p platform.Platform, meta platform.ImageMetadata) []string {
	keywords := strings.Join(meta.Keywords, ", ")
	switch p {
	case platform.Shutterstock:
		return []string{meta.Filename, meta.Description, keywords}
	case platform.AdobeStock:
		return []string{meta.Filename, meta.Title, keywords}
	default:
		return []string{meta.Filename, meta.Title, meta.Description, keywords}
	}
}

// Upsert inserts or replaces the rendition's row in the marketplace CSV,
// creating the file with its header on first use.
func Upsert(dir string, p platform.Platform, meta platform.ImageMetadata) (string, error) {
	path := filepath.Join(dir, Filename(p))

	rows, err := readRows(path)
	if err != nil {
		return "", err
	}

	replaced := false
	for i, row := range rows {
		if len(row) > 0 && row[0] == meta.Filename {
			rows[i] = rowFor(p, meta)
			replaced = true
			break
		}
	}
	if !replaced {
		rows = append(rows, rowFor(p, meta))
	}

	if err := writeRows(path, p, rows); err != nil {
		return "", err
	}
	return path, nil
}

// WriteAll rewrites the marketplace CSV from scratch with the given renditions.
func WriteAll(dir string, p platform.Platform, metas []platform.ImageMetadata) (string, error) {
	path := filepath.Join(dir, Filename(p))
	rows := make([][]string, 0, len(metas))
	for _, meta := range metas {
		rows = append(rows, rowFor(p, meta))
	}
	if err := writeRows(path, p, rows); err != nil {
		return "", err
	}
	return path, nil
}

// readRows returns the data rows (header excluded) of an existing CSV, or nil
// when the file does not exist yet.
func readRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open export csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read export csv: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}
	return records[1:], nil
}

func writeRows(path string, p platform.Platform, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export csv: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(headerFor(p)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush export csv: %w", err)
	}
	return file.Close()
}
