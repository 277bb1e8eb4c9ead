package embedder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf16"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
)

// exifWritable reports whether the path is a JPEG we can rewrite in place.
func exifWritable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}

// writeExifMetadata rewrites the EXIF block of a JPEG file with the curated
// description plus the Windows XP title and keyword tags. The file is
// replaced atomically via a temp file in the same directory.
func writeExifMetadata(path, title, description string, keywords []string) error {
	parser := jpegstructure.NewJpegMediaParser()
	intfc, err := parser.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse jpeg: %w", err)
	}
	segments, ok := intfc.(*jpegstructure.SegmentList)
	if !ok {
		return fmt.Errorf("unexpected media context %T", intfc)
	}

	rootIb, err := segments.ConstructExifBuilder()
	if err != nil {
		// No EXIF block yet; start a fresh IFD tree.
		im, mapErr := exifcommon.NewIfdMappingWithStandard()
		if mapErr != nil {
			return fmt.Errorf("create ifd mapping: %w", mapErr)
		}
		ti := exif.NewTagIndex()
		rootIb = exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder)
	}

	ifdIb, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD0")
	if err != nil {
		return fmt.Errorf("resolve IFD0: %w", err)
	}
	if err := ifdIb.SetStandardWithName("ImageDescription", description); err != nil {
		return fmt.Errorf("set image description: %w", err)
	}
	if title != "" {
		if err := ifdIb.SetStandardWithName("XPTitle", encodeUCS2(title)); err != nil {
			return fmt.Errorf("set xp title: %w", err)
		}
	}
	if len(keywords) > 0 {
		if err := ifdIb.SetStandardWithName("XPKeywords", encodeUCS2(strings.Join(keywords, ";"))); err != nil {
			return fmt.Errorf("set xp keywords: %w", err)
		}
	}
	if err := segments.SetExif(rootIb); err != nil {
		return fmt.Errorf("set exif block: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".embed-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := segments.Write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write jpeg: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpPath, info.Mode())
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace original: %w", err)
	}
	return nil
}

// encodeUCS2 produces the null-terminated UTF-16LE byte layout the XP* tags
// store (they are declared BYTE but hold wide text).
func encodeUCS2(value string) []byte {
	units := utf16.Encode([]rune(value))
	encoded := make([]byte, 0, (len(units)+1)*2)
	for _, unit := range units {
		encoded = append(encoded, byte(unit), byte(unit>>8))
	}
	return append(encoded, 0, 0)
}

func decodeUCS2(raw []byte) string {
	units := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		units = append(units, uint16(raw[i])|uint16(raw[i+1])<<8)
	}
	return strings.TrimRight(string(utf16.Decode(units)), "\x00")
}

// readExifText extracts one text tag from a JPEG file, decoding the UCS-2
// XP* tags transparently. Returns "" when the file carries no EXIF data or
// the tag is absent.
func readExifText(path, tagName string) (string, error) {
	parser := jpegstructure.NewJpegMediaParser()
	intfc, err := parser.ParseFile(path)
	if err != nil {
		return "", fmt.Errorf("parse jpeg: %w", err)
	}
	segments, ok := intfc.(*jpegstructure.SegmentList)
	if !ok {
		return "", fmt.Errorf("unexpected media context %T", intfc)
	}
	_, data, err := segments.Exif()
	if err != nil {
		return "", nil
	}
	entries, _, err := exif.GetFlatExifData(data, nil)
	if err != nil {
		return "", fmt.Errorf("decode exif entries: %w", err)
	}
	for _, entry := range entries {
		if entry.TagName != tagName {
			continue
		}
		if raw, ok := entry.Value.([]byte); ok {
			return decodeUCS2(raw), nil
		}
		return strings.ReplaceAll(entry.FormattedFirst, "\x00", ""), nil
	}
	return "", nil
}
