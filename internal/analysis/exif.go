package analysis

import (
	"os"
	"time"

	"github.com/bep/imagemeta"

	"stockmate/internal/catalog"
)

var cameraTags = map[string]bool{
	"Make":             true,
	"Model":            true,
	"DateTimeOriginal": true,
	"DateTime":         true,
}

// fillCameraInfo reads EXIF camera fields into the analysis. Metadata parsing
// is best effort: a corrupt or absent EXIF block must not fail the stage.
func fillCameraInfo(path string, analysis *catalog.Analysis) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	err = imagemeta.Decode(imagemeta.Options{
		R:       file,
		Sources: imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return cameraTags[ti.Tag]
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			switch ti.Tag {
			case "Make":
				analysis.CameraMake = tagString(ti.Value)
			case "Model":
				analysis.CameraModel = tagString(ti.Value)
			case "DateTimeOriginal":
				if ts, ok := tagTime(ti.Value); ok {
					analysis.CapturedAt = ts
				}
			case "DateTime":
				if analysis.CapturedAt.IsZero() {
					if ts, ok := tagTime(ti.Value); ok {
						analysis.CapturedAt = ts
					}
				}
			}
			return nil
		},
	})
	return err
}

func tagString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func tagTime(value any) (time.Time, bool) {
	switch ts := value.(type) {
	case time.Time:
		return ts, !ts.IsZero()
	case string:
		// EXIF date layout.
		if parsed, err := time.Parse("2006:01:02 15:04:05", ts); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
