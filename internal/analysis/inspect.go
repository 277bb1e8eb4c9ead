package analysis

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/corona10/goimagehash"

	"stockmate/internal/catalog"
)

// supportedExtensions lists the image types accepted for ingestion.
var supportedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",
}

// SupportedImage reports whether the path has a recognized image extension.
func SupportedImage(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// MIMETypeForPath returns the media type for a supported image path, falling
// back to image/jpeg for unknown extensions.
func MIMETypeForPath(path string) string {
	if mime, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "image/jpeg"
}

// Inspect decodes the image at path and measures it. The returned analysis
// includes the perceptual difference hash but not camera EXIF fields; those
// are filled separately because metadata parsing must not fail inspection.
func Inspect(path string) (catalog.Analysis, error) {
	var analysis catalog.Analysis

	file, err := os.Open(path)
	if err != nil {
		return analysis, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return analysis, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	analysis.Width = bounds.Dx()
	analysis.Height = bounds.Dy()
	analysis.Megapixels = math.Round(float64(analysis.Width)*float64(analysis.Height)/10000) / 100
	analysis.Composition = composition(analysis.Width, analysis.Height)
	analysis.Brightness, analysis.Contrast = sampleLuminance(img)
	analysis.DominantColors = dominantColors(img)

	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return analysis, fmt.Errorf("compute difference hash: %w", err)
	}
	analysis.DifferenceHash = hash.ToString()

	return analysis, nil
}

func composition(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	ratio := float64(width) / float64(height)
	switch {
	case ratio > 2.2:
		return "panoramic"
	case ratio > 1.05:
		return "landscape"
	case ratio < 0.95:
		return "portrait"
	default:
		return "square"
	}
}

// sampleLuminance walks a coarse grid over the image and returns the mean
// luminance and its standard deviation, both on a 0-255 scale.
func sampleLuminance(img image.Image) (brightness, contrast float64) {
	bounds := img.Bounds()
	stepX := max(1, bounds.Dx()/64)
	stepY := max(1, bounds.Dy()/64)

	var sum, sumSquares float64
	var count int
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, _ := img.At(x, y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			sum += lum
			sumSquares += lum * lum
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	mean := sum / float64(count)
	variance := sumSquares/float64(count) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Round(mean*100) / 100, math.Round(math.Sqrt(variance)*100) / 100
}
