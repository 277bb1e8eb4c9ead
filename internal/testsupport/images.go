package testsupport

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteImage encodes a solid-color image of the given size at path. The
// encoder is chosen from the file extension (.png or .jpg/.jpeg).
func WriteImage(t testing.TB, path string, width, height int, fill color.Color) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill)
		}
	}
	encodeImage(t, path, img)
}

// WriteGradientImage encodes a horizontal gradient image, useful when a test
// needs a non-uniform perceptual hash.
func WriteGradientImage(t testing.TB, path string, width, height int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			shade := uint8(255 * x / max(1, width-1))
			img.Set(x, y, color.RGBA{R: shade, G: shade / 2, B: 255 - shade, A: 255})
		}
	}
	encodeImage(t, path, img)
}

func encodeImage(t testing.TB, path string, img image.Image) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(file, img)
	default:
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}
