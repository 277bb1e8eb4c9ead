package analysis

import (
	"image"
	"math"
	"sort"
)

// dominantColors buckets sampled pixels into named color families and returns
// up to three names covering at least 8% of the samples each, most common
// first.
func dominantColors(img image.Image) []string {
	bounds := img.Bounds()
	stepX := max(1, bounds.Dx()/48)
	stepY := max(1, bounds.Dy()/48)

	counts := make(map[string]int)
	total := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, _ := img.At(x, y).RGBA()
			name := colorName(float64(r>>8)/255, float64(g>>8)/255, float64(b>>8)/255)
			counts[name]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	const minShare = 0.08
	result := make([]string, 0, 3)
	for _, name := range names {
		if len(result) == 3 {
			break
		}
		if float64(counts[name])/float64(total) < minShare {
			break
		}
		result = append(result, name)
	}
	return result
}

func colorName(r, g, b float64) string {
	h, s, l := rgbToHSL(r, g, b)
	switch {
	case l < 0.12:
		return "black"
	case l > 0.92:
		return "white"
	case s < 0.12:
		return "gray"
	}
	switch {
	case h < 15 || h >= 345:
		return "red"
	case h < 45:
		if l < 0.4 {
			return "brown"
		}
		return "orange"
	case h < 70:
		return "yellow"
	case h < 160:
		return "green"
	case h < 200:
		return "teal"
	case h < 255:
		return "blue"
	case h < 290:
		return "purple"
	default:
		return "pink"
	}
}

func rgbToHSL(r, g, b float64) (h, s, l float64) {
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	l = (maxC + minC) / 2

	delta := maxC - minC
	if delta == 0 {
		return 0, 0, l
	}

	if l > 0.5 {
		s = delta / (2 - maxC - minC)
	} else {
		s = delta / (maxC + minC)
	}

	switch maxC {
	case r:
		h = (g - b) / delta
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/delta + 2
	default:
		h = (r-g)/delta + 4
	}
	h *= 60
	return h, s, l
}
