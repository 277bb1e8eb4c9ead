package platform

import "strings"

// Platform identifies a stock-photography marketplace.
type Platform string

const (
	Shutterstock Platform = "shutterstock"
	AdobeStock   Platform = "adobe_stock"
	GettyImages  Platform = "getty_images"
	IStock       Platform = "istock"
)

var allPlatforms = []Platform{Shutterstock, AdobeStock, GettyImages, IStock}

// All returns the ordered list of supported marketplaces.
func All() []Platform {
	cp := make([]Platform, len(allPlatforms))
	copy(cp, allPlatforms)
	return cp
}

// Parse converts a string into a known Platform. Hyphens and spaces are
// treated as underscores so "Adobe-Stock" and "adobe stock" both resolve.
func Parse(value string) (Platform, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	candidate := Platform(normalized)
	for _, p := range allPlatforms {
		if p == candidate {
			return p, true
		}
	}
	return "", false
}

// DisplayName returns the marketplace name for presentation.
func (p Platform) DisplayName() string {
	switch p {
	case Shutterstock:
		return "Shutterstock"
	case AdobeStock:
		return "Adobe Stock"
	case GettyImages:
		return "Getty Images"
	case IStock:
		return "iStock"
	default:
		return string(p)
	}
}
