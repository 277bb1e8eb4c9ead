package platform

import "time"

// ImageMetadata is the finished SEO metadata for one image on one marketplace.
// It is created once by rendering a draft against the marketplace rule and is
// not mutated afterwards; re-rendering replaces the value wholesale.
type ImageMetadata struct {
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Keywords    []string  `json:"keywords"`
	Platform    Platform  `json:"platform"`
	ProcessedAt time.Time `json:"processed_at"`
}
