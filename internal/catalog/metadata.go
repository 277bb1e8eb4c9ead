package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"stockmate/internal/platform"
)

// Analysis holds the image inspection results recorded by the analyze stage.
type Analysis struct {
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Megapixels     float64   `json:"megapixels"`
	Composition    string    `json:"composition,omitempty"`
	Brightness     float64   `json:"brightness"`
	Contrast       float64   `json:"contrast"`
	DominantColors []string  `json:"dominant_colors,omitempty"`
	DifferenceHash string    `json:"difference_hash,omitempty"`
	CameraMake     string    `json:"camera_make,omitempty"`
	CameraModel    string    `json:"camera_model,omitempty"`
	CapturedAt     time.Time `json:"captured_at,omitempty"`
	FileSizeBytes  int64     `json:"file_size_bytes,omitempty"`
}

// Draft is the unconstrained metadata produced by a provider before any
// marketplace rule is applied.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	// KeywordsZH carries the optional secondary-language keyword set.
	KeywordsZH []string `json:"keywords_zh,omitempty"`
	Category   string   `json:"category,omitempty"`
	// Source records which provider produced the draft ("vision" or "heuristic").
	Source string `json:"source"`
}

// Analysis decodes the stored analysis payload. Returns the zero value when
// no analysis has been recorded.
func (i *Item) Analysis() (Analysis, error) {
	var analysis Analysis
	if i.AnalysisJSON == "" {
		return analysis, nil
	}
	if err := json.Unmarshal([]byte(i.AnalysisJSON), &analysis); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	return analysis, nil
}

// SetAnalysis stores the analysis payload on the item.
func (i *Item) SetAnalysis(analysis Analysis) error {
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	i.AnalysisJSON = string(data)
	return nil
}

// Draft decodes the stored draft payload.
func (i *Item) Draft() (Draft, error) {
	var draft Draft
	if i.DraftJSON == "" {
		return draft, nil
	}
	if err := json.Unmarshal([]byte(i.DraftJSON), &draft); err != nil {
		return Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	return draft, nil
}

// SetDraft stores the draft payload on the item.
func (i *Item) SetDraft(draft Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	i.DraftJSON = string(data)
	return nil
}

// Renditions decodes the per-marketplace metadata renditions produced by the
// curate stage, keyed by marketplace.
func (i *Item) Renditions() (map[platform.Platform]platform.ImageMetadata, error) {
	renditions := make(map[platform.Platform]platform.ImageMetadata)
	if i.RenditionsJSON == "" {
		return renditions, nil
	}
	if err := json.Unmarshal([]byte(i.RenditionsJSON), &renditions); err != nil {
		return nil, fmt.Errorf("decode renditions: %w", err)
	}
	return renditions, nil
}

// SetRenditions replaces the stored rendition set wholesale.
func (i *Item) SetRenditions(renditions map[platform.Platform]platform.ImageMetadata) error {
	data, err := json.Marshal(renditions)
	if err != nil {
		return fmt.Errorf("encode renditions: %w", err)
	}
	i.RenditionsJSON = string(data)
	return nil
}
