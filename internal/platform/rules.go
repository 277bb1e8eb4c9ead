package platform

// Rule captures the static per-marketplace constraints applied to generated
// metadata before export.
type Rule struct {
	Platform             Platform
	MaxKeywords          int
	MinKeywords          int
	TitleMaxLength       int
	DescriptionMaxLength int
	// BannedWords are removed from keywords by case-insensitive substring
	// match. Marketplaces reject assets tagged with their own brand names or
	// watermark/copyright terms.
	BannedWords []string
}

var rules = map[Platform]Rule{
	Shutterstock: {
		Platform:             Shutterstock,
		MaxKeywords:          50,
		MinKeywords:          7,
		TitleMaxLength:       200,
		DescriptionMaxLength: 1000,
		BannedWords:          []string{"shutterstock", "watermark", "copyright", "royalty"},
	},
	AdobeStock: {
		Platform:             AdobeStock,
		MaxKeywords:          49,
		MinKeywords:          5,
		TitleMaxLength:       200,
		DescriptionMaxLength: 1000,
		BannedWords:          []string{"adobe", "stock", "watermark"},
	},
	GettyImages: {
		Platform:             GettyImages,
		MaxKeywords:          50,
		MinKeywords:          5,
		TitleMaxLength:       200,
		DescriptionMaxLength: 1000,
		BannedWords:          []string{"getty", "watermark", "copyright"},
	},
	IStock: {
		Platform:             IStock,
		MaxKeywords:          50,
		MinKeywords:          5,
		TitleMaxLength:       200,
		DescriptionMaxLength: 1000,
		BannedWords:          []string{"istock", "getty", "watermark"},
	},
}

// RuleFor returns the rule table entry for a marketplace.
func RuleFor(p Platform) (Rule, bool) {
	rule, ok := rules[p]
	return rule, ok
}
