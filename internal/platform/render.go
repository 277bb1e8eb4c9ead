package platform

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Report describes the adjustments made while rendering a draft against a
// marketplace rule. BelowMinKeywords means the rendition should be routed to
// review rather than exported.
type Report struct {
	TitleTrimmed       bool
	DescriptionTrimmed bool
	KeywordsDeduped    int
	BannedRemoved      []string
	KeywordsCapped     int
	BelowMinKeywords   bool
}

// Render applies a marketplace rule to generated metadata and produces the
// final ImageMetadata rendition. Keyword order is preserved through dedup,
// banned-term removal, and capping.
func Render(filename, title, description string, keywords []string, p Platform, processedAt time.Time) (ImageMetadata, Report, error) {
	rule, ok := RuleFor(p)
	if !ok {
		return ImageMetadata{}, Report{}, fmt.Errorf("no rule for marketplace %q", p)
	}

	var report Report

	trimmedTitle, titleCut := trimToWordBoundary(strings.TrimSpace(title), rule.TitleMaxLength)
	report.TitleTrimmed = titleCut

	trimmedDesc, descCut := trimToWordBoundary(strings.TrimSpace(description), rule.DescriptionMaxLength)
	report.DescriptionTrimmed = descCut

	cleaned, deduped, banned := cleanKeywords(keywords, rule.BannedWords)
	report.KeywordsDeduped = deduped
	report.BannedRemoved = banned

	if len(cleaned) > rule.MaxKeywords {
		report.KeywordsCapped = len(cleaned) - rule.MaxKeywords
		cleaned = cleaned[:rule.MaxKeywords]
	}
	if len(cleaned) < rule.MinKeywords {
		report.BelowMinKeywords = true
	}

	meta := ImageMetadata{
		Filename:    filename,
		Title:       trimmedTitle,
		Description: trimmedDesc,
		Keywords:    cleaned,
		Platform:    p,
		ProcessedAt: processedAt.UTC(),
	}
	return meta, report, nil
}

// trimToWordBoundary cuts value to at most limit runes, backing up to the last
// space so words are not split. Returns the trimmed value and whether a cut
// happened.
func trimToWordBoundary(value string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(value) <= limit {
		return value, false
	}
	runes := []rune(value)
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut), true
}

// cleanKeywords deduplicates case-insensitively preserving first-seen order
// and drops keywords containing a banned term. Returns the surviving
// keywords, the number of duplicates dropped, and the banned keywords removed.
func cleanKeywords(keywords, bannedWords []string) ([]string, int, []string) {
	seen := make(map[string]struct{}, len(keywords))
	cleaned := make([]string, 0, len(keywords))
	var deduped int
	var banned []string

	for _, kw := range keywords {
		trimmed := strings.TrimSpace(kw)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		if _, dup := seen[lower]; dup {
			deduped++
			continue
		}
		seen[lower] = struct{}{}
		if containsBanned(lower, bannedWords) {
			banned = append(banned, trimmed)
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	return cleaned, deduped, banned
}

func containsBanned(lowerKeyword string, bannedWords []string) bool {
	for _, banned := range bannedWords {
		if strings.Contains(lowerKeyword, banned) {
			return true
		}
	}
	return false
}
