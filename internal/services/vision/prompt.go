package vision

import (
	"fmt"
	"strings"
)

// SystemPrompt instructs the model to act as a stock metadata writer and
// return JSON only.
const SystemPrompt = `You are a stock photography metadata specialist. You write commercial titles, descriptions, and search keywords for microstock marketplaces.

Respond with a single JSON object and nothing else. No markdown, no code fences, no commentary.`

// UserPrompt builds the per-image instruction block. maxKeywords bounds the
// keyword list, languages selects which keyword sets to produce, and hints
// carries optional scene cues gathered during analysis.
func UserPrompt(maxKeywords int, languages []string, hints []string) string {
	if maxKeywords <= 0 {
		maxKeywords = 50
	}

	var b strings.Builder
	b.WriteString("Analyze this image and produce stock photography metadata.\n\n")
	b.WriteString("Requirements:\n")
	b.WriteString("- \"title\": a literal, descriptive title under 200 characters. No quotes or brand names.\n")
	b.WriteString("- \"description\": one or two factual sentences under 1000 characters describing the subject, setting, and mood.\n")
	fmt.Fprintf(&b, "- \"keywords\": %d or fewer lowercase English keywords, ordered most relevant first. Single words or short phrases, no duplicates.\n", maxKeywords)
	if wantsLanguage(languages, "zh") {
		fmt.Fprintf(&b, "- \"keywords_zh\": the same concepts as up to %d Simplified Chinese keywords.\n", maxKeywords)
	} else {
		b.WriteString("- \"keywords_zh\": an empty array.\n")
	}
	b.WriteString("- \"category\": one broad stock category such as nature, business, people, food, travel, technology, or abstract.\n")
	b.WriteString("\nNever mention watermarks, copyright, or marketplace names. Describe only what is visible.\n")

	if len(hints) > 0 {
		b.WriteString("\nScene cues from image analysis (use only if consistent with what you see):\n")
		for _, hint := range hints {
			if trimmed := strings.TrimSpace(hint); trimmed != "" {
				b.WriteString("- ")
				b.WriteString(trimmed)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func wantsLanguage(languages []string, code string) bool {
	for _, lang := range languages {
		if strings.EqualFold(strings.TrimSpace(lang), code) {
			return true
		}
	}
	return false
}
