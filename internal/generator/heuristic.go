package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"stockmate/internal/catalog"
)

// filenameStopwords are tokens carrying no descriptive value, typically camera
// counters and editing suffixes.
var filenameStopwords = map[string]struct{}{
	"img":        {},
	"image":      {},
	"dsc":        {},
	"dscn":       {},
	"dcim":       {},
	"pic":        {},
	"photo":      {},
	"final":      {},
	"edit":       {},
	"edited":     {},
	"copy":       {},
	"export":     {},
	"untitled":   {},
	"screenshot": {},
	"jpg":        {},
	"jpeg":       {},
	"png":        {},
	"raw":        {},
	"the":        {},
	"and":        {},
	"with":       {},
	"of":         {},
}

// zhKeywordMap translates common stock keywords to Simplified Chinese. Only
// mapped terms produce a secondary-language keyword; unknown terms are skipped
// rather than transliterated.
var zhKeywordMap = map[string]string{
	"nature":     "自然",
	"landscape":  "风景",
	"portrait":   "人像",
	"background": "背景",
	"texture":    "纹理",
	"abstract":   "抽象",
	"sky":        "天空",
	"water":      "水",
	"ocean":      "海洋",
	"beach":      "海滩",
	"forest":     "森林",
	"mountain":   "山",
	"city":       "城市",
	"street":     "街道",
	"sunset":     "日落",
	"sunrise":    "日出",
	"flower":     "花",
	"food":       "食物",
	"business":   "商业",
	"travel":     "旅行",
	"winter":     "冬天",
	"summer":     "夏天",
	"spring":     "春天",
	"autumn":     "秋天",
	"night":      "夜晚",
	"light":      "光",
	"dark":       "黑暗",
	"bright":     "明亮",
	"red":        "红色",
	"orange":     "橙色",
	"yellow":     "黄色",
	"green":      "绿色",
	"teal":       "青色",
	"blue":       "蓝色",
	"purple":     "紫色",
	"pink":       "粉色",
	"brown":      "棕色",
	"black":      "黑色",
	"white":      "白色",
	"gray":       "灰色",
	"panoramic":  "全景",
	"closeup":    "特写",
}

// HeuristicProvider drafts metadata from the filename and measured image
// properties. It is the offline fallback when no vision API is configured.
type HeuristicProvider struct {
	titleCaser cases.Caser
}

// NewHeuristicProvider constructs the offline metadata provider.
func NewHeuristicProvider() *HeuristicProvider {
	return &HeuristicProvider{titleCaser: cases.Title(language.English)}
}

func (p *HeuristicProvider) Name() string { return "heuristic" }

func (p *HeuristicProvider) Generate(ctx context.Context, input Input) (catalog.Draft, error) {
	fileName := input.FileName
	if fileName == "" {
		fileName = filepath.Base(input.SourcePath)
	}
	tokens := TokenizeFilename(fileName)
	a := input.Analysis

	subject := strings.Join(tokens, " ")
	if subject == "" {
		if len(a.DominantColors) > 0 {
			subject = a.DominantColors[0] + " abstract texture"
		} else {
			subject = "abstract background"
		}
	}

	title := p.titleCaser.String(subject)
	if len(a.DominantColors) > 0 && !strings.Contains(strings.ToLower(subject), a.DominantColors[0]) {
		title = fmt.Sprintf("%s in %s Tones", title, p.titleCaser.String(a.DominantColors[0]))
	}

	description := p.buildDescription(subject, a)

	keywords := make([]string, 0, input.MaxKeywords)
	keywords = append(keywords, tokens...)
	keywords = append(keywords, a.DominantColors...)
	if a.Composition != "" {
		keywords = append(keywords, a.Composition)
	}
	switch {
	case a.Brightness > 0 && a.Brightness < 60:
		keywords = append(keywords, "dark", "moody")
	case a.Brightness > 200:
		keywords = append(keywords, "bright", "light")
	}
	keywords = append(keywords, "background", "design", "wallpaper")
	keywords = dedupeKeywords(keywords)
	if input.MaxKeywords > 0 && len(keywords) > input.MaxKeywords {
		keywords = keywords[:input.MaxKeywords]
	}

	draft := catalog.Draft{
		Title:       title,
		Description: description,
		Keywords:    keywords,
		Category:    categoryForTokens(tokens),
		Source:      p.Name(),
	}
	if wantsLanguage(input.Languages, "zh") {
		draft.KeywordsZH = translateKeywords(keywords)
	}
	return draft, nil
}

func (p *HeuristicProvider) buildDescription(subject string, a catalog.Analysis) string {
	var b strings.Builder
	b.WriteString(p.titleCaser.String(subject))
	b.WriteString(".")
	if a.Composition != "" {
		fmt.Fprintf(&b, " %s photograph", p.titleCaser.String(a.Composition))
	} else {
		b.WriteString(" Photograph")
	}
	if len(a.DominantColors) > 0 {
		fmt.Fprintf(&b, " with %s tones", strings.Join(a.DominantColors, " and "))
	}
	b.WriteString(", suitable for commercial design and editorial use.")
	return b.String()
}

// TokenizeFilename splits a file name into descriptive lowercase tokens,
// dropping extensions, counters, and known noise words.
func TokenizeFilename(fileName string) []string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	base = strings.ToLower(base)

	fields := strings.FieldsFunc(base, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	})
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) < 3 {
			continue
		}
		if _, skip := filenameStopwords[field]; skip {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

var categoryHints = map[string]string{
	"forest":   "nature",
	"mountain": "nature",
	"flower":   "nature",
	"beach":    "travel",
	"city":     "travel",
	"street":   "travel",
	"office":   "business",
	"meeting":  "business",
	"laptop":   "technology",
	"computer": "technology",
	"coffee":   "food",
	"dinner":   "food",
	"salad":    "food",
}

func categoryForTokens(tokens []string) string {
	for _, token := range tokens {
		if category, ok := categoryHints[token]; ok {
			return category
		}
	}
	return "abstract"
}

func dedupeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	result := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		normalized := strings.ToLower(strings.TrimSpace(kw))
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}

func translateKeywords(keywords []string) []string {
	var result []string
	seen := make(map[string]struct{})
	for _, kw := range keywords {
		if zh, ok := zhKeywordMap[kw]; ok {
			if _, dup := seen[zh]; dup {
				continue
			}
			seen[zh] = struct{}{}
			result = append(result, zh)
		}
	}
	return result
}

func wantsLanguage(languages []string, code string) bool {
	for _, lang := range languages {
		if strings.EqualFold(strings.TrimSpace(lang), code) {
			return true
		}
	}
	return false
}
