package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stockmate/internal/catalog"
	"stockmate/internal/config"
	"stockmate/internal/platform"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var topN int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize keyword usage across generated metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				items, err := store.List(cmd.Context())
				if err != nil {
					return err
				}

				report, err := buildKeywordReport(items, topN)
				if err != nil {
					return err
				}

				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), report)
				}

				out := cmd.OutOrStdout()
				if report.ItemsWithDrafts == 0 {
					fmt.Fprintln(out, "No generated metadata to report on")
					return nil
				}

				fmt.Fprintf(out, "Items with metadata: %d\n", report.ItemsWithDrafts)
				fmt.Fprintf(out, "Distinct keywords: %d\n", report.DistinctKeywords)
				fmt.Fprintf(out, "Average keywords per item: %.1f\n\n", report.AverageKeywords)

				rows := make([][]string, 0, len(report.TopKeywords))
				for _, entry := range report.TopKeywords {
					rows = append(rows, []string{entry.Keyword, strconv.Itoa(entry.Count)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Keyword", "Items"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))

				if len(report.Marketplaces) > 0 {
					coverageRows := make([][]string, 0, len(report.Marketplaces))
					for _, entry := range report.Marketplaces {
						coverageRows = append(coverageRows, []string{
							entry.Marketplace,
							strconv.Itoa(entry.Items),
							fmt.Sprintf("%.0f%%", entry.KeywordFill),
						})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"Marketplace", "Items", "Keyword fill"},
						coverageRows,
						[]columnAlignment{alignLeft, alignRight, alignRight},
					))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&topN, "top", 20, "Number of keywords to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

type keywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

type marketplaceCoverage struct {
	Marketplace string  `json:"marketplace"`
	Items       int     `json:"items"`
	// KeywordFill is the average keyword count as a percentage of the
	// marketplace keyword cap, across items holding a rendition.
	KeywordFill float64 `json:"keyword_fill_percent"`
}

type keywordReport struct {
	ItemsWithDrafts  int                   `json:"items_with_metadata"`
	DistinctKeywords int                   `json:"distinct_keywords"`
	AverageKeywords  float64               `json:"average_keywords"`
	TopKeywords      []keywordCount        `json:"top_keywords"`
	Marketplaces     []marketplaceCoverage `json:"marketplaces"`
}

func buildKeywordReport(items []*catalog.Item, topN int) (keywordReport, error) {
	counts := make(map[string]int)
	itemsWithDrafts := 0
	totalKeywords := 0

	for _, item := range items {
		draft, err := item.Draft()
		if err != nil {
			return keywordReport{}, fmt.Errorf("decode draft for %s: %w", item.FileName, err)
		}
		if len(draft.Keywords) == 0 {
			continue
		}
		itemsWithDrafts++
		seen := make(map[string]struct{}, len(draft.Keywords))
		for _, keyword := range draft.Keywords {
			normalized := strings.ToLower(strings.TrimSpace(keyword))
			if normalized == "" {
				continue
			}
			totalKeywords++
			// Count each keyword once per item so frequency reflects reach.
			if _, dup := seen[normalized]; dup {
				continue
			}
			seen[normalized] = struct{}{}
			counts[normalized]++
		}
	}

	coverage, err := marketplaceCoverageRows(items)
	if err != nil {
		return keywordReport{}, err
	}

	report := keywordReport{
		ItemsWithDrafts:  itemsWithDrafts,
		DistinctKeywords: len(counts),
		Marketplaces:     coverage,
	}
	if itemsWithDrafts > 0 {
		report.AverageKeywords = float64(totalKeywords) / float64(itemsWithDrafts)
	}

	ranked := make([]keywordCount, 0, len(counts))
	for keyword, count := range counts {
		ranked = append(ranked, keywordCount{Keyword: keyword, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Keyword < ranked[j].Keyword
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	report.TopKeywords = ranked
	return report, nil
}

func marketplaceCoverageRows(items []*catalog.Item) ([]marketplaceCoverage, error) {
	type tally struct {
		items    int
		fillSums float64
	}
	tallies := make(map[platform.Platform]*tally)

	for _, item := range items {
		renditions, err := item.Renditions()
		if err != nil {
			return nil, fmt.Errorf("decode renditions for %s: %w", item.FileName, err)
		}
		for target, meta := range renditions {
			rule, ok := platform.RuleFor(target)
			if !ok || rule.MaxKeywords == 0 {
				continue
			}
			entry := tallies[target]
			if entry == nil {
				entry = &tally{}
				tallies[target] = entry
			}
			entry.items++
			entry.fillSums += float64(len(meta.Keywords)) / float64(rule.MaxKeywords) * 100
		}
	}

	var rows []marketplaceCoverage
	for _, target := range platform.All() {
		entry, ok := tallies[target]
		if !ok {
			continue
		}
		rows = append(rows, marketplaceCoverage{
			Marketplace: target.DisplayName(),
			Items:       entry.items,
			KeywordFill: entry.fillSums / float64(entry.items),
		})
	}
	return rows, nil
}
