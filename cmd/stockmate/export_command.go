package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"stockmate/internal/catalog"
	"stockmate/internal/config"
	"stockmate/internal/export"
	"stockmate/internal/platform"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var platformFilter string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Rebuild marketplace CSVs from the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				out := cmd.OutOrStdout()

				if platformFilter != "" {
					target, ok := platform.Parse(platformFilter)
					if !ok {
						return fmt.Errorf("unknown marketplace %q", platformFilter)
					}
					count, path, err := rewriteOne(cmd, cfg, store, target)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Wrote %d rows to %s\n", count, path)
					return nil
				}

				counts, err := export.RewriteAll(cmd.Context(), cfg, store)
				if err != nil {
					return err
				}
				if len(counts) == 0 {
					fmt.Fprintln(out, "No curated items to export")
					return nil
				}

				var rows [][]string
				for _, target := range platform.All() {
					count, ok := counts[target]
					if !ok {
						continue
					}
					rows = append(rows, []string{
						target.DisplayName(),
						strconv.Itoa(count),
						filepath.Join(cfg.Paths.ExportDir, export.Filename(target)),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Marketplace", "Rows", "File"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&platformFilter, "platform", "p", "", "Rebuild only one marketplace CSV")
	return cmd
}

func rewriteOne(cmd *cobra.Command, cfg *config.Config, store *catalog.Store, target platform.Platform) (int, string, error) {
	items, err := store.List(cmd.Context())
	if err != nil {
		return 0, "", err
	}
	var metas []platform.ImageMetadata
	for _, item := range items {
		renditions, err := item.Renditions()
		if err != nil {
			return 0, "", fmt.Errorf("decode renditions for %s: %w", item.FileName, err)
		}
		if meta, ok := renditions[target]; ok {
			metas = append(metas, meta)
		}
	}
	path, err := export.WriteAll(cfg.Paths.ExportDir, target, metas)
	if err != nil {
		return 0, "", err
	}
	return len(metas), path, nil
}
