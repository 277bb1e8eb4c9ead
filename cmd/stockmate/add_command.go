package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockmate/internal/catalog"
	"stockmate/internal/config"
	"stockmate/internal/ingest"
	"stockmate/internal/logging"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <path...>",
		Short: "Enqueue images without processing them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				result, err := ingest.EnqueueFiles(cmd.Context(), store, logging.NewNop(), args)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, item := range result.Queued {
					fmt.Fprintf(out, "Queued %s as item #%d\n", item.FileName, item.ID)
				}
				for _, path := range result.Skipped {
					fmt.Fprintf(out, "Skipped %s (already cataloged)\n", path)
				}
				return nil
			})
		},
	}
}
