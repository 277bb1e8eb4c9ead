package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"stockmate/internal/catalog"
	"stockmate/internal/config"
	"stockmate/internal/daemon"
	"stockmate/internal/ingest"
	"stockmate/internal/logging"
	"stockmate/internal/notifications"
	"stockmate/internal/workflow"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <directory>",
		Short: "Scan a folder, enqueue its images, and run the pipeline until done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				out := cmd.OutOrStdout()

				logger, err := logging.NewForPaths(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}

				paths, err := ingest.ScanDir(args[0])
				if err != nil {
					return err
				}
				if len(paths) == 0 {
					fmt.Fprintln(out, "No supported images found")
					return nil
				}

				result, err := ingest.Enqueue(cmd.Context(), store, logger, paths)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Queued %d images (batch %s)", len(result.Queued), result.BatchID)
				if len(result.Skipped) > 0 {
					fmt.Fprintf(out, ", skipped %d already cataloged", len(result.Skipped))
				}
				fmt.Fprintln(out)

				notifier := notifications.NewService(cfg)
				manager := workflow.NewManagerWithNotifier(cfg, store, logger, notifier)
				manager.ConfigureStages(daemon.BuildStageSet(cfg, store, logger))

				runCtx, cancel := context.WithCancel(cmd.Context())
				defer cancel()
				if err := manager.Start(runCtx); err != nil {
					return err
				}
				defer manager.Stop()

				if err := waitForBatch(runCtx, store, result.BatchID); err != nil {
					return err
				}

				items, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				rows := buildBatchRows(items, result.BatchID)
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "File", "Status", "Title", "Note"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

// waitForBatch blocks until every item in the batch reaches a terminal status.
func waitForBatch(ctx context.Context, store *catalog.Store, batchID string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}

		items, err := store.List(ctx)
		if err != nil {
			return err
		}
		remaining := 0
		for _, item := range items {
			if item.BatchID != batchID {
				continue
			}
			if !catalog.IsTerminal(item.Status) {
				remaining++
			}
		}
		if remaining == 0 {
			return nil
		}
	}
}

func buildBatchRows(items []*catalog.Item, batchID string) [][]string {
	var rows [][]string
	for _, item := range items {
		if item.BatchID != batchID {
			continue
		}
		title := ""
		if draft, err := item.Draft(); err == nil {
			title = draft.Title
		}
		note := item.ErrorMessage
		if item.NeedsReview && item.ReviewReason != "" {
			note = item.ReviewReason
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", item.ID),
			item.FileName,
			string(item.Status),
			title,
			note,
		})
	}
	return rows
}
