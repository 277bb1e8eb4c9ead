package main

import (
	"fmt"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"stockmate/internal/catalog"
	"stockmate/internal/config"
	"stockmate/internal/daemon"
	"stockmate/internal/logging"
	"stockmate/internal/stage"
	"stockmate/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, catalog, and stage health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}

				set := daemon.BuildStageSet(cfg, store, logging.NewNop())
				stageHealth := collectStageHealth(cmd, set)

				summary := statusReport{
					DaemonRunning: daemonLockHeld(cfg.LockPath()),
					CatalogDBPath: cfg.DatabasePath(),
					Catalog:       health,
					Stages:        stageHealth,
				}

				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), summary)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Daemon running: %s\n", yesNo(summary.DaemonRunning))
				fmt.Fprintf(out, "Catalog: %s\n\n", summary.CatalogDBPath)

				fmt.Fprintln(out, renderTable(
					[]string{"Category", "Count"},
					[][]string{
						{"Total", strconv.Itoa(health.Total)},
						{"Pending", strconv.Itoa(health.Pending)},
						{"Processing", strconv.Itoa(health.Processing)},
						{"Review", strconv.Itoa(health.Review)},
						{"Failed", strconv.Itoa(health.Failed)},
						{"Completed", strconv.Itoa(health.Completed)},
					},
					[]columnAlignment{alignLeft, alignRight},
				))

				stageRows := make([][]string, 0, len(stageHealth))
				for _, entry := range stageHealth {
					state := "ready"
					if !entry.Ready {
						state = "unavailable"
					}
					stageRows = append(stageRows, []string{entry.Name, state, entry.Detail})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Stage", "State", "Detail"},
					stageRows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of tables")
	return cmd
}

type statusReport struct {
	DaemonRunning bool                  `json:"daemon_running"`
	CatalogDBPath string                `json:"catalog_db_path"`
	Catalog       catalog.HealthSummary `json:"catalog"`
	Stages        []stage.Health        `json:"stages"`
}

func collectStageHealth(cmd *cobra.Command, set workflow.StageSet) []stage.Health {
	handlers := []stage.Handler{
		set.Analyzer,
		set.Generator,
		set.Curator,
		set.Embedder,
		set.Exporter,
		set.Uploader,
	}
	results := make([]stage.Health, 0, len(handlers))
	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		results = append(results, handler.HealthCheck(cmd.Context()))
	}
	return results
}

// daemonLockHeld probes the daemon lock file without disturbing a running
// instance. A failed TryLock means the daemon holds it.
func daemonLockHeld(lockPath string) bool {
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return false
	}
	if locked {
		_ = lock.Unlock()
		return false
	}
	return true
}
