package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"stockmate/internal/analysis"
	"stockmate/internal/catalog"
	"stockmate/internal/config"
	"stockmate/internal/curator"
	"stockmate/internal/embedder"
	"stockmate/internal/export"
	"stockmate/internal/generator"
	"stockmate/internal/logging"
	"stockmate/internal/notifications"
	"stockmate/internal/uploader"
	"stockmate/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the stockmate daemon runtime loop and blocks until the context
// is cancelled or a termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("stockmate-%s.log", runID))

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update stockmate.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "stockmate-*.log", Exclude: []string{logPath}},
	)

	pidPath := filepath.Join(cfg.Paths.LogDir, "stockmate.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := catalog.Open(cfg)
	if err != nil {
		logger.Error("open catalog store", logging.Error(err))
		return err
	}

	notifier := notifications.NewService(cfg)
	manager := workflow.NewManagerWithNotifier(cfg, store, logger, notifier)
	manager.ConfigureStages(BuildStageSet(cfg, store, logger))

	d, err := New(cfg, store, logger, manager)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	logger.Info("stockmate daemon shutting down")
	return nil
}

// BuildStageSet assembles the pipeline handlers from configuration. Disabled
// optional stages are left nil so the workflow chain collapses around them.
func BuildStageSet(cfg *config.Config, store *catalog.Store, logger *slog.Logger) workflow.StageSet {
	set := workflow.StageSet{
		Analyzer:  analysis.NewAnalyzer(cfg, store, logger),
		Generator: generator.NewGenerator(cfg, store, logger),
		Curator:   curator.NewCurator(cfg, store, logger),
		Exporter:  export.NewExporter(cfg, store, logger),
	}
	if cfg.Embedder.Enabled {
		set.Embedder = embedder.NewEmbedder(cfg, store, logger)
	}
	if cfg.Uploader.Enabled {
		set.Uploader = uploader.NewUploader(cfg, store, logger)
	}
	return set
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "stockmate.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
