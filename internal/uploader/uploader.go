package uploader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"log/slog"

	"stockmate/internal/catalog"
	"stockmate/internal/config"
	"stockmate/internal/logging"
	"stockmate/internal/services"
	"stockmate/internal/stage"
)

// Uploader submits finished images to every marketplace with credentials.
type Uploader struct {
	cfg     *config.Config
	store   *catalog.Store
	logger  *slog.Logger
	clients []Client

	mu         sync.Mutex
	lastUpload time.Time
	sleep      func(time.Duration)
}

// NewUploader constructs the upload stage handler with clients for every
// configured marketplace that has credentials.
func NewUploader(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Uploader {
	var clients []Client
	if strings.TrimSpace(cfg.Uploader.ShutterstockAPIKey) != "" {
		clients = append(clients, NewShutterstockClient(cfg))
	}
	if strings.TrimSpace(cfg.Uploader.AdobeStockAPIKey) != "" {
		clients = append(clients, NewAdobeStockClient(cfg))
	}
	return NewUploaderWithClients(cfg, store, logger, clients...)
}

// NewUploaderWithClients allows injecting upload clients (used in tests).
func NewUploaderWithClients(cfg *config.Config, store *catalog.Store, logger *slog.Logger, clients ...Client) *Uploader {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "uploader"))
	}
	return &Uploader{
		cfg:     cfg,
		store:   store,
		logger:  stageLogger,
		clients: clients,
		sleep:   time.Sleep,
	}
}

func (u *Uploader) Prepare(ctx context.Context, item *catalog.Item) error {
	logger := logging.WithContext(ctx, u.logger)
	item.InitProgress("Uploading", "Preparing marketplace upload")
	logger.Info("starting upload preparation", logging.String("file_name", item.FileName))
	return nil
}

func (u *Uploader) Execute(ctx context.Context, item *catalog.Item) error {
	logger := logging.WithContext(ctx, u.logger)

	if !u.cfg.Uploader.Enabled {
		item.SetProgressComplete("Uploading", "Uploading disabled")
		logger.Info("uploading disabled, skipping")
		return nil
	}
	if len(u.clients) == 0 {
		return services.Wrap(
			services.ErrConfiguration,
			"uploading",
			"resolve clients",
			"Uploading enabled but no marketplace credentials are configured",
			nil,
		)
	}
	if _, err := os.Stat(item.SourcePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "uploading", "stat source", "Source image no longer exists on disk", err)
		}
		return services.Wrap(services.ErrTransient, "uploading", "stat source", "Unable to read source image", err)
	}

	renditions, err := item.Renditions()
	if err != nil {
		return services.Wrap(services.ErrValidation, "uploading", "decode renditions", "Stored renditions payload is unreadable", err)
	}

	uploaded := 0
	for i, client := range u.clients {
		marketplace := client.Marketplace()
		meta := renditions[marketplace]
		if len(renditions) > 0 {
			if _, ok := renditions[marketplace]; !ok {
				logger.Info("no rendition for marketplace, skipping upload", logging.String("marketplace", string(marketplace)))
				continue
			}
		}

		u.waitForSlot()
		percent := 10 + float64(i)*80/float64(len(u.clients))
		u.updateProgress(ctx, item, fmt.Sprintf("Uploading to %s", marketplace.DisplayName()), percent)
		if err := client.Upload(ctx, item.SourcePath, meta); err != nil {
			return services.Wrap(
				services.ErrExternalTool,
				"uploading",
				"upload file",
				fmt.Sprintf("Upload to %s failed", marketplace.DisplayName()),
				err,
			)
		}
		uploaded++
		logger.Info("upload completed", logging.String("marketplace", string(marketplace)))
	}

	item.SetProgressComplete("Uploading", fmt.Sprintf("Uploaded to %d marketplaces", uploaded))
	return nil
}

// waitForSlot enforces the configured minimum interval between uploads.
func (u *Uploader) waitForSlot() {
	interval := time.Duration(u.cfg.Uploader.MinIntervalSeconds) * time.Second
	if interval <= 0 {
		return
	}

	u.mu.Lock()
	elapsed := time.Since(u.lastUpload)
	wait := interval - elapsed
	u.lastUpload = time.Now()
	if wait > 0 {
		u.lastUpload = u.lastUpload.Add(wait)
	}
	u.mu.Unlock()

	if wait > 0 {
		u.sleep(wait)
	}
}

// HealthCheck verifies upload credentials exist when uploading is enabled.
func (u *Uploader) HealthCheck(ctx context.Context) stage.Health {
	const name = "uploader"
	if u.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if u.cfg.Uploader.Enabled && len(u.clients) == 0 {
		return stage.Unhealthy(name, "uploading enabled but no marketplace credentials configured")
	}
	return stage.Healthy(name)
}

func (u *Uploader) updateProgress(ctx context.Context, item *catalog.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, u.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := u.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist uploader progress", logging.Error(err))
		return
	}
	*item = copy
}

// SetSleeper overrides rate-limit sleeps (used in tests).
func (u *Uploader) SetSleeper(sleeper func(time.Duration)) {
	u.sleep = sleeper
}
