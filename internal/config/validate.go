package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownPlatforms = map[string]struct{}{
	"shutterstock": {},
	"adobe_stock":  {},
	"getty_images": {},
	"istock":       {},
}

// Validate ensures the configuration is usable. All failing sections are
// reported together so a broken config can be fixed in one edit.
func (c *Config) Validate() error {
	return errors.Join(
		c.validateGenerator(),
		c.validatePlatforms(),
		c.validateAnalyzer(),
		c.validateUploader(),
		c.validateWorkflow(),
		c.validateNotifications(),
	)
}

func (c *Config) validateGenerator() error {
	switch c.Generator.Provider {
	case "auto", "heuristic":
	case "vision":
		if !c.VisionAvailable() {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/stockmate/config.toml"
			}
			return fmt.Errorf("vision.api_key is required when generator.provider is %q. Set OPENAI_API_KEY env var or edit %s (create with 'stockmate config init')", c.Generator.Provider, defaultPath)
		}
	default:
		return fmt.Errorf("generator.provider must be one of auto, vision, heuristic (got %q)", c.Generator.Provider)
	}
	for _, lang := range c.Generator.Languages {
		if lang != "en" && lang != "zh" {
			return fmt.Errorf("generator.languages supports en and zh (got %q)", lang)
		}
	}
	if c.Generator.MaxKeywords < 1 {
		return errors.New("generator.max_keywords must be positive")
	}
	return nil
}

func (c *Config) validatePlatforms() error {
	if len(c.Platforms.Targets) == 0 {
		return errors.New("platforms.targets must include at least one marketplace")
	}
	for _, target := range c.Platforms.Targets {
		if _, ok := knownPlatforms[target]; !ok {
			return fmt.Errorf("platforms.targets contains unknown marketplace %q", target)
		}
	}
	return nil
}

func (c *Config) validateAnalyzer() error {
	if c.Analyzer.DedupeThreshold < 1 || c.Analyzer.DedupeThreshold > 64 {
		return errors.New("analyzer.dedupe_threshold must be between 1 and 64 (hamming distance on a 64-bit hash)")
	}
	return nil
}

func (c *Config) validateUploader() error {
	if !c.Uploader.Enabled {
		return nil
	}
	for _, target := range c.Platforms.Targets {
		switch target {
		case "shutterstock":
			if c.Uploader.ShutterstockAPIKey == "" {
				return errors.New("uploader.shutterstock_api_key must be set when uploader.enabled is true and shutterstock is a target (or set SHUTTERSTOCK_API_KEY)")
			}
		case "adobe_stock":
			if c.Uploader.AdobeStockAPIKey == "" || c.Uploader.AdobeStockAccessKey == "" {
				return errors.New("uploader.adobe_stock_api_key and uploader.adobe_stock_access_token must be set when uploader.enabled is true and adobe_stock is a target")
			}
		default:
			return fmt.Errorf("uploader does not support marketplace %q; remove it from platforms.targets or disable the uploader", target)
		}
	}
	if c.Uploader.MinIntervalSeconds <= 0 {
		return errors.New("uploader.min_interval_seconds must be positive")
	}
	if c.Uploader.TimeoutSeconds <= 0 {
		return errors.New("uploader.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
		"vision.timeout_seconds":        c.Vision.TimeoutSeconds,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow.heartbeat_timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if strings.TrimSpace(c.Notifications.NtfyTopic) != "" && c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
