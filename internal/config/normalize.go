package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeVision()
	c.normalizeGenerator()
	c.normalizePlatforms()
	c.normalizeAnalyzer()
	c.normalizeUploader()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ReviewDir) == "" {
		c.Paths.ReviewDir = defaultReviewDir
	}
	if c.Paths.ReviewDir, err = expandPath(c.Paths.ReviewDir); err != nil {
		return fmt.Errorf("paths.review_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeVision() {
	c.Vision.APIKey = strings.TrimSpace(c.Vision.APIKey)
	if c.Vision.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Vision.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.Vision.APIKey = strings.TrimSpace(value)
		}
	}
	c.Vision.BaseURL = strings.TrimSpace(c.Vision.BaseURL)
	if c.Vision.BaseURL == "" {
		c.Vision.BaseURL = defaultVisionBaseURL
	}
	c.Vision.Model = strings.TrimSpace(c.Vision.Model)
	if c.Vision.Model == "" {
		c.Vision.Model = defaultVisionModel
	}
	if c.Vision.TimeoutSeconds <= 0 {
		c.Vision.TimeoutSeconds = defaultVisionTimeoutSeconds
	}
	if c.Vision.Temperature <= 0 {
		c.Vision.Temperature = defaultVisionTemperature
	}
}

func (c *Config) normalizeGenerator() {
	c.Generator.Provider = strings.ToLower(strings.TrimSpace(c.Generator.Provider))
	if c.Generator.Provider == "" {
		c.Generator.Provider = defaultGeneratorProvider
	}
	if c.Generator.MaxKeywords <= 0 {
		c.Generator.MaxKeywords = defaultGeneratorMaxKeywords
	}
	if len(c.Generator.Languages) == 0 {
		c.Generator.Languages = []string{"en"}
	} else {
		langs := make([]string, 0, len(c.Generator.Languages))
		seen := make(map[string]struct{}, len(c.Generator.Languages))
		for _, lang := range c.Generator.Languages {
			normalized := strings.ToLower(strings.TrimSpace(lang))
			if normalized == "" {
				continue
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			langs = append(langs, normalized)
		}
		if len(langs) == 0 {
			langs = []string{"en"}
		}
		c.Generator.Languages = langs
	}
}

func (c *Config) normalizePlatforms() {
	if len(c.Platforms.Targets) == 0 {
		c.Platforms.Targets = []string{"shutterstock", "adobe_stock"}
		return
	}
	targets := make([]string, 0, len(c.Platforms.Targets))
	seen := make(map[string]struct{}, len(c.Platforms.Targets))
	for _, target := range c.Platforms.Targets {
		normalized := strings.ToLower(strings.TrimSpace(target))
		normalized = strings.ReplaceAll(normalized, "-", "_")
		normalized = strings.ReplaceAll(normalized, " ", "_")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		targets = append(targets, normalized)
	}
	c.Platforms.Targets = targets
}

func (c *Config) normalizeAnalyzer() {
	if c.Analyzer.DedupeThreshold <= 0 {
		c.Analyzer.DedupeThreshold = defaultAnalyzerDedupeThreshold
	}
	if c.Analyzer.MinMegapixels < 0 {
		c.Analyzer.MinMegapixels = 0
	}
}

func (c *Config) normalizeUploader() {
	c.Uploader.ShutterstockAPIKey = strings.TrimSpace(c.Uploader.ShutterstockAPIKey)
	if c.Uploader.ShutterstockAPIKey == "" {
		if value, ok := os.LookupEnv("SHUTTERSTOCK_API_KEY"); ok {
			c.Uploader.ShutterstockAPIKey = strings.TrimSpace(value)
		}
	}
	c.Uploader.AdobeStockAPIKey = strings.TrimSpace(c.Uploader.AdobeStockAPIKey)
	if c.Uploader.AdobeStockAPIKey == "" {
		if value, ok := os.LookupEnv("ADOBE_STOCK_API_KEY"); ok {
			c.Uploader.AdobeStockAPIKey = strings.TrimSpace(value)
		}
	}
	c.Uploader.AdobeStockAccessKey = strings.TrimSpace(c.Uploader.AdobeStockAccessKey)
	if c.Uploader.AdobeStockAccessKey == "" {
		if value, ok := os.LookupEnv("ADOBE_STOCK_ACCESS_TOKEN"); ok {
			c.Uploader.AdobeStockAccessKey = strings.TrimSpace(value)
		}
	}
	if c.Uploader.MinIntervalSeconds <= 0 {
		c.Uploader.MinIntervalSeconds = defaultUploaderMinInterval
	}
	if c.Uploader.TimeoutSeconds <= 0 {
		c.Uploader.TimeoutSeconds = defaultUploaderTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
