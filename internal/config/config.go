package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	ExportDir string `toml:"export_dir"`
	LogDir    string `toml:"log_dir"`
	ReviewDir string `toml:"review_dir"`
}

// Vision contains connection settings for the OpenAI-compatible vision API.
type Vision struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Referer        string  `toml:"referer"`
	Title          string  `toml:"title"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	Temperature    float64 `toml:"temperature"`
}

// Generator contains configuration for metadata draft generation.
type Generator struct {
	// Provider selects the metadata source: "vision", "heuristic", or "auto"
	// (vision when an API key is configured, heuristic otherwise).
	Provider          string   `toml:"provider"`
	Languages         []string `toml:"languages"`
	MaxKeywords       int      `toml:"max_keywords"`
	FallbackHeuristic bool     `toml:"fallback_heuristic"`
}

// Platforms selects the marketplaces renditions are produced for.
type Platforms struct {
	Targets []string `toml:"targets"`
}

// Analyzer contains configuration for image inspection and dedup.
type Analyzer struct {
	DedupeEnabled   bool    `toml:"dedupe_enabled"`
	DedupeThreshold int     `toml:"dedupe_threshold"`
	MinMegapixels   float64 `toml:"min_megapixels"`
}

// Embedder contains configuration for writing metadata into image files.
type Embedder struct {
	Enabled      bool `toml:"enabled"`
	WriteEXIF    bool `toml:"write_exif"`
	WriteSidecar bool `toml:"write_sidecar"`
}

// Uploader contains configuration for marketplace upload APIs.
type Uploader struct {
	Enabled             bool   `toml:"enabled"`
	MinIntervalSeconds  int    `toml:"min_interval_seconds"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
	ShutterstockAPIKey  string `toml:"shutterstock_api_key"`
	AdobeStockAPIKey    string `toml:"adobe_stock_api_key"`
	AdobeStockAccessKey string `toml:"adobe_stock_access_token"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Batch          bool   `toml:"batch"`
	Review         bool   `toml:"review"`
	Errors         bool   `toml:"errors"`
}

// Workflow contains configuration for daemon timing and intervals.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for the pipeline.
//
// Configuration sections by subsystem:
//   - Paths: catalog database, exports, logs, and review directories
//   - Vision: OpenAI-compatible vision API connection settings
//   - Generator: metadata provider selection and keyword limits
//   - Platforms: target marketplaces for renditions and exports
//   - Analyzer: image inspection thresholds and duplicate detection
//   - Embedder: EXIF / XMP sidecar writing
//   - Uploader: marketplace upload API settings and credentials
//   - Notifications: ntfy push notification settings
//   - Workflow: daemon polling intervals and timeouts
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Vision        Vision        `toml:"vision"`
	Generator     Generator     `toml:"generator"`
	Platforms     Platforms     `toml:"platforms"`
	Analyzer      Analyzer      `toml:"analyzer"`
	Embedder      Embedder      `toml:"embedder"`
	Uploader      Uploader      `toml:"uploader"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/stockmate/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/stockmate/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("stockmate.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.ExportDir, c.Paths.LogDir, c.Paths.ReviewDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the catalog SQLite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "catalog.db")
}

// LockPath returns the location of the daemon single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "stockmate.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// VisionConfig contains vision API connection settings in trimmed form.
type VisionConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	Temperature    float64
}

// GetVision returns the vision API connection settings.
func (c *Config) GetVision() VisionConfig {
	return VisionConfig{
		APIKey:         strings.TrimSpace(c.Vision.APIKey),
		BaseURL:        strings.TrimSpace(c.Vision.BaseURL),
		Model:          strings.TrimSpace(c.Vision.Model),
		Referer:        strings.TrimSpace(c.Vision.Referer),
		Title:          strings.TrimSpace(c.Vision.Title),
		TimeoutSeconds: c.Vision.TimeoutSeconds,
		Temperature:    c.Vision.Temperature,
	}
}

// VisionAvailable reports whether the vision provider can be used.
func (c *Config) VisionAvailable() bool {
	return strings.TrimSpace(c.Vision.APIKey) != ""
}
