package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stockmate/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	path := writeConfig(t, "")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected resolved path %q to exist, got %q %v", path, resolved, exists)
	}
	if cfg.Generator.Provider != "auto" {
		t.Fatalf("expected auto provider, got %q", cfg.Generator.Provider)
	}
	if cfg.Generator.MaxKeywords != 50 {
		t.Fatalf("expected 50 max keywords, got %d", cfg.Generator.MaxKeywords)
	}
	if len(cfg.Platforms.Targets) != 2 {
		t.Fatalf("expected default targets, got %v", cfg.Platforms.Targets)
	}
	if cfg.Analyzer.DedupeThreshold != 10 {
		t.Fatalf("expected dedupe threshold 10, got %d", cfg.Analyzer.DedupeThreshold)
	}
	if !filepath.IsAbs(cfg.Paths.ExportDir) {
		t.Fatalf("expected expanded export dir, got %q", cfg.Paths.ExportDir)
	}
}

func TestLoadNormalizesPlatformNames(t *testing.T) {
	path := writeConfig(t, `
[platforms]
targets = ["Shutterstock", "Adobe-Stock", "shutterstock"]
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := []string{"shutterstock", "adobe_stock"}
	if len(cfg.Platforms.Targets) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.Platforms.Targets)
	}
	for i, target := range want {
		if cfg.Platforms.Targets[i] != target {
			t.Fatalf("expected %v, got %v", want, cfg.Platforms.Targets)
		}
	}
}

func TestLoadRejectsUnknownPlatform(t *testing.T) {
	path := writeConfig(t, `
[platforms]
targets = ["alamy"]
`)
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "unknown marketplace") {
		t.Fatalf("expected unknown marketplace error, got %v", err)
	}
}

func TestLoadRequiresVisionKeyForForcedProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	path := writeConfig(t, `
[generator]
provider = "vision"
`)
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "vision.api_key") {
		t.Fatalf("expected vision key error, got %v", err)
	}
}

func TestLoadReadsVisionKeyFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	path := writeConfig(t, `
[generator]
provider = "vision"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := cfg.GetVision().APIKey; got != "sk-test" {
		t.Fatalf("expected env key, got %q", got)
	}
}

func TestLoadRejectsUploaderWithoutCredentials(t *testing.T) {
	t.Setenv("SHUTTERSTOCK_API_KEY", "")

	path := writeConfig(t, `
[platforms]
targets = ["shutterstock"]

[uploader]
enabled = true
`)
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "shutterstock_api_key") {
		t.Fatalf("expected uploader credential error, got %v", err)
	}
}

func TestLoadRejectsHeartbeatTimeoutBelowInterval(t *testing.T) {
	path := writeConfig(t, `
[workflow]
heartbeat_interval = 30
heartbeat_timeout = 20
`)
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "heartbeat_timeout") {
		t.Fatalf("expected heartbeat validation error, got %v", err)
	}
}

func TestLoadRejectsBadDedupeThreshold(t *testing.T) {
	path := writeConfig(t, `
[analyzer]
dedupe_threshold = 90
`)
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "dedupe_threshold") {
		t.Fatalf("expected dedupe threshold error, got %v", err)
	}
}

func TestValidateReportsAllFailingSections(t *testing.T) {
	path := writeConfig(t, `
[platforms]
targets = ["alamy"]

[analyzer]
dedupe_threshold = 90

[workflow]
heartbeat_interval = 30
heartbeat_timeout = 20
`)
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, fragment := range []string{"unknown marketplace", "dedupe_threshold", "heartbeat_timeout"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected aggregated error to mention %q, got %v", fragment, err)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected sample logging format %q", cfg.Logging.Format)
	}
}

func TestDatabasePathUnderDataDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	if got := cfg.DatabasePath(); filepath.Dir(got) != cfg.Paths.DataDir {
		t.Fatalf("expected database under data dir, got %q", got)
	}
}
