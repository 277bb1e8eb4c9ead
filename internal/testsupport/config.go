package testsupport

import (
	"path/filepath"
	"testing"

	"stockmate/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.ExportDir = filepath.Join(base, "exports")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ReviewDir = filepath.Join(base, "review")
	cfgVal.Analyzer.MinMegapixels = 0
	cfgVal.Analyzer.DedupeEnabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithVisionKey sets the vision API key on the test config.
func WithVisionKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Vision.APIKey = key
	}
}

// WithProvider forces the generator provider on the test config.
func WithProvider(provider string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Generator.Provider = provider
	}
}

// WithTargets overrides the marketplace targets on the test config.
func WithTargets(targets ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Platforms.Targets = targets
	}
}

// WithDedupe enables duplicate detection with the given Hamming threshold.
func WithDedupe(threshold int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Analyzer.DedupeEnabled = true
		b.cfg.Analyzer.DedupeThreshold = threshold
	}
}

// WithMinMegapixels sets the minimum accepted resolution on the test config.
func WithMinMegapixels(mp float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Analyzer.MinMegapixels = mp
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
