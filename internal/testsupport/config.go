// Package testsupport provides shared fixtures for imagesieve tests: temp
// configs wired to per-test directories and tiny decodable images.
package testsupport

import (
	"path/filepath"
	"testing"

	"imagesieve/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = filepath.Join(base, "source")
	cfg.Paths.TargetDir = filepath.Join(base, "target")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Cache.Capacity = 8
	cfg.Cache.PrefetchWorkers = 2

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithCacheCapacity overrides the image cache capacity.
func WithCacheCapacity(capacity int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Cache.Capacity = capacity
	}
}
