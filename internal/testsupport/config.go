package testsupport

import (
	"path/filepath"
	"testing"

	"bdnav/internal/config"
)

// ConfigOption customizes the configuration built by NewConfig.
type ConfigOption func(*config.Config)

// NewConfig returns the default configuration with every directory moved
// into a per-test temp directory. The disc root points at <tmp>/disc, which
// does not exist until a test writes a disc there.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DiscRoot = filepath.Join(base, "disc")
	cfg.Paths.CatalogDir = filepath.Join(base, "catalog")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Catalog.Workers = 2

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithDiscRoot points the config at an existing disc tree.
func WithDiscRoot(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.DiscRoot = path
	}
}

// WithCatalogFilters overrides the title filters used by scans.
func WithCatalogFilters(minSeconds int, filterDuplicates bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Catalog.MinTitleSeconds = minSeconds
		cfg.Catalog.FilterDuplicates = filterDuplicates
	}
}
