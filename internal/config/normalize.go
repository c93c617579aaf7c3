package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if c.Decoder.MaxFileBytes <= 0 {
		c.Decoder.MaxFileBytes = defaultMaxFileBytes
	}
	if c.Catalog.Workers <= 0 {
		c.Catalog.Workers = defaultWorkers
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DiscRoot, err = expandPath(strings.TrimSpace(c.Paths.DiscRoot)); err != nil {
		return fmt.Errorf("paths.disc_root: %w", err)
	}
	if c.Paths.CatalogDir, err = expandPath(strings.TrimSpace(c.Paths.CatalogDir)); err != nil {
		return fmt.Errorf("paths.catalog_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.DecoderLevel = strings.ToLower(strings.TrimSpace(c.Logging.DecoderLevel))
}
