package config

import (
	"errors"
	"fmt"
)

const maxWorkers = 64

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDecoder(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDecoder() error {
	if c.Decoder.MaxFileBytes < 64 {
		return errors.New("decoder.max_file_bytes must be at least 64")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.MinTitleSeconds < 0 {
		return errors.New("catalog.min_title_seconds must be non-negative")
	}
	if c.Catalog.Workers < 1 || c.Catalog.Workers > maxWorkers {
		return fmt.Errorf("catalog.workers must be between 1 and %d", maxWorkers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	for key, level := range map[string]string{"logging.level": c.Logging.Level, "logging.decoder_level": c.Logging.DecoderLevel} {
		switch level {
		case "", "debug", "info", "warn", "warning", "error":
		default:
			return fmt.Errorf("%s: unsupported value %q", key, level)
		}
	}
	return nil
}
