package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"bdnav/internal/clpi"
	"bdnav/internal/config"
	"bdnav/internal/logging"
	"bdnav/internal/mpls"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, logLevelFlag: logLevelFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
				if err := cfg.Validate(); err != nil {
					c.configErr = fmt.Errorf("--log-level: %w", err)
					return
				}
			}
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// playlistDecoder applies the [decoder] section, the decoder log level and
// the --no-backup flag.
func (c *commandContext) playlistDecoder(noBackup bool) (*mpls.Decoder, error) {
	cfg, logger, err := c.decoderSetup()
	if err != nil {
		return nil, err
	}
	opts := append(mpls.OptionsFromConfig(cfg.Decoder), mpls.WithLogger(logging.ForDecoders(logger, cfg)))
	if noBackup {
		opts = append(opts, mpls.WithBackupRetry(false))
	}
	return mpls.NewDecoder(opts...), nil
}

func (c *commandContext) clipDecoder(noBackup bool) (*clpi.Decoder, error) {
	cfg, logger, err := c.decoderSetup()
	if err != nil {
		return nil, err
	}
	opts := append(clpi.OptionsFromConfig(cfg.Decoder), clpi.WithLogger(logging.ForDecoders(logger, cfg)))
	if noBackup {
		opts = append(opts, clpi.WithBackupRetry(false))
	}
	return clpi.NewDecoder(opts...), nil
}

func (c *commandContext) decoderSetup() (*config.Config, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
