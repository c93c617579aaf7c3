package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bdnav/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set paths.disc_root to scan a disc without passing its path.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range configLines(cfg, resolved, exists, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func configLines(cfg *config.Config, resolved string, exists bool, colorize bool) []string {
	fileKind, fileDetail := statusOK, resolved
	if !exists {
		fileKind, fileDetail = statusWarn, resolved+" (not found, defaults used)"
	}
	rootKind, rootDetail := statusOK, cfg.Paths.DiscRoot
	if rootDetail == "" {
		rootKind, rootDetail = statusWarn, "not set (pass a disc root to titles and check)"
	}
	decoder := fmt.Sprintf("backup retry %s, strict signature %s, max %d bytes",
		yesNo(cfg.Decoder.BackupRetry), yesNo(cfg.Decoder.StrictSignature), cfg.Decoder.MaxFileBytes)
	scan := fmt.Sprintf("%d workers, min %ds, duplicates filtered %s",
		cfg.Catalog.Workers, cfg.Catalog.MinTitleSeconds, yesNo(cfg.Catalog.FilterDuplicates))

	return []string{
		renderStatusLine("Config file", fileKind, fileDetail, colorize),
		renderStatusLine("Disc root", rootKind, rootDetail, colorize),
		renderStatusLine("Catalog", statusOK, cfg.CatalogPath(), colorize),
		renderStatusLine("Decoder", statusOK, decoder, colorize),
		renderStatusLine("Title scan", statusOK, scan, colorize),
	}
}
