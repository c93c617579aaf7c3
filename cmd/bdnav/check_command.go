package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bdnav/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "check [disc-root]",
		Short: "Check that a disc and the working directories are usable",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root := cfg.Paths.DiscRoot
			if len(args) > 0 {
				root = args[0]
			}
			results := preflight.RunAll(cfg, root)

			if outFormat != formatTable {
				if err := writeStructured(cmd, outFormat, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Disc check: "+root, colorize) {
					fmt.Fprintln(out, line)
				}
				for _, line := range preflightLines(results, colorize) {
					fmt.Fprintln(out, line)
				}
			}
			if preflight.Failed(results) {
				return errors.New("disc check failed")
			}
			return nil
		},
	}

	addFormatFlag(cmd, &format)
	return cmd
}
