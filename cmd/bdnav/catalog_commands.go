package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bdnav/internal/catalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect saved title scans",
	}

	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogShowCommand(ctx))
	catalogCmd.AddCommand(newCatalogRemoveCommand(ctx))

	return catalogCmd
}

func withCatalog(ctx *commandContext, fn func(*catalog.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var (
		format string
		disc   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved scans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseFormat(format)
			if err != nil {
				return err
			}
			return withCatalog(ctx, func(store *catalog.Store) error {
				runs, err := store.Runs(cmd.Context(), disc)
				if err != nil {
					return err
				}
				if outFormat != formatTable {
					if runs == nil {
						runs = []*catalog.Run{}
					}
					return writeStructured(cmd, outFormat, runs)
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No saved scans")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, r := range runs {
					rows = append(rows, []string{
						r.ID,
						r.ScannedAt.Local().Format("2006-01-02 15:04:05"),
						r.DiscRoot,
						shortFingerprint(r.DiscFingerprint),
						strconv.Itoa(r.TitleCount),
						strconv.Itoa(r.FailedCount),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable("Scans",
					[]string{"Run", "Scanned", "Disc", "Fingerprint", "Titles", "Failed"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	addFormatFlag(cmd, &format)
	cmd.Flags().StringVar(&disc, "disc", "", "Only list scans of this disc fingerprint")
	return cmd
}

func newCatalogShowCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the titles recorded by a scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseFormat(format)
			if err != nil {
				return err
			}
			return withCatalog(ctx, func(store *catalog.Store) error {
				run, err := store.Run(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("scan %s not found", args[0])
				}
				titles, err := store.Titles(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if outFormat != formatTable {
					return writeStructured(cmd, outFormat, struct {
						catalog.Run `yaml:",inline"`
						Titles      []catalog.Title `json:"titles" yaml:"titles"`
					}{*run, titles})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run: %s\n", run.ID)
				fmt.Fprintf(out, "Disc: %s\n", run.DiscRoot)
				fmt.Fprintln(out, renderTitles(titles))
				return nil
			})
		},
	}

	addFormatFlag(cmd, &format)
	return cmd
}

func newCatalogRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <run-id>",
		Short: "Delete a saved scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(ctx, func(store *catalog.Store) error {
				removed, err := store.DeleteRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("scan %s not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed scan %s\n", args[0])
				return nil
			})
		},
	}
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
