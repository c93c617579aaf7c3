package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bdnav/internal/catalog"
	"bdnav/internal/preflight"
)

func newTitlesCommand(ctx *commandContext) *cobra.Command {
	var (
		format     string
		minSeconds int
		all        bool
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "titles [disc-root]",
		Short: "List the titles of a disc",
		Long: "Decode every playlist of a disc and list the playable titles.\n" +
			"Short titles and duplicate playlists are hidden unless --all is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseFormat(format)
			if err != nil {
				return err
			}
			cfg, logger, err := ctx.decoderSetup()
			if err != nil {
				return err
			}
			root := cfg.Paths.DiscRoot
			if len(args) > 0 {
				root = args[0]
			}

			results := preflight.RunAll(cfg, root)
			if preflight.Failed(results) {
				var failed []string
				for _, r := range results {
					if !r.Passed && !r.Optional {
						failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
					}
				}
				return fmt.Errorf("disc not ready (run `bdnav check` for details): %s", strings.Join(failed, "; "))
			}

			scanCfg := *cfg
			if cmd.Flags().Changed("min-seconds") {
				if minSeconds < 0 {
					return errors.New("--min-seconds must be >= 0")
				}
				scanCfg.Catalog.MinTitleSeconds = minSeconds
			}
			if all {
				scanCfg.Catalog.MinTitleSeconds = 0
				scanCfg.Catalog.FilterDuplicates = false
			}

			result, err := catalog.NewScanner(&scanCfg, logger).Scan(cmd.Context(), root)
			if err != nil {
				return err
			}

			if save {
				store, err := catalog.Open(cfg)
				if err != nil {
					return fmt.Errorf("open catalog: %w", err)
				}
				defer store.Close()
				if err := store.Save(cmd.Context(), result); err != nil {
					return fmt.Errorf("save scan: %w", err)
				}
			}

			if outFormat != formatTable {
				return writeStructured(cmd, outFormat, result)
			}
			renderScan(cmd.OutOrStdout(), result)
			if save {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved run %s\n", result.RunID)
			}
			return nil
		},
	}

	addFormatFlag(cmd, &format)
	cmd.Flags().IntVar(&minSeconds, "min-seconds", 0, "Hide titles shorter than this many seconds (overrides catalog.min_title_seconds)")
	cmd.Flags().BoolVar(&all, "all", false, "Show every readable playlist, including short and duplicate ones")
	cmd.Flags().BoolVar(&save, "save", false, "Record the scan in the title catalog")
	return cmd
}

func renderScan(out io.Writer, result *catalog.Result) {
	fmt.Fprintf(out, "Disc: %s\n", result.DiscRoot)
	if result.DiscFingerprint != "" {
		fmt.Fprintf(out, "Fingerprint: %s\n", result.DiscFingerprint)
	}
	fmt.Fprintln(out, renderTitles(result.Titles))

	if len(result.Skipped) > 0 {
		var dup, short int
		for _, s := range result.Skipped {
			if s.Reason == catalog.SkipDuplicate {
				dup++
			} else {
				short++
			}
		}
		fmt.Fprintf(out, "Hidden: %d duplicate, %d short\n", dup, short)
	}
	for _, f := range result.Failed {
		fmt.Fprintf(out, "Unreadable: %05d.mpls: %s\n", f.Playlist, f.Error)
	}
}

func renderTitles(titles []catalog.Title) string {
	rows := make([][]string, 0, len(titles))
	for _, t := range titles {
		rows = append(rows, []string{
			fmt.Sprintf("%05d", t.Playlist),
			formatDuration(t.Duration),
			strconv.Itoa(t.ChapterCount),
			strconv.Itoa(t.AngleCount),
			clipSummary(t.Clips),
			t.Streams,
		})
	}
	var total time.Duration
	for _, t := range titles {
		total += t.Duration
	}
	return renderTableWithFooter("Titles",
		[]string{"Playlist", "Duration", "Chapters", "Angles", "Clips", "Streams"},
		rows,
		[]string{fmt.Sprintf("%d titles", len(titles)), formatDuration(total)},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	)
}

func clipSummary(clips []string) string {
	const shown = 3
	if len(clips) <= shown {
		return strings.Join(clips, ",")
	}
	return fmt.Sprintf("%s (+%d)", strings.Join(clips[:shown], ","), len(clips)-shown)
}
