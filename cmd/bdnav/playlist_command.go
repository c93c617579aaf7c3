package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bdnav/internal/language"
	"bdnav/internal/mpls"
	"bdnav/internal/streamattr"
)

func newPlaylistCommand(ctx *commandContext) *cobra.Command {
	var (
		format   string
		noBackup bool
		item     int
	)

	cmd := &cobra.Command{
		Use:   "playlist <file.mpls>",
		Short: "Decode a movie playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseFormat(format)
			if err != nil {
				return err
			}
			decoder, err := ctx.playlistDecoder(noBackup)
			if err != nil {
				return err
			}
			pl, err := decoder.DecodeFile(args[0])
			if err != nil {
				return fmt.Errorf("decode playlist: %w", err)
			}
			defer pl.Release()

			if outFormat != formatTable {
				return writeStructured(cmd, outFormat, pl)
			}
			if item < 0 || (len(pl.PlayItems) > 0 && item >= len(pl.PlayItems)) {
				return fmt.Errorf("play item %d out of range (playlist has %d)", item, len(pl.PlayItems))
			}
			renderPlaylist(cmd.OutOrStdout(), args[0], pl, item)
			return nil
		},
	}

	addFormatFlag(cmd, &format)
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Do not fall back to the BDMV/BACKUP copy")
	cmd.Flags().IntVar(&item, "item", 0, "Play item whose stream table is shown")
	return cmd
}

func renderPlaylist(out io.Writer, path string, pl *mpls.Playlist, item int) {
	fmt.Fprintf(out, "Playlist: %s\n", path)
	fmt.Fprintf(out, "Version: %s  Playback: %s  Duration: %s\n",
		pl.Version, playbackLabel(pl.AppInfo), formatDuration(pl.Duration()))
	if ops := pl.AppInfo.UOMask.Names(); len(ops) > 0 {
		fmt.Fprintf(out, "Prohibited operations: %s\n", strings.Join(ops, ", "))
	}
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(pl.PlayItems))
	for i, pi := range pl.PlayItems {
		clips := make([]string, 0, len(pi.Clips))
		for _, c := range pi.Clips {
			clips = append(clips, c.ClipID)
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			strings.Join(clips, ","),
			formatTicks(pi.InTime),
			formatTicks(pi.OutTime),
			formatDuration(pi.Duration()),
			strconv.Itoa(pi.AngleCount()),
			strconv.Itoa(int(pi.ConnectionCondition)),
			stillLabel(pi),
		})
	}
	fmt.Fprintln(out, renderTable("Play items",
		[]string{"#", "Clip", "In", "Out", "Duration", "Angles", "Conn", "Still"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))

	if len(pl.PlayItems) > 0 {
		fmt.Fprintln(out, renderTable(fmt.Sprintf("Streams (play item %d)", item),
			[]string{"Class", "PID", "Coding", "Details", "Language"},
			streamRows(pl.PlayItems[item].STN),
			nil,
		))
	}

	if chapters := pl.Chapters(); len(chapters) > 0 {
		rows := make([][]string, 0, len(chapters))
		for _, ch := range chapters {
			rows = append(rows, []string{
				strconv.Itoa(ch.Index),
				strconv.Itoa(ch.PlayItem),
				formatDuration(ch.Start),
				formatDuration(ch.Duration),
			})
		}
		fmt.Fprintln(out, renderTable("Chapters",
			[]string{"#", "Item", "Start", "Duration"},
			rows,
			[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
		))
	}

	if len(pl.SubPaths) > 0 || len(pl.ExtSubPaths) > 0 {
		var rows [][]string
		add := func(kind string, paths []mpls.SubPath) {
			for i, sp := range paths {
				var clips []string
				for _, spi := range sp.Items {
					for _, c := range spi.Clips {
						clips = append(clips, c.ClipID)
					}
				}
				rows = append(rows, []string{kind, strconv.Itoa(i), strconv.Itoa(int(sp.Type)), yesNo(sp.Repeat), strings.Join(clips, ",")})
			}
		}
		add("main", pl.SubPaths)
		add("extension", pl.ExtSubPaths)
		fmt.Fprintln(out, renderTable("Sub paths",
			[]string{"Set", "#", "Type", "Repeat", "Clips"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight},
		))
	}

	if len(pl.PiP) > 0 {
		fmt.Fprintf(out, "Picture-in-picture blocks: %d\n", len(pl.PiP))
	}
}

func streamRows(stn mpls.STN) [][]string {
	var rows [][]string
	add := func(class string, streams []mpls.Stream) {
		for _, s := range streams {
			rows = append(rows, []string{class, formatPID(s.PID), s.Coding().String(), attrDetails(s.Attr), language.Label(s.Lang())})
		}
	}
	add("video", stn.Video)
	add("audio", stn.Audio)
	add("subtitle", stn.PG)
	add("interactive", stn.IG)
	add("secondary audio", stn.SecondaryAudio)
	add("secondary video", stn.SecondaryVideo)
	add("pip subtitle", stn.PiPPG)
	return rows
}

// attrDetails summarises attributes without the coding type and language,
// which have their own columns.
func attrDetails(a streamattr.Attr) string {
	switch v := a.(type) {
	case streamattr.VideoAttr:
		parts := []string{v.Format.String(), v.Rate.String()}
		if v.Aspect != 0 {
			parts = append(parts, v.Aspect.String())
		}
		return strings.Join(parts, " ")
	case streamattr.AudioAttr:
		return v.Format.String() + " " + v.Rate.String()
	case streamattr.TextAttr:
		return v.CharCode.String()
	case streamattr.RawAttr:
		return fmt.Sprintf("%d bytes", len(v.Data))
	default:
		return ""
	}
}

func playbackLabel(ai mpls.AppInfo) string {
	switch ai.PlaybackType {
	case mpls.PlaybackSequential:
		return "sequential"
	case mpls.PlaybackRandom:
		return fmt.Sprintf("random x%d", ai.PlaybackCount)
	case mpls.PlaybackShuffle:
		return fmt.Sprintf("shuffle x%d", ai.PlaybackCount)
	default:
		return fmt.Sprintf("type %d", ai.PlaybackType)
	}
}

func stillLabel(pi mpls.PlayItem) string {
	switch pi.StillMode {
	case mpls.StillTimed:
		return fmt.Sprintf("%ds", pi.StillTime)
	case mpls.StillInfinite:
		return "infinite"
	default:
		return ""
	}
}
