package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"bdnav/internal/clpi"
	"bdnav/internal/language"
)

type entryPointDump struct {
	PID    uint16       `json:"pid" yaml:"pid"`
	Points []clpi.Point `json:"points" yaml:"points"`
}

type clipDump struct {
	clpi.ClipInfo `yaml:",inline"`
	EntryPoints   []entryPointDump `json:"entry_points,omitempty" yaml:"entry_points,omitempty"`
}

func newClipCommand(ctx *commandContext) *cobra.Command {
	var (
		format   string
		noBackup bool
		showEP   bool
	)

	cmd := &cobra.Command{
		Use:   "clip <file.clpi>",
		Short: "Decode a clip-information file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseFormat(format)
			if err != nil {
				return err
			}
			decoder, err := ctx.clipDecoder(noBackup)
			if err != nil {
				return err
			}
			ci, err := decoder.DecodeFile(args[0])
			if err != nil {
				return fmt.Errorf("decode clip info: %w", err)
			}
			defer ci.Release()

			if outFormat != formatTable {
				dump := clipDump{ClipInfo: *ci}
				if showEP {
					for i := range ci.CPI.EPMaps {
						m := &ci.CPI.EPMaps[i]
						dump.EntryPoints = append(dump.EntryPoints, entryPointDump{PID: m.PID, Points: m.Points()})
					}
				}
				return writeStructured(cmd, outFormat, dump)
			}
			renderClip(cmd.OutOrStdout(), args[0], ci, showEP)
			return nil
		},
	}

	addFormatFlag(cmd, &format)
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Do not fall back to the BDMV/BACKUP copy")
	cmd.Flags().BoolVar(&showEP, "ep", false, "List every reconstructed entry point")
	return cmd
}

func renderClip(out io.Writer, path string, ci *clpi.ClipInfo, showEP bool) {
	fmt.Fprintf(out, "Clip: %s\n", path)
	fmt.Fprintf(out, "Version: %s  Application: %s  Packets: %d  Rate: %d bytes/s\n",
		ci.Version, applicationLabel(ci.Clip.ApplicationType), ci.Clip.NumSourcePackets, ci.Clip.RecordingRate)
	if ci.Clip.TSType.FormatID != "" {
		fmt.Fprintf(out, "Transport: %s (validity 0x%02x)\n", ci.Clip.TSType.FormatID, ci.Clip.TSType.Validity)
	}
	for _, d := range ci.Clip.ATCDeltas {
		fmt.Fprintf(out, "ATC delta: %d -> %s.%s\n", d.Delta, d.FileID, d.FileCode)
	}
	fmt.Fprintln(out)

	var seqRows [][]string
	for a, atc := range ci.ATCSeqs {
		for s, stc := range atc.STC {
			seqRows = append(seqRows, []string{
				strconv.Itoa(a),
				strconv.Itoa(s + int(atc.OffsetSTCID)),
				formatPID(stc.PCRPID),
				strconv.FormatUint(uint64(stc.SPNSTCStart), 10),
				formatTicks(stc.PresentationStart),
				formatTicks(stc.PresentationEnd),
			})
		}
	}
	if len(seqRows) > 0 {
		fmt.Fprintln(out, renderTable("Sequences",
			[]string{"ATC", "STC", "PCR PID", "First packet", "Start", "End"},
			seqRows,
			[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignRight, alignRight},
		))
	}

	var streamRows [][]string
	for p, prog := range ci.Programs {
		for _, s := range prog.Streams {
			streamRows = append(streamRows, []string{
				strconv.Itoa(p),
				formatPID(s.PID),
				s.Coding().Kind().String(),
				s.Coding().String(),
				attrDetails(s.Attr),
				language.Label(s.Lang()),
			})
		}
	}
	if len(streamRows) > 0 {
		fmt.Fprintln(out, renderTable("Program streams",
			[]string{"Program", "PID", "Kind", "Coding", "Details", "Language"},
			streamRows,
			[]columnAlignment{alignRight},
		))
	}

	if len(ci.CPI.EPMaps) == 0 {
		fmt.Fprintln(out, "No entry-point maps")
		return
	}
	mapRows := make([][]string, 0, len(ci.CPI.EPMaps))
	for _, m := range ci.CPI.EPMaps {
		mapRows = append(mapRows, []string{
			formatPID(m.PID),
			strconv.Itoa(int(m.StreamType)),
			strconv.Itoa(len(m.Coarse)),
			strconv.Itoa(len(m.Fine)),
		})
	}
	fmt.Fprintln(out, renderTable("Entry-point maps",
		[]string{"PID", "Stream type", "Coarse", "Fine"},
		mapRows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	))

	if !showEP {
		return
	}
	for i := range ci.CPI.EPMaps {
		m := &ci.CPI.EPMaps[i]
		rows := make([][]string, 0, m.Len())
		for _, p := range m.Points() {
			rows = append(rows, []string{
				strconv.Itoa(p.Index),
				strconv.FormatUint(uint64(p.SPN), 10),
				strconv.FormatUint(uint64(p.PTS), 10),
				formatTicks(p.PTS),
				yesNo(p.AngleChange),
				strconv.Itoa(int(p.EndPositionOffset)),
			})
		}
		fmt.Fprintln(out, renderTable("Entry points "+formatPID(m.PID),
			[]string{"#", "Packet", "PTS", "Time", "Angle change", "End offset"},
			rows,
			[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft, alignRight},
		))
	}
}

func applicationLabel(app uint8) string {
	switch app {
	case clpi.AppMainMovie:
		return "main movie"
	case clpi.AppMainTimedSlideshow:
		return "timed slideshow"
	case clpi.AppMainBrowsableSlideshow:
		return "browsable slideshow"
	case clpi.AppSubBrowsableSlideshow:
		return "browsable slideshow audio"
	case clpi.AppSubInteractiveGraphics:
		return "interactive graphics"
	case clpi.AppSubTextSubtitle:
		return "text subtitle"
	case clpi.AppSubElementary:
		return "sub-path elementary"
	default:
		return fmt.Sprintf("type %d", app)
	}
}
