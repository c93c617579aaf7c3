package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bdnav/internal/clpi"
	"bdnav/internal/mpls"
)

type seekResult struct {
	PID       uint16      `json:"pid" yaml:"pid"`
	Direction string      `json:"direction" yaml:"direction"`
	Query     string      `json:"query" yaml:"query"`
	Point     *clpi.Point `json:"point,omitempty" yaml:"point,omitempty"`
	// SPN is set for STC-restricted lookups, which resolve to a packet only.
	SPN *uint32 `json:"spn,omitempty" yaml:"spn,omitempty"`
}

func newSeekCommand(ctx *commandContext) *cobra.Command {
	var (
		format    string
		pidFlag   string
		timeFlag  string
		packet    int64
		after     bool
		angleOnly bool
		stc       int
	)

	cmd := &cobra.Command{
		Use:   "seek <file.clpi>",
		Short: "Find the entry point nearest a time or packet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseFormat(format)
			if err != nil {
				return err
			}
			hasTime := strings.TrimSpace(timeFlag) != ""
			if hasTime == (packet >= 0) {
				return errors.New("exactly one of --time or --packet is required")
			}
			if angleOnly && hasTime {
				return errors.New("--angle applies to --packet lookups only")
			}
			if stc >= 0 && !hasTime {
				return errors.New("--stc applies to --time lookups only")
			}

			decoder, err := ctx.clipDecoder(false)
			if err != nil {
				return err
			}
			ci, err := decoder.DecodeFile(args[0])
			if err != nil {
				return fmt.Errorf("decode clip info: %w", err)
			}
			defer ci.Release()

			dir := clpi.Before
			if after {
				dir = clpi.After
			}
			res := seekResult{Direction: dir.String()}

			var m *clpi.EPMap
			if strings.TrimSpace(pidFlag) != "" {
				pid, err := strconv.ParseUint(strings.TrimSpace(pidFlag), 0, 16)
				if err != nil {
					return fmt.Errorf("invalid --pid %q: %w", pidFlag, err)
				}
				if m, err = ci.EPMap(uint16(pid)); err != nil {
					return err
				}
			} else if m = ci.PrimaryEPMap(); m == nil {
				return clpi.ErrNoEntryPoints
			}
			res.PID = m.PID

			switch {
			case hasTime:
				ticks, err := parseSeekTime(timeFlag)
				if err != nil {
					return err
				}
				res.Query = fmt.Sprintf("time %s (%d ticks)", formatTicks(ticks), ticks)
				if stc >= 0 {
					if stc > 255 {
						return fmt.Errorf("invalid --stc %d", stc)
					}
					spn := ci.LookupSPN(ticks, dir, uint8(stc))
					res.SPN = &spn
					res.PID = ci.PrimaryEPMap().PID
					res.Query += fmt.Sprintf(" in STC %d", stc)
					break
				}
				p, err := m.PointForTime(ticks, dir)
				if err != nil {
					return err
				}
				res.Point = &p
			default:
				if packet > int64(^uint32(0)) {
					return fmt.Errorf("invalid --packet %d", packet)
				}
				res.Query = fmt.Sprintf("packet %d", packet)
				p, err := m.AccessPoint(uint32(packet), dir, angleOnly)
				if err != nil {
					return err
				}
				res.Point = &p
			}

			if outFormat != formatTable {
				return writeStructured(cmd, outFormat, res)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "PID %s, %s, %s\n", formatPID(res.PID), res.Query, res.Direction)
			if res.SPN != nil {
				fmt.Fprintf(out, "Packet: %d\n", *res.SPN)
				return nil
			}
			fmt.Fprintf(out, "Entry point #%d: packet %d at %s (PTS %d), angle change %s\n",
				res.Point.Index, res.Point.SPN, formatTicks(res.Point.PTS), res.Point.PTS, yesNo(res.Point.AngleChange))
			return nil
		},
	}

	addFormatFlag(cmd, &format)
	cmd.Flags().StringVar(&pidFlag, "pid", "", "Stream PID (decimal or 0x hex); defaults to the primary video map")
	cmd.Flags().StringVar(&timeFlag, "time", "", "Target time: h:mm:ss[.fff], a Go duration such as 90s, or raw 45 kHz ticks")
	cmd.Flags().Int64Var(&packet, "packet", -1, "Target source packet number")
	cmd.Flags().BoolVar(&after, "after", false, "Resolve to the first entry at or after the target")
	cmd.Flags().BoolVar(&angleOnly, "angle", false, "Only stop at angle-change points (with --packet)")
	cmd.Flags().IntVar(&stc, "stc", -1, "Restrict a time lookup to one STC sequence of the primary map")
	return cmd
}

// parseSeekTime converts a user time to 45 kHz ticks.
func parseSeekTime(value string) (uint32, error) {
	value = strings.TrimSpace(value)
	var d time.Duration
	switch {
	case strings.Contains(value, ":"):
		parts := strings.Split(value, ":")
		if len(parts) > 3 {
			return 0, fmt.Errorf("invalid time %q", value)
		}
		secs, err := strconv.ParseFloat(parts[len(parts)-1], 64)
		if err != nil || secs < 0 {
			return 0, fmt.Errorf("invalid time %q", value)
		}
		d = time.Duration(secs * float64(time.Second))
		unit := time.Minute
		for i := len(parts) - 2; i >= 0; i-- {
			n, err := strconv.Atoi(parts[i])
			if err != nil || n < 0 {
				return 0, fmt.Errorf("invalid time %q", value)
			}
			d += time.Duration(n) * unit
			unit *= 60
		}
	default:
		if ticks, err := strconv.ParseUint(value, 10, 32); err == nil {
			return uint32(ticks), nil
		}
		parsed, err := time.ParseDuration(value)
		if err != nil || parsed < 0 {
			return 0, fmt.Errorf("invalid time %q", value)
		}
		d = parsed
	}
	ticks := int64(d/time.Second)*mpls.TicksPerSecond + int64(d%time.Second)*mpls.TicksPerSecond/int64(time.Second)
	if ticks > int64(^uint32(0)) {
		return 0, fmt.Errorf("time %q out of range", value)
	}
	return uint32(ticks), nil
}
