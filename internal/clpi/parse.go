package clpi

import (
	"fmt"
	"log/slog"

	"bdnav/internal/bitstream"
	"bdnav/internal/logging"
	"bdnav/internal/streamattr"
)

const (
	headerBytes      = 40
	epMapEntryBytes  = 12
	epCoarseBytes    = 8
	epFineBytes      = 4
	reservedClipInfo = 128 * 8
)

type parser struct {
	r      *bitstream.Reader
	log    *slog.Logger
	strict bool
}

func (p *parser) clipInfo(ci *ClipInfo) error {
	if err := p.header(ci); err != nil {
		return err
	}
	if err := p.attributes(&ci.Clip); err != nil {
		return fmt.Errorf("clip info: %w", err)
	}
	if err := p.sequenceInfo(ci); err != nil {
		return fmt.Errorf("sequence info: %w", err)
	}
	if err := p.programInfo(ci); err != nil {
		return fmt.Errorf("program info: %w", err)
	}
	if err := p.cpi(ci); err != nil {
		return fmt.Errorf("cpi: %w", err)
	}
	return nil
}

func (p *parser) header(ci *ClipInfo) error {
	r := p.r
	if err := r.RequireBytes(headerBytes, "clip info header"); err != nil {
		return err
	}
	ci.TypeIndicator = r.ReadString(4)
	ci.Version = r.ReadString(4)
	if ci.TypeIndicator != typeIndicator {
		return fmt.Errorf("%w: got %q, want %q", ErrSignature, ci.TypeIndicator+ci.Version, typeIndicator+version0200)
	}
	switch ci.Version {
	case version0100, version0200, version0300:
	default:
		if p.strict {
			return fmt.Errorf("%w: unknown version %q", ErrSignature, ci.Version)
		}
		logging.WarnWithContext(p.log, "unknown clip info version", "clpi_version_unknown",
			logging.String("version", ci.Version),
			logging.String(logging.FieldImpact, "decoding with the 0200 layout"),
		)
	}
	ci.SequenceInfoPos = r.ReadBits(32)
	ci.ProgramInfoPos = r.ReadBits(32)
	ci.CPIPos = r.ReadBits(32)
	ci.ClipMarkPos = r.ReadBits(32)
	ci.ExtPos = r.ReadBits(32)
	r.SkipBits(96)
	return r.Err()
}

func (p *parser) attributes(a *Attributes) error {
	r := p.r
	section := r.BeginSection(32)
	if err := r.RequireBytes(section.Length, "clip info"); err != nil {
		return err
	}
	r.SkipBits(16)
	a.StreamType = uint8(r.ReadBits(8))
	a.ApplicationType = uint8(r.ReadBits(8))
	r.SkipBits(31)
	hasDeltas := r.ReadBool()
	a.RecordingRate = r.ReadBits(32)
	a.NumSourcePackets = r.ReadBits(32)
	r.SkipBits(reservedClipInfo)

	ts := r.BeginSection(16)
	if ts.Length > 0 {
		a.TSType.Validity = uint8(r.ReadBits(8))
		a.TSType.FormatID = r.ReadString(4)
	}
	r.EndSection(ts)

	if hasDeltas {
		r.SkipBits(8)
		n := int(r.ReadBits(8))
		if err := r.Err(); err != nil {
			return err
		}
		if n > 0 {
			a.ATCDeltas = make([]ATCDelta, n)
			for i := range a.ATCDeltas {
				d := &a.ATCDeltas[i]
				d.Delta = r.ReadBits(32)
				d.FileID = r.ReadString(5)
				d.FileCode = r.ReadString(4)
				r.SkipBits(8)
			}
		}
	}
	r.EndSection(section)
	return r.Err()
}

func (p *parser) sequenceInfo(ci *ClipInfo) error {
	r := p.r
	r.SeekByte(int64(ci.SequenceInfoPos))
	section := r.BeginSection(32)
	if err := r.RequireBytes(section.Length, "sequence info"); err != nil {
		return err
	}
	r.SkipBits(8)
	n := int(r.ReadBits(8))
	if err := r.Err(); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	ci.ATCSeqs = make([]ATCSeq, n)
	for i := range ci.ATCSeqs {
		atc := &ci.ATCSeqs[i]
		atc.SPNATCStart = r.ReadBits(32)
		stcCount := int(r.ReadBits(8))
		atc.OffsetSTCID = uint8(r.ReadBits(8))
		if err := r.Err(); err != nil {
			return fmt.Errorf("atc sequence %d: %w", i, err)
		}
		if stcCount == 0 {
			continue
		}
		atc.STC = make([]STCSeq, stcCount)
		for j := range atc.STC {
			stc := &atc.STC[j]
			stc.PCRPID = uint16(r.ReadBits(16))
			stc.SPNSTCStart = r.ReadBits(32)
			stc.PresentationStart = r.ReadBits(32)
			stc.PresentationEnd = r.ReadBits(32)
		}
		if err := r.Err(); err != nil {
			return fmt.Errorf("atc sequence %d: %w", i, err)
		}
	}
	r.EndSection(section)
	return r.Err()
}

func (p *parser) programInfo(ci *ClipInfo) error {
	r := p.r
	r.SeekByte(int64(ci.ProgramInfoPos))
	section := r.BeginSection(32)
	if err := r.RequireBytes(section.Length, "program info"); err != nil {
		return err
	}
	r.SkipBits(8)
	n := int(r.ReadBits(8))
	if err := r.Err(); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	ci.Programs = make([]Program, n)
	for i := range ci.Programs {
		if err := p.program(&ci.Programs[i]); err != nil {
			return fmt.Errorf("program %d: %w", i, err)
		}
	}
	r.EndSection(section)
	return r.Err()
}

func (p *parser) program(prog *Program) error {
	r := p.r
	prog.SPNStart = r.ReadBits(32)
	prog.PMTPID = uint16(r.ReadBits(16))
	n := int(r.ReadBits(8))
	prog.NumGroups = uint8(r.ReadBits(8))
	if err := r.Err(); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	prog.Streams = make([]ProgramStream, n)
	for i := range prog.Streams {
		s := &prog.Streams[i]
		s.PID = uint16(r.ReadBits(16))
		attr, err := streamattr.Decode(r, streamattr.LayoutClip, p.log)
		if err != nil {
			return fmt.Errorf("stream %d: %w", i, err)
		}
		s.Attr = attr
	}
	return nil
}

func (p *parser) cpi(ci *ClipInfo) error {
	r := p.r
	r.SeekByte(int64(ci.CPIPos))
	section := r.BeginSection(32)
	if err := r.RequireBytes(section.Length, "cpi"); err != nil {
		return err
	}
	if section.Length == 0 {
		return nil
	}
	r.SkipBits(12)
	ci.CPI.Type = uint8(r.ReadBits(4))
	if err := r.Err(); err != nil {
		return err
	}
	if ci.CPI.Type != CPITypeEPMap {
		logging.WarnWithContext(p.log, "unsupported cpi type", "clpi_cpi_type_unknown",
			logging.Hex("cpi_type", uint64(ci.CPI.Type)),
			logging.String(logging.FieldImpact, "clip has no entry points"),
		)
		return nil
	}
	return p.epMaps(ci, section)
}

// epMaps reads the per-PID directory, then each map's coarse and fine
// tables through their offsets relative to the start of the EP map.
func (p *parser) epMaps(ci *ClipInfo, cpi bitstream.Section) error {
	r := p.r
	base := r.BytePos()
	r.SkipBits(8)
	n := int(r.ReadBits(8))
	if err := r.RequireBytes(int64(n)*epMapEntryBytes, "ep map directory"); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	maps := make([]EPMap, n)
	ci.CPI.EPMaps = maps
	starts := make([]int64, n)
	counts := make([][2]int, n)
	for i := range maps {
		m := &maps[i]
		m.PID = uint16(r.ReadBits(16))
		r.SkipBits(10)
		m.StreamType = uint8(r.ReadBits(4))
		counts[i][0] = int(r.ReadBits(16))
		counts[i][1] = int(r.ReadBits(18))
		starts[i] = base + int64(r.ReadBits(32))
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("ep map directory: %w", err)
	}

	for i := range maps {
		if err := p.epMap(&maps[i], starts[i], counts[i][0], counts[i][1], cpi); err != nil {
			return fmt.Errorf("ep map %d (pid 0x%04x): %w", i, maps[i].PID, err)
		}
	}
	return nil
}

func (p *parser) epMap(m *EPMap, start int64, coarseCount, fineCount int, cpi bitstream.Section) error {
	r := p.r
	if start < cpi.Start || start > cpi.End() {
		return fmt.Errorf("%w: table at byte %d outside cpi block [%d,%d)", bitstream.ErrTruncated, start, cpi.Start, cpi.End())
	}
	r.SeekByte(start)
	fineStart := start + int64(r.ReadBits(32))
	if err := r.RequireBytes(int64(coarseCount)*epCoarseBytes, "ep coarse table"); err != nil {
		return err
	}
	if coarseCount > 0 {
		m.Coarse = make([]Coarse, coarseCount)
		for i := range m.Coarse {
			c := &m.Coarse[i]
			c.RefFine = int(r.ReadBits(18))
			c.PTS = r.ReadBits(14)
			c.SPN = r.ReadBits(32)
		}
	}

	r.SeekByte(fineStart)
	if err := r.RequireBytes(int64(fineCount)*epFineBytes, "ep fine table"); err != nil {
		return err
	}
	if fineCount > 0 {
		m.Fine = make([]Fine, fineCount)
		for i := range m.Fine {
			f := &m.Fine[i]
			f.AngleChange = r.ReadBool()
			f.EndPositionOffset = uint8(r.ReadBits(3))
			f.PTS = r.ReadBits(11)
			f.SPN = r.ReadBits(17)
		}
	}
	return r.Err()
}
