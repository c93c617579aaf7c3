package testsupport

// ATCDelta describes one ATC delta entry of the clip info block.
type ATCDelta struct {
	Delta    uint32
	FileID   string
	FileCode string
}

// STCSeq describes one STC sequence.
type STCSeq struct {
	PCRPID      uint16
	SPNSTCStart uint32
	Start       uint32
	End         uint32
}

// ATCSeq describes one ATC sequence and its STC sequences.
type ATCSeq struct {
	SPNATCStart uint32
	OffsetSTCID uint8
	STC         []STCSeq
}

// ProgramStream describes one elementary stream of a program.
type ProgramStream struct {
	PID        uint16
	CodingType uint8
	Format     uint8
	Rate       uint8
	Aspect     uint8
	OCFlag     bool
	Lang       string
	CharCode   uint8
}

// Program describes one program of the program info block.
type Program struct {
	SPNStart  uint32
	PMTPID    uint16
	NumGroups uint8
	Streams   []ProgramStream
}

// EntryPoint is an absolute entry point. PTS is in 45 kHz units; its low 8
// bits are not representable in the EP map and are dropped.
type EntryPoint struct {
	SPN               uint32
	PTS               uint32
	AngleChange       bool
	EndPositionOffset uint8
}

// EPMap describes the entry points of one PID.
type EPMap struct {
	PID        uint16
	StreamType uint8
	Points     []EntryPoint
	// CoarseEvery forces a new coarse entry every n fine entries in addition
	// to the mandatory breaks, so small fixtures still span several buckets.
	CoarseEvery int
}

// ClipInfo describes a synthetic CLPI file.
type ClipInfo struct {
	// Magic and Version default to "HDMV" and "0200".
	Magic            string
	Version          string
	StreamType       uint8
	ApplicationType  uint8
	RecordingRate    uint32
	NumSourcePackets uint32
	TSValidity       uint8
	TSFormatID       string
	ATCDeltas        []ATCDelta
	ATCSeqs          []ATCSeq
	Programs         []Program
	EPMaps           []EPMap
	// ClipInfoTrailer appends reserved bytes at the end of the clip info
	// block, inside its declared length.
	ClipInfoTrailer int
	// CPILengthDelta is added to the declared CPI length.
	CPILengthDelta int
}

// Build serialises c into CLPI bytes.
func (c ClipInfo) Build() []byte {
	w := &BitWriter{}
	magic := c.Magic
	if magic == "" {
		magic = "HDMV"
	}
	version := c.Version
	if version == "" {
		version = "0200"
	}
	w.Text(magic, 4).Text(version, 4)
	offsets := w.Len()
	w.Zero(5 * 4)
	w.Zero(12)

	ci := w.Mark(32)
	w.U16(0)
	w.U8(c.StreamType).U8(c.ApplicationType)
	w.Bits(31, 0).Flag(len(c.ATCDeltas) > 0)
	w.U32(c.RecordingRate).U32(c.NumSourcePackets)
	w.Zero(128)
	ts := w.Mark(16)
	w.U8(c.TSValidity).Text(c.TSFormatID, 4)
	w.Zero(25)
	w.Close(ts, 16, 0)
	if len(c.ATCDeltas) > 0 {
		w.U8(0).U8(uint8(len(c.ATCDeltas)))
		for _, d := range c.ATCDeltas {
			w.U32(d.Delta).Text(d.FileID, 5).Text(d.FileCode, 4).U8(0)
		}
	}
	w.Zero(c.ClipInfoTrailer)
	w.Close(ci, 32, 0)

	w.Patch(offsets, 32, uint64(w.Len()))
	seq := w.Mark(32)
	w.U8(0).U8(uint8(len(c.ATCSeqs)))
	for _, atc := range c.ATCSeqs {
		w.U32(atc.SPNATCStart).U8(uint8(len(atc.STC))).U8(atc.OffsetSTCID)
		for _, stc := range atc.STC {
			w.U16(stc.PCRPID).U32(stc.SPNSTCStart).U32(stc.Start).U32(stc.End)
		}
	}
	w.Close(seq, 32, 0)

	w.Patch(offsets+4, 32, uint64(w.Len()))
	prog := w.Mark(32)
	w.U8(0).U8(uint8(len(c.Programs)))
	for _, p := range c.Programs {
		w.U32(p.SPNStart).U16(p.PMTPID).U8(uint8(len(p.Streams))).U8(p.NumGroups)
		for _, s := range p.Streams {
			w.U16(s.PID)
			attr := w.Mark(8)
			w.U8(s.CodingType)
			switch s.CodingType {
			case 0x01, 0x02, 0xea, 0x1b, 0x20, 0x24:
				w.Bits(4, uint64(s.Format)).Bits(4, uint64(s.Rate))
				w.Bits(4, uint64(s.Aspect)).Bits(2, 0).Flag(s.OCFlag).Bits(1, 0)
			default:
				WriteCodingInfo(w, s.CodingType, s.Format, s.Rate, s.Lang, s.CharCode)
			}
			w.Zero(2)
			w.Close(attr, 8, 0)
		}
	}
	w.Close(prog, 32, 0)

	w.Patch(offsets+8, 32, uint64(w.Len()))
	cpi := w.Mark(32)
	if len(c.EPMaps) > 0 {
		w.Bits(12, 0).Bits(4, 1)
		w.Raw(buildEPMap(c.EPMaps))
	}
	w.Close(cpi, 32, c.CPILengthDelta)

	w.Patch(offsets+12, 32, uint64(w.Len()))
	w.U32(0)
	return w.Bytes()
}

type coarseEntry struct {
	refFine uint32
	pts     uint32
	spn     uint32
}

// splitEntryPoints converts absolute entry points into the coarse/fine
// representation used on disc.
func splitEntryPoints(m EPMap) ([]coarseEntry, []EntryPoint) {
	var coarse []coarseEntry
	for i, p := range m.Points {
		brk := len(coarse) == 0
		if !brk {
			last := coarse[len(coarse)-1]
			brk = (last.pts>>1) != (p.PTS>>19) || (last.spn>>17) != (p.SPN>>17)
			if m.CoarseEvery > 0 && (i-int(last.refFine)) >= m.CoarseEvery {
				brk = true
			}
		}
		if brk {
			coarse = append(coarse, coarseEntry{refFine: uint32(i), pts: (p.PTS >> 18) & 0x3fff, spn: p.SPN})
		}
	}
	return coarse, m.Points
}

func buildEPMap(maps []EPMap) []byte {
	w := &BitWriter{}
	w.U8(0).U8(uint8(len(maps)))
	headerLen := 2 + 12*len(maps)
	offset := headerLen
	var bodies [][]byte
	for _, m := range maps {
		coarse, fine := splitEntryPoints(m)
		w.U16(m.PID).Bits(10, 0).Bits(4, uint64(m.StreamType))
		w.Bits(16, uint64(len(coarse))).Bits(18, uint64(len(fine)))
		w.U32(uint32(offset))

		b := &BitWriter{}
		b.U32(uint32(4 + 8*len(coarse)))
		for _, ce := range coarse {
			b.Bits(18, uint64(ce.refFine)).Bits(14, uint64(ce.pts)).U32(ce.spn)
		}
		for _, p := range fine {
			b.Flag(p.AngleChange).Bits(3, uint64(p.EndPositionOffset))
			b.Bits(11, uint64((p.PTS>>8)&0x7ff)).Bits(17, uint64(p.SPN&0x1ffff))
		}
		bodies = append(bodies, b.Bytes())
		offset += b.Len()
	}
	for _, body := range bodies {
		w.Raw(body)
	}
	return w.Bytes()
}
