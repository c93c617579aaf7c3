package testsupport

// ClipRef describes one clip reference inside a play item or sub-play-item.
type ClipRef struct {
	ClipID  string
	CodecID string
	STCID   uint8
}

// Stream describes one stream-number table entry.
type Stream struct {
	Type       uint8
	PID        uint16
	SubPathID  uint8
	SubClipID  uint8
	CodingType uint8
	Format     uint8
	Rate       uint8
	Lang       string
	CharCode   uint8
	// Secondary audio: primary audio references. Secondary video: secondary
	// audio references.
	Refs []uint8
	// Secondary video only: PiP presentation graphics references.
	PiPPGRefs []uint8
}

// STN groups the stream entries of a play item by stream class.
type STN struct {
	Video          []Stream
	Audio          []Stream
	PG             []Stream
	IG             []Stream
	SecondaryAudio []Stream
	SecondaryVideo []Stream
	PiPPG          []Stream
}

// PlayItem describes one play item.
type PlayItem struct {
	Clip                ClipRef
	MultiAngle          bool
	ConnectionCondition uint8
	InTime              uint32
	OutTime             uint32
	UOMask              uint64
	RandomAccess        bool
	StillMode           uint8
	StillTime           uint16
	// AngleCount overrides the declared angle count when non-zero; otherwise
	// 1 + len(Angles) is written for multi-angle items.
	AngleCount     uint8
	Angles         []ClipRef
	DifferentAudio bool
	SeamlessAngle  bool
	STN            STN
	// Trailer appends reserved bytes after the recognised fields, inside the
	// declared length.
	Trailer int
}

// SubPlayItem describes one sub-play-item.
type SubPlayItem struct {
	Clip                ClipRef
	ConnectionCondition uint8
	MultiClip           bool
	InTime              uint32
	OutTime             uint32
	SyncPlayItemID      uint16
	SyncPTS             uint32
	ExtraClips          []ClipRef
}

// SubPath describes one sub-path.
type SubPath struct {
	Type    uint8
	Repeat  bool
	Items   []SubPlayItem
	Trailer int
}

// Mark describes one playlist mark.
type Mark struct {
	Type        uint8
	PlayItemRef uint16
	Time        uint32
	EntryESPID  uint16
	Duration    uint32
}

// PiPData is one timed position/scale entry of a PiP metadata block.
type PiPData struct {
	Time  uint32
	XPos  uint16
	YPos  uint16
	Scale uint8
}

// PiPBlock describes one picture-in-picture metadata block.
type PiPBlock struct {
	ClipRef           uint16
	SecondaryVideoRef uint8
	TimelineType      uint8
	LumaKey           bool
	TrickPlay         bool
	UpperLimitLumaKey uint8
	Data              []PiPData
}

// Playlist describes a synthetic MPLS file.
type Playlist struct {
	// Magic and Version default to "MPLS" and "0200".
	Magic          string
	Version        string
	PlaybackType   uint8
	PlaybackCount  uint16
	UOMask         uint64
	RandomAccess   bool
	AudioMix       bool
	LosslessBypass bool
	PlayItems      []PlayItem
	SubPaths       []SubPath
	Marks          []Mark
	PiP            []PiPBlock
	ExtSubPaths    []SubPath
	// UnknownExtension adds a (9,9) extension entry nobody handles.
	UnknownExtension bool
	// ListLengthDelta is added to the declared play-list section length.
	ListLengthDelta int
	// MarkLengthDelta is added to the declared mark section length.
	MarkLengthDelta int
}

// Build serialises p into MPLS bytes.
func (p Playlist) Build() []byte {
	w := &BitWriter{}
	magic := p.Magic
	if magic == "" {
		magic = "MPLS"
	}
	version := p.Version
	if version == "" {
		version = "0200"
	}
	w.Text(magic, 4).Text(version, 4)
	listPosOff := w.Len()
	w.U32(0)
	markPosOff := w.Len()
	w.U32(0)
	extPosOff := w.Len()
	w.U32(0)
	w.Zero(20)

	// AppInfoPlayList
	ai := w.Mark(32)
	w.U8(0)
	w.U8(p.PlaybackType)
	if p.PlaybackType == 2 || p.PlaybackType == 3 {
		w.U16(p.PlaybackCount)
	} else {
		w.U16(0)
	}
	w.Bits(64, p.UOMask)
	w.Flag(p.RandomAccess).Flag(p.AudioMix).Flag(p.LosslessBypass).Bits(13, 0)
	w.Close(ai, 32, 0)

	w.Patch(listPosOff, 32, uint64(w.Len()))
	list := w.Mark(32)
	w.U16(0)
	w.U16(uint16(len(p.PlayItems)))
	w.U16(uint16(len(p.SubPaths)))
	for _, pi := range p.PlayItems {
		writePlayItem(w, pi)
	}
	for _, sp := range p.SubPaths {
		writeSubPath(w, sp)
	}
	w.Close(list, 32, p.ListLengthDelta)

	w.Patch(markPosOff, 32, uint64(w.Len()))
	marks := w.Mark(32)
	w.U16(uint16(len(p.Marks)))
	for _, m := range p.Marks {
		w.U8(0).U8(m.Type).U16(m.PlayItemRef).U32(m.Time).U16(m.EntryESPID).U32(m.Duration)
	}
	w.Close(marks, 32, p.MarkLengthDelta)

	var exts []Extension
	if len(p.PiP) > 0 {
		exts = append(exts, Extension{ID1: 1, ID2: 1, Body: buildPiP(p.PiP)})
	}
	if len(p.ExtSubPaths) > 0 {
		exts = append(exts, Extension{ID1: 2, ID2: 2, Body: buildExtSubPaths(p.ExtSubPaths)})
	}
	if p.UnknownExtension {
		exts = append(exts, Extension{ID1: 9, ID2: 9, Body: []byte{0, 0, 0, 0}})
	}
	if len(exts) > 0 {
		w.Patch(extPosOff, 32, uint64(w.Len()))
		w.Raw(BuildExtensionData(exts))
	}
	return w.Bytes()
}

// Extension is one entry of an extension-data section.
type Extension struct {
	ID1, ID2 uint16
	Body     []byte
}

// BuildExtensionData lays out an extension-data section: length, data block
// address, entry directory and the entry bodies. Entry offsets are relative
// to the section start.
func BuildExtensionData(exts []Extension) []byte {
	const headerLen = 4 + 4 + 3 + 1
	dirLen := 12 * len(exts)
	dataStart := headerLen + dirLen

	w := &BitWriter{}
	length := w.Mark(32)
	w.U32(uint32(dataStart))
	w.Bits(24, 0)
	w.U8(uint8(len(exts)))
	offset := dataStart
	for _, e := range exts {
		w.U16(e.ID1).U16(e.ID2).U32(uint32(offset)).U32(uint32(len(e.Body)))
		offset += len(e.Body)
	}
	for _, e := range exts {
		w.Raw(e.Body)
	}
	w.Close(length, 32, 0)
	return w.Bytes()
}

func writeClipRef(w *BitWriter, c ClipRef) {
	codec := c.CodecID
	if codec == "" {
		codec = "M2TS"
	}
	w.Text(c.ClipID, 5).Text(codec, 4)
}

func writePlayItem(w *BitWriter, pi PlayItem) {
	item := w.Mark(16)
	writeClipRef(w, pi.Clip)
	w.Bits(11, 0)
	w.Flag(pi.MultiAngle)
	w.Bits(4, uint64(pi.ConnectionCondition))
	w.U8(pi.Clip.STCID)
	w.U32(pi.InTime).U32(pi.OutTime)
	w.Bits(64, pi.UOMask)
	w.Flag(pi.RandomAccess).Bits(7, 0)
	w.U8(pi.StillMode)
	if pi.StillMode == 1 {
		w.U16(pi.StillTime)
	} else {
		w.U16(0)
	}
	if pi.MultiAngle {
		count := pi.AngleCount
		if count == 0 {
			count = uint8(1 + len(pi.Angles))
		}
		w.U8(count)
		w.Bits(6, 0).Flag(pi.DifferentAudio).Flag(pi.SeamlessAngle)
		for _, a := range pi.Angles {
			writeClipRef(w, a)
			w.U8(a.STCID)
		}
	}
	writeSTN(w, pi.STN)
	w.Zero(pi.Trailer)
	w.Close(item, 16, 0)
}

func writeSTN(w *BitWriter, stn STN) {
	length := w.Mark(16)
	w.U16(0)
	w.U8(uint8(len(stn.Video)))
	w.U8(uint8(len(stn.Audio)))
	w.U8(uint8(len(stn.PG)))
	w.U8(uint8(len(stn.IG)))
	w.U8(uint8(len(stn.SecondaryAudio)))
	w.U8(uint8(len(stn.SecondaryVideo)))
	w.U8(uint8(len(stn.PiPPG)))
	w.Zero(5)
	for _, s := range stn.Video {
		writeStream(w, s)
	}
	for _, s := range stn.Audio {
		writeStream(w, s)
	}
	for _, s := range stn.PG {
		writeStream(w, s)
	}
	for _, s := range stn.PiPPG {
		writeStream(w, s)
	}
	for _, s := range stn.IG {
		writeStream(w, s)
	}
	for _, s := range stn.SecondaryAudio {
		writeStream(w, s)
		writeRefs(w, s.Refs)
	}
	for _, s := range stn.SecondaryVideo {
		writeStream(w, s)
		writeRefs(w, s.Refs)
		writeRefs(w, s.PiPPGRefs)
	}
	w.Close(length, 16, 0)
}

func writeRefs(w *BitWriter, refs []uint8) {
	w.U8(uint8(len(refs))).U8(0)
	for _, r := range refs {
		w.U8(r)
	}
	if len(refs)%2 == 1 {
		w.U8(0)
	}
}

func writeStream(w *BitWriter, s Stream) {
	entry := w.Mark(8)
	w.U8(s.Type)
	switch s.Type {
	case 1:
		w.U16(s.PID)
	case 2, 4:
		w.U8(s.SubPathID).U8(s.SubClipID).U16(s.PID)
	case 3:
		w.U8(s.SubPathID).U16(s.PID)
	}
	w.Close(entry, 8, 0)

	attr := w.Mark(8)
	w.U8(s.CodingType)
	WriteCodingInfo(w, s.CodingType, s.Format, s.Rate, s.Lang, s.CharCode)
	w.Close(attr, 8, 0)
}

// WriteCodingInfo writes the coding-type specific fields of a playlist
// stream attribute block (the coding type itself is already written).
func WriteCodingInfo(w *BitWriter, codingType, format, rate uint8, lang string, charCode uint8) {
	switch codingType {
	case 0x01, 0x02, 0xea, 0x1b, 0x20, 0x24:
		w.Bits(4, uint64(format)).Bits(4, uint64(rate))
	case 0x03, 0x04, 0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0xa1, 0xa2:
		w.Bits(4, uint64(format)).Bits(4, uint64(rate))
		w.Text(lang, 3)
	case 0x90, 0x91:
		w.Text(lang, 3)
	case 0x92:
		w.U8(charCode).Text(lang, 3)
	}
}

func writeSubPath(w *BitWriter, sp SubPath) {
	length := w.Mark(32)
	w.U8(0)
	w.U8(sp.Type)
	w.Bits(15, 0).Flag(sp.Repeat)
	w.U8(0)
	w.U8(uint8(len(sp.Items)))
	for _, it := range sp.Items {
		writeSubPlayItem(w, it)
	}
	w.Zero(sp.Trailer)
	w.Close(length, 32, 0)
}

func writeSubPlayItem(w *BitWriter, it SubPlayItem) {
	length := w.Mark(16)
	writeClipRef(w, it.Clip)
	w.Bits(27, 0)
	w.Bits(4, uint64(it.ConnectionCondition))
	w.Flag(it.MultiClip)
	w.U8(it.Clip.STCID)
	w.U32(it.InTime).U32(it.OutTime)
	w.U16(it.SyncPlayItemID).U32(it.SyncPTS)
	if it.MultiClip {
		w.U8(uint8(1 + len(it.ExtraClips)))
		w.U8(0)
		for _, c := range it.ExtraClips {
			writeClipRef(w, c)
			w.U8(c.STCID)
		}
	}
	w.Close(length, 16, 0)
}

func buildPiP(blocks []PiPBlock) []byte {
	const blockLen = 14
	w := &BitWriter{}
	length := w.Mark(32)
	w.U16(uint16(len(blocks)))
	tableOff := 4 + 2 + blockLen*len(blocks)
	var tables []*BitWriter
	for _, b := range blocks {
		w.U16(b.ClipRef).U8(b.SecondaryVideoRef).U8(0)
		w.Bits(4, uint64(b.TimelineType)).Flag(b.LumaKey).Flag(b.TrickPlay).Bits(10, 0)
		if b.LumaKey {
			w.U8(0).U8(b.UpperLimitLumaKey)
		} else {
			w.U16(0)
		}
		w.U16(0)
		w.U32(uint32(tableOff))

		t := &BitWriter{}
		t.U16(uint16(len(b.Data)))
		for _, d := range b.Data {
			t.U32(d.Time).Bits(12, uint64(d.XPos)).Bits(12, uint64(d.YPos)).Bits(4, uint64(d.Scale)).Bits(4, 0)
		}
		tables = append(tables, t)
		tableOff += t.Len()
	}
	for _, t := range tables {
		w.Raw(t.Bytes())
	}
	w.Close(length, 32, 0)
	return w.Bytes()
}

func buildExtSubPaths(paths []SubPath) []byte {
	w := &BitWriter{}
	length := w.Mark(32)
	w.U16(uint16(len(paths)))
	for _, sp := range paths {
		writeSubPath(w, sp)
	}
	w.Close(length, 32, 0)
	return w.Bytes()
}
