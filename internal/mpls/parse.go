package mpls

import (
	"errors"
	"fmt"
	"log/slog"

	"bdnav/internal/bitstream"
	"bdnav/internal/extdata"
	"bdnav/internal/logging"
	"bdnav/internal/streamattr"
)

const (
	headerBytes   = 40
	markBytes     = 14
	expectedCodec = "M2TS"
)

// parser carries the per-file state of one decode.
type parser struct {
	r      *bitstream.Reader
	log    *slog.Logger
	strict bool
}

func (p *parser) playlist(pl *Playlist) error {
	if err := p.header(pl); err != nil {
		return err
	}
	if err := p.appInfo(&pl.AppInfo); err != nil {
		return fmt.Errorf("app info: %w", err)
	}
	if err := p.playList(pl); err != nil {
		return fmt.Errorf("play list: %w", err)
	}
	if err := p.marks(pl); err != nil {
		return fmt.Errorf("marks: %w", err)
	}
	if pl.ExtPos > 0 {
		p.extensions(pl)
	}
	return nil
}

func (p *parser) header(pl *Playlist) error {
	r := p.r
	if err := r.RequireBytes(headerBytes, "playlist header"); err != nil {
		return err
	}
	pl.TypeIndicator = r.ReadString(4)
	pl.Version = r.ReadString(4)
	if pl.TypeIndicator != typeIndicator {
		return fmt.Errorf("%w: got %q, want %q", ErrSignature, pl.TypeIndicator+pl.Version, typeIndicator+version0200)
	}
	if pl.Version != version0100 && pl.Version != version0200 {
		if p.strict {
			return fmt.Errorf("%w: unknown version %q", ErrSignature, pl.Version)
		}
		logging.WarnWithContext(p.log, "unknown playlist version", "mpls_version_unknown",
			logging.String("version", pl.Version),
			logging.String(logging.FieldImpact, "decoding with the 0200 layout"),
		)
	}
	pl.ListPos = r.ReadBits(32)
	pl.MarkPos = r.ReadBits(32)
	pl.ExtPos = r.ReadBits(32)
	r.SkipBits(160)
	return r.Err()
}

func (p *parser) appInfo(ai *AppInfo) error {
	r := p.r
	p.checkAlign("app info")
	section := r.BeginSection(32)
	if err := r.RequireBytes(section.Length, "app info"); err != nil {
		return err
	}
	r.SkipBits(8)
	ai.PlaybackType = uint8(r.ReadBits(8))
	if ai.PlaybackType == PlaybackRandom || ai.PlaybackType == PlaybackShuffle {
		ai.PlaybackCount = uint16(r.ReadBits(16))
	} else {
		r.SkipBits(16)
	}
	ai.UOMask = p.uoMask()
	ai.RandomAccess = r.ReadBool()
	ai.AudioMix = r.ReadBool()
	ai.LosslessBypass = r.ReadBool()
	r.SkipBits(13)
	r.EndSection(section)
	return r.Err()
}

func (p *parser) uoMask() UOMask {
	hi := p.r.ReadBits(32)
	lo := p.r.ReadBits(32)
	return UOMask(uint64(hi)<<32 | uint64(lo))
}

func (p *parser) playList(pl *Playlist) error {
	r := p.r
	r.SeekByte(int64(pl.ListPos))
	section := r.BeginSection(32)
	if err := r.RequireBytes(section.Length, "play list"); err != nil {
		return err
	}
	r.SkipBits(16)
	listCount := int(r.ReadBits(16))
	subCount := int(r.ReadBits(16))
	if err := r.Err(); err != nil {
		return err
	}

	pl.PlayItems = make([]PlayItem, listCount)
	for i := range pl.PlayItems {
		if err := p.playItem(&pl.PlayItems[i]); err != nil {
			return fmt.Errorf("play item %d: %w", i, err)
		}
	}
	if subCount > 0 {
		pl.SubPaths = make([]SubPath, subCount)
		for i := range pl.SubPaths {
			if err := p.subPath(&pl.SubPaths[i]); err != nil {
				return fmt.Errorf("sub path %d: %w", i, err)
			}
		}
	}
	return nil
}

func (p *parser) clipRef(c *Clip) {
	c.ClipID = p.r.ReadString(5)
	c.CodecID = p.r.ReadString(4)
	if p.r.Err() == nil && c.CodecID != expectedCodec {
		logging.WarnWithContext(p.log, "unexpected codec identifier", "mpls_codec_unexpected",
			logging.String("clip_id", c.ClipID),
			logging.String("codec_id", c.CodecID),
		)
	}
}

func (p *parser) connectionCondition(cc uint8, clipID string) {
	switch cc {
	case 0x01, 0x05, 0x06:
	default:
		logging.WarnWithContext(p.log, "unexpected connection condition", "mpls_connection_unexpected",
			logging.String("clip_id", clipID),
			logging.Hex("connection_condition", uint64(cc)),
		)
	}
}

func (p *parser) playItem(pi *PlayItem) error {
	r := p.r
	p.checkAlign("play item")
	section := r.BeginSection(16)

	var primary Clip
	p.clipRef(&primary)
	r.SkipBits(11)
	pi.MultiAngle = r.ReadBool()
	pi.ConnectionCondition = uint8(r.ReadBits(4))
	primary.STCID = uint8(r.ReadBits(8))
	pi.InTime = r.ReadBits(32)
	pi.OutTime = r.ReadBits(32)
	pi.UOMask = p.uoMask()
	pi.RandomAccess = r.ReadBool()
	r.SkipBits(7)
	pi.StillMode = uint8(r.ReadBits(8))
	if pi.StillMode == StillTimed {
		pi.StillTime = uint16(r.ReadBits(16))
	} else {
		r.SkipBits(16)
	}
	if err := r.Err(); err != nil {
		return err
	}
	p.connectionCondition(pi.ConnectionCondition, primary.ClipID)

	angles := 1
	if pi.MultiAngle {
		angles = int(r.ReadBits(8))
		if angles < 1 {
			angles = 1
		}
		r.SkipBits(6)
		pi.DifferentAudio = r.ReadBool()
		pi.SeamlessAngle = r.ReadBool()
	}
	pi.Clips = make([]Clip, angles)
	pi.Clips[0] = primary
	for i := 1; i < angles; i++ {
		p.clipRef(&pi.Clips[i])
		pi.Clips[i].STCID = uint8(r.ReadBits(8))
	}
	if err := r.Err(); err != nil {
		return err
	}

	if err := p.stn(&pi.STN); err != nil {
		return fmt.Errorf("stream table: %w", err)
	}
	r.EndSection(section)
	return r.Err()
}

func (p *parser) stn(stn *STN) error {
	r := p.r
	p.checkAlign("stream table")
	section := r.BeginSection(16)
	r.SkipBits(16)
	numVideo := int(r.ReadBits(8))
	numAudio := int(r.ReadBits(8))
	numPG := int(r.ReadBits(8))
	numIG := int(r.ReadBits(8))
	numSecondaryAudio := int(r.ReadBits(8))
	numSecondaryVideo := int(r.ReadBits(8))
	numPiPPG := int(r.ReadBits(8))
	r.SkipBits(40)
	if err := r.Err(); err != nil {
		return err
	}

	// On-disc order: video, audio, pg, pip pg, ig, secondary audio,
	// secondary video.
	lists := []struct {
		dst  *[]Stream
		n    int
		name string
		// refLists is the number of trailing reference lists per entry.
		refLists int
	}{
		{&stn.Video, numVideo, "video", 0},
		{&stn.Audio, numAudio, "audio", 0},
		{&stn.PG, numPG, "pg", 0},
		{&stn.PiPPG, numPiPPG, "pip pg", 0},
		{&stn.IG, numIG, "ig", 0},
		{&stn.SecondaryAudio, numSecondaryAudio, "secondary audio", 1},
		{&stn.SecondaryVideo, numSecondaryVideo, "secondary video", 2},
	}
	for _, l := range lists {
		if l.n == 0 {
			continue
		}
		*l.dst = make([]Stream, l.n)
		for i := range *l.dst {
			s := &(*l.dst)[i]
			if err := p.stream(s); err != nil {
				return fmt.Errorf("%s stream %d: %w", l.name, i, err)
			}
			if l.refLists > 0 {
				s.AudioRefs = p.refs()
			}
			if l.refLists > 1 {
				s.PiPPGRefs = p.refs()
			}
			if err := r.Err(); err != nil {
				return fmt.Errorf("%s stream %d references: %w", l.name, i, err)
			}
		}
	}
	r.EndSection(section)
	return r.Err()
}

func (p *parser) stream(s *Stream) error {
	r := p.r
	p.checkAlign("stream entry")
	entry := r.BeginSection(8)
	s.EntryType = uint8(r.ReadBits(8))
	switch s.EntryType {
	case EntryPlayItem:
		s.PID = uint16(r.ReadBits(16))
	case EntrySubPath, EntrySubPathSubClip:
		s.SubPathID = uint8(r.ReadBits(8))
		s.SubClipID = uint8(r.ReadBits(8))
		s.PID = uint16(r.ReadBits(16))
	case EntrySubPathInMux:
		s.SubPathID = uint8(r.ReadBits(8))
		s.PID = uint16(r.ReadBits(16))
	default:
		if r.Err() == nil {
			logging.WarnWithContext(p.log, "unrecognised stream entry type", "mpls_stream_entry_unknown",
				logging.Hex("entry_type", uint64(s.EntryType)),
				logging.Offset(entry.Start),
			)
		}
	}
	r.EndSection(entry)
	if err := r.Err(); err != nil {
		return err
	}

	attr, err := streamattr.Decode(r, streamattr.LayoutPlaylist, p.log)
	if err != nil {
		return err
	}
	s.Attr = attr
	return nil
}

// refs reads a count-prefixed reference list padded to an even length.
func (p *parser) refs() []uint8 {
	r := p.r
	n := int(r.ReadBits(8))
	r.SkipBits(8)
	if n == 0 || r.Err() != nil {
		return nil
	}
	out := make([]uint8, n)
	for i := range out {
		out[i] = uint8(r.ReadBits(8))
	}
	if n%2 == 1 {
		r.SkipBits(8)
	}
	return out
}

func (p *parser) subPath(sp *SubPath) error {
	r := p.r
	p.checkAlign("sub path")
	section := r.BeginSection(32)
	r.SkipBits(8)
	sp.Type = uint8(r.ReadBits(8))
	r.SkipBits(15)
	sp.Repeat = r.ReadBool()
	r.SkipBits(8)
	count := int(r.ReadBits(8))
	if err := r.Err(); err != nil {
		return err
	}

	if count > 0 {
		sp.Items = make([]SubPlayItem, count)
		for i := range sp.Items {
			if err := p.subPlayItem(&sp.Items[i]); err != nil {
				return fmt.Errorf("sub play item %d: %w", i, err)
			}
		}
	}
	r.EndSection(section)
	return r.Err()
}

func (p *parser) subPlayItem(spi *SubPlayItem) error {
	r := p.r
	p.checkAlign("sub play item")
	section := r.BeginSection(16)

	var primary Clip
	p.clipRef(&primary)
	r.SkipBits(27)
	spi.ConnectionCondition = uint8(r.ReadBits(4))
	spi.MultiClip = r.ReadBool()
	primary.STCID = uint8(r.ReadBits(8))
	spi.InTime = r.ReadBits(32)
	spi.OutTime = r.ReadBits(32)
	spi.SyncPlayItemID = uint16(r.ReadBits(16))
	spi.SyncPTS = r.ReadBits(32)
	if err := r.Err(); err != nil {
		return err
	}
	p.connectionCondition(spi.ConnectionCondition, primary.ClipID)

	clips := 1
	if spi.MultiClip {
		clips = int(r.ReadBits(8))
		if clips < 1 {
			clips = 1
		}
		r.SkipBits(8)
	}
	spi.Clips = make([]Clip, clips)
	spi.Clips[0] = primary
	for i := 1; i < clips; i++ {
		p.clipRef(&spi.Clips[i])
		spi.Clips[i].STCID = uint8(r.ReadBits(8))
	}
	r.EndSection(section)
	return r.Err()
}

func (p *parser) marks(pl *Playlist) error {
	r := p.r
	r.SeekByte(int64(pl.MarkPos))
	section := r.BeginSection(32)
	if err := r.RequireBytes(section.Length, "mark list"); err != nil {
		return err
	}
	count := int(r.ReadBits(16))
	if err := r.RequireBytes(int64(count)*markBytes, "mark entries"); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	pl.Marks = make([]Mark, count)
	for i := range pl.Marks {
		m := &pl.Marks[i]
		m.ID = uint8(r.ReadBits(8))
		m.Type = uint8(r.ReadBits(8))
		m.PlayItemRef = uint16(r.ReadBits(16))
		m.Time = r.ReadBits(32)
		m.EntryESPID = uint16(r.ReadBits(16))
		m.Duration = r.ReadBits(32)
	}
	return r.Err()
}

func (p *parser) checkAlign(what string) {
	if !p.r.IsAligned(7) {
		logging.WarnWithContext(p.log, "structure not byte aligned", "mpls_alignment",
			logging.String("structure", what),
			logging.Int64("bit_pos", p.r.BitPos()),
		)
	}
}

func (p *parser) extensions(pl *Playlist) {
	handlers := extdata.Handlers{
		{ID1: 1, ID2: 1}: p.pipExtension(pl),
		{ID1: 2, ID2: 1}: nil,
		{ID1: 2, ID2: 2}: p.subPathExtension(pl),
	}
	err := extdata.Walk(p.r, int64(pl.ExtPos), handlers.Dispatch, p.log)
	switch {
	case err == nil:
	case errors.Is(err, extdata.ErrNoExtension):
		p.log.Debug("extension section is empty", logging.Offset(int64(pl.ExtPos)))
	default:
		logging.WarnWithContext(p.log, "extension data unusable", "mpls_extension_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "playlist decoded without the failed extensions"),
		)
	}
	// Extensions are optional; a failure there must not fail the playlist.
	p.r.Reset(p.r.BytePos())
}
