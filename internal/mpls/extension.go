package mpls

import (
	"fmt"

	"bdnav/internal/bitstream"
	"bdnav/internal/extdata"
	"bdnav/internal/logging"
)

// pipExtension decodes the (1,1) picture-in-picture metadata. Each block
// points at its own data table through an address relative to the start of
// the extension body. The result is only attached once every block decoded.
func (p *parser) pipExtension(pl *Playlist) extdata.Handler {
	return func(r *bitstream.Reader, e extdata.Entry) error {
		start := r.BytePos()
		length := r.ReadBits(32)
		count := int(r.ReadBits(16))
		if err := r.Err(); err != nil {
			return err
		}
		if length < 1 || count < 1 {
			p.log.Debug("pip metadata extension is empty", logging.Offset(e.Start))
			return nil
		}

		blocks := make([]PiPMetadata, count)
		for i := range blocks {
			if err := p.pipBlock(&blocks[i], start); err != nil {
				return fmt.Errorf("pip block %d: %w", i, err)
			}
		}
		pl.PiP = blocks
		return nil
	}
}

func (p *parser) pipBlock(b *PiPMetadata, start int64) error {
	r := p.r
	b.ClipRef = uint16(r.ReadBits(16))
	b.SecondaryVideoRef = uint8(r.ReadBits(8))
	r.SkipBits(8)
	b.TimelineType = uint8(r.ReadBits(4))
	b.LumaKey = r.ReadBool()
	b.TrickPlay = r.ReadBool()
	r.SkipBits(10)
	if b.LumaKey {
		r.SkipBits(8)
		b.UpperLimitLumaKey = uint8(r.ReadBits(8))
	} else {
		r.SkipBits(16)
	}
	r.SkipBits(16)
	dataAddress := int64(r.ReadBits(32))
	if err := r.Err(); err != nil {
		return err
	}

	resume := r.BytePos()
	r.SeekByte(start + dataAddress)
	n := int(r.ReadBits(16))
	if err := r.Err(); err != nil {
		return fmt.Errorf("data table: %w", err)
	}
	if n > 0 {
		b.Data = make([]PiPData, n)
		for i := range b.Data {
			d := &b.Data[i]
			d.Time = r.ReadBits(32)
			d.XPos = uint16(r.ReadBits(12))
			d.YPos = uint16(r.ReadBits(12))
			d.Scale = uint8(r.ReadBits(4))
			r.SkipBits(4)
		}
	}
	r.SeekByte(resume)
	return r.Err()
}

// subPathExtension decodes the (2,2) extra sub-paths.
func (p *parser) subPathExtension(pl *Playlist) extdata.Handler {
	return func(r *bitstream.Reader, e extdata.Entry) error {
		length := r.ReadBits(32)
		count := int(r.ReadBits(16))
		if err := r.Err(); err != nil {
			return err
		}
		if length < 1 || count < 1 {
			p.log.Debug("sub path extension is empty", logging.Offset(e.Start))
			return nil
		}

		paths := make([]SubPath, count)
		for i := range paths {
			if err := p.subPath(&paths[i]); err != nil {
				return fmt.Errorf("extension sub path %d: %w", i, err)
			}
		}
		pl.ExtSubPaths = paths
		return nil
	}
}
