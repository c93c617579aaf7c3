package streamattr

import (
	"fmt"
	"log/slog"
	"strings"

	"bdnav/internal/bitstream"
	"bdnav/internal/logging"
)

// Layout selects the container the attribute block was read from. Clip
// program streams carry extra video fields that playlists leave reserved.
type Layout uint8

const (
	LayoutPlaylist Layout = iota
	LayoutClip
)

// Attr is implemented by VideoAttr, AudioAttr, GraphicsAttr, TextAttr and
// RawAttr.
type Attr interface {
	Coding() CodingType
	attr()
}

// VideoAttr describes a video stream. Aspect and OriginalContent are only
// populated for LayoutClip.
type VideoAttr struct {
	CodingType      CodingType  `json:"coding_type" yaml:"coding_type"`
	Format          VideoFormat `json:"format" yaml:"format"`
	Rate            FrameRate   `json:"rate" yaml:"rate"`
	Aspect          AspectRatio `json:"aspect,omitempty" yaml:"aspect,omitempty"`
	OriginalContent bool        `json:"original_content,omitempty" yaml:"original_content,omitempty"`
}

// AudioAttr describes a primary or secondary audio stream.
type AudioAttr struct {
	CodingType CodingType  `json:"coding_type" yaml:"coding_type"`
	Format     AudioFormat `json:"format" yaml:"format"`
	Rate       SampleRate  `json:"rate" yaml:"rate"`
	Lang       string      `json:"lang" yaml:"lang"`
}

// GraphicsAttr describes a presentation or interactive graphics stream.
type GraphicsAttr struct {
	CodingType CodingType `json:"coding_type" yaml:"coding_type"`
	Lang       string     `json:"lang" yaml:"lang"`
}

// TextAttr describes a text subtitle stream.
type TextAttr struct {
	CodingType CodingType `json:"coding_type" yaml:"coding_type"`
	CharCode   CharCode   `json:"char_code" yaml:"char_code"`
	Lang       string     `json:"lang" yaml:"lang"`
}

// RawAttr keeps the undecoded attribute bytes of an unrecognised coding type.
type RawAttr struct {
	CodingType CodingType `json:"coding_type" yaml:"coding_type"`
	Data       []byte     `json:"data,omitempty" yaml:"data,omitempty"`
}

func (a VideoAttr) Coding() CodingType    { return a.CodingType }
func (a AudioAttr) Coding() CodingType    { return a.CodingType }
func (a GraphicsAttr) Coding() CodingType { return a.CodingType }
func (a TextAttr) Coding() CodingType     { return a.CodingType }
func (a RawAttr) Coding() CodingType      { return a.CodingType }

func (VideoAttr) attr()    {}
func (AudioAttr) attr()    {}
func (GraphicsAttr) attr() {}
func (TextAttr) attr()     {}
func (RawAttr) attr()      {}

type decodeFunc func(r *bitstream.Reader, coding CodingType, layout Layout) Attr

var decoders = map[Kind]decodeFunc{
	KindVideo:    decodeVideo,
	KindAudio:    decodeAudio,
	KindGraphics: decodeGraphics,
	KindText:     decodeText,
}

// Decode reads one length-prefixed attribute block and leaves the cursor at
// its declared end. Unknown coding types are logged and returned as RawAttr.
func Decode(r *bitstream.Reader, layout Layout, logger *slog.Logger) (Attr, error) {
	section := r.BeginSection(8)
	coding := CodingType(r.ReadBits(8))
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("stream attributes: %w", err)
	}

	var attr Attr
	if decode, ok := decoders[coding.Kind()]; ok {
		attr = decode(r, coding, layout)
	} else {
		if logger != nil {
			logging.WarnWithContext(logger, "unrecognised stream coding type", "stream_coding_unknown",
				logging.Hex("coding_type", uint64(coding)),
				logging.Offset(section.Start),
				logging.String(logging.FieldImpact, "stream attributes kept as raw bytes"),
			)
		}
		raw := RawAttr{CodingType: coding}
		if n := section.End() - r.BytePos(); n > 0 && r.IsAligned(7) {
			raw.Data = r.ReadBytes(int(n))
		}
		attr = raw
	}

	r.EndSection(section)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("stream attributes: %w", err)
	}
	return attr, nil
}

func decodeVideo(r *bitstream.Reader, coding CodingType, layout Layout) Attr {
	a := VideoAttr{CodingType: coding}
	a.Format = VideoFormat(r.ReadBits(4))
	a.Rate = FrameRate(r.ReadBits(4))
	if layout == LayoutClip {
		a.Aspect = AspectRatio(r.ReadBits(4))
		r.SkipBits(2)
		a.OriginalContent = r.ReadBool()
		r.SkipBits(1)
	}
	return a
}

func decodeAudio(r *bitstream.Reader, coding CodingType, _ Layout) Attr {
	a := AudioAttr{CodingType: coding}
	a.Format = AudioFormat(r.ReadBits(4))
	a.Rate = SampleRate(r.ReadBits(4))
	a.Lang = readLang(r)
	return a
}

func decodeGraphics(r *bitstream.Reader, coding CodingType, _ Layout) Attr {
	return GraphicsAttr{CodingType: coding, Lang: readLang(r)}
}

func decodeText(r *bitstream.Reader, coding CodingType, _ Layout) Attr {
	a := TextAttr{CodingType: coding}
	a.CharCode = CharCode(r.ReadBits(8))
	a.Lang = readLang(r)
	return a
}

func readLang(r *bitstream.Reader) string {
	return strings.TrimRight(r.ReadString(3), "\x00")
}

// Lang returns the ISO 639-2 language of a, or "" for video and raw attributes.
func Lang(a Attr) string {
	switch v := a.(type) {
	case AudioAttr:
		return v.Lang
	case GraphicsAttr:
		return v.Lang
	case TextAttr:
		return v.Lang
	default:
		return ""
	}
}

// Describe renders a one-line human summary of a.
func Describe(a Attr) string {
	switch v := a.(type) {
	case VideoAttr:
		parts := []string{v.CodingType.String(), v.Format.String(), v.Rate.String()}
		if v.Aspect != 0 {
			parts = append(parts, v.Aspect.String())
		}
		return strings.Join(parts, " ")
	case AudioAttr:
		return fmt.Sprintf("%s %s %s [%s]", v.CodingType, v.Format, v.Rate, v.Lang)
	case GraphicsAttr:
		return fmt.Sprintf("%s [%s]", v.CodingType, v.Lang)
	case TextAttr:
		return fmt.Sprintf("%s %s [%s]", v.CodingType, v.CharCode, v.Lang)
	case RawAttr:
		return fmt.Sprintf("%s (%d bytes)", v.CodingType, len(v.Data))
	default:
		return ""
	}
}
