package streamattr_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"bdnav/internal/bitstream"
	"bdnav/internal/logging"
	"bdnav/internal/streamattr"
	"bdnav/internal/testsupport"
)

func block(coding uint8, body func(w *testsupport.BitWriter)) []byte {
	w := &testsupport.BitWriter{}
	attr := w.Mark(8)
	w.U8(coding)
	body(w)
	w.Close(attr, 8, 0)
	w.U8(0xEE) // sentinel after the block
	return w.Bytes()
}

func decode(t *testing.T, data []byte, layout streamattr.Layout) (streamattr.Attr, *bitstream.Reader) {
	t.Helper()
	r := bitstream.NewBytesReader(data)
	attr, err := streamattr.Decode(r, layout, nil)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	return attr, r
}

func TestDecodeVariants(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		layout streamattr.Layout
		want   streamattr.Attr
	}{
		{
			name: "playlist video",
			data: block(0x1b, func(w *testsupport.BitWriter) {
				testsupport.WriteCodingInfo(w, 0x1b, 6, 1, "", 0)
				w.Zero(3)
			}),
			want: streamattr.VideoAttr{CodingType: streamattr.H264, Format: streamattr.VF1080P, Rate: streamattr.FR23976},
		},
		{
			name: "clip video with aspect",
			data: block(0x24, func(w *testsupport.BitWriter) {
				w.Bits(4, 8).Bits(4, 2).Bits(4, 3).Bits(2, 0).Flag(true).Bits(1, 0)
			}),
			layout: streamattr.LayoutClip,
			want: streamattr.VideoAttr{
				CodingType: streamattr.HEVC, Format: streamattr.VF2160P, Rate: streamattr.FR24,
				Aspect: streamattr.AR169, OriginalContent: true,
			},
		},
		{
			name: "audio",
			data: block(0x80, func(w *testsupport.BitWriter) {
				testsupport.WriteCodingInfo(w, 0x80, 6, 1, "eng", 0)
			}),
			want: streamattr.AudioAttr{CodingType: streamattr.LPCM, Format: streamattr.AFMulti, Rate: streamattr.SR48, Lang: "eng"},
		},
		{
			name: "graphics",
			data: block(0x90, func(w *testsupport.BitWriter) {
				testsupport.WriteCodingInfo(w, 0x90, 0, 0, "fra", 0)
			}),
			want: streamattr.GraphicsAttr{CodingType: streamattr.PresentationGraphics, Lang: "fra"},
		},
		{
			name: "text",
			data: block(0x92, func(w *testsupport.BitWriter) {
				testsupport.WriteCodingInfo(w, 0x92, 0, 0, "jpn", 3)
			}),
			want: streamattr.TextAttr{CodingType: streamattr.TextSubtitle, CharCode: streamattr.ShiftJIS, Lang: "jpn"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, r := decode(t, tc.data, tc.layout)
			if got != tc.want {
				t.Fatalf("got %+v want %+v", got, tc.want)
			}
			if next := r.ReadBits(8); next != 0xEE {
				t.Fatalf("cursor not at declared end: read %#x", next)
			}
		})
	}
}

func TestDecodeUnknownCodingKeepsRawBytes(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	data := block(0x77, func(w *testsupport.BitWriter) { w.U8(1).U8(2) })

	attr, err := streamattr.Decode(bitstream.NewBytesReader(data), streamattr.LayoutPlaylist, logger)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	raw, ok := attr.(streamattr.RawAttr)
	if !ok {
		t.Fatalf("expected RawAttr, got %T", attr)
	}
	if raw.Coding() != 0x77 || !bytes.Equal(raw.Data, []byte{1, 2}) {
		t.Fatalf("unexpected raw attr: %+v", raw)
	}
	if !strings.Contains(buf.String(), `"coding_type":"0x77"`) {
		t.Fatalf("expected warning for unknown coding type, got %s", buf.String())
	}
}

func TestDecodeTruncatedBlock(t *testing.T) {
	// Declares 5 bytes but only 2 follow.
	_, err := streamattr.Decode(bitstream.NewBytesReader([]byte{5, 0x80, 0x61}), streamattr.LayoutPlaylist, nil)
	if !errors.Is(err, bitstream.ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
}

func TestLangAndDescribe(t *testing.T) {
	audio := streamattr.AudioAttr{CodingType: streamattr.DTSHDMaster, Format: streamattr.AFMulti, Rate: streamattr.SR48, Lang: "deu"}
	if streamattr.Lang(audio) != "deu" {
		t.Fatalf("unexpected lang %q", streamattr.Lang(audio))
	}
	if got := streamattr.Describe(audio); got != "DTS-HD Master multichannel 48kHz [deu]" {
		t.Fatalf("unexpected description %q", got)
	}
	if streamattr.Lang(streamattr.VideoAttr{}) != "" {
		t.Fatal("video has no language")
	}
	if got := streamattr.CodingType(0x55).String(); got != "unknown(0x55)" {
		t.Fatalf("unexpected unknown coding name %q", got)
	}
	if got := streamattr.FrameRate(5).String(); got != "reserved(5)" {
		t.Fatalf("unexpected reserved rate name %q", got)
	}
}
