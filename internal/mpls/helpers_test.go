package mpls_test

import (
	"bytes"
	"log/slog"
	"testing"

	"bdnav/internal/logging"
	"bdnav/internal/mpls"
	"bdnav/internal/testsupport"
)

const (
	secs = 45000
	base = 90000
)

func jsonLogger(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	return logger, &buf
}

func mustDecode(t *testing.T, data []byte, opts ...mpls.Option) *mpls.Playlist {
	t.Helper()
	pl, err := mpls.NewDecoder(opts...).DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes returned error: %v", err)
	}
	if pl == nil {
		t.Fatal("expected playlist")
	}
	return pl
}

func videoStream(pid uint16) testsupport.Stream {
	return testsupport.Stream{Type: 1, PID: pid, CodingType: 0x1b, Format: 6, Rate: 1}
}

func audioStream(pid uint16, lang string) testsupport.Stream {
	return testsupport.Stream{Type: 1, PID: pid, CodingType: 0x80, Format: 6, Rate: 1, Lang: lang}
}

func simpleItem(clip string, in, out uint32) testsupport.PlayItem {
	return testsupport.PlayItem{
		Clip:                testsupport.ClipRef{ClipID: clip},
		ConnectionCondition: 1,
		InTime:              in,
		OutTime:             out,
		STN: testsupport.STN{
			Video: []testsupport.Stream{videoStream(0x1011)},
			Audio: []testsupport.Stream{audioStream(0x1100, "eng"), audioStream(0x1101, "fra")},
		},
	}
}
