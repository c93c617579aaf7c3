package clpi_test

import (
	"bytes"
	"log/slog"
	"testing"

	"bdnav/internal/clpi"
	"bdnav/internal/logging"
	"bdnav/internal/testsupport"
)

const videoPID = 0x1011

// samplePoints cross several coarse buckets through both the PTS and the
// SPN break rules.
var samplePoints = []testsupport.EntryPoint{
	{PTS: 0x00000100, SPN: 100},
	{PTS: 0x00040000, SPN: 200},
	{PTS: 0x00080200, SPN: 300, AngleChange: true},
	{PTS: 0x000C0000, SPN: 0x20010},
	{PTS: 0x00100000, SPN: 0x20100},
	{PTS: 0x00140000, SPN: 0x40000, AngleChange: true, EndPositionOffset: 3},
	{PTS: 0x00180000, SPN: 0x40010},
}

func sampleClip() testsupport.ClipInfo {
	return testsupport.ClipInfo{
		StreamType:       1,
		ApplicationType:  clpi.AppMainMovie,
		RecordingRate:    48000000,
		NumSourcePackets: 0x50000,
		TSValidity:       0x80,
		TSFormatID:       "HDMV",
		ATCDeltas:        []testsupport.ATCDelta{{Delta: 42, FileID: "00002", FileCode: "M2TS"}},
		ATCSeqs: []testsupport.ATCSeq{{
			STC: []testsupport.STCSeq{
				{PCRPID: 0x1001, SPNSTCStart: 0, Start: 0x100, End: 0x000C0000},
				{PCRPID: 0x1001, SPNSTCStart: 0x20000, Start: 0x000C0000, End: 0x00200000},
			},
		}},
		Programs: []testsupport.Program{{
			PMTPID: 0x0100,
			Streams: []testsupport.ProgramStream{
				{PID: videoPID, CodingType: 0x1b, Format: 6, Rate: 1, Aspect: 3, OCFlag: true},
				{PID: 0x1100, CodingType: 0x86, Format: 6, Rate: 1, Lang: "eng"},
				{PID: 0x1200, CodingType: 0x90, Lang: "deu"},
				{PID: 0x1800, CodingType: 0x92, CharCode: 1, Lang: "fra"},
			},
		}},
		EPMaps: []testsupport.EPMap{
			{PID: videoPID, StreamType: clpi.EPStreamVideo, Points: samplePoints},
			{PID: 0x1100, StreamType: 3, CoarseEvery: 1, Points: []testsupport.EntryPoint{{PTS: 0x100, SPN: 5}, {PTS: 0x200, SPN: 9}}},
		},
	}
}

func jsonLogger(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	return logger, &buf
}

func mustDecode(t *testing.T, data []byte, opts ...clpi.Option) *clpi.ClipInfo {
	t.Helper()
	ci, err := clpi.NewDecoder(opts...).DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes returned error: %v", err)
	}
	if ci == nil {
		t.Fatal("expected clip info")
	}
	return ci
}
