package mpls_test

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"bdnav/internal/bitstream"
	"bdnav/internal/mpls"
	"bdnav/internal/streamattr"
	"bdnav/internal/testsupport"
)

func TestDecodeRoundTrip(t *testing.T) {
	for _, version := range []string{"0200", "0100"} {
		t.Run(version, func(t *testing.T) {
			src := testsupport.Playlist{
				Version:        version,
				PlaybackType:   1,
				UOMask:         uint64(mpls.UOMenuCall | mpls.UOPiPPGChange),
				RandomAccess:   true,
				LosslessBypass: true,
				PlayItems:      []testsupport.PlayItem{simpleItem("00001", base, base+60*secs)},
				Marks: []testsupport.Mark{
					{Type: 1, PlayItemRef: 0, Time: base},
					{Type: 1, PlayItemRef: 0, Time: base + 30*secs, EntryESPID: 0x1011},
					{Type: 2, PlayItemRef: 0, Time: base + 45*secs, Duration: 10},
				},
			}
			pl := mustDecode(t, src.Build())

			if pl.TypeIndicator != "MPLS" || pl.Version != version {
				t.Fatalf("unexpected signature %q%q", pl.TypeIndicator, pl.Version)
			}
			ai := pl.AppInfo
			if ai.PlaybackType != 1 || ai.PlaybackCount != 0 {
				t.Fatalf("unexpected playback fields: %+v", ai)
			}
			if !ai.RandomAccess || ai.AudioMix || !ai.LosslessBypass {
				t.Fatalf("unexpected app flags: %+v", ai)
			}
			if !ai.UOMask.Has(mpls.UOMenuCall) || !ai.UOMask.Has(mpls.UOPiPPGChange) || ai.UOMask.Has(mpls.UOStop) {
				t.Fatalf("unexpected uo mask %v", ai.UOMask)
			}

			if len(pl.PlayItems) != 1 {
				t.Fatalf("got %d play items, want 1", len(pl.PlayItems))
			}
			pi := pl.PlayItems[0]
			if pi.ConnectionCondition != 0x01 || pi.AngleCount() != 1 || pi.MultiAngle {
				t.Fatalf("unexpected play item header: %+v", pi)
			}
			if c := pi.Clip(); c.ClipID != "00001" || c.CodecID != "M2TS" {
				t.Fatalf("unexpected clip %+v", c)
			}
			if pi.InTime != base || pi.OutTime != base+60*secs {
				t.Fatalf("unexpected in/out %d/%d", pi.InTime, pi.OutTime)
			}
			if len(pi.STN.Video) != 1 || len(pi.STN.Audio) != 2 {
				t.Fatalf("unexpected stream counts: video=%d audio=%d", len(pi.STN.Video), len(pi.STN.Audio))
			}
			for i, want := range []string{"eng", "fra"} {
				a := pi.STN.Audio[i]
				if a.Coding() != streamattr.LPCM || a.Lang() != want || a.EntryType != mpls.EntryPlayItem {
					t.Fatalf("audio %d: %+v", i, a)
				}
			}
			if v, ok := pi.STN.Video[0].Attr.(streamattr.VideoAttr); !ok || v.Format != streamattr.VF1080P || pi.STN.Video[0].PID != 0x1011 {
				t.Fatalf("unexpected video stream %+v", pi.STN.Video[0])
			}

			if len(pl.Marks) != 3 {
				t.Fatalf("got %d marks, want 3", len(pl.Marks))
			}
			if m := pl.Marks[1]; m.Time != base+30*secs || m.EntryESPID != 0x1011 || m.Type != mpls.MarkEntry {
				t.Fatalf("unexpected mark %+v", m)
			}
			if pl.ExtPos != 0 || pl.PiP != nil || pl.ExtSubPaths != nil {
				t.Fatalf("expected no extensions")
			}
		})
	}
}

func TestPlaybackCountOnlyForRandomAndShuffle(t *testing.T) {
	for _, tc := range []struct {
		typ  uint8
		want uint16
	}{{1, 0}, {2, 7}, {3, 7}} {
		src := testsupport.Playlist{PlaybackType: tc.typ, PlaybackCount: 7, PlayItems: []testsupport.PlayItem{simpleItem("00001", 0, secs)}}
		pl := mustDecode(t, src.Build())
		if pl.AppInfo.PlaybackCount != tc.want {
			t.Fatalf("type %d: playback count %d, want %d", tc.typ, pl.AppInfo.PlaybackCount, tc.want)
		}
	}
}

func TestDecodeRejectsBadSignature(t *testing.T) {
	src := testsupport.Playlist{Magic: "XXXX", Version: "0200", PlayItems: []testsupport.PlayItem{simpleItem("00001", 0, secs)}}
	pl, err := mpls.NewDecoder().DecodeBytes(src.Build())
	if !errors.Is(err, mpls.ErrSignature) {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
	if pl != nil {
		t.Fatal("expected no record on failure")
	}
}

func TestUnknownVersionHonoursStrictness(t *testing.T) {
	data := testsupport.Playlist{Version: "0300", PlayItems: []testsupport.PlayItem{simpleItem("00001", 0, secs)}}.Build()

	if _, err := mpls.NewDecoder().DecodeBytes(data); !errors.Is(err, mpls.ErrSignature) {
		t.Fatalf("strict decoder: expected ErrSignature, got %v", err)
	}

	logger, buf := jsonLogger(t)
	pl := mustDecode(t, data, mpls.WithStrictSignature(false), mpls.WithLogger(logger))
	if pl.Version != "0300" || len(pl.PlayItems) != 1 {
		t.Fatalf("unexpected lenient decode: %+v", pl)
	}
	if !strings.Contains(buf.String(), "mpls_version_unknown") {
		t.Fatalf("expected version warning, got %s", buf.String())
	}
}

func TestDecodeTruncatedSections(t *testing.T) {
	tests := []struct {
		name string
		src  testsupport.Playlist
	}{
		{"play list", testsupport.Playlist{ListLengthDelta: 4096, PlayItems: []testsupport.PlayItem{simpleItem("00001", 0, secs)}}},
		{"marks", testsupport.Playlist{MarkLengthDelta: 4096, PlayItems: []testsupport.PlayItem{simpleItem("00001", 0, secs)}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pl, err := mpls.NewDecoder().DecodeBytes(tc.src.Build())
			if !errors.Is(err, bitstream.ErrTruncated) {
				t.Fatalf("expected ErrTruncated, got %v", err)
			}
			if pl != nil {
				t.Fatal("expected no record on failure")
			}
		})
	}
}

func TestDecodeTruncatedFile(t *testing.T) {
	data := testsupport.Playlist{PlayItems: []testsupport.PlayItem{simpleItem("00001", 0, secs)}}.Build()
	for _, n := range []int{0, 20, 39, 60} {
		if pl, err := mpls.NewDecoder().DecodeBytes(data[:n]); err == nil || pl != nil {
			t.Fatalf("cut at %d: expected failure, got %v", n, err)
		}
	}
}

func TestTrailingBytesAreSkipped(t *testing.T) {
	first := simpleItem("00001", 0, 10*secs)
	first.Trailer = 7
	second := simpleItem("00002", 0, 20*secs)
	src := testsupport.Playlist{
		PlayItems: []testsupport.PlayItem{first, second},
		SubPaths: []testsupport.SubPath{
			{Type: 5, Trailer: 3, Items: []testsupport.SubPlayItem{{Clip: testsupport.ClipRef{ClipID: "00010"}, ConnectionCondition: 1}}},
			{Type: 6, Items: []testsupport.SubPlayItem{{Clip: testsupport.ClipRef{ClipID: "00011"}, ConnectionCondition: 1}}},
		},
	}
	pl := mustDecode(t, src.Build())
	if got := pl.ClipIDs(); strings.Join(got, ",") != "00001,00002" {
		t.Fatalf("unexpected clip ids %v", got)
	}
	if len(pl.PlayItems[1].STN.Audio) != 2 {
		t.Fatalf("second play item desynchronised: %+v", pl.PlayItems[1])
	}
	if len(pl.SubPaths) != 2 || pl.SubPaths[1].Type != 6 || pl.SubPaths[1].Items[0].Clips[0].ClipID != "00011" {
		t.Fatalf("second sub path desynchronised: %+v", pl.SubPaths)
	}
	if pl.Duration() != 30*time.Second {
		t.Fatalf("unexpected duration %v", pl.Duration())
	}
}

func TestMultiAnglePlayItem(t *testing.T) {
	item := simpleItem("00001", 0, secs)
	item.MultiAngle = true
	item.DifferentAudio = true
	item.SeamlessAngle = true
	item.Angles = []testsupport.ClipRef{{ClipID: "00002", STCID: 1}, {ClipID: "00003", STCID: 2}}
	item.StillMode = mpls.StillTimed
	item.StillTime = 30
	item.RandomAccess = true

	pl := mustDecode(t, testsupport.Playlist{PlayItems: []testsupport.PlayItem{item}}.Build())
	pi := pl.PlayItems[0]
	if pi.AngleCount() != 3 || !pi.MultiAngle || !pi.DifferentAudio || !pi.SeamlessAngle {
		t.Fatalf("unexpected angle fields: %+v", pi)
	}
	for i, want := range []mpls.Clip{
		{ClipID: "00001", CodecID: "M2TS"},
		{ClipID: "00002", CodecID: "M2TS", STCID: 1},
		{ClipID: "00003", CodecID: "M2TS", STCID: 2},
	} {
		if pi.Clips[i] != want {
			t.Fatalf("angle %d: got %+v want %+v", i, pi.Clips[i], want)
		}
	}
	if pi.StillMode != mpls.StillTimed || pi.StillTime != 30 || !pi.RandomAccess {
		t.Fatalf("unexpected still fields: %+v", pi)
	}
	if len(pi.STN.Audio) != 2 {
		t.Fatal("stream table lost after angle list")
	}
	if pl.MaxAngles() != 3 {
		t.Fatalf("unexpected max angles %d", pl.MaxAngles())
	}
}

func TestStillTimeIgnoredUnlessTimed(t *testing.T) {
	item := simpleItem("00001", 0, secs)
	item.StillMode = mpls.StillInfinite
	pl := mustDecode(t, testsupport.Playlist{PlayItems: []testsupport.PlayItem{item}}.Build())
	if pl.PlayItems[0].StillMode != mpls.StillInfinite || pl.PlayItems[0].StillTime != 0 {
		t.Fatalf("unexpected still fields: %+v", pl.PlayItems[0])
	}
}

func TestSecondaryStreamReferences(t *testing.T) {
	item := simpleItem("00001", 0, secs)
	item.STN.PG = []testsupport.Stream{{Type: 1, PID: 0x1200, CodingType: 0x90, Lang: "eng"}}
	item.STN.PiPPG = []testsupport.Stream{{Type: 3, SubPathID: 2, PID: 0x1A20, CodingType: 0x90, Lang: "deu"}}
	item.STN.IG = []testsupport.Stream{{Type: 1, PID: 0x1400, CodingType: 0x91, Lang: "eng"}}
	item.STN.SecondaryAudio = []testsupport.Stream{
		{Type: 2, SubPathID: 1, SubClipID: 3, PID: 0x1A00, CodingType: 0xa1, Format: 3, Rate: 1, Lang: "eng", Refs: []uint8{0}},
		{Type: 2, SubPathID: 1, PID: 0x1A01, CodingType: 0xa2, Format: 3, Rate: 1, Lang: "spa", Refs: []uint8{0, 1, 2}},
	}
	item.STN.SecondaryVideo = []testsupport.Stream{
		{Type: 3, SubPathID: 2, PID: 0x1B00, CodingType: 0x1b, Format: 6, Rate: 1, Refs: []uint8{0, 1}, PiPPGRefs: []uint8{0}},
	}

	pl := mustDecode(t, testsupport.Playlist{PlayItems: []testsupport.PlayItem{item, simpleItem("00002", 0, secs)}}.Build())
	stn := pl.PlayItems[0].STN

	if len(stn.PG) != 1 || len(stn.PiPPG) != 1 || len(stn.IG) != 1 || len(stn.SecondaryAudio) != 2 || len(stn.SecondaryVideo) != 1 {
		t.Fatalf("unexpected counts: %+v", stn)
	}
	if stn.PiPPG[0].Lang() != "deu" || stn.PiPPG[0].SubPathID != 2 || stn.PiPPG[0].EntryType != mpls.EntrySubPathInMux {
		t.Fatalf("unexpected pip pg %+v", stn.PiPPG[0])
	}
	sa := stn.SecondaryAudio
	if sa[0].SubClipID != 3 || string(sa[0].AudioRefs) != "\x00" {
		t.Fatalf("unexpected first secondary audio %+v", sa[0])
	}
	if sa[1].Lang() != "spa" || string(sa[1].AudioRefs) != "\x00\x01\x02" || sa[1].Coding() != streamattr.DTSHDSecondary {
		t.Fatalf("odd padding desynchronised second entry: %+v", sa[1])
	}
	sv := stn.SecondaryVideo[0]
	if string(sv.AudioRefs) != "\x00\x01" || string(sv.PiPPGRefs) != "\x00" || sv.PID != 0x1B00 {
		t.Fatalf("unexpected secondary video %+v", sv)
	}
	if pl.PlayItems[1].Clip().ClipID != "00002" {
		t.Fatal("following play item desynchronised")
	}
}

func TestSubPathsAndMultiClip(t *testing.T) {
	src := testsupport.Playlist{
		PlayItems: []testsupport.PlayItem{simpleItem("00001", 0, secs)},
		SubPaths: []testsupport.SubPath{{
			Type:   mpls.SubPathOutOfMuxSync,
			Repeat: true,
			Items: []testsupport.SubPlayItem{{
				Clip:                testsupport.ClipRef{ClipID: "00010", STCID: 4},
				ConnectionCondition: 5,
				MultiClip:           true,
				InTime:              100,
				OutTime:             200,
				SyncPlayItemID:      1,
				SyncPTS:             12345,
				ExtraClips:          []testsupport.ClipRef{{ClipID: "00011", STCID: 5}},
			}},
		}},
	}
	pl := mustDecode(t, src.Build())
	if len(pl.SubPaths) != 1 {
		t.Fatalf("got %d sub paths", len(pl.SubPaths))
	}
	sp := pl.SubPaths[0]
	if sp.Type != mpls.SubPathOutOfMuxSync || !sp.Repeat || len(sp.Items) != 1 {
		t.Fatalf("unexpected sub path %+v", sp)
	}
	it := sp.Items[0]
	if !it.MultiClip || len(it.Clips) != 2 || it.Clips[1] != (mpls.Clip{ClipID: "00011", CodecID: "M2TS", STCID: 5}) {
		t.Fatalf("unexpected clips %+v", it.Clips)
	}
	if it.Clips[0].STCID != 4 || it.ConnectionCondition != 5 || it.SyncPlayItemID != 1 || it.SyncPTS != 12345 || it.InTime != 100 || it.OutTime != 200 {
		t.Fatalf("unexpected sub play item %+v", it)
	}
}

func TestExtensions(t *testing.T) {
	src := testsupport.Playlist{
		PlayItems: []testsupport.PlayItem{simpleItem("00001", 0, secs)},
		PiP: []testsupport.PiPBlock{
			{ClipRef: 1, TimelineType: 1, LumaKey: true, UpperLimitLumaKey: 16, Data: []testsupport.PiPData{{Time: 100, XPos: 960, YPos: 540, Scale: 2}}},
			{ClipRef: 2, SecondaryVideoRef: 1, TimelineType: 2, TrickPlay: true, Data: []testsupport.PiPData{{Time: 1, XPos: 1, YPos: 2, Scale: 3}, {Time: 2, XPos: 4095, YPos: 4095, Scale: 15}}},
		},
		ExtSubPaths: []testsupport.SubPath{{Type: mpls.SubPathStereoscopicVideo, Items: []testsupport.SubPlayItem{{Clip: testsupport.ClipRef{ClipID: "00020"}, ConnectionCondition: 6}}}},
	}
	pl := mustDecode(t, src.Build())

	if pl.ExtPos == 0 {
		t.Fatal("expected extension offset")
	}
	if len(pl.PiP) != 2 {
		t.Fatalf("got %d pip blocks, want 2", len(pl.PiP))
	}
	first, second := pl.PiP[0], pl.PiP[1]
	if first.ClipRef != 1 || !first.LumaKey || first.UpperLimitLumaKey != 16 || first.TimelineType != 1 {
		t.Fatalf("unexpected first pip block %+v", first)
	}
	if len(first.Data) != 1 || first.Data[0] != (mpls.PiPData{Time: 100, XPos: 960, YPos: 540, Scale: 2}) {
		t.Fatalf("unexpected first pip data %+v", first.Data)
	}
	if second.ClipRef != 2 || second.SecondaryVideoRef != 1 || !second.TrickPlay || second.LumaKey || second.UpperLimitLumaKey != 0 {
		t.Fatalf("unexpected second pip block %+v", second)
	}
	if len(second.Data) != 2 || second.Data[1] != (mpls.PiPData{Time: 2, XPos: 4095, YPos: 4095, Scale: 15}) {
		t.Fatalf("unexpected second pip data %+v", second.Data)
	}
	if len(pl.ExtSubPaths) != 1 || pl.ExtSubPaths[0].Type != mpls.SubPathStereoscopicVideo || pl.ExtSubPaths[0].Items[0].Clips[0].ClipID != "00020" {
		t.Fatalf("unexpected extension sub paths %+v", pl.ExtSubPaths)
	}
}

func TestUnknownExtensionIsSkipped(t *testing.T) {
	src := testsupport.Playlist{
		PlayItems:        []testsupport.PlayItem{simpleItem("00001", 0, secs)},
		ExtSubPaths:      []testsupport.SubPath{{Type: 8, Items: []testsupport.SubPlayItem{{Clip: testsupport.ClipRef{ClipID: "00020"}, ConnectionCondition: 1}}}},
		UnknownExtension: true,
	}
	logger, buf := jsonLogger(t)
	pl := mustDecode(t, src.Build(), mpls.WithLogger(logger))
	if len(pl.ExtSubPaths) != 1 {
		t.Fatalf("known extension lost: %+v", pl.ExtSubPaths)
	}
	if !strings.Contains(buf.String(), `"key":"(9,9)"`) {
		t.Fatalf("expected unknown extension to be logged, got %s", buf.String())
	}
}

func TestBrokenExtensionOffsetIsSoft(t *testing.T) {
	src := testsupport.Playlist{
		PlayItems: []testsupport.PlayItem{simpleItem("00001", 0, secs)},
		PiP:       []testsupport.PiPBlock{{ClipRef: 1, Data: []testsupport.PiPData{{Time: 1}}}},
	}
	data := src.Build()
	// Point ext_pos past the end of the file.
	copy(data[16:20], []byte{0x7f, 0xff, 0xff, 0x00})

	logger, buf := jsonLogger(t)
	pl := mustDecode(t, data, mpls.WithLogger(logger))
	if pl.PiP != nil {
		t.Fatalf("expected no pip payload, got %+v", pl.PiP)
	}
	if len(pl.PlayItems) != 1 {
		t.Fatal("playlist body lost")
	}
	if !strings.Contains(buf.String(), "mpls_extension_failed") {
		t.Fatalf("expected extension warning, got %s", buf.String())
	}
}

func TestSoftAnomaliesAreLoggedNotFatal(t *testing.T) {
	item := simpleItem("00001", 0, secs)
	item.Clip.CodecID = "XXXX"
	item.ConnectionCondition = 2
	logger, buf := jsonLogger(t)

	pl := mustDecode(t, testsupport.Playlist{PlayItems: []testsupport.PlayItem{item}}.Build(), mpls.WithLogger(logger))
	if pl.PlayItems[0].Clip().CodecID != "XXXX" || pl.PlayItems[0].ConnectionCondition != 2 {
		t.Fatalf("raw values must be kept: %+v", pl.PlayItems[0])
	}
	out := buf.String()
	for _, event := range []string{"mpls_codec_unexpected", "mpls_connection_unexpected"} {
		if !strings.Contains(out, event) {
			t.Fatalf("expected %s warning, got %s", event, out)
		}
	}
	if !strings.Contains(out, `"component":"mpls"`) {
		t.Fatalf("expected component tag, got %s", out)
	}
}

func TestDecodeFileBackupFallback(t *testing.T) {
	data := testsupport.Playlist{PlayItems: []testsupport.PlayItem{simpleItem("00001", 0, secs)}}.Build()
	primary := "disc/BDMV/PLAYLIST/00001.mpls"
	backup := "disc/BDMV/BACKUP/PLAYLIST/00001.mpls"

	t.Run("primary absent", func(t *testing.T) {
		fsys := fstest.MapFS{backup: {Data: data}}
		pl, err := mpls.NewDecoder(mpls.WithOpener(bitstream.FSOpener{FS: fsys})).DecodeFile(primary)
		if err != nil {
			t.Fatalf("expected backup decode, got %v", err)
		}
		if pl.PlayItems[0].Clip().ClipID != "00001" {
			t.Fatalf("unexpected playlist %+v", pl)
		}
	})

	t.Run("primary corrupt", func(t *testing.T) {
		fsys := fstest.MapFS{primary: {Data: data[:30]}, backup: {Data: data}}
		if _, err := mpls.NewDecoder(mpls.WithOpener(bitstream.FSOpener{FS: fsys})).DecodeFile(primary); err != nil {
			t.Fatalf("expected backup decode, got %v", err)
		}
	})

	t.Run("both absent", func(t *testing.T) {
		pl, err := mpls.NewDecoder(mpls.WithOpener(bitstream.FSOpener{FS: fstest.MapFS{}})).DecodeFile(primary)
		if !errors.Is(err, fs.ErrNotExist) || pl != nil {
			t.Fatalf("expected not-exist failure, got %v", err)
		}
		if !strings.Contains(err.Error(), primary) {
			t.Fatalf("expected primary path first in %q", err)
		}
	})

	t.Run("retry disabled", func(t *testing.T) {
		fsys := fstest.MapFS{backup: {Data: data}}
		dec := mpls.NewDecoder(mpls.WithOpener(bitstream.FSOpener{FS: fsys}), mpls.WithBackupRetry(false))
		if _, err := dec.DecodeFile(primary); !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("expected failure without retry, got %v", err)
		}
	})
}

func TestDecodeFileRejectsOversized(t *testing.T) {
	data := testsupport.Playlist{PlayItems: []testsupport.PlayItem{simpleItem("00001", 0, secs)}}.Build()
	fsys := fstest.MapFS{"BDMV/PLAYLIST/00001.mpls": {Data: data}}
	dec := mpls.NewDecoder(mpls.WithOpener(bitstream.FSOpener{FS: fsys}), mpls.WithMaxFileBytes(64), mpls.WithBackupRetry(false))
	if _, err := dec.DecodeFile("BDMV/PLAYLIST/00001.mpls"); !errors.Is(err, bitstream.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	src := testsupport.Playlist{
		PlayItems: []testsupport.PlayItem{simpleItem("00001", 0, secs)},
		SubPaths:  []testsupport.SubPath{{Type: 5, Items: []testsupport.SubPlayItem{{Clip: testsupport.ClipRef{ClipID: "00010"}, ConnectionCondition: 1}}}},
		Marks:     []testsupport.Mark{{Type: 1}},
		PiP:       []testsupport.PiPBlock{{ClipRef: 1, Data: []testsupport.PiPData{{Time: 1}}}},
	}
	pl := mustDecode(t, src.Build())
	pl.Release()
	pl.Release()
	if pl.PlayItems != nil || pl.SubPaths != nil || pl.Marks != nil || pl.PiP != nil || pl.ExtSubPaths != nil {
		t.Fatalf("expected all slices released: %+v", pl)
	}
	var nilPlaylist *mpls.Playlist
	nilPlaylist.Release()
}
