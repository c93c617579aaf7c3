package clpi_test

import (
	"testing"

	"bdnav/internal/clpi"
	"bdnav/internal/testsupport"
)

func sampleMap(t *testing.T) (*clpi.ClipInfo, *clpi.EPMap) {
	t.Helper()
	ci := mustDecode(t, sampleClip().Build())
	m, err := ci.EPMap(videoPID)
	if err != nil {
		t.Fatalf("EPMap: %v", err)
	}
	return ci, m
}

func TestPointForTime(t *testing.T) {
	_, m := sampleMap(t)
	tests := []struct {
		name   string
		pts    uint32
		before int
		after  int
	}{
		{"before first", 0, 0, 0},
		{"first", 0x100, 0, 0},
		{"between buckets", 0x00080300, 2, 3},
		{"inside bucket", 0x00040010, 1, 2},
		{"past last", 0xFFFFFFFF, 6, 6},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before, err := m.PointForTime(tc.pts, clpi.Before)
			if err != nil {
				t.Fatalf("PointForTime before: %v", err)
			}
			after, err := m.PointForTime(tc.pts, clpi.After)
			if err != nil {
				t.Fatalf("PointForTime after: %v", err)
			}
			if before.Index != tc.before || after.Index != tc.after {
				t.Fatalf("got before=%d after=%d, want %d/%d", before.Index, after.Index, tc.before, tc.after)
			}
		})
	}
}

func TestDuplicateTimesResolveToRunEnds(t *testing.T) {
	clip := sampleClip()
	clip.EPMaps = []testsupport.EPMap{{
		PID:        videoPID,
		StreamType: clpi.EPStreamVideo,
		Points: []testsupport.EntryPoint{
			{PTS: 0x00000100, SPN: 100},
			{PTS: 0x00040000, SPN: 200},
			{PTS: 0x00040000, SPN: 300},
			{PTS: 0x00040000, SPN: 400},
			{PTS: 0x00080000, SPN: 500},
		},
		CoarseEvery: 2,
	}}
	ci := mustDecode(t, clip.Build())
	m, err := ci.EPMap(videoPID)
	if err != nil {
		t.Fatalf("EPMap: %v", err)
	}
	tests := []struct {
		name   string
		pts    uint32
		before int
		after  int
	}{
		{"exact duplicate", 0x00040000, 3, 1},
		{"inside duplicate run", 0x00040010, 3, 4},
		{"just before run", 0x0003FF00, 0, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before, err := m.PointForTime(tc.pts, clpi.Before)
			if err != nil {
				t.Fatalf("PointForTime before: %v", err)
			}
			after, err := m.PointForTime(tc.pts, clpi.After)
			if err != nil {
				t.Fatalf("PointForTime after: %v", err)
			}
			if before.Index != tc.before || after.Index != tc.after {
				t.Fatalf("got before=%d after=%d, want %d/%d", before.Index, after.Index, tc.before, tc.after)
			}
		})
	}
}

func TestExactTimeResolvesToSameEntry(t *testing.T) {
	_, m := sampleMap(t)
	for i, p := range m.Points() {
		for _, dir := range []clpi.Direction{clpi.Before, clpi.After} {
			got, err := m.PointForTime(p.PTS, dir)
			if err != nil {
				t.Fatalf("PointForTime: %v", err)
			}
			if got.Index != i {
				t.Fatalf("pts 0x%x %s: got entry %d want %d", p.PTS, dir, got.Index, i)
			}
		}
	}
}

func TestBeforeNeverExceedsAfter(t *testing.T) {
	ci, m := sampleMap(t)
	first, last := m.Point(0).SPN, m.Point(m.Len()-1).SPN
	for pts := uint32(0); pts < 0x00200000; pts += 0x3001 {
		before, err := ci.FindPacketForTime(videoPID, pts, clpi.Before)
		if err != nil {
			t.Fatalf("FindPacketForTime: %v", err)
		}
		after, err := ci.FindPacketForTime(videoPID, pts, clpi.After)
		if err != nil {
			t.Fatalf("FindPacketForTime: %v", err)
		}
		if before > after || before < first || after > last {
			t.Fatalf("pts 0x%x: before=%d after=%d outside [%d,%d] or inverted", pts, before, after, first, last)
		}
	}
}

func TestFindAccessPoint(t *testing.T) {
	ci, _ := sampleMap(t)
	tests := []struct {
		name  string
		spn   uint32
		dir   clpi.Direction
		angle bool
		want  int
	}{
		{"before", 0x20050, clpi.Before, false, 3},
		{"after", 0x20050, clpi.After, false, 4},
		{"exact", 0x20100, clpi.Before, false, 4},
		{"angle after", 0x20050, clpi.After, true, 5},
		{"angle before", 0x20050, clpi.Before, true, 2},
		{"angle fallback", 0x40008, clpi.After, true, 6},
		{"clamp low", 0, clpi.Before, false, 0},
		{"clamp high", 0xFFFFFFFF, clpi.After, false, 6},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ci.FindAccessPoint(videoPID, tc.spn, tc.dir, tc.angle)
			if err != nil {
				t.Fatalf("FindAccessPoint: %v", err)
			}
			if p.Index != tc.want {
				t.Fatalf("got entry %d (%+v), want %d", p.Index, p, tc.want)
			}
			if tc.angle && tc.name != "angle fallback" && !p.AngleChange {
				t.Fatalf("expected an angle change point, got %+v", p)
			}
		})
	}
}

func TestLookupSPN(t *testing.T) {
	ci, _ := sampleMap(t)
	tests := []struct {
		name  string
		pts   uint32
		dir   clpi.Direction
		stcID uint8
		want  uint32
	}{
		{"second stc floor", 0, clpi.Before, 1, 0x20010},
		{"second stc exact", 0x00100000, clpi.After, 1, 0x20100},
		{"first stc ceiling", 0xFFFFFFFF, clpi.After, 0, 300},
		{"first stc between", 0x00050000, clpi.Before, 0, 200},
		{"unknown stc uses whole map", 0xFFFFFFFF, clpi.After, 9, 0x40010},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ci.LookupSPN(tc.pts, tc.dir, tc.stcID); got != tc.want {
				t.Fatalf("LookupSPN = 0x%x, want 0x%x", got, tc.want)
			}
		})
	}
}

func TestLookupSPNWithoutEntryPoints(t *testing.T) {
	ci := &clpi.ClipInfo{Clip: clpi.Attributes{NumSourcePackets: 77}}
	if got := ci.LookupSPN(1000, clpi.Before, 0); got != 0 {
		t.Fatalf("before: got %d want 0", got)
	}
	if got := ci.LookupSPN(1000, clpi.After, 0); got != 77 {
		t.Fatalf("after: got %d want 77", got)
	}
}

func TestPrimaryEPMapPrefersVideo(t *testing.T) {
	ci := &clpi.ClipInfo{CPI: clpi.CPI{EPMaps: []clpi.EPMap{{PID: 0x1100, StreamType: 3}, {PID: 0x1011, StreamType: clpi.EPStreamVideo}}}}
	if m := ci.PrimaryEPMap(); m == nil || m.PID != 0x1011 {
		t.Fatalf("unexpected primary map %+v", m)
	}
}
