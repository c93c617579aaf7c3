package catalog_test

import (
	"testing"

	"bdnav/internal/testsupport"
)

const secs = 45000

func feature(clip string, seconds uint32) testsupport.Playlist {
	return testsupport.Playlist{
		PlaybackType: 1,
		PlayItems: []testsupport.PlayItem{{
			Clip:                testsupport.ClipRef{ClipID: clip},
			ConnectionCondition: 1,
			InTime:              0,
			OutTime:             seconds * secs,
			STN: testsupport.STN{
				Video: []testsupport.Stream{{Type: 1, PID: 0x1011, CodingType: 0x1b, Format: 6, Rate: 1}},
				Audio: []testsupport.Stream{
					{Type: 1, PID: 0x1100, CodingType: 0x80, Format: 6, Rate: 1, Lang: "eng"},
					{Type: 1, PID: 0x1101, CodingType: 0x80, Format: 6, Rate: 1, Lang: "fra"},
					{Type: 1, PID: 0x1102, CodingType: 0x80, Format: 6, Rate: 1, Lang: "eng"},
				},
			},
		}},
		Marks: []testsupport.Mark{
			{Type: 1, PlayItemRef: 0, Time: 0},
			{Type: 1, PlayItemRef: 0, Time: 60 * secs},
		},
	}
}

// writeSampleDisc lays out four playlists: a feature (1), its duplicate (2),
// a 30 second clip (3) and an unreadable file (4).
func writeSampleDisc(t *testing.T) string {
	t.Helper()
	return testsupport.WriteDisc(t, t.TempDir(), testsupport.Disc{
		Playlists: map[int][]byte{
			1: feature("00001", 600).Build(),
			2: feature("00001", 600).Build(),
			3: feature("00002", 30).Build(),
			4: []byte("not a playlist"),
		},
		Clips: map[string][]byte{
			"00001": testsupport.ClipInfo{}.Build(),
			"00002": testsupport.ClipInfo{}.Build(),
		},
	})
}
