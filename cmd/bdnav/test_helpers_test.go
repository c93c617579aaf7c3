package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bdnav/internal/testsupport"
)

const secs = 45000

type cliTestEnv struct {
	baseDir    string
	discRoot   string
	configPath string
	catalogDir string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(homeDir, ".config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(homeDir, ".cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(homeDir, ".local", "share"))

	env := &cliTestEnv{
		baseDir:    base,
		discRoot:   writeTestDisc(t, filepath.Join(base, "disc")),
		configPath: filepath.Join(base, "bdnav.toml"),
		catalogDir: filepath.Join(base, "catalog"),
	}
	content := fmt.Sprintf(
		"[paths]\ndisc_root = %q\ncatalog_dir = %q\nlog_dir = %q\n\n[logging]\nlevel = \"error\"\n",
		env.discRoot,
		env.catalogDir,
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func featurePlaylist(clip string, seconds uint32) testsupport.Playlist {
	return testsupport.Playlist{
		PlaybackType: 1,
		PlayItems: []testsupport.PlayItem{{
			Clip:                testsupport.ClipRef{ClipID: clip},
			ConnectionCondition: 1,
			InTime:              0,
			OutTime:             seconds * secs,
			STN: testsupport.STN{
				Video: []testsupport.Stream{{Type: 1, PID: 0x1011, CodingType: 0x1b, Format: 6, Rate: 1}},
				Audio: []testsupport.Stream{{Type: 1, PID: 0x1100, CodingType: 0x80, Format: 6, Rate: 1, Lang: "eng"}},
				PG:    []testsupport.Stream{{Type: 1, PID: 0x1200, CodingType: 0x90, Lang: "fra"}},
			},
		}},
		Marks: []testsupport.Mark{
			{Type: 1, PlayItemRef: 0, Time: 0},
			{Type: 1, PlayItemRef: 0, Time: 60 * secs},
		},
	}
}

// sampleClip carries one video entry-point map spanning two STC sequences.
func sampleClip() testsupport.ClipInfo {
	return testsupport.ClipInfo{
		StreamType:       1,
		ApplicationType:  1,
		RecordingRate:    48000000,
		NumSourcePackets: 0x50000,
		TSValidity:       0x80,
		TSFormatID:       "HDMV",
		ATCSeqs: []testsupport.ATCSeq{{
			STC: []testsupport.STCSeq{
				{PCRPID: 0x1001, SPNSTCStart: 0, Start: 0x100, End: 0x000C0000},
				{PCRPID: 0x1001, SPNSTCStart: 0x20000, Start: 0x000C0000, End: 0x00200000},
			},
		}},
		Programs: []testsupport.Program{{
			PMTPID: 0x0100,
			Streams: []testsupport.ProgramStream{
				{PID: 0x1011, CodingType: 0x1b, Format: 6, Rate: 1, Aspect: 3},
				{PID: 0x1100, CodingType: 0x86, Format: 6, Rate: 1, Lang: "eng"},
			},
		}},
		EPMaps: []testsupport.EPMap{{
			PID:        0x1011,
			StreamType: 1,
			Points: []testsupport.EntryPoint{
				{PTS: 0x00000100, SPN: 100},
				{PTS: 0x00040000, SPN: 200},
				{PTS: 0x00080200, SPN: 300, AngleChange: true},
				{PTS: 0x000C0000, SPN: 0x20010},
				{PTS: 0x00100000, SPN: 0x20100},
				{PTS: 0x00140000, SPN: 0x40000, AngleChange: true, EndPositionOffset: 3},
				{PTS: 0x00180000, SPN: 0x40010},
			},
		}},
	}
}

func writeTestDisc(t *testing.T, root string) string {
	t.Helper()
	return testsupport.WriteDisc(t, root, testsupport.Disc{
		Playlists: map[int][]byte{
			1: featurePlaylist("00001", 600).Build(),
			2: featurePlaylist("00001", 600).Build(),
			3: featurePlaylist("00002", 20).Build(),
		},
		Clips: map[string][]byte{
			"00001": sampleClip().Build(),
			"00002": sampleClip().Build(),
		},
	})
}

func playlistPath(env *cliTestEnv, n int) string {
	return filepath.Join(env.discRoot, "BDMV", "PLAYLIST", fmt.Sprintf("%05d.mpls", n))
}

func clipPath(env *cliTestEnv, id string) string {
	return filepath.Join(env.discRoot, "BDMV", "CLIPINF", id+".clpi")
}
