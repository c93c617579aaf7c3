package fingerprint_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bdnav/internal/fingerprint"
	"bdnav/internal/mpls"
	"bdnav/internal/testsupport"
)

func samplePlaylist(clip string, out uint32) []byte {
	return testsupport.Playlist{
		PlayItems: []testsupport.PlayItem{{Clip: testsupport.ClipRef{ClipID: clip}, ConnectionCondition: 1, OutTime: out}},
		Marks:     []testsupport.Mark{{Type: 1}},
	}.Build()
}

func TestComputeIsStableAndContentSensitive(t *testing.T) {
	disc := testsupport.Disc{
		Playlists: map[int][]byte{1: samplePlaylist("00001", 45000)},
		Clips:     map[string][]byte{"00001": testsupport.ClipInfo{}.Build()},
		Extra:     map[string][]byte{"BDMV/index.bdmv": []byte("INDX0200")},
	}
	a := testsupport.WriteDisc(t, t.TempDir(), disc)
	b := testsupport.WriteDisc(t, t.TempDir(), disc)

	fpA, err := fingerprint.Compute(context.Background(), a)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	fpB, err := fingerprint.Compute(context.Background(), filepath.Join(b, "BDMV"))
	if err != nil {
		t.Fatalf("Compute via BDMV dir: %v", err)
	}
	if fpA != fpB || len(fpA) != 64 {
		t.Fatalf("expected identical sha256 fingerprints, got %s and %s", fpA, fpB)
	}

	// Stream files are not part of the fingerprint.
	testsupport.WriteFile(t, filepath.Join(b, "BDMV", "STREAM", "00001.m2ts"), 1024)
	if fp, _ := fingerprint.Compute(context.Background(), b); fp != fpA {
		t.Fatal("stream files changed the fingerprint")
	}

	disc.Playlists[2] = samplePlaylist("00002", 90000)
	c := testsupport.WriteDisc(t, t.TempDir(), disc)
	fpC, err := fingerprint.Compute(context.Background(), c)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if fpC == fpA {
		t.Fatal("an added playlist must change the fingerprint")
	}
}

func TestComputeFallsBackToManifest(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "README.txt"), 10)
	fp, err := fingerprint.Compute(context.Background(), root)
	if err != nil || fp == "" {
		t.Fatalf("expected manifest fingerprint, got %q, %v", fp, err)
	}

	empty := t.TempDir()
	if _, err := fingerprint.Compute(context.Background(), empty); !errors.Is(err, fingerprint.ErrNoMetadata) {
		t.Fatalf("expected ErrNoMetadata, got %v", err)
	}
}

func TestComputeRejectsMissingRoot(t *testing.T) {
	if _, err := fingerprint.Compute(context.Background(), filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestComputeHonoursCancellation(t *testing.T) {
	root := testsupport.WriteDisc(t, t.TempDir(), testsupport.Disc{Playlists: map[int][]byte{1: samplePlaylist("00001", 45000)}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fingerprint.Compute(ctx, root); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTitleFingerprint(t *testing.T) {
	decode := func(data []byte) *mpls.Playlist {
		pl, err := mpls.NewDecoder().DecodeBytes(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		return pl
	}
	a := decode(samplePlaylist("00001", 45000))
	b := decode(samplePlaylist("00001", 45000))
	c := decode(samplePlaylist("00001", 90000))
	d := decode(samplePlaylist("00002", 45000))

	if fingerprint.Title(a) != fingerprint.Title(b) {
		t.Fatal("identical playlists must share a fingerprint")
	}
	if fingerprint.Title(a) == fingerprint.Title(c) || fingerprint.Title(a) == fingerprint.Title(d) {
		t.Fatal("different playlists must not share a fingerprint")
	}
	if fingerprint.Title(nil) == "" {
		t.Fatal("nil playlist should still hash")
	}
}
