package testsupport

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes size bytes of filler to path, creating parent
// directories. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x47}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Disc describes a synthetic disc tree. Keys of Playlists are playlist
// numbers; keys of Clips are 5-character clip ids. Backup entries are
// written below BDMV/BACKUP only.
type Disc struct {
	Playlists       map[int][]byte
	Clips           map[string][]byte
	BackupPlaylists map[int][]byte
	// Extra maps disc-root relative paths to raw contents.
	Extra map[string][]byte
}

// WriteDisc lays d out below root and returns root.
func WriteDisc(t testing.TB, root string, d Disc) string {
	t.Helper()

	write := func(rel string, data []byte) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", path, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	for n, data := range d.Playlists {
		write(fmt.Sprintf("BDMV/PLAYLIST/%05d.mpls", n), data)
	}
	for n, data := range d.BackupPlaylists {
		write(fmt.Sprintf("BDMV/BACKUP/PLAYLIST/%05d.mpls", n), data)
	}
	for id, data := range d.Clips {
		write("BDMV/CLIPINF/"+id+".clpi", data)
	}
	for rel, data := range d.Extra {
		write(rel, data)
	}
	return root
}
