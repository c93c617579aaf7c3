package bdmv

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	DirBDMV     = "BDMV"
	DirPlaylist = "PLAYLIST"
	DirClipInf  = "CLIPINF"
	DirStream   = "STREAM"
	DirBackup   = "BACKUP"

	ExtPlaylist = ".mpls"
	ExtClipInf  = ".clpi"
	ExtStream   = ".m2ts"
)

// Layout resolves navigation file paths under a disc root (the directory
// holding BDMV).
type Layout struct {
	Root string
}

// NewLayout accepts either the disc root or its BDMV directory.
func NewLayout(root string) Layout {
	cleaned := filepath.Clean(root)
	if strings.EqualFold(filepath.Base(cleaned), DirBDMV) {
		cleaned = filepath.Dir(cleaned)
	}
	return Layout{Root: cleaned}
}

// BDMVDir returns <root>/BDMV.
func (l Layout) BDMVDir() string {
	return filepath.Join(l.Root, DirBDMV)
}

// PlaylistDir returns <root>/BDMV/PLAYLIST.
func (l Layout) PlaylistDir() string {
	return filepath.Join(l.BDMVDir(), DirPlaylist)
}

// ClipInfoDir returns <root>/BDMV/CLIPINF.
func (l Layout) ClipInfoDir() string {
	return filepath.Join(l.BDMVDir(), DirClipInf)
}

// PlaylistPath returns the path of playlist number n (00000.mpls style).
func (l Layout) PlaylistPath(n int) string {
	return filepath.Join(l.PlaylistDir(), fmt.Sprintf("%05d%s", n, ExtPlaylist))
}

// ClipInfoPath returns the clip-information path for a 5-character clip id.
func (l Layout) ClipInfoPath(clipID string) string {
	return filepath.Join(l.ClipInfoDir(), clipID+ExtClipInf)
}

// StreamPath returns the transport stream path for a clip id.
func (l Layout) StreamPath(clipID string) string {
	return filepath.Join(l.BDMVDir(), DirStream, clipID+ExtStream)
}

// BackupPath maps .../BDMV/<DIR>/<file> to .../BDMV/BACKUP/<DIR>/<file>.
// Paths with fewer than two components, or already inside BACKUP, are
// returned with ok == false.
func BackupPath(path string) (string, bool) {
	cleaned := filepath.Clean(path)
	file := filepath.Base(cleaned)
	dir := filepath.Dir(cleaned)
	section := filepath.Base(dir)
	parent := filepath.Dir(dir)
	if file == "." || file == string(filepath.Separator) || dir == "." || section == string(filepath.Separator) {
		return "", false
	}
	if strings.EqualFold(filepath.Base(parent), DirBackup) {
		return "", false
	}
	return filepath.Join(parent, DirBackup, section, file), true
}

// PlaylistNumber parses "00042.mpls" into 42.
func PlaylistNumber(name string) (int, bool) {
	base := filepath.Base(name)
	if !strings.EqualFold(filepath.Ext(base), ExtPlaylist) {
		return 0, false
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if len(stem) != 5 {
		return 0, false
	}
	n := 0
	for _, c := range stem {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
