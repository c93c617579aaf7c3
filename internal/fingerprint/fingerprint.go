package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"bdnav/internal/bdmv"
)

// ErrNoMetadata reports a tree without any file to fingerprint.
var ErrNoMetadata = errors.New("expected metadata files missing")

// manifestBytes caps how much of each file the fallback manifest hashes.
const manifestBytes = 64 * 1024

// Compute returns a deterministic fingerprint for the disc tree at root.
// root may point at the disc root or at its BDMV directory.
func Compute(ctx context.Context, root string) (string, error) {
	layout := bdmv.NewLayout(root)
	info, err := os.Stat(layout.Root)
	if err != nil {
		return "", fmt.Errorf("stat disc root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("disc root %q is not a directory", layout.Root)
	}
	return computeFS(ctx, os.DirFS(layout.Root))
}

func computeFS(ctx context.Context, fsys fs.FS) (string, error) {
	if files := navigationFiles(fsys); len(files) > 0 {
		return hashFiles(ctx, fsys, files, 0)
	}
	files, err := allFiles(fsys)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", ErrNoMetadata
	}
	return hashFiles(ctx, fsys, files, manifestBytes)
}

// navigationFiles lists the index, movie object, playlist and clip
// information files. Stream files and BACKUP copies are left out so a
// partially ripped tree fingerprints the same as the disc.
func navigationFiles(fsys fs.FS) []string {
	var files []string
	for _, name := range []string{"index.bdmv", "MovieObject.bdmv"} {
		p := path.Join(bdmv.DirBDMV, name)
		if info, err := fs.Stat(fsys, p); err == nil && info.Mode().IsRegular() {
			files = append(files, p)
		}
	}
	files = append(files, withSuffix(fsys, path.Join(bdmv.DirBDMV, bdmv.DirPlaylist), bdmv.ExtPlaylist)...)
	files = append(files, withSuffix(fsys, path.Join(bdmv.DirBDMV, bdmv.DirClipInf), bdmv.ExtClipInf)...)
	sort.Strings(files)
	return files
}

func withSuffix(fsys fs.FS, dir, suffix string) []string {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(strings.ToLower(entry.Name()), suffix) {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}
	return files
}

func allFiles(fsys fs.FS) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// hashFiles feeds each file's name, size and content (or its first limit
// bytes when limit > 0) into one sha256, NUL separated.
func hashFiles(ctx context.Context, fsys fs.FS, files []string, limit int64) (string, error) {
	h := sha256.New()
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		f, err := fsys.Open(name)
		if err != nil {
			return "", fmt.Errorf("open %s: %w", name, err)
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return "", fmt.Errorf("stat %s: %w", name, err)
		}
		writeComponent(h, name)
		writeComponent(h, strconv.FormatInt(info.Size(), 10))

		var r io.Reader = f
		if limit > 0 {
			r = io.LimitReader(f, limit)
		}
		_, err = io.Copy(h, r)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", name, err)
		}
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
