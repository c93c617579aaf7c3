package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"bdnav/internal/bdmv"
)

// CheckReadableDir verifies that path is a directory the process can list.
func CheckReadableDir(name, path string) Result {
	if r, ok := statDir(name, path); !ok {
		return r
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckWritableDir verifies that path, or its nearest existing ancestor when
// path has not been created yet, is readable and writable.
func CheckWritableDir(name, path string) Result {
	target := path
	for {
		if _, err := os.Stat(target); err == nil || !errors.Is(err, os.ErrNotExist) {
			break
		}
		parent := filepath.Dir(target)
		if parent == target {
			break
		}
		target = parent
	}
	if r, ok := statDir(name, target); !ok {
		return r
	}
	if err := unix.Access(target, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", target, err)}
	}
	if target != path {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func statDir(name, path string) (Result, bool) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}, false
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}, false
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}, false
	}
	return Result{}, true
}

// CheckDiscLayout verifies the navigation directories of a disc: at least
// one playlist and one clip-information file, and reports whether BACKUP
// copies exist.
func CheckDiscLayout(layout bdmv.Layout) []Result {
	playlists := countFiles(layout.PlaylistDir(), bdmv.ExtPlaylist)
	clips := countFiles(layout.ClipInfoDir(), bdmv.ExtClipInf)
	backup := countFiles(filepath.Join(layout.BDMVDir(), bdmv.DirBackup, bdmv.DirPlaylist), bdmv.ExtPlaylist)

	results := []Result{
		countResult("Playlists", layout.PlaylistDir(), playlists),
		countResult("Clip information", layout.ClipInfoDir(), clips),
	}
	r := Result{Name: "Backup copies", Optional: true}
	if backup > 0 {
		r.Passed = true
		r.Detail = fmt.Sprintf("%d backup playlists", backup)
	} else {
		r.Detail = "no BACKUP playlists (retry on corrupt files unavailable)"
	}
	return append(results, r)
}

func countResult(name, dir string, n int) Result {
	if n <= 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: no files found)", dir)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d files in %s", n, dir)}
}

func countFiles(dir, ext string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ext) {
			n++
		}
	}
	return n
}

// CheckNavigationSizes flags navigation files larger than limit, which the
// decoders would reject. A non-positive limit passes.
func CheckNavigationSizes(layout bdmv.Layout, limit int64) Result {
	const name = "Navigation file sizes"
	if limit <= 0 {
		return Result{Name: name, Passed: true, Detail: "no limit configured"}
	}
	var oversized []string
	for _, dir := range []string{layout.PlaylistDir(), layout.ClipInfoDir()} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			info, err := e.Info()
			if err != nil || e.IsDir() {
				continue
			}
			if info.Size() > limit {
				oversized = append(oversized, e.Name())
			}
		}
	}
	if len(oversized) > 0 {
		return Result{Name: name, Detail: fmt.Sprintf("larger than %d bytes: %s", limit, strings.Join(oversized, ", "))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("all within %d bytes", limit)}
}
