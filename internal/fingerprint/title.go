package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strconv"

	"bdnav/internal/mpls"
)

// Title returns a fingerprint of the viewer-visible shape of a playlist:
// every play item's clip and in/out times plus the chapter count. Playlists
// with equal fingerprints play the same content. The playlist number is
// intentionally excluded.
func Title(pl *mpls.Playlist) string {
	hasher := sha256.New()
	if pl == nil {
		return hex.EncodeToString(hasher.Sum(nil))
	}
	writeComponent(hasher, strconv.Itoa(len(pl.PlayItems)))
	for _, pi := range pl.PlayItems {
		writeComponent(hasher, pi.Clip().ClipID)
		writeComponent(hasher, strconv.FormatUint(uint64(pi.InTime), 10))
		writeComponent(hasher, strconv.FormatUint(uint64(pi.OutTime), 10))
	}
	writeComponent(hasher, strconv.Itoa(len(pl.Chapters())))
	return hex.EncodeToString(hasher.Sum(nil))
}

func writeComponent(w io.Writer, value string) {
	_, _ = w.Write([]byte(value))
	_, _ = w.Write([]byte{0})
}
