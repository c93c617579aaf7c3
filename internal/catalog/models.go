package catalog

import (
	"time"
)

// Title is one playable playlist of a disc.
type Title struct {
	Playlist     int           `json:"playlist" yaml:"playlist"`
	Duration     time.Duration `json:"duration" yaml:"duration"`
	Clips        []string      `json:"clips" yaml:"clips"`
	ChapterCount int           `json:"chapters" yaml:"chapters"`
	AngleCount   int           `json:"angles" yaml:"angles"`
	Streams      string        `json:"streams" yaml:"streams"`
	Fingerprint  string        `json:"fingerprint" yaml:"fingerprint"`
}

// SkipReason explains why a decoded playlist is not listed as a title.
type SkipReason string

const (
	SkipTooShort  SkipReason = "too_short"
	SkipDuplicate SkipReason = "duplicate"
)

// Skipped records a decoded playlist that was filtered out.
type Skipped struct {
	Playlist int        `json:"playlist" yaml:"playlist"`
	Reason   SkipReason `json:"reason" yaml:"reason"`
	// DuplicateOf is the playlist kept in place of a duplicate.
	DuplicateOf int `json:"duplicate_of,omitempty" yaml:"duplicate_of,omitempty"`
}

// Failure records a playlist that could not be decoded.
type Failure struct {
	Playlist int    `json:"playlist" yaml:"playlist"`
	Error    string `json:"error" yaml:"error"`
}

// Result is the outcome of one scan.
type Result struct {
	RunID           string    `json:"run_id" yaml:"run_id"`
	DiscRoot        string    `json:"disc_root" yaml:"disc_root"`
	DiscFingerprint string    `json:"disc_fingerprint" yaml:"disc_fingerprint"`
	ScannedAt       time.Time `json:"scanned_at" yaml:"scanned_at"`
	Titles          []Title   `json:"titles" yaml:"titles"`
	Skipped         []Skipped `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Failed          []Failure `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// Run is a stored scan without its titles.
type Run struct {
	ID              string    `json:"id" yaml:"id"`
	DiscRoot        string    `json:"disc_root" yaml:"disc_root"`
	DiscFingerprint string    `json:"disc_fingerprint" yaml:"disc_fingerprint"`
	ScannedAt       time.Time `json:"scanned_at" yaml:"scanned_at"`
	TitleCount      int       `json:"title_count" yaml:"title_count"`
	FailedCount     int       `json:"failed_count" yaml:"failed_count"`
}
