// Package fingerprint computes deterministic fingerprints for BDMV discs and
// their playlists.
//
// Disc fingerprints hash the navigation metadata (index, movie objects,
// playlists and clip information) so two scans of the same disc map to one
// catalog entry without reading any stream files. When a tree has no
// navigation metadata the first 64 KiB of every file is hashed instead.
//
// Title fingerprints hash the parts of a playlist that make two titles
// indistinguishable to a viewer: the clip sequence, the in/out times and the
// chapter count. Discs commonly carry several playlists that differ only in
// their number, and the catalog uses the title fingerprint to fold them.
package fingerprint
