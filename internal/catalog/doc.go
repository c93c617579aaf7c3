// Package catalog enumerates the titles of a disc and persists scan results
// in SQLite.
//
// Scanner decodes every playlist below BDMV/PLAYLIST concurrently, retrying
// BACKUP copies when the decoder is configured to. It drops titles shorter
// than the configured minimum and playlists that duplicate an earlier one
// (same clips, same in/out times, same chapter count). Unreadable playlists
// are reported, not fatal.
//
// Store keeps one row per scan run keyed by a UUID, plus one row per title.
// Runs are tagged with the disc fingerprint so repeated scans of the same
// disc can be listed without decoding again. Writes take an advisory file
// lock next to the database so concurrent bdnav processes serialise. Schema
// changes bump schemaVersion in schema.go; users delete the database to
// adopt the new schema.
package catalog
