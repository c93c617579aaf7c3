// Package main hosts the bdnav CLI entrypoint and command graph.
//
// The Cobra-based command tree exposes the navigation decoders directly:
// playlist and clip-information dumps, entry-point seeks, title
// enumeration with an optional SQLite catalog, disc preflight checks and
// configuration scaffolding. Every read command renders tables for
// terminals and JSON or YAML for scripts.
//
// Keep this package lean: decoding and persistence live in internal
// packages; commands here only resolve configuration, call them and render.
package main
