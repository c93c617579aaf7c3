// Package config loads, normalizes, and validates bdnav configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and resolves the per-user directory context (Dirs) once so the
// catalog, logging and CLI layers never consult XDG environment variables on
// their own.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
