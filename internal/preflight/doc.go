// Package preflight checks that a disc tree and the bdnav working
// directories are usable before a scan.
//
// The "bdnav check" command prints every result. The titles command runs
// the same checks and refuses to scan when a required one fails. Optional
// checks (such as the presence of BACKUP copies) only inform.
package preflight
