// Package extdata walks the extension-data sections that trail playlist and
// clip-information files.
//
// An extension section is a small directory of (id1, id2, offset, length)
// entries. Walk positions the reader on each entry body in turn and hands it
// to a caller-owned Handler, restoring the cursor afterwards so handlers may
// read as much or as little as they like. Unknown entries are logged and
// skipped; a failing entry never stops the walk.
package extdata
