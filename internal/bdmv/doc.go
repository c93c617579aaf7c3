// Package bdmv knows the on-disc directory layout of a BDMV tree and
// implements the backup retry used by the playlist and clip decoders.
//
// Every navigation file under BDMV has a mirror under BDMV/BACKUP. When the
// primary copy cannot be decoded, WithBackup derives the mirror path and
// tries once more, keeping the primary failure as the reported cause.
package bdmv
