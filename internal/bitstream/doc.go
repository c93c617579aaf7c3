// Package bitstream provides the bit-level cursor every navigation decoder
// reads through.
//
// A Reader loads a navigation file into memory and hands out big-endian
// fields of 1 to 32 bits, byte copies, and absolute byte seeks. Field
// extraction runs on nazabits. Errors are sticky: the first
// failed read or seek is latched, later calls become no-ops returning zero,
// and callers check Err at structure boundaries. Reads past end of stream
// report ErrExhausted instead of fabricating data.
//
// The package also defines the file-access collaborator (Opener and File)
// so decoders can be pointed at the OS filesystem, an fs.FS, or an
// in-memory buffer.
package bitstream
