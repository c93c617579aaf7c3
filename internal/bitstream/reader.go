package bitstream

import (
	"errors"
	"fmt"
	"io"

	"github.com/q191201771/naza/pkg/nazabits"
)

var (
	// ErrExhausted reports a read or seek beyond the end of the stream.
	ErrExhausted = errors.New("stream exhausted")
	// ErrTruncated reports a section whose declared length exceeds the bytes
	// remaining in the file.
	ErrTruncated = errors.New("truncated section")
	// ErrUnaligned reports a byte copy attempted off a byte boundary.
	ErrUnaligned = errors.New("cursor not byte aligned")
	// ErrWidth reports a field width outside 1..32 bits.
	ErrWidth = errors.New("invalid field width")
)

// Reader is a big-endian bit cursor over a navigation file held in memory.
// Field extraction is delegated to nazabits; the Reader adds absolute byte
// seeks, a latched first error and section bookkeeping on top of it.
type Reader struct {
	data []byte
	br   nazabits.BitReader
	pos  int64 // bits
	err  error
}

// NewReader loads src in full. src must not be modified while the Reader is
// in use.
func NewReader(src io.ReadSeeker) (*Reader, error) {
	size, err := streamSize(src)
	if err != nil {
		return nil, err
	}
	return load(src, size)
}

// NewBytesReader returns a Reader over an in-memory buffer. The buffer is
// not copied.
func NewBytesReader(data []byte) *Reader {
	return &Reader{data: data, br: nazabits.NewBitReader(data)}
}

func streamSize(src io.ReadSeeker) (int64, error) {
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("determine stream size: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewind stream: %w", err)
	}
	return size, nil
}

func load(src io.Reader, size int64) (*Reader, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(src, data); err != nil {
		return nil, fmt.Errorf("%w: read %d bytes: %w", ErrExhausted, size, err)
	}
	return NewBytesReader(data), nil
}

// Err returns the first error encountered by the cursor, if any.
func (r *Reader) Err() error {
	return r.err
}

// Fail latches err unless an earlier error is already recorded. Decoders use
// it to stop a parse for structural reasons of their own.
func (r *Reader) Fail(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Size returns the stream length in bytes.
func (r *Reader) Size() int64 {
	return int64(len(r.data))
}

// BitPos returns the absolute cursor position in bits.
func (r *Reader) BitPos() int64 {
	return r.pos
}

// BytePos returns the absolute cursor position in whole bytes.
func (r *Reader) BytePos() int64 {
	return r.pos >> 3
}

// Avail returns the number of unread bits.
func (r *Reader) Avail() int64 {
	return r.Size()*8 - r.pos
}

// IsAligned reports whether the bit position has every bit of mask clear.
// A mask of 0x07 checks byte alignment. Decoders log misalignment and carry
// on, since some discs in the wild are slightly malformed.
func (r *Reader) IsAligned(mask int64) bool {
	return r.pos&mask == 0
}

// ReadBits returns the next n bits (1..32) as an unsigned value.
func (r *Reader) ReadBits(n uint) uint32 {
	if r.err != nil {
		return 0
	}
	if n == 0 || n > 32 {
		r.err = fmt.Errorf("%w: %d bits", ErrWidth, n)
		return 0
	}
	if r.Avail() < int64(n) {
		r.err = fmt.Errorf("%w: need %d bits at bit %d, %d available", ErrExhausted, n, r.pos, r.Avail())
		return 0
	}
	v, err := r.br.ReadBits32(n)
	if err != nil {
		r.latch(err, "read %d bits", n)
		return 0
	}
	r.pos += int64(n)
	return v
}

// ReadBool reads a single-bit flag.
func (r *Reader) ReadBool() bool {
	return r.ReadBits(1) == 1
}

// SkipBits advances the cursor by n bits without materializing a value.
func (r *Reader) SkipBits(n int64) {
	if r.err != nil {
		return
	}
	if n < 0 || r.Avail() < n {
		r.err = fmt.Errorf("%w: skip %d bits at bit %d, %d available", ErrExhausted, n, r.pos, r.Avail())
		return
	}
	if n == 0 {
		return
	}
	if err := r.br.SkipBits(uint(n)); err != nil {
		r.latch(err, "skip %d bits", n)
		return
	}
	r.pos += n
}

// ReadBytes copies the next n bytes. The cursor must be byte aligned.
func (r *Reader) ReadBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos&7 != 0 {
		r.err = fmt.Errorf("%w: read %d bytes at bit %d", ErrUnaligned, n, r.pos)
		return nil
	}
	if n < 0 || r.Avail() < int64(n)*8 {
		r.err = fmt.Errorf("%w: need %d bytes at byte %d", ErrExhausted, n, r.pos>>3)
		return nil
	}
	out := make([]byte, n)
	if n == 0 {
		return out
	}
	b, err := r.br.ReadBytes(uint(n))
	if err != nil {
		r.latch(err, "read %d bytes", n)
		return nil
	}
	copy(out, b)
	r.pos += int64(n) * 8
	return out
}

// ReadString reads n bytes as a string. Trailing NUL padding is kept so the
// caller sees exactly what the file holds.
func (r *Reader) ReadString(n int) string {
	return string(r.ReadBytes(n))
}

// SeekByte moves the cursor to an absolute byte offset. Offsets past the end
// of the stream fail with ErrExhausted.
func (r *Reader) SeekByte(offset int64) {
	if r.err != nil {
		return
	}
	if offset < 0 || offset > r.Size() {
		r.err = fmt.Errorf("%w: seek to byte %d of %d", ErrExhausted, offset, r.Size())
		return
	}
	r.moveTo(offset)
}

// Reset clears any latched error and moves the cursor to byte offset, which
// is clamped to the stream bounds. Callers use it to abandon an optional
// structure without failing the enclosing parse.
func (r *Reader) Reset(offset int64) {
	r.err = nil
	r.moveTo(max(0, min(offset, r.Size())))
}

// RequireBytes fails with ErrTruncated when fewer than n bytes remain after
// the cursor. what names the section for the error message.
func (r *Reader) RequireBytes(n int64, what string) error {
	if r.err != nil {
		return r.err
	}
	if r.Avail() < n*8 {
		r.err = fmt.Errorf("%w: %s declares %d bytes at offset %d, %d remain", ErrTruncated, what, n, r.pos>>3, r.Avail()/8)
	}
	return r.err
}

// moveTo restarts the underlying bit reader at a byte boundary.
func (r *Reader) moveTo(offset int64) {
	r.br = nazabits.NewBitReader(r.data[offset:])
	r.pos = offset * 8
}

func (r *Reader) latch(err error, format string, args ...any) {
	r.err = fmt.Errorf("%w: %s at bit %d: %w", ErrExhausted, fmt.Sprintf(format, args...), r.pos, err)
}
