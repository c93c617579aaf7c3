package testsupport

import (
	"fmt"

	"github.com/q191201771/naza/pkg/nazabits"
)

// BitWriter records big-endian bit fields and renders them with nazabits
// when Bytes is called. It is the mirror image of bitstream.Reader and
// exists so tests can describe navigation files field by field.
type BitWriter struct {
	fields  []field
	nbits   int
	patches []patch
}

type field struct {
	n uint
	v uint64
}

type patch struct {
	off  int
	bits uint
	v    uint64
}

// Bits appends the low n bits of v, most significant bit first.
func (w *BitWriter) Bits(n uint, v uint64) *BitWriter {
	if n == 0 {
		return w
	}
	if n < 64 {
		v &= 1<<n - 1
	}
	w.fields = append(w.fields, field{n: n, v: v})
	w.nbits += int(n)
	return w
}

// U8 appends an 8-bit field.
func (w *BitWriter) U8(v uint8) *BitWriter { return w.Bits(8, uint64(v)) }

// U16 appends a 16-bit field.
func (w *BitWriter) U16(v uint16) *BitWriter { return w.Bits(16, uint64(v)) }

// U32 appends a 32-bit field.
func (w *BitWriter) U32(v uint32) *BitWriter { return w.Bits(32, uint64(v)) }

// Flag appends a single bit.
func (w *BitWriter) Flag(v bool) *BitWriter {
	if v {
		return w.Bits(1, 1)
	}
	return w.Bits(1, 0)
}

// Raw appends bytes; the writer must be byte aligned.
func (w *BitWriter) Raw(b []byte) *BitWriter {
	w.mustAlign()
	for _, c := range b {
		w.Bits(8, uint64(c))
	}
	return w
}

// Text appends s padded or cut to exactly n bytes.
func (w *BitWriter) Text(s string, n int) *BitWriter {
	b := make([]byte, n)
	copy(b, s)
	return w.Raw(b)
}

// Zero appends n zero bytes.
func (w *BitWriter) Zero(n int) *BitWriter {
	return w.Raw(make([]byte, n))
}

// Len returns the number of whole bytes written.
func (w *BitWriter) Len() int {
	return (w.nbits + 7) / 8
}

// Mark reserves a length field of lengthBits (16 or 32 or 8) and returns its
// byte offset for a later Close.
func (w *BitWriter) Mark(lengthBits uint) int {
	w.mustAlign()
	off := w.Len()
	w.Bits(lengthBits, 0)
	return off
}

// Close patches the length field reserved at off with the number of bytes
// written since the field, plus extra (which may be negative or positive to
// fabricate inconsistent lengths).
func (w *BitWriter) Close(off int, lengthBits uint, extra int) {
	w.mustAlign()
	body := w.Len() - off - int(lengthBits/8) + extra
	w.Patch(off, lengthBits, uint64(body))
}

// Patch overwrites a byte-aligned field at off once the buffer is rendered.
// Later patches to the same offset win.
func (w *BitWriter) Patch(off int, bits uint, v uint64) {
	w.patches = append(w.patches, patch{off: off, bits: bits, v: v})
}

// Bytes renders the recorded fields into a fresh buffer.
func (w *BitWriter) Bytes() []byte {
	out := make([]byte, w.Len())
	bw := nazabits.NewBitWriter(out)
	for _, f := range w.fields {
		bw.WriteBits(f.n, f.v)
	}
	for _, p := range w.patches {
		for i := 0; i < int(p.bits/8); i++ {
			out[p.off+i] = byte(p.v >> (p.bits - 8*uint(i+1)))
		}
	}
	return out
}

func (w *BitWriter) mustAlign() {
	if w.nbits%8 != 0 {
		panic(fmt.Sprintf("testsupport: writer not byte aligned at bit %d", w.nbits))
	}
}
