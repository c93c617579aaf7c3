package bitstream

import (
	"bytes"
	"errors"
	"testing"
)

func TestReadBitsAcrossByteBoundaries(t *testing.T) {
	r := NewBytesReader([]byte{0b1010_1100, 0b0101_0011, 0xff, 0x00, 0x12, 0x34, 0x56, 0x78})

	if got := r.ReadBits(3); got != 0b101 {
		t.Fatalf("first field: got %b want 101", got)
	}
	if got := r.ReadBits(7); got != 0b0110001 {
		t.Fatalf("second field: got %b want 0110001", got)
	}
	if got := r.ReadBits(6); got != 0b010011 {
		t.Fatalf("third field: got %b want 010011", got)
	}
	if !r.IsAligned(0x07) {
		t.Fatal("expected byte alignment after 16 bits")
	}
	if got := r.ReadBits(16); got != 0xff00 {
		t.Fatalf("u16: got %#x", got)
	}
	if got := r.ReadBits(32); got != 0x12345678 {
		t.Fatalf("u32: got %#x", got)
	}
	if r.Err() != nil {
		t.Fatalf("unexpected error: %v", r.Err())
	}
	if r.Avail() != 0 {
		t.Fatalf("expected no bits left, got %d", r.Avail())
	}
}

func TestReadPastEndIsSticky(t *testing.T) {
	r := NewBytesReader([]byte{0xab})
	r.ReadBits(4)
	if got := r.ReadBits(8); got != 0 {
		t.Fatalf("expected zero on exhausted read, got %#x", got)
	}
	if !errors.Is(r.Err(), ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", r.Err())
	}
	r.SeekByte(0)
	if got := r.ReadBits(4); got != 0 {
		t.Fatalf("reads after failure must return zero, got %#x", got)
	}
}

func TestReadBytesRequiresAlignment(t *testing.T) {
	r := NewBytesReader([]byte("ABCDEF"))
	r.SkipBits(4)
	if b := r.ReadBytes(2); b != nil {
		t.Fatalf("expected nil on unaligned read, got %q", b)
	}
	if !errors.Is(r.Err(), ErrUnaligned) {
		t.Fatalf("expected ErrUnaligned, got %v", r.Err())
	}
}

func TestSeekAndPositions(t *testing.T) {
	data := make([]byte, 3*1024)
	for i := range data {
		data[i] = byte(i)
	}
	r, err := NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	r.SeekByte(2*1024 + 5)
	if got := r.BytePos(); got != 2*1024+5 {
		t.Fatalf("BytePos = %d", got)
	}
	if got := r.ReadBits(8); got != uint32((2*1024+5)&0xff) {
		t.Fatalf("read after seek: got %d", got)
	}
	r.SeekByte(1023)
	if got := r.ReadBits(16); got != uint32(1023&0xff)<<8|uint32(1024&0xff) {
		t.Fatalf("read across seek target: got %#x", got)
	}
	r.SeekByte(0)
	r.SkipBits(12)
	if got := r.BitPos(); got != 12 {
		t.Fatalf("BitPos after skip = %d", got)
	}
	if got := r.ReadBits(4); got != 0x1 {
		t.Fatalf("low nibble of byte 1: got %#x", got)
	}
	r.SeekByte(int64(len(data)) + 1)
	if !errors.Is(r.Err(), ErrExhausted) {
		t.Fatalf("expected seek past end to fail, got %v", r.Err())
	}
}

func TestReadBytesCopiesAfterSeek(t *testing.T) {
	data := []byte("0123456789")
	r := NewBytesReader(data)
	r.SeekByte(6)
	got := r.ReadBytes(3)
	if string(got) != "678" {
		t.Fatalf("got %q want 678", got)
	}
	got[0] = 'x'
	if data[6] != '6' {
		t.Fatal("ReadBytes must not alias the source buffer")
	}
	if b := r.ReadBytes(0); b == nil || len(b) != 0 {
		t.Fatalf("zero-length read: got %v", b)
	}
	if r.ReadBytes(2) != nil || !errors.Is(r.Err(), ErrExhausted) {
		t.Fatalf("expected ErrExhausted past end, got %v", r.Err())
	}
}

func TestRequireBytes(t *testing.T) {
	r := NewBytesReader(make([]byte, 10))
	r.SeekByte(4)
	if err := r.RequireBytes(6, "section"); err != nil {
		t.Fatalf("6 bytes should fit: %v", err)
	}
	if err := r.RequireBytes(7, "section"); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestSectionSeekCorrection(t *testing.T) {
	// length=4, body: one used byte then three reserved bytes, then a marker.
	r := NewBytesReader([]byte{0x00, 0x04, 0xaa, 0x01, 0x02, 0x03, 0x7e})
	s := r.BeginSection(16)
	if got := r.ReadBits(8); got != 0xaa {
		t.Fatalf("body: got %#x", got)
	}
	r.EndSection(s)
	if got := r.ReadBits(8); got != 0x7e {
		t.Fatalf("expected marker after section, got %#x", got)
	}
}

func TestInvalidWidth(t *testing.T) {
	r := NewBytesReader(make([]byte, 8))
	r.ReadBits(33)
	if !errors.Is(r.Err(), ErrWidth) {
		t.Fatalf("expected ErrWidth, got %v", r.Err())
	}
}

func TestResetClearsStickyError(t *testing.T) {
	r := NewBytesReader([]byte{0xAB, 0xCD})
	r.SeekByte(1)
	r.ReadBits(16)
	if r.Err() == nil {
		t.Fatal("expected exhaustion")
	}
	r.Reset(1)
	if r.Err() != nil {
		t.Fatalf("expected error cleared, got %v", r.Err())
	}
	if got := r.ReadBits(8); got != 0xCD {
		t.Fatalf("got %#x want 0xcd", got)
	}
	r.Reset(99)
	if r.BytePos() != 2 {
		t.Fatalf("expected clamp to end, got %d", r.BytePos())
	}
}
