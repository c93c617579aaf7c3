package bitstream

// Section marks a length-prefixed structure: Start is the byte offset right
// after the length field and Length the declared body size in bytes.
type Section struct {
	Start  int64
	Length int64
}

// End returns the byte offset just past the section body.
func (s Section) End() int64 {
	return s.Start + s.Length
}

// BeginSection reads a lengthBits-wide length field and records where the
// body starts.
func (r *Reader) BeginSection(lengthBits uint) Section {
	length := r.ReadBits(lengthBits)
	return Section{Start: r.BytePos(), Length: int64(length)}
}

// EndSection repositions the cursor at the declared end of s, discarding any
// trailing fields the caller did not consume and undoing any over-read.
func (r *Reader) EndSection(s Section) {
	r.SeekByte(s.End())
}
