// Package binreader provides bounds-checked little-endian reads over a byte
// region. All parsing of untrusted binary structures in this module goes
// through a Span so that a truncated or hostile buffer surfaces as a failed
// read rather than a panic or a silently wrapped offset.
package binreader

import "encoding/binary"

// Span is a read-only view over a region of a larger buffer. Base records
// where the region starts in the enclosing buffer; it is carried for callers
// that need to translate span-relative offsets back to absolute ones.
type Span struct {
	data []byte
	base int
}

// NewSpan returns a Span over data with the given base offset.
func NewSpan(data []byte, base int) Span {
	return Span{data: data, base: base}
}

// Len returns the length of the spanned region.
func (s Span) Len() int { return len(s.data) }

// Base returns the offset of the span within its enclosing buffer.
func (s Span) Base() int { return s.base }

// Bytes returns n bytes starting at off, or false if the range does not lie
// entirely within the span.
func (s Span) Bytes(off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off+n > len(s.data) || off+n < off {
		return nil, false
	}
	return s.data[off : off+n], true
}

// Byte reads the single byte at off.
func (s Span) Byte(off int) (byte, bool) {
	if off < 0 || off >= len(s.data) {
		return 0, false
	}
	return s.data[off], true
}

// Uint16 reads a little-endian 16-bit value at off.
func (s Span) Uint16(off int) (uint16, bool) {
	b, ok := s.Bytes(off, 2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b), true
}

// Uint32 reads a little-endian 32-bit value at off.
func (s Span) Uint32(off int) (uint32, bool) {
	b, ok := s.Bytes(off, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}
