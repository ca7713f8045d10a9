package doc

import (
	"errors"

	"github.com/eka-jashina/flipbook-sub006/internal/binreader"
)

// errNoPieceTable marks a CLX window that never resolves to a usable piece
// table.
var errNoPieceTable = errors.New("doc: no valid piece table")

// CLX marker bytes. Any other value is treated as corruption, not skipped.
const (
	markerFormatRun  = 0x01 // 16-bit length + that many formatting bytes
	markerPieceTable = 0x02 // 32-bit size + the piece table itself
)

// maxFormatRuns caps the marker skip loop; the run lengths are untrusted
// and must not be able to keep the loop alive indefinitely.
const maxFormatRuns = 100000

// pcdSize is the size of one piece descriptor. Together with the extra CP
// boundary, each piece costs 12 bytes of the table structure.
const pcdSize = 8

// fcCompressedFlag marks a piece stored one byte per character; the
// remaining bits, halved, give the true byte offset.
const fcCompressedFlag = 0x40000000

// piece is one descriptor: the logical character range it covers, where its
// bytes live in the main stream, and how wide its characters are.
type piece struct {
	cpStart    uint32
	cpEnd      uint32
	fileOffset uint32
	singleByte bool
}

// parsePieceTable locates and decodes the piece table within the window
// [off, off+length) of the table stream. The window holds a sequence of
// formatting runs to skip, then the piece table: a 32-bit size, n+1 32-bit
// character-position boundaries and n descriptors, in reading order.
func parsePieceTable(table []byte, off, length uint32) ([]piece, error) {
	end := int64(off) + int64(length)
	if end > int64(len(table)) || length == 0 {
		return nil, errNoPieceTable
	}
	s := binreader.NewSpan(table[off:end], int(off))

	pos := 0
	for runs := 0; ; runs++ {
		if runs >= maxFormatRuns {
			return nil, errNoPieceTable
		}
		marker, ok := s.Byte(pos)
		if !ok {
			return nil, errNoPieceTable
		}
		if marker == markerPieceTable {
			pos++
			break
		}
		if marker != markerFormatRun {
			return nil, errNoPieceTable
		}
		skip, ok := s.Uint16(pos + 1)
		if !ok {
			return nil, errNoPieceTable
		}
		pos += 3 + int(skip)
	}

	size, ok := s.Uint32(pos)
	if !ok {
		return nil, errNoPieceTable
	}
	pos += 4
	if size < 4 || (size-4)%(4+pcdSize) != 0 {
		return nil, errNoPieceTable
	}
	n := int(size-4) / (4 + pcdSize)
	if n <= 0 {
		return nil, errNoPieceTable
	}

	cpBase := pos
	pcdBase := pos + (n+1)*4
	if pcdBase+n*pcdSize > s.Len() {
		return nil, errNoPieceTable
	}

	pieces := make([]piece, 0, n)
	for i := 0; i < n; i++ {
		cpStart, _ := s.Uint32(cpBase + i*4)
		cpEnd, _ := s.Uint32(cpBase + (i+1)*4)
		// Descriptor layout: 2 flag bytes, the 32-bit fc field, 2
		// property bytes.
		fc, _ := s.Uint32(pcdBase + i*pcdSize + 2)

		p := piece{cpStart: cpStart, cpEnd: cpEnd}
		if fc&fcCompressedFlag != 0 {
			p.singleByte = true
			p.fileOffset = (fc &^ fcCompressedFlag) >> 1
		} else {
			p.fileOffset = fc
		}
		pieces = append(pieces, p)
	}
	return pieces, nil
}
