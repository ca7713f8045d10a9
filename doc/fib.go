package doc

import (
	"errors"

	"github.com/eka-jashina/flipbook-sub006/internal/binreader"
)

// errNoFIB marks a main stream whose header cannot be trusted; the caller
// abandons structured parsing entirely rather than work from partial fields.
var errNoFIB = errors.New("doc: no valid file information block")

// fibMagic is the wIdent value at offset 0 of every Word binary document.
const fibMagic = 0xA5EC

const (
	// fibBaseLen is the fixed-size FIB base; the counted sections follow it.
	fibBaseLen = 32
	// ccpTextIndex is the position of the body character count within the
	// 32-bit counted section.
	ccpTextIndex = 3
	// clxPairIndex is the position of the fcClx/lcbClx pair within the
	// trailing offset/length array.
	clxPairIndex = 33
	// minFIBLen covers the base plus the section counts.
	minFIBLen = 68
)

// fib holds the four header fields the extractor needs: which table stream
// is live, the logical length of the body, and the piece-table window inside
// the table stream.
type fib struct {
	tableName string
	ccpText   uint32
	fcClx     uint32
	lcbClx    uint32
}

// parseFIB reads the File Information Block at the start of the main stream.
// The layout after the fixed base is three counted sections: a 16-bit count
// of 16-bit words, a 16-bit count of 32-bit words, then a 16-bit count of
// 8-byte offset/length pairs. Any structural inconsistency yields errNoFIB.
func parseFIB(wordDoc []byte) (fib, error) {
	s := binreader.NewSpan(wordDoc, 0)
	if s.Len() < minFIBLen {
		return fib{}, errNoFIB
	}
	magic, _ := s.Uint16(0x00)
	if magic != fibMagic {
		return fib{}, errNoFIB
	}

	// Bit 9 of the flags word selects which table stream holds the CLX.
	flags, _ := s.Uint16(0x0A)
	name := "0Table"
	if flags&0x0200 != 0 {
		name = "1Table"
	}

	off := fibBaseLen
	csw, ok := s.Uint16(off)
	if !ok {
		return fib{}, errNoFIB
	}
	off += 2 + int(csw)*2

	cslw, ok := s.Uint16(off)
	if !ok || int(cslw) <= ccpTextIndex {
		return fib{}, errNoFIB
	}
	off += 2
	ccpText, ok := s.Uint32(off + ccpTextIndex*4)
	if !ok {
		return fib{}, errNoFIB
	}
	off += int(cslw) * 4

	cbRgFcLcb, ok := s.Uint16(off)
	if !ok || int(cbRgFcLcb) <= clxPairIndex {
		return fib{}, errNoFIB
	}
	off += 2
	fcClx, ok1 := s.Uint32(off + clxPairIndex*8)
	lcbClx, ok2 := s.Uint32(off + clxPairIndex*8 + 4)
	if !ok1 || !ok2 || lcbClx == 0 {
		return fib{}, errNoFIB
	}

	return fib{
		tableName: name,
		ccpText:   ccpText,
		fcClx:     fcClx,
		lcbClx:    lcbClx,
	}, nil
}
