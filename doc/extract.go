package doc

import (
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/eka-jashina/flipbook-sub006/internal/binreader"
)

// decodePieces walks the pieces in table order — character ranges are not
// guaranteed to correspond to ascending byte offsets, so reordering would
// scramble the reading order — and decodes each one against the main
// stream. Decoding stops once total characters have been produced: trailing
// pieces cover end-of-document markers beyond the body. A piece reaching
// past the end of the stream truncates extraction with whatever was decoded
// so far.
func decodePieces(wordDoc []byte, pieces []piece, total uint32) []rune {
	s := binreader.NewSpan(wordDoc, 0)
	out := make([]rune, 0, total)
	remaining := int(total)

	for _, p := range pieces {
		if remaining <= 0 {
			break
		}
		if p.cpEnd <= p.cpStart {
			continue
		}
		count := int(p.cpEnd - p.cpStart)
		if count > remaining {
			count = remaining
		}

		if p.singleByte {
			raw, ok := s.Bytes(int(p.fileOffset), count)
			if !ok {
				raw = tailBytes(s, int(p.fileOffset))
				for _, b := range raw {
					out = append(out, decodeByte(b))
				}
				return out
			}
			for _, b := range raw {
				out = append(out, decodeByte(b))
			}
		} else {
			units := make([]uint16, 0, count)
			truncated := false
			for i := 0; i < count; i++ {
				u, ok := s.Uint16(int(p.fileOffset) + i*2)
				if !ok {
					truncated = true
					break
				}
				units = append(units, u)
			}
			out = append(out, utf16.Decode(units)...)
			if truncated {
				return out
			}
		}
		remaining -= count
	}
	return out
}

// tailBytes returns whatever lies between off and the end of the span.
func tailBytes(s binreader.Span, off int) []byte {
	if off < 0 || off >= s.Len() {
		return nil
	}
	b, _ := s.Bytes(off, s.Len()-off)
	return b
}

// decodeByte maps a single-byte character to its code point. Bytes in the
// 0x80-0x9F range go through the Windows-1252 table, which overrides the C1
// control range with printable punctuation (curly quotes, dashes, the euro
// sign); everything else is its literal code point.
func decodeByte(b byte) rune {
	if b >= 0x80 && b <= 0x9F {
		if r := charmap.Windows1252.DecodeByte(b); r != utf8.RuneError {
			return r
		}
	}
	return rune(b)
}
