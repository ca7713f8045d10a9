package doc

import (
	"encoding/binary"
	"strings"
	"unicode/utf16"
)

// Minimum run lengths for the heuristic scanners. Shorter printable runs in
// a binary file are overwhelmingly structure, not prose; runs must be
// strictly longer than these to be kept.
const (
	minUTF16Run = 40
	minASCIIRun = 50
)

// fallbackExtract recovers text from a buffer the structured pipeline could
// not parse. It first treats the buffer as little-endian UTF-16 and keeps
// long printable runs; if that finds nothing it falls back again to an
// 8-bit ASCII-range scan.
func fallbackExtract(data []byte) string {
	if text := scanUTF16(data); text != "" {
		return text
	}
	return scanASCII(data)
}

func scanUTF16(data []byte) string {
	var runs []string
	var cur []uint16
	flush := func() {
		if len(cur) > minUTF16Run {
			runs = append(runs, string(utf16.Decode(cur)))
		}
		cur = cur[:0]
	}
	for i := 0; i+2 <= len(data); i += 2 {
		u := binary.LittleEndian.Uint16(data[i : i+2])
		if printableUTF16(u) {
			cur = append(cur, u)
		} else {
			flush()
		}
	}
	flush()
	if len(runs) == 0 {
		return ""
	}
	return scrub(strings.Join(runs, "\n\n"))
}

func printableUTF16(u uint16) bool {
	switch u {
	case '\t', '\n', '\r':
		return true
	case 0xFFFE, 0xFFFF:
		// non-character sentinels
		return false
	}
	return u >= 0x20
}

func scanASCII(data []byte) string {
	var runs []string
	var cur []byte
	flush := func() {
		if len(cur) > minASCIIRun {
			runs = append(runs, string(cur))
		}
		cur = cur[:0]
	}
	for _, b := range data {
		if b == '\t' || b == '\r' || b == '\n' || (b >= 0x20 && b <= 0x7E) {
			cur = append(cur, b)
		} else {
			flush()
		}
	}
	flush()
	if len(runs) == 0 {
		return ""
	}
	return scrub(strings.Join(runs, "\n\n"))
}

// scrub is the shared cleanup pass for heuristically recovered text:
// normalize line endings, drop remaining control characters, collapse
// excess blank lines.
func scrub(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x20 || r == '\t' || r == '\n' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(excessNewlines.ReplaceAllString(b.String(), "\n\n"))
}
