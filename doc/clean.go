package doc

import (
	"regexp"
	"strings"
)

// Field code markers. A field is an in-text control sequence for computed
// content (cross-references, page numbers): the part between begin and
// separator is the field instruction, the part between separator and end is
// the visible replacement text.
const (
	fieldBegin     = 0x13
	fieldSeparator = 0x14
	fieldEnd       = 0x15
)

// Document control codes that carry layout meaning.
const (
	ctrlCellMark   = 0x07 // table cell / row mark
	ctrlLineBreak  = 0x0B
	ctrlPageBreak  = 0x0C
	ctrlParaEnd    = 0x0D
)

var (
	excessNewlines = regexp.MustCompile(`\n{3,}`)
	tabRuns        = regexp.MustCompile(`\t+`)
)

// cleanText strips document control codes from the decoded character
// sequence and normalizes whitespace. Field instructions are dropped, their
// visible replacement text kept.
func cleanText(runes []rune) string {
	var b strings.Builder
	b.Grow(len(runes))
	inField := false
	for _, r := range runes {
		switch {
		case r == fieldBegin:
			inField = true
		case r == fieldSeparator:
			// Everything after the separator is the visible result.
			inField = false
		case r == fieldEnd:
			inField = false
		case inField:
			// field instruction text
		case r == ctrlParaEnd || r == ctrlLineBreak:
			b.WriteByte('\n')
		case r == ctrlPageBreak:
			b.WriteString("\n\n")
		case r == ctrlCellMark:
			b.WriteByte('\t')
		case r == '\t' || r == '\n':
			b.WriteRune(r)
		case r < 0x20:
			// remaining control codes carry no text
		default:
			b.WriteRune(r)
		}
	}

	s := excessNewlines.ReplaceAllString(b.String(), "\n\n")
	s = tabRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
