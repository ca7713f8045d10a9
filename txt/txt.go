// Package txt normalizes plain-text files into clean UTF-8.
package txt

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// Extract returns the contents of a plain-text file as normalized UTF-8:
// transcoded when the bytes declare another encoding, BOM stripped, line
// endings unified, runs of blank lines collapsed.
func Extract(data []byte) (string, error) {
	var text string
	if utf8.Valid(data) {
		text = string(data)
	} else {
		enc, name, _ := charset.DetermineEncoding(data, "text/plain")
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("txt: decoding %s: %w", name, err)
		}
		text = string(decoded)
	}

	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text), nil
}
