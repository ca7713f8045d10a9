// Package doc extracts readable plain text from legacy Word 97-2003 binary
// documents.
//
// A .doc file is a compound-file container holding a main "WordDocument"
// stream and a table stream. The main stream starts with the FIB (File
// Information Block), which locates the piece table inside the table stream;
// the piece table lists the byte ranges of the visible text, stored out of
// logical order and per-piece either code-page or UTF-16LE encoded.
//
// Extract first attempts that structured pipeline. Any failure along the way
// (not a compound file, missing stream, bad FIB, malformed piece table)
// degrades to a heuristic scan for printable character runs over the raw
// bytes, so that damaged or pre-piece-table files still yield whatever text
// they contain.
package doc

import (
	"errors"
	"fmt"

	"github.com/eka-jashina/flipbook-sub006/cfb"
)

// ErrNoText is returned when neither the structured pipeline nor the
// fallback scanner recovers any text.
var ErrNoText = errors.New("doc: no text could be extracted")

// mainStreamName is the stream holding the FIB and the raw document bytes.
const mainStreamName = "WordDocument"

// Extract returns the cleaned plain text of a .doc file given its full
// contents. The result carries no markup and no escaping; callers split it
// into paragraphs on blank-line boundaries.
func Extract(data []byte) (string, error) {
	if text, err := extractStructured(data); err == nil && text != "" {
		return text, nil
	}
	if text := fallbackExtract(data); text != "" {
		return text, nil
	}
	return "", ErrNoText
}

// ExtractStructured runs only the structured pipeline, with no heuristic
// fallback: input the parser cannot handle fails where Extract would
// degrade. Useful when callers want to distinguish a well-formed document
// from salvage.
func ExtractStructured(data []byte) (string, error) {
	text, err := extractStructured(data)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// extractStructured runs the full container → FIB → piece table → decode →
// clean pipeline. Every stage reports failure through an error; none of
// them is fatal to the overall extraction.
func extractStructured(data []byte) (string, error) {
	r, err := cfb.New(data)
	if err != nil {
		return "", err
	}
	entry, ok := r.FindEntry(mainStreamName)
	if !ok {
		return "", fmt.Errorf("doc: stream %q missing", mainStreamName)
	}
	wordDoc, err := r.ReadStream(entry)
	if err != nil {
		return "", fmt.Errorf("doc: reading %q: %w", mainStreamName, err)
	}

	f, err := parseFIB(wordDoc)
	if err != nil {
		return "", err
	}

	tableEntry, ok := r.FindEntry(f.tableName)
	if !ok {
		return "", fmt.Errorf("doc: table stream %q missing", f.tableName)
	}
	table, err := r.ReadStream(tableEntry)
	if err != nil {
		return "", fmt.Errorf("doc: reading %q: %w", f.tableName, err)
	}

	pieces, err := parsePieceTable(table, f.fcClx, f.lcbClx)
	if err != nil {
		return "", err
	}

	return cleanText(decodePieces(wordDoc, pieces, f.ccpText)), nil
}
