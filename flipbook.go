// Package flipbook provides a fluent API for extracting plain text and
// paragraphs from e-book and office document files: FB2, DOCX, ODT, legacy
// Word binary (.doc), and plain text.
//
// Basic usage:
//
//	text, err := flipbook.Open("book.doc").Text()
//	if err != nil {
//	    // handle error
//	}
//
// From bytes already in memory:
//
//	paras, err := flipbook.FromBytes(data, "book.fb2").Paragraphs()
//
// The extracted text is raw: no markup, no escaping. Paragraphs() splits it
// on blank-line boundaries. For the legacy .doc format the structured parser
// degrades to a heuristic scan on malformed input, so damaged files still
// yield whatever text they contain.
package flipbook

import (
	"fmt"
	"os"
	"path/filepath"
)

// Open reads a file and returns an Extractor for fluent configuration.
//
// Example:
//
//	text, err := flipbook.Open("document.docx").Text()
func Open(filename string) *Extractor {
	data, err := os.ReadFile(filename)
	if err != nil {
		return &Extractor{
			err:     fmt.Errorf("flipbook: reading %s: %w", filename, err),
			options: defaultOptions(),
		}
	}
	return FromBytes(data, filepath.Base(filename))
}

// FromBytes creates an Extractor over a buffer already in memory. The name
// is used for extension-based format detection when content sniffing is
// inconclusive, and as the fallback title.
//
// Example:
//
//	text, err := flipbook.FromBytes(data, "upload.odt").Text()
func FromBytes(data []byte, name string) *Extractor {
	return &Extractor{
		data:    data,
		name:    name,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	text := flipbook.Must(flipbook.Open("book.fb2").Text())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
