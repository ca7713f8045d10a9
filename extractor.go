package flipbook

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/eka-jashina/flipbook-sub006/doc"
	"github.com/eka-jashina/flipbook-sub006/docx"
	"github.com/eka-jashina/flipbook-sub006/fb2"
	"github.com/eka-jashina/flipbook-sub006/format"
	"github.com/eka-jashina/flipbook-sub006/odt"
	"github.com/eka-jashina/flipbook-sub006/txt"
)

// Extractor provides a fluent interface for extracting content from a
// document. Each configuration method returns a new Extractor instance,
// making it safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	data []byte
	name string

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a copy of options.
// This ensures immutability - each chain method returns a new instance.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		data:    e.data,
		name:    e.name,
		options: e.options.clone(),
		err:     e.err,
	}
}

// Format overrides content-based format detection.
//
// Example:
//
//	text, err := flipbook.FromBytes(data, "blob").Format(format.DOC).Text()
func (e *Extractor) Format(f format.Format) *Extractor {
	c := e.clone()
	c.options.format = f
	return c
}

// WithoutFallback disables the heuristic byte-run scanner for legacy .doc
// input: a file the structured parser cannot handle fails instead of
// degrading. Other formats are unaffected.
func (e *Extractor) WithoutFallback() *Extractor {
	c := e.clone()
	c.options.withoutFallback = true
	return c
}

// resolveFormat applies the configured override or detects from content.
func (e *Extractor) resolveFormat() format.Format {
	if e.options.format != format.Unknown {
		return e.options.format
	}
	return format.DetectBytes(e.data, e.name)
}

// Text extracts the document's plain text. It is a terminal operation.
func (e *Extractor) Text() (string, error) {
	if e.err != nil {
		return "", e.err
	}
	switch f := e.resolveFormat(); f {
	case format.DOC:
		if e.options.withoutFallback {
			return doc.ExtractStructured(e.data)
		}
		return doc.Extract(e.data)
	case format.DOCX:
		return docx.Extract(e.data)
	case format.ODT:
		return odt.Extract(e.data)
	case format.FB2:
		return fb2.Extract(e.data)
	case format.TXT:
		return txt.Extract(e.data)
	default:
		return "", fmt.Errorf("flipbook: unsupported file format: %s", f)
	}
}

// paragraphBreak matches a blank-line boundary: a newline, optional
// whitespace, and another newline.
var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

// Paragraphs extracts the document text and splits it into paragraphs on
// blank-line boundaries. It is a terminal operation.
func (e *Extractor) Paragraphs() ([]string, error) {
	text, err := e.Text()
	if err != nil {
		return nil, err
	}
	var paragraphs []string
	for _, p := range paragraphBreak.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs, nil
}

// Title returns the document's declared title for formats that carry one
// (FB2), otherwise the display name without its extension.
func (e *Extractor) Title() (string, error) {
	if e.err != nil {
		return "", e.err
	}
	if e.resolveFormat() == format.FB2 {
		if t, ok := fb2.Title(e.data); ok {
			return t, nil
		}
	}
	name := e.name
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name, nil
}
