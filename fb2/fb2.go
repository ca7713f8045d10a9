// Package fb2 extracts plain text from FictionBook 2 e-books.
//
// FB2 is a single XML document. Visible text lives in the <body> sections —
// paragraphs, verse lines, subtitles — while <description> metadata and
// base64 <binary> attachments are skipped. FB2 files frequently declare
// non-UTF-8 encodings (windows-1251 most of all), so decoding is
// charset-aware.
package fb2

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// newDecoder builds an XML decoder that honors the document's declared
// encoding.
func newDecoder(data []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	return dec
}

// Extract returns the plain text of an FB2 book given its full contents.
// Paragraph-level elements are joined with blank lines.
func Extract(data []byte) (string, error) {
	dec := newDecoder(data)

	var paragraphs []string
	var para strings.Builder
	bodyDepth := 0
	paraDepth := 0

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("fb2: parsing document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "body":
				bodyDepth++
			case "binary":
				// base64 attachment, no text
				if err := dec.Skip(); err != nil {
					return "", fmt.Errorf("fb2: parsing document: %w", err)
				}
			case "p", "v", "subtitle", "text-author":
				if bodyDepth > 0 {
					if paraDepth == 0 {
						para.Reset()
					}
					paraDepth++
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "body":
				if bodyDepth > 0 {
					bodyDepth--
				}
			case "p", "v", "subtitle", "text-author":
				if bodyDepth > 0 && paraDepth > 0 {
					paraDepth--
					if paraDepth == 0 {
						if s := strings.TrimSpace(para.String()); s != "" {
							paragraphs = append(paragraphs, s)
						}
						para.Reset()
					}
				}
			}
		case xml.CharData:
			if bodyDepth > 0 && paraDepth > 0 {
				para.Write(t)
			}
		}
	}

	return strings.Join(paragraphs, "\n\n"), nil
}

// Title returns the book title declared in the description block, or false
// when the document carries none.
func Title(data []byte) (string, bool) {
	dec := newDecoder(data)

	var title strings.Builder
	inTitle := false

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "body":
				// the description precedes the bodies; stop looking
				s := strings.TrimSpace(title.String())
				return s, s != ""
			case "book-title":
				inTitle = true
			}
		case xml.EndElement:
			if t.Name.Local == "book-title" {
				s := strings.TrimSpace(title.String())
				return s, s != ""
			}
		case xml.CharData:
			if inTitle {
				title.Write(t)
			}
		}
	}
	s := strings.TrimSpace(title.String())
	return s, s != ""
}
