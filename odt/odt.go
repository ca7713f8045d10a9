// Package odt extracts plain text from ODT (OpenDocument Text) documents.
//
// An ODT file is a ZIP archive; the visible text lives in the text:p and
// text:h elements of content.xml. The extractor walks that XML as a token
// stream and joins paragraphs with blank lines.
package odt

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotFound is returned when an expected file is missing from the archive.
var ErrNotFound = errors.New("odt: file not found in archive")

// nsText is the OpenDocument text namespace.
const nsText = "urn:oasis:names:tc:opendocument:xmlns:text:1.0"

// maxEntrySize caps the decompressed size of a single archive entry.
const maxEntrySize = 100 << 20

// Extract returns the plain text of an ODT file given its full contents.
func Extract(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("odt: opening archive: %w", err)
	}
	content, err := readEntry(zr, "content.xml")
	if err != nil {
		return "", err
	}
	return parseContent(content)
}

// readEntry reads one named entry from the archive, enforcing maxEntrySize.
func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("odt: opening %s: %w", name, err)
		}
		defer rc.Close()
		content, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
		if err != nil {
			return nil, fmt.Errorf("odt: reading %s: %w", name, err)
		}
		if len(content) > maxEntrySize {
			return nil, fmt.Errorf("odt: entry %s exceeds %d byte limit", name, maxEntrySize)
		}
		return content, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// parseContent walks content.xml collecting character data inside text:p and
// text:h elements. text:tab, text:line-break, and text:s (run of spaces)
// have no character data of their own and are expanded explicitly.
func parseContent(content []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))

	var paragraphs []string
	var para strings.Builder
	paraDepth := 0

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("odt: parsing content.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != nsText {
				continue
			}
			switch t.Name.Local {
			case "p", "h":
				if paraDepth == 0 {
					para.Reset()
				}
				paraDepth++
			case "tab":
				if paraDepth > 0 {
					para.WriteByte('\t')
				}
			case "line-break":
				if paraDepth > 0 {
					para.WriteByte('\n')
				}
			case "s":
				if paraDepth > 0 {
					para.WriteString(strings.Repeat(" ", spaceCount(t)))
				}
			}
		case xml.EndElement:
			if t.Name.Space != nsText {
				continue
			}
			switch t.Name.Local {
			case "p", "h":
				if paraDepth > 0 {
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
			if paraDepth > 0 {
				para.Write(t)
			}
		}
	}

	return strings.Join(paragraphs, "\n\n"), nil
}

// spaceCount reads the text:c attribute of a text:s element, defaulting to
// one space.
func spaceCount(el xml.StartElement) int {
	for _, a := range el.Attr {
		if a.Name.Local == "c" {
			n := 0
			for _, c := range a.Value {
				if c < '0' || c > '9' {
					return 1
				}
				n = n*10 + int(c-'0')
			}
			if n > 0 && n <= 4096 {
				return n
			}
			return 1
		}
	}
	return 1
}
