// Package docx extracts plain text from DOCX (Office Open XML) documents.
//
// A DOCX file is a ZIP archive; the visible text lives in the <w:t> runs of
// word/document.xml. The extractor walks that XML as a token stream and
// joins paragraphs with blank lines.
package docx

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
var ErrNotFound = errors.New("docx: file not found in archive")

// nsMain is the WordprocessingML main namespace.
const nsMain = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// maxEntrySize caps the decompressed size of a single archive entry. A
// crafted archive can inflate a tiny entry into gigabytes of XML.
const maxEntrySize = 100 << 20

// Extract returns the plain text of a DOCX file given its full contents.
func Extract(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx: opening archive: %w", err)
	}
	content, err := readEntry(zr, "word/document.xml")
	if err != nil {
		return "", err
	}
	return parseDocument(content)
}

// readEntry reads one named entry from the archive, enforcing maxEntrySize.
func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("docx: opening %s: %w", name, err)
		}
		defer rc.Close()
		content, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
		if err != nil {
			return nil, fmt.Errorf("docx: reading %s: %w", name, err)
		}
		if len(content) > maxEntrySize {
			return nil, fmt.Errorf("docx: entry %s exceeds %d byte limit", name, maxEntrySize)
		}
		return content, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// parseDocument walks word/document.xml collecting <w:t> text per <w:p>
// paragraph, with <w:tab> and <w:br> rendered as tab and newline.
func parseDocument(content []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))

	var paragraphs []string
	var para strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("docx: parsing document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != nsMain {
				continue
			}
			switch t.Name.Local {
			case "p":
				para.Reset()
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Space != nsMain {
				continue
			}
			switch t.Name.Local {
			case "p":
				if s := strings.TrimSpace(para.String()); s != "" {
					paragraphs = append(paragraphs, s)
				}
				para.Reset()
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}

	return strings.Join(paragraphs, "\n\n"), nil
}
