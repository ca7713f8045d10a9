// Package format provides file format detection for the flipbook library.
package format

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format represents a supported document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// DOC indicates a legacy Word 97-2003 binary document.
	DOC
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
	// ODT indicates an OpenDocument Text (.odt) document.
	ODT
	// FB2 indicates a FictionBook 2 e-book.
	FB2
	// TXT indicates plain text.
	TXT
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case DOC:
		return "DOC"
	case DOCX:
		return "DOCX"
	case ODT:
		return "ODT"
	case FB2:
		return "FB2"
	case TXT:
		return "TXT"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case DOC:
		return ".doc"
	case DOCX:
		return ".docx"
	case ODT:
		return ".odt"
	case FB2:
		return ".fb2"
	case TXT:
		return ".txt"
	default:
		return ""
	}
}

// cfbMagic is the 8-byte compound-file signature that opens every legacy
// binary Office document.
var cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Detect determines file format from the filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".doc":
		return DOC
	case ".docx":
		return DOCX
	case ".odt":
		return ODT
	case ".fb2":
		return FB2
	case ".txt", ".text":
		return TXT
	default:
		return Unknown
	}
}

// DetectBytes determines the format from file content, falling back to the
// extension of name when the content is ambiguous. Content wins over
// extension: a .doc that is really a ZIP archive is treated as what it is.
func DetectBytes(data []byte, name string) Format {
	if f := DetectFromMagic(data); f != Unknown {
		return f
	}
	if f := Detect(name); f != Unknown {
		return f
	}
	if looksLikeText(data) {
		return TXT
	}
	return Unknown
}

// DetectFromMagic checks content signatures to determine the format.
// Returns Unknown when the content alone is not decisive.
func DetectFromMagic(data []byte) Format {
	if len(data) >= len(cfbMagic) && bytes.Equal(data[:len(cfbMagic)], cfbMagic) {
		return DOC
	}

	// ZIP magic: PK\x03\x04 — DOCX and ODT are both ZIP archives, so the
	// entries decide.
	if len(data) >= 4 && data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04 {
		return detectZIPFormat(data)
	}

	if looksLikeFB2(data) {
		return FB2
	}

	return Unknown
}

// detectZIPFormat inspects a ZIP archive to tell DOCX from ODT.
func detectZIPFormat(data []byte) Format {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Unknown
	}

	// ODT declares itself through a mimetype entry stored first.
	for _, f := range zr.File {
		if f.Name == "mimetype" {
			rc, err := f.Open()
			if err != nil {
				continue
			}
			buf := make([]byte, 256)
			n, _ := rc.Read(buf)
			rc.Close()
			if strings.Contains(string(buf[:n]), "application/vnd.oasis.opendocument.text") {
				return ODT
			}
		}
	}

	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "word/") {
			return DOCX
		}
	}

	return Unknown
}

// looksLikeFB2 reports whether the data opens with an XML prolog followed by
// a FictionBook root element. FB2 files are commonly non-UTF-8, so the check
// stays byte-oriented.
func looksLikeFB2(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n\xef\xbb\xbf")
	if !bytes.HasPrefix(trimmed, []byte("<?xml")) && !bytes.HasPrefix(trimmed, []byte("<FictionBook")) {
		return false
	}
	return bytes.Contains(head, []byte("<FictionBook"))
}

// looksLikeText reports whether the data is plausibly plain text: no NUL
// bytes and a near-total share of printable bytes in its head. Non-UTF-8
// single-byte encodings still count as text.
func looksLikeText(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	head := data
	if len(head) > 4096 {
		head = head[:4096]
	}
	if bytes.IndexByte(head, 0x00) >= 0 {
		return false
	}
	if utf8.Valid(head) {
		return true
	}
	printable := 0
	for _, b := range head {
		if b == '\t' || b == '\r' || b == '\n' || b >= 0x20 {
			printable++
		}
	}
	return printable*10 >= len(head)*9
}
