package cfb

import (
	"fmt"
	"unicode/utf16"

	"github.com/eka-jashina/flipbook-sub006/internal/binreader"
)

// EntryType distinguishes the kinds of directory entries.
type EntryType byte

const (
	// TypeUnknown marks an unallocated directory slot.
	TypeUnknown EntryType = 0x00
	// TypeStorage is a named container of other entries.
	TypeStorage EntryType = 0x01
	// TypeStream is a named sequence of bytes.
	TypeStream EntryType = 0x02
	// TypeRoot is the root storage; its stream holds the mini-stream.
	TypeRoot EntryType = 0x05
)

// Entry is one directory entry, read once at construction and never mutated.
type Entry struct {
	Name  string
	Type  EntryType
	Size  uint32
	start uint32
}

// Fixed byte offsets within a 128-byte directory slot.
const (
	dirOffName       = 0x00 // 64 bytes of UTF-16
	dirOffNameLen    = 0x40
	dirOffType       = 0x42
	dirOffStart      = 0x74
	dirOffStreamSize = 0x78
)

// readDirectory walks the directory sector chain and decodes every 128-byte
// slot. Unallocated slots are kept out of the entry list.
func (r *Reader) readDirectory(firstSector uint32) error {
	raw, err := r.readWholeChain(firstSector)
	if err != nil {
		return fmt.Errorf("%w: directory unreadable", ErrFormat)
	}
	for off := 0; off+dirEntryLen <= len(raw); off += dirEntryLen {
		slot := binreader.NewSpan(raw[off:off+dirEntryLen], off)
		typ, _ := slot.Byte(dirOffType)
		if EntryType(typ) == TypeUnknown {
			continue
		}
		start, _ := slot.Uint32(dirOffStart)
		size, _ := slot.Uint32(dirOffStreamSize)
		r.entries = append(r.entries, Entry{
			Name:  decodeEntryName(slot),
			Type:  EntryType(typ),
			Size:  size,
			start: start,
		})
	}
	return nil
}

// decodeEntryName reads the fixed UTF-16 name field, trimmed to its declared
// byte length (clamped to the 64-byte field) and stripped of the trailing
// NUL terminator.
func decodeEntryName(slot binreader.Span) string {
	n, _ := slot.Uint16(dirOffNameLen)
	if n > 64 {
		n = 64
	}
	raw, ok := slot.Bytes(dirOffName, int(n))
	if !ok {
		return ""
	}
	units := make([]uint16, 0, len(raw)/2)
	for i := 0; i+2 <= len(raw); i += 2 {
		u, _ := slot.Uint16(dirOffName + i)
		units = append(units, u)
	}
	for len(units) > 0 && units[len(units)-1] == 0 {
		units = units[:len(units)-1]
	}
	return string(utf16.Decode(units))
}

// Entries returns all allocated directory entries in directory order.
func (r *Reader) Entries() []Entry {
	return r.entries
}

// FindEntry returns the first stream entry whose name matches exactly
// (case-sensitive), or false when no such stream exists. Absence is a
// routine outcome, not an error.
func (r *Reader) FindEntry(name string) (*Entry, bool) {
	for i := range r.entries {
		if r.entries[i].Type == TypeStream && r.entries[i].Name == name {
			return &r.entries[i], true
		}
	}
	return nil, false
}

// rootEntry returns the first entry of type root.
func (r *Reader) rootEntry() (*Entry, bool) {
	for i := range r.entries {
		if r.entries[i].Type == TypeRoot {
			return &r.entries[i], true
		}
	}
	return nil, false
}
