// Package cfb reads the Microsoft Compound File Binary container: a
// sector-chain based virtual filesystem embedded in a single file, used by
// the legacy binary Office formats. The reader operates over an in-memory
// buffer and exposes named stream lookup and whole-stream reads; it performs
// no I/O of its own.
package cfb

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/eka-jashina/flipbook-sub006/internal/binreader"
)

var (
	// ErrFormat reports a buffer that is not a valid compound file.
	ErrFormat = errors.New("cfb: not a valid compound file")
	// ErrRead reports a stream whose sector chain cannot be followed to
	// its declared length.
	ErrRead = errors.New("cfb: error reading stream")
)

// signature is the 8-byte magic at offset 0 of every compound file.
var signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

const (
	headerLen        = 512
	dirEntryLen      = 128
	headerDIFATSlots = 109
	miniSectorSize   = 64
)

// maxChainLength caps every sector-chain walk. The chain tables come from
// untrusted input and may be cyclic or self-referential; a walk that has not
// terminated within this many steps is treated as corrupt.
const maxChainLength = 100000

// Sector sentinels used in the FAT, mini-FAT and DIFAT.
const (
	maxRegSect uint32 = 0xFFFFFFFA
	difatSect  uint32 = 0xFFFFFFFC
	fatSect    uint32 = 0xFFFFFFFD
	endOfChain uint32 = 0xFFFFFFFE
	freeSect   uint32 = 0xFFFFFFFF
)

// Reader provides access to the streams of a compound file. It is built once
// from the full file contents and is read-only afterwards.
type Reader struct {
	data       []byte
	sectorSize int
	miniCutoff uint32

	fat     []uint32
	entries []Entry

	firstMiniFAT uint32

	// The mini-stream and its chain table are only assembled when a
	// small stream is first read.
	miniFAT    []uint32
	miniStream []byte
	miniLoaded bool
}

// New parses the container structures (header, FAT, directory) from data.
// The buffer must be at least 512 bytes and begin with the compound-file
// signature; anything else fails with ErrFormat.
func New(data []byte) (*Reader, error) {
	if len(data) < headerLen || !bytes.Equal(data[:len(signature)], signature) {
		return nil, ErrFormat
	}
	hdr := binreader.NewSpan(data[:headerLen], 0)

	shift, _ := hdr.Uint16(0x1E)
	if shift < 7 || shift > 16 {
		return nil, fmt.Errorf("%w: sector shift %d", ErrFormat, shift)
	}

	r := &Reader{
		data:       data,
		sectorSize: 1 << shift,
	}
	r.miniCutoff, _ = hdr.Uint32(0x38)
	r.firstMiniFAT, _ = hdr.Uint32(0x3C)

	if err := r.buildFAT(hdr); err != nil {
		return nil, err
	}

	firstDirSector, _ := hdr.Uint32(0x30)
	if err := r.readDirectory(firstDirSector); err != nil {
		return nil, err
	}
	return r, nil
}

// sector returns the bytes of sector n. The last sector of a file may be
// truncated; callers get whatever lies within the buffer.
func (r *Reader) sector(n uint32) ([]byte, bool) {
	off := (int(n) + 1) * r.sectorSize
	if off < r.sectorSize || off >= len(r.data) {
		return nil, false
	}
	end := off + r.sectorSize
	if end > len(r.data) {
		end = len(r.data)
	}
	return r.data[off:end], true
}

// buildFAT assembles the full sector allocation table from the 109 inline
// DIFAT slots in the header plus, when present, the chained DIFAT sectors.
func (r *Reader) buildFAT(hdr binreader.Span) error {
	entriesPerSector := r.sectorSize / 4

	appendFATSector := func(sn uint32) error {
		sec, ok := r.sector(sn)
		if !ok {
			return fmt.Errorf("%w: FAT sector %d out of range", ErrFormat, sn)
		}
		s := binreader.NewSpan(sec, 0)
		for i := 0; i < entriesPerSector; i++ {
			v, ok := s.Uint32(i * 4)
			if !ok {
				break
			}
			r.fat = append(r.fat, v)
		}
		return nil
	}

	for i := 0; i < headerDIFATSlots; i++ {
		sn, _ := hdr.Uint32(0x4C + i*4)
		if sn == freeSect || sn == endOfChain {
			break
		}
		if err := appendFATSector(sn); err != nil {
			return err
		}
	}

	// Files with more than 109 FAT sectors chain the rest through DIFAT
	// sectors: each holds entriesPerSector-1 FAT sector numbers plus a
	// pointer to the next DIFAT sector.
	difat, _ := hdr.Uint32(0x44)
	for steps := 0; difat != endOfChain && difat != freeSect; steps++ {
		if steps >= maxChainLength {
			return fmt.Errorf("%w: DIFAT chain too long", ErrFormat)
		}
		sec, ok := r.sector(difat)
		if !ok {
			return fmt.Errorf("%w: DIFAT sector %d out of range", ErrFormat, difat)
		}
		s := binreader.NewSpan(sec, 0)
		for i := 0; i < entriesPerSector-1; i++ {
			sn, ok := s.Uint32(i * 4)
			if !ok || sn == freeSect || sn == endOfChain {
				continue
			}
			if err := appendFATSector(sn); err != nil {
				return err
			}
		}
		next, ok := s.Uint32((entriesPerSector - 1) * 4)
		if !ok {
			break
		}
		difat = next
	}
	return nil
}

// fatNext returns the successor of sector sn in the FAT.
func (r *Reader) fatNext(sn uint32) (uint32, bool) {
	if int64(sn) >= int64(len(r.fat)) {
		return 0, false
	}
	return r.fat[sn], true
}

// readChain follows a FAT sector chain from start and returns exactly size
// bytes. A stream of that size occupies exactly ceil(size/sectorSize)
// sectors; a chain that ends early, leaves the buffer, or keeps going past
// that count (a cycle points the chain back on itself) is a read failure.
func (r *Reader) readChain(start uint32, size int) ([]byte, error) {
	need := (size + r.sectorSize - 1) / r.sectorSize
	if need > maxChainLength {
		return nil, fmt.Errorf("%w: declared size needs %d sectors", ErrRead, need)
	}
	out := make([]byte, 0, size)
	sn := start
	for i := 0; i < need; i++ {
		if sn == endOfChain || sn > maxRegSect {
			return nil, fmt.Errorf("%w: chain ended after %d of %d bytes", ErrRead, len(out), size)
		}
		sec, ok := r.sector(sn)
		if !ok {
			return nil, fmt.Errorf("%w: sector %d out of range", ErrRead, sn)
		}
		out = append(out, sec...)
		next, ok := r.fatNext(sn)
		if !ok {
			return nil, fmt.Errorf("%w: sector %d not in FAT", ErrRead, sn)
		}
		sn = next
	}
	if len(out) < size {
		return nil, fmt.Errorf("%w: chain ended after %d of %d bytes", ErrRead, len(out), size)
	}
	if sn != endOfChain && sn <= maxRegSect {
		return nil, fmt.Errorf("%w: chain longer than declared stream size", ErrRead)
	}
	return out[:size], nil
}

// readWholeChain follows a FAT chain to its end without a declared size,
// returning all sectors it visits. Used for the directory and the mini-FAT,
// whose lengths are implied by their chains. A valid chain cannot have more
// links than the FAT has entries; anything longer is cyclic.
func (r *Reader) readWholeChain(start uint32) ([]byte, error) {
	limit := len(r.fat) + 1
	if limit > maxChainLength {
		limit = maxChainLength
	}
	var out []byte
	sn := start
	for steps := 0; sn != endOfChain && sn <= maxRegSect; steps++ {
		if steps >= limit {
			return nil, fmt.Errorf("%w: sector chain too long", ErrRead)
		}
		sec, ok := r.sector(sn)
		if !ok {
			return nil, fmt.Errorf("%w: sector %d out of range", ErrRead, sn)
		}
		out = append(out, sec...)
		next, ok := r.fatNext(sn)
		if !ok {
			return nil, fmt.Errorf("%w: sector %d not in FAT", ErrRead, sn)
		}
		sn = next
	}
	return out, nil
}

// loadMiniStream materializes the mini-stream (rooted at the first directory
// entry of type root) and its mini-FAT chain table.
func (r *Reader) loadMiniStream() error {
	if r.miniLoaded {
		return nil
	}
	root, ok := r.rootEntry()
	if !ok {
		return fmt.Errorf("%w: no root directory entry", ErrRead)
	}
	ms, err := r.readChain(root.start, int(root.Size))
	if err != nil {
		return err
	}
	raw, err := r.readWholeChain(r.firstMiniFAT)
	if err != nil {
		return err
	}
	s := binreader.NewSpan(raw, 0)
	miniFAT := make([]uint32, 0, len(raw)/4)
	for i := 0; i*4+4 <= len(raw); i++ {
		v, _ := s.Uint32(i * 4)
		miniFAT = append(miniFAT, v)
	}
	r.miniStream = ms
	r.miniFAT = miniFAT
	r.miniLoaded = true
	return nil
}

// readMiniChain follows a mini-FAT chain through the materialized
// mini-stream, 64 bytes per mini-sector. The same exact-sector-count rule
// as readChain applies.
func (r *Reader) readMiniChain(start uint32, size int) ([]byte, error) {
	if err := r.loadMiniStream(); err != nil {
		return nil, err
	}
	need := (size + miniSectorSize - 1) / miniSectorSize
	if need > maxChainLength {
		return nil, fmt.Errorf("%w: declared size needs %d mini sectors", ErrRead, need)
	}
	out := make([]byte, 0, size)
	sn := start
	for i := 0; i < need; i++ {
		if sn == endOfChain || sn > maxRegSect {
			return nil, fmt.Errorf("%w: mini chain ended after %d of %d bytes", ErrRead, len(out), size)
		}
		off := int(sn) * miniSectorSize
		if off >= len(r.miniStream) {
			return nil, fmt.Errorf("%w: mini sector %d out of range", ErrRead, sn)
		}
		end := off + miniSectorSize
		if end > len(r.miniStream) {
			end = len(r.miniStream)
		}
		out = append(out, r.miniStream[off:end]...)
		if int64(sn) >= int64(len(r.miniFAT)) {
			return nil, fmt.Errorf("%w: mini sector %d not in mini-FAT", ErrRead, sn)
		}
		sn = r.miniFAT[sn]
	}
	if len(out) < size {
		return nil, fmt.Errorf("%w: mini chain ended after %d of %d bytes", ErrRead, len(out), size)
	}
	if sn != endOfChain && sn <= maxRegSect {
		return nil, fmt.Errorf("%w: mini chain longer than declared stream size", ErrRead)
	}
	return out[:size], nil
}

// ReadStream returns the full contents of a stream entry: exactly its
// declared byte length. Streams below the header's cutoff size live in the
// mini-stream; everything else is chained through the main FAT.
func (r *Reader) ReadStream(e *Entry) ([]byte, error) {
	if e.Type != TypeStream {
		return nil, fmt.Errorf("%w: %q is not a stream", ErrRead, e.Name)
	}
	if e.Size == 0 {
		return nil, nil
	}
	if e.start > maxRegSect {
		return nil, fmt.Errorf("%w: stream %q has no starting sector", ErrRead, e.Name)
	}
	if e.Size < r.miniCutoff {
		return r.readMiniChain(e.start, int(e.Size))
	}
	return r.readChain(e.start, int(e.Size))
}
