package doc

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"
	"unicode/utf16"
)

// Minimal compound-file writer for end-to-end fixtures. All fixture streams
// are small, so everything is stored through the mini-stream: sector 0 holds
// the FAT, 1 the directory, 2 the mini-FAT, and the mini-stream follows.
const (
	tSectorSize  = 512
	tEndOfChain  = 0xFFFFFFFE
	tFreeSect    = 0xFFFFFFFF
	tFATSect     = 0xFFFFFFFD
	tDirEntryLen = 128
)

var tSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

type tStream struct {
	name string
	data []byte
}

func buildDocFile(t *testing.T, streams []tStream) []byte {
	t.Helper()

	var miniData []byte
	var miniFAT []uint32
	starts := make([]uint32, len(streams))
	for i, s := range streams {
		if len(s.data) >= 4096 {
			t.Fatalf("buildDocFile only stores small streams, %q has %d bytes", s.name, len(s.data))
		}
		starts[i] = uint32(len(miniData) / 64)
		padded := s.data
		if rem := len(padded) % 64; rem != 0 {
			padded = append(append([]byte(nil), padded...), make([]byte, 64-rem)...)
		}
		miniData = append(miniData, padded...)
		for j := 0; j < len(padded)/64-1; j++ {
			miniFAT = append(miniFAT, starts[i]+uint32(j)+1)
		}
		miniFAT = append(miniFAT, tEndOfChain)
	}

	nMini := (len(miniData) + tSectorSize - 1) / tSectorSize
	miniStart := uint32(3)

	fat := make([]uint32, tSectorSize/4)
	for i := range fat {
		fat[i] = tFreeSect
	}
	fat[0] = tFATSect
	fat[1] = tEndOfChain
	fat[2] = tEndOfChain
	for i := 0; i < nMini-1; i++ {
		fat[miniStart+uint32(i)] = miniStart + uint32(i) + 1
	}
	fat[miniStart+uint32(nMini)-1] = tEndOfChain

	out := make([]byte, tSectorSize)
	copy(out, tSignature)
	le16 := func(off int, v uint16) { binary.LittleEndian.PutUint16(out[off:], v) }
	le32 := func(off int, v uint32) { binary.LittleEndian.PutUint32(out[off:], v) }
	le16(0x18, 0x003E)
	le16(0x1A, 0x0003)
	le16(0x1C, 0xFFFE)
	le16(0x1E, 9)
	le16(0x20, 6)
	le32(0x2C, 1)
	le32(0x30, 1)
	le32(0x38, 4096)
	le32(0x3C, 2)
	le32(0x40, 1)
	le32(0x44, tEndOfChain)
	le32(0x4C, 0)
	for i := 1; i < 109; i++ {
		le32(0x4C+i*4, tFreeSect)
	}

	fatSec := make([]byte, tSectorSize)
	for i, v := range fat {
		binary.LittleEndian.PutUint32(fatSec[i*4:], v)
	}
	out = append(out, fatSec...)

	dirSec := make([]byte, tSectorSize)
	writeDir := func(slot []byte, name string, typ byte, start, size uint32) {
		units := append(utf16.Encode([]rune(name)), 0)
		for i, u := range units {
			binary.LittleEndian.PutUint16(slot[i*2:], u)
		}
		binary.LittleEndian.PutUint16(slot[0x40:], uint16(len(units)*2))
		slot[0x42] = typ
		binary.LittleEndian.PutUint32(slot[0x74:], start)
		binary.LittleEndian.PutUint32(slot[0x78:], size)
	}
	writeDir(dirSec[0:], "Root Entry", 5, miniStart, uint32(len(miniData)))
	for i, s := range streams {
		writeDir(dirSec[(i+1)*tDirEntryLen:], s.name, 2, starts[i], uint32(len(s.data)))
	}
	out = append(out, dirSec...)

	mfSec := make([]byte, tSectorSize)
	for i := range mfSec {
		mfSec[i] = 0xFF
	}
	for i, v := range miniFAT {
		binary.LittleEndian.PutUint32(mfSec[i*4:], v)
	}
	out = append(out, mfSec...)

	padded := miniData
	if rem := len(padded) % tSectorSize; rem != 0 {
		padded = append(append([]byte(nil), padded...), make([]byte, tSectorSize-rem)...)
	}
	return append(out, padded...)
}

// buildWordFile assembles a complete .doc with the given body stored as
// single-byte pieces at the given offsets of the main stream.
func buildWordFile(t *testing.T, pieces []testPiece, content map[uint32][]byte, ccp uint32, oneTable bool) []byte {
	t.Helper()

	clx := buildCLX(t, nil, pieces)
	table := append(make([]byte, 64), clx...)

	wordDoc := make([]byte, 0x800)
	copy(wordDoc, buildFIB(t, ccp, 64, uint32(len(clx)), oneTable))
	for off, b := range content {
		copy(wordDoc[off:], b)
	}

	tableName := "0Table"
	if oneTable {
		tableName = "1Table"
	}
	return buildDocFile(t, []tStream{
		{"WordDocument", wordDoc},
		{tableName, table},
	})
}

func TestExtractStructuredDocument(t *testing.T) {
	body := "Hello, world.\rSecond paragraph."
	file := buildWordFile(t,
		[]testPiece{{cpStart: 0, cpEnd: uint32(len(body)), byteOffset: 0x600, singleByte: true}},
		map[uint32][]byte{0x600: []byte(body)},
		uint32(len(body)), false,
	)

	got, err := Extract(file)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "Hello, world.\nSecond paragraph."
	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtractUsesOneTableStream(t *testing.T) {
	body := "stored in the other table stream"
	file := buildWordFile(t,
		[]testPiece{{cpStart: 0, cpEnd: uint32(len(body)), byteOffset: 0x600, singleByte: true}},
		map[uint32][]byte{0x600: []byte(body)},
		uint32(len(body)), true,
	)

	got, err := Extract(file)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != body {
		t.Errorf("Extract() = %q, want %q", got, body)
	}
}

func TestExtractReordersPiecesByTable(t *testing.T) {
	// Later characters stored at earlier byte offsets; reassembly must
	// follow the character ranges, not the byte layout.
	file := buildWordFile(t,
		[]testPiece{
			{cpStart: 0, cpEnd: 5, byteOffset: 0x700, singleByte: true},
			{cpStart: 5, cpEnd: 10, byteOffset: 0x600, singleByte: true},
		},
		map[uint32][]byte{0x700: []byte("Hello"), 0x600: []byte("World")},
		10, false,
	)

	got, err := Extract(file)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "HelloWorld" {
		t.Errorf("Extract() = %q, want HelloWorld", got)
	}
}

func TestExtractFallsBackOnNoise(t *testing.T) {
	run := strings.Repeat("recoverable prose in the rubble. ", 2)
	data := append(make([]byte, 600), []byte(run)...)
	data = append(data, make([]byte, 600)...)

	got, err := Extract(data)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(got, "recoverable prose") {
		t.Errorf("Extract() = %q, want fallback text", got)
	}
}

func TestExtractNoTextAnywhere(t *testing.T) {
	if _, err := Extract(make([]byte, 2048)); !errors.Is(err, ErrNoText) {
		t.Errorf("Extract() error = %v, want ErrNoText", err)
	}
}

func TestExtractStructuredRejectsNonContainers(t *testing.T) {
	run := strings.Repeat("salvageable text would be here. ", 4)
	if _, err := ExtractStructured([]byte(run)); err == nil {
		t.Error("ExtractStructured() = nil error, want failure without fallback")
	}
}
