package txt

import "testing"

func TestExtractNormalizesLineEndings(t *testing.T) {
	got, err := Extract([]byte("one\r\ntwo\rthree\n"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "one\ntwo\nthree" {
		t.Errorf("Extract() = %q, want %q", got, "one\ntwo\nthree")
	}
}

func TestExtractCollapsesBlankLines(t *testing.T) {
	got, err := Extract([]byte("a\n\n\n\n\nb"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "a\n\nb" {
		t.Errorf("Extract() = %q, want %q", got, "a\n\nb")
	}
}

func TestExtractStripsBOM(t *testing.T) {
	got, err := Extract([]byte("\xEF\xBB\xBFhello"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "hello" {
		t.Errorf("Extract() = %q, want hello", got)
	}
}

func TestExtractTranscodesNonUTF8(t *testing.T) {
	// curly quotes in windows-1252; invalid as UTF-8, so the sniffer
	// decides, and undeclared single-byte text defaults to 1252
	got, err := Extract([]byte{'a', 0x93, 'b', 0x94})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "a“b”" {
		t.Errorf("Extract() = %q, want %q", got, "a“b”")
	}
}

func TestExtractEmpty(t *testing.T) {
	got, err := Extract(nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "" {
		t.Errorf("Extract() = %q, want empty", got)
	}
}
