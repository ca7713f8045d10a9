package fb2

import (
	"strings"
	"testing"
)

const sampleBook = `<?xml version="1.0" encoding="utf-8"?>
<FictionBook xmlns="http://www.gribuser.ru/xml/fictionbook/2.0">
  <description>
    <title-info>
      <book-title>The Sample Book</book-title>
      <annotation><p>Annotation text stays out of the body.</p></annotation>
    </title-info>
  </description>
  <body>
    <section>
      <title><p>Chapter One</p></title>
      <p>First paragraph of prose.</p>
      <p>Second paragraph.</p>
      <subtitle>* * *</subtitle>
      <poem>
        <stanza>
          <v>A line of verse</v>
          <v>And another line</v>
        </stanza>
        <text-author>The Poet</text-author>
      </poem>
    </section>
  </body>
  <binary id="cover.jpg" content-type="image/jpeg">aGVsbG8gdGhlcmU=</binary>
</FictionBook>`

func TestExtractBodyText(t *testing.T) {
	got, err := Extract([]byte(sampleBook))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	for _, want := range []string{
		"Chapter One",
		"First paragraph of prose.",
		"Second paragraph.",
		"* * *",
		"A line of verse",
		"The Poet",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Extract() missing %q in %q", want, got)
		}
	}
	if !strings.Contains(got, "First paragraph of prose.\n\nSecond paragraph.") {
		t.Errorf("Extract() paragraphs not blank-line separated: %q", got)
	}
}

func TestExtractSkipsMetadataAndBinaries(t *testing.T) {
	got, err := Extract([]byte(sampleBook))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if strings.Contains(got, "Annotation text") {
		t.Errorf("Extract() leaked description text: %q", got)
	}
	if strings.Contains(got, "aGVsbG8") {
		t.Errorf("Extract() leaked binary payload: %q", got)
	}
	if strings.Contains(got, "The Sample Book") {
		t.Errorf("Extract() leaked title metadata: %q", got)
	}
}

func TestExtractDeclaredEncoding(t *testing.T) {
	// "Привет" in windows-1251
	var b []byte
	b = append(b, []byte(`<?xml version="1.0" encoding="windows-1251"?><FictionBook><body><p>`)...)
	b = append(b, 0xCF, 0xF0, 0xE8, 0xE2, 0xE5, 0xF2)
	b = append(b, []byte(`</p></body></FictionBook>`)...)

	got, err := Extract(b)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "Привет" {
		t.Errorf("Extract() = %q, want Привет", got)
	}
}

func TestExtractRejectsMalformedXML(t *testing.T) {
	if _, err := Extract([]byte(`<FictionBook><body><p>unclosed`)); err == nil {
		t.Error("Extract() = nil error, want failure")
	}
}

func TestTitle(t *testing.T) {
	title, ok := Title([]byte(sampleBook))
	if !ok || title != "The Sample Book" {
		t.Errorf("Title() = %q, %v, want The Sample Book", title, ok)
	}
}

func TestTitleMissing(t *testing.T) {
	doc := `<?xml version="1.0"?><FictionBook><body><p>no description</p></body></FictionBook>`
	if title, ok := Title([]byte(doc)); ok {
		t.Errorf("Title() = %q, true, want none", title)
	}
}
