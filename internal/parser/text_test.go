package parser

import (
	"strings"
	"testing"
)

func TestTextParser_KeepsTextVerbatim(t *testing.T) {
	input := "Глава 1\nFirst paragraph line one.\n\n\nSecond paragraph."
	p := &TextParser{}
	got, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != input {
		t.Errorf("expected %q, got %q", input, got)
	}
}

func TestTextParser_NormalizesLineEndings(t *testing.T) {
	p := &TextParser{}
	got, err := p.Parse(strings.NewReader("one\r\ntwo\rthree"), "dos.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "one\ntwo\nthree" {
		t.Errorf("expected normalized newlines, got %q", got)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	got, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}

func TestTextParser_RejectsBinary(t *testing.T) {
	p := &TextParser{}
	if _, err := p.Parse(strings.NewReader("\xff\xfe\x00bad"), "blob.txt"); err == nil {
		t.Fatal("expected error for invalid UTF-8")
	}
}

func TestJoinPages(t *testing.T) {
	got := joinPages([]string{"page one", "page\r\ntwo", ""})
	want := "page one\npage\ntwo\n\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if !blank([]string{" ", "\n"}) || blank([]string{"", "x"}) {
		t.Error("blank misclassified pages")
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"book.pdf", "*parser.PDFParser", false},
		{"BOOK.PDF", "*parser.PDFParser", false},
		{"notes.txt", "*parser.TextParser", false},
		{"readme.md", "*parser.MarkdownParser", false},
		{"page.htm", "*parser.HTMLParser", false},
		{"report.docx", "*parser.DOCXParser", false},
		{"table.csv", "", true},
		{"noext", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ForFile(tc.name, Options{PDFFallbackPdftotext: true})
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %T", p)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := typeName(p); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}

	p, _ := ForFile("x.pdf", Options{PDFFallbackPdftotext: true})
	if !p.(*PDFParser).FallbackPdftotext {
		t.Error("expected pdftotext fallback to be carried through")
	}
}

func TestIsSupportedExtensionAndTitle(t *testing.T) {
	if !IsSupportedExtension("a.Markdown") || IsSupportedExtension("a.csv") {
		t.Error("unexpected extension support")
	}
	if got := Title("/tmp/uploads/Course Notes.pdf"); got != "Course Notes" {
		t.Errorf("expected %q, got %q", "Course Notes", got)
	}
}
