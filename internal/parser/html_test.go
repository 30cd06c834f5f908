package parser

import (
	"fmt"
	"strings"
	"testing"
)

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}

func TestHTMLParser_HeadingsBecomeMarkers(t *testing.T) {
	input := `<html><head><title>Course</title><style>p{}</style></head>
<body>
<nav>Home | About</nav>
<h1>Глава 1</h1>
<p>First chapter body.</p>
<h2>Section</h2>
<ul><li>point one</li><li>point two</li></ul>
<script>alert(1)</script>
<footer>Copyright</footer>
</body></html>`
	p := &HTMLParser{}
	got, err := p.Parse(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"# Глава 1\n", "First chapter body.", "## Section\n", "point one", "point two"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got %q", want, got)
		}
	}
	for _, unwanted := range []string{"Home | About", "alert(1)", "Copyright", "p{}", "Course"} {
		if strings.Contains(got, unwanted) {
			t.Errorf("expected %q to be stripped, got %q", unwanted, got)
		}
	}
	if strings.Index(got, "# Глава 1") > strings.Index(got, "## Section") {
		t.Errorf("heading order changed: %q", got)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Errorf("expected trailing newline, got %q", got)
	}
}

func TestHTMLParser_Fragment(t *testing.T) {
	p := &HTMLParser{}
	got, err := p.Parse(strings.NewReader("<h3>Тема 2</h3><p>one</p><p>two</p>"), "frag.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "### Тема 2") {
		t.Errorf("expected level-3 heading first, got %q", got)
	}
	if !strings.Contains(got, "one\n\ntwo") {
		t.Errorf("expected paragraphs separated by a blank line, got %q", got)
	}
}

func TestHTMLParser_Empty(t *testing.T) {
	p := &HTMLParser{}
	got, err := p.Parse(strings.NewReader("<html><body><script>x</script><!-- note --></body></html>"), "e.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}
