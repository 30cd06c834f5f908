package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. The source is kept
// verbatim except that every heading, including setext ("===" underlined)
// headings, is rewritten in ATX form.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read markdown: %w", err)
	}
	src := []byte(normalizeNewlines(string(data)))
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	type block struct {
		start   int
		heading *ast.Heading
	}
	var blocks []block
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		off, ok := firstOffset(n)
		if !ok {
			continue
		}
		start := lineStart(src, off)
		if len(blocks) > 0 && start < blocks[len(blocks)-1].start {
			start = blocks[len(blocks)-1].start
		}
		h, _ := n.(*ast.Heading)
		blocks = append(blocks, block{start: start, heading: h})
	}
	if len(blocks) == 0 {
		return string(src), nil
	}

	var buf strings.Builder
	buf.Write(src[:blocks[0].start])
	for i, b := range blocks {
		end := len(src)
		if i+1 < len(blocks) {
			end = blocks[i+1].start
		}
		if b.heading == nil {
			buf.Write(src[b.start:end])
			continue
		}
		title := strings.TrimSpace(string(b.heading.Text(src)))
		buf.WriteString(headingLine(b.heading.Level, title))
		buf.WriteString("\n\n")
	}
	return buf.String(), nil
}

// firstOffset finds the source offset of the first line belonging to n.
func firstOffset(n ast.Node) (int, bool) {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return n.Lines().At(0).Start, true
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if off, ok := firstOffset(c); ok {
			return off, true
		}
	}
	return 0, false
}

func lineStart(src []byte, off int) int {
	for off > 0 && src[off-1] != '\n' {
		off--
	}
	return off
}
