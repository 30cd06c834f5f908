package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading font sizes in half-points, by heading level.
var headingSizes = map[int]string{1: "36", 2: "32", 3: "28"}

// DOCX writes md as a Word document without external tools. Headings,
// paragraphs, lists and code blocks are kept; inline formatting is dropped.
func DOCX(md []byte, w io.Writer) error {
	doc := markdown.Parser().Parse(text.NewReader(md))
	out := docx.New().WithDefaultTheme()

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			size, ok := headingSizes[node.Level]
			if !ok {
				size = "24"
			}
			out.AddParagraph().AddText(inlineText(node, md)).Bold().Size(size)
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				out.AddParagraph().AddText("• " + inlineText(item, md))
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				out.AddParagraph().AddText(strings.TrimRight(string(seg.Value(md)), "\n"))
			}
		case *ast.ThematicBreak:
			out.AddParagraph()
		default:
			if t := inlineText(n, md); t != "" {
				out.AddParagraph().AddText(t)
			}
		}
	}

	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

// inlineText flattens the text under n. Soft line breaks become spaces.
func inlineText(n ast.Node, src []byte) string {
	var buf strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() {
				buf.WriteByte('\n')
			} else if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
			return
		case *ast.String:
			buf.Write(t.Value)
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
			if c.Type() == ast.TypeBlock && c.NextSibling() != nil {
				buf.WriteByte(' ')
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}

// Converter produces the DOCX download, preferring pandoc and optionally
// falling back to the built-in writer when pandoc is missing.
type Converter struct {
	Pandoc         Pandoc
	NativeFallback bool
	Log            *slog.Logger
}

// ToDOCX converts the markdown file at in to a .docx file at out.
func (c Converter) ToDOCX(ctx context.Context, in, out string) error {
	err := c.Pandoc.Render(ctx, in, out)
	if err == nil || !errors.Is(err, ErrToolNotInstalled) || !c.NativeFallback {
		return err
	}
	if c.Log != nil {
		c.Log.Warn("pandoc not installed, using built-in docx writer")
	}

	md, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read markdown: %w", err)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create docx: %w", err)
	}
	if err := DOCX(md, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
