package render

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	policy   = bluemonday.UGCPolicy()
)

// HTML renders markdown to an HTML fragment. Model output is untrusted, so
// the result is sanitized before it is served.
func HTML(md []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(md, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return policy.SanitizeBytes(buf.Bytes()), nil
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Summary</title>
</head>
<body>
%s</body>
</html>
`

// HTMLPage wraps the rendered fragment in a standalone document.
func HTMLPage(md []byte) ([]byte, error) {
	frag, err := HTML(md)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, pageTemplate, frag), nil
}
