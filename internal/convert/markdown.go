package convert

import (
	"bytes"
	"context"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// markdownTemplate wraps Goldmark's fragment output in a complete HTML5
// document with a minimal print stylesheet.
const markdownTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Document</title>
<style>
body { font-family: Arial, Helvetica, sans-serif; font-size: 12pt; line-height: 1.4; }
pre { padding: 8px; overflow-x: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #999; padding: 4px 8px; }
%s
</style>
</head>
<body>
%s
</body>
</html>`

// MarkdownRenderer converts Markdown to HTML using goldmark.
type MarkdownRenderer struct {
	md  goldmark.Markdown
	css string
}

// NewMarkdownRenderer creates a renderer with GFM extensions, footnotes and
// chroma syntax highlighting.
func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	return &MarkdownRenderer{md: md, css: highlightCSS()}
}

// highlightCSS returns the stylesheet matching the class names chroma emits.
func highlightCSS() string {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get("github")); err != nil {
		return ""
	}
	return buf.String()
}

// ToHTML converts Markdown content to a standalone HTML5 document.
// Goldmark has no context support, so conversion runs in a goroutine
// and ctx is honored with select.
func (r *MarkdownRenderer) ToHTML(ctx context.Context, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := r.md.Convert(content, &buf); err != nil {
			done <- result{err: fmt.Errorf("markdown conversion: %w", err)}
			return
		}
		done <- result{html: fmt.Sprintf(markdownTemplate, r.css, buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.html, res.err
	}
}
