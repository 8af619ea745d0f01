// Package markdown converts article bodies to HTML fragments and extracts
// their visible text.
package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// DefaultStyle is the chroma style used for fenced code blocks.
const DefaultStyle = "monokai"

// Options configures New.
type Options struct {
	// Style is a chroma style name. Empty means DefaultStyle.
	Style string
	// LineNumbers adds line numbers to highlighted blocks.
	LineNumbers bool
}

// Renderer is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New builds a renderer with tables, strikethrough, syntax highlighting
// and XHTML-style void elements. Raw HTML in the source is passed through.
func New(opts Options) *Renderer {
	style := opts.Style
	if style == "" {
		style = DefaultStyle
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(
					chromahtml.WithLineNumbers(opts.LineNumbers),
				),
			),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)
	return &Renderer{md: md}
}

// Render converts src to an HTML fragment.
func (r *Renderer) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}
