// Package render converts Markdown page bodies into HTML fragments with
// highlighted code blocks, heading anchors and rewritten links.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/gittydocs/gittydocs/internal/transform"
)

const DefaultStyle = "github"

// Page is a rendered Markdown page.
type Page struct {
	HTML        string
	TOC         []transform.TOCEntry
	Description string
}

// Renderer is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a renderer using the named chroma style for code blocks.
func New(style string) *Renderer {
	if style == "" {
		style = DefaultStyle
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
			),
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Renderer{md: md}
}

// Render converts body (Markdown without frontmatter) for the page whose
// source file is sourcePath and whose title is title.
func (r *Renderer) Render(sourcePath, title string, body []byte) (Page, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return Page{}, fmt.Errorf("convert %s: %w", sourcePath, err)
	}

	doc, err := transform.Pipeline(sourcePath, title, buf.String())
	if err != nil {
		return Page{}, fmt.Errorf("transform %s: %w", sourcePath, err)
	}
	return Page{HTML: doc.Body, TOC: doc.TOC, Description: doc.Description}, nil
}
