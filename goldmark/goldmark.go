// Package goldmark renders markdown to ANSI-styled terminal text, parsing
// with goldmark, styling with lipgloss and highlighting fenced code with
// chroma.
package goldmark

import (
	"github.com/fwojciec/chat"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

const defaultWidth = 80

// Renderer turns markdown into terminal output. It is safe for concurrent
// use.
type Renderer struct {
	parser parser.Parser
	styles styles
	syntax *highlighter
}

// New creates a Renderer styled by theme.
func New(theme chat.Theme) *Renderer {
	md := goldmark.New(goldmark.WithExtensions(
		extension.Strikethrough,
		extension.Linkify,
	))
	return &Renderer{
		parser: md.Parser(),
		styles: newStyles(theme),
		syntax: newHighlighter(theme.CodeStyle),
	}
}

// Render returns source as styled text. Paragraphs, headings, quotes and list
// items wrap to width; code is never reflowed. A width of zero or less means
// 80 columns. Escape sequences in source are removed before parsing.
func (r *Renderer) Render(source string, width int) string {
	source = Sanitize(source)
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return r.render([]byte(source), width)
}

// Render is a convenience for New(theme).Render(source, width).
func Render(source string, width int, theme chat.Theme) string {
	return New(theme).Render(source, width)
}
