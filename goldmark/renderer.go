package goldmark

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/chat"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

type styles struct {
	bold      lipgloss.Style
	italic    lipgloss.Style
	strike    lipgloss.Style
	code      lipgloss.Style
	accent    lipgloss.Style
	muted     lipgloss.Style
	underline lipgloss.Style
}

func newStyles(theme chat.Theme) styles {
	return styles{
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		strike:    lipgloss.NewStyle().Strikethrough(true),
		code:      lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)),
		accent:    lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		underline: lipgloss.NewStyle().Underline(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

// document holds the state of one render pass.
type document struct {
	*Renderer
	source []byte
}

func (r *Renderer) render(source []byte, width int) string {
	doc := r.parser.Parse(text.NewReader(source))
	d := document{Renderer: r, source: source}

	var buf bytes.Buffer
	d.blocks(doc, width, &buf)
	return strings.TrimRight(buf.String(), "\n")
}

func (d document) blocks(node ast.Node, width int, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		d.block(c, width, buf)
		if c.NextSibling() != nil && c.Kind() != ast.KindHTMLBlock {
			buf.WriteString("\n")
		}
	}
}

func (d document) block(node ast.Node, width int, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		d.wrapped(d.inlines(n), width, buf)

	case *ast.Heading:
		d.wrapped(d.styles.accent.Render(d.inlines(n)), width, buf)

	case *ast.FencedCodeBlock:
		lang := string(n.Language(d.source))
		if lang != "" {
			buf.WriteString(d.styles.muted.Render(lang) + "\n")
		}
		d.codeBlock(n, lang, buf)

	case *ast.CodeBlock:
		d.codeBlock(n, "", buf)

	case *ast.Blockquote:
		var inner bytes.Buffer
		d.blocks(n, max(width-2, 10), &inner)
		bar := d.styles.muted.Render("┃") + " "
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			buf.WriteString(bar + line + "\n")
		}

	case *ast.List:
		d.list(n, width, buf, 0)

	case *ast.ThematicBreak:
		buf.WriteString(d.styles.muted.Render(strings.Repeat("─", min(width, 40))) + "\n")

	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(d.source))
		}

	default:
		d.blocks(node, width, buf)
	}
}

func (d document) wrapped(s string, width int, buf *bytes.Buffer) {
	buf.WriteString(lipgloss.NewStyle().Width(width).Render(s))
	buf.WriteString("\n")
}

// codeBlock writes the lines of a code block behind a gutter, highlighted when
// language is known.
func (d document) codeBlock(n ast.Node, language string, buf *bytes.Buffer) {
	var src strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		src.Write(seg.Value(d.source))
	}
	if src.Len() == 0 {
		return
	}

	var out []string
	if language != "" {
		out = d.syntax.highlight(src.String(), language)
	} else {
		out = strings.Split(strings.TrimSuffix(src.String(), "\n"), "\n")
	}

	gutter := d.styles.muted.Render("│") + " "
	for _, line := range out {
		buf.WriteString(gutter + line + "\n")
	}
}

func (d document) list(node *ast.List, width int, buf *bytes.Buffer, depth int) {
	n := node.Start
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		indent := strings.Repeat("  ", depth)
		marker := "- "
		if node.IsOrdered() {
			marker = fmt.Sprintf("%d. ", n)
			n++
		}

		var content bytes.Buffer
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				content.WriteString(d.inlines(in))
			case *ast.List:
				if content.Len() > 0 {
					writeItem(buf, indent+marker, content.String(), width)
					content.Reset()
				}
				d.list(in, width, buf, depth+1)
				marker = strings.Repeat(" ", len(marker))
			default:
				d.block(ic, width, &content)
			}
		}
		if content.Len() > 0 {
			writeItem(buf, indent+marker, content.String(), width)
		}
	}
}

// writeItem writes a list item, indenting continuation lines under the first.
func writeItem(buf *bytes.Buffer, prefix, content string, width int) {
	wrapped := lipgloss.NewStyle().Width(max(width-len(prefix), 10)).Render(content)
	continuation := strings.Repeat(" ", len(prefix))
	for i, line := range strings.Split(wrapped, "\n") {
		if i == 0 {
			buf.WriteString(prefix + line + "\n")
		} else {
			buf.WriteString(continuation + line + "\n")
		}
	}
}

func (d document) inlines(node ast.Node) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		d.inline(c, &buf)
	}
	return buf.String()
}

func (d document) inline(node ast.Node, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(d.source))
		switch {
		case n.HardLineBreak():
			buf.WriteByte('\n')
		case n.SoftLineBreak():
			buf.WriteByte(' ')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Emphasis:
		inner := d.inlines(n)
		if n.Level == 1 {
			buf.WriteString(d.styles.italic.Render(inner))
		} else {
			buf.WriteString(d.styles.bold.Render(inner))
		}

	case *east.Strikethrough:
		buf.WriteString(d.styles.strike.Render(d.inlines(n)))

	case *ast.CodeSpan:
		buf.WriteString(d.styles.code.Render(d.inlines(n)))

	case *ast.Link:
		buf.WriteString(d.styles.underline.Render(d.inlines(n)))
		buf.WriteString(" " + d.styles.muted.Render("("+string(n.Destination)+")"))

	case *ast.AutoLink:
		buf.WriteString(d.styles.underline.Render(string(n.URL(d.source))))

	case *ast.Image:
		buf.WriteString(d.styles.underline.Render(d.inlines(n)))
		buf.WriteString(" " + d.styles.muted.Render("("+string(n.Destination)+")"))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(d.source))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			d.inline(c, buf)
		}
	}
}
