package goldmark

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
)

// highlighter colors source code for 256-color terminals.
type highlighter struct {
	style     *chroma.Style
	formatter chroma.Formatter
}

func newHighlighter(styleName string) *highlighter {
	style := chromastyles.Get(styleName)
	if style == nil {
		style = chromastyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	return &highlighter{style: style, formatter: formatter}
}

// highlight returns code colored for language, one entry per source line.
// Each line is formatted on its own so escape sequences never span a line
// break. When no lexer matches, or formatting fails, the lines come back
// uncolored.
func (h *highlighter) highlight(code, language string) []string {
	plain := strings.Split(strings.TrimSuffix(code, "\n"), "\n")

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		return plain
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return plain
	}

	lines := chroma.SplitTokensIntoLines(iterator.Tokens())
	for len(lines) > 0 && blank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		last := &line[len(line)-1]
		last.Value = strings.TrimSuffix(last.Value, "\n")

		var buf strings.Builder
		if err := h.formatter.Format(&buf, h.style, chroma.Literator(line...)); err != nil {
			return plain
		}
		out = append(out, buf.String())
	}
	if len(out) == 0 {
		return plain
	}
	return out
}

func blank(line []chroma.Token) bool {
	for _, t := range line {
		if t.Value != "" {
			return false
		}
	}
	return true
}
