package goldmark

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize strips ANSI escape sequences and control characters from model
// text so it cannot drive the terminal. Tabs and newlines are kept; CRLF and
// lone CR become LF.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\r':
			b.WriteByte('\n')
		case r == '\t' || r == '\n' || (r > 0x1F && r != 0x7F):
			b.WriteRune(r)
		}
	}
	return b.String()
}
