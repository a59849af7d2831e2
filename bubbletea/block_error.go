package bubbletea

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders the fallback reply of a failed turn, followed by the
// error that caused it when one is known.
type ErrorBlock struct {
	text   string
	err    error
	styles Styles
}

// NewErrorBlock creates an ErrorBlock. err may be nil.
func NewErrorBlock(text string, err error, styles Styles) *ErrorBlock {
	return &ErrorBlock{text: text, err: err, styles: styles}
}

func (b *ErrorBlock) View(width int) string {
	content := b.styles.Fallback.Render(b.text)
	if b.err != nil {
		content += "\n" + b.styles.Muted.Render(fmt.Sprintf("Error: %v", b.err))
	}
	return lipgloss.NewStyle().Width(width).Render(content)
}
