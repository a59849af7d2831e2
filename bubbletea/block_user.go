package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*UserMessageBlock)(nil)

const userPrefix = "> "

// UserMessageBlock renders a user message behind a "> " prefix, with
// continuation lines indented to match.
type UserMessageBlock struct {
	text   string
	styles Styles
}

// NewUserMessageBlock creates a UserMessageBlock.
func NewUserMessageBlock(text string, styles Styles) *UserMessageBlock {
	return &UserMessageBlock{text: text, styles: styles}
}

func (b *UserMessageBlock) View(width int) string {
	wrapped := lipgloss.NewStyle().Width(max(width-len(userPrefix), 10)).Render(b.text)
	lines := strings.Split(wrapped, "\n")
	indent := strings.Repeat(" ", len(userPrefix))
	for i, line := range lines {
		if i == 0 {
			lines[i] = b.styles.UserMsg.Render(userPrefix) + line
		} else {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}
