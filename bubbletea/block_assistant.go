package bubbletea

import (
	"strings"

	"github.com/fwojciec/chat/goldmark"
)

var _ MessageBlock = (*AssistantTextBlock)(nil)

const fence = "```"

// AssistantTextBlock renders assistant text as markdown while it streams in.
// Text up to the last paragraph break outside a code fence is settled: it is
// rendered once per width and cached. Only the unsettled tail is re-rendered
// as deltas arrive.
type AssistantTextBlock struct {
	renderer *goldmark.Renderer
	content  strings.Builder

	settled  string
	rendered map[int]string
}

// NewAssistantTextBlock creates a block that renders with r.
func NewAssistantTextBlock(r *goldmark.Renderer) *AssistantTextBlock {
	return &AssistantTextBlock{renderer: r, rendered: make(map[int]string)}
}

// Append adds a text delta.
func (b *AssistantTextBlock) Append(text string) {
	b.content.WriteString(text)
	b.settle()
}

// Text returns the raw markdown received so far.
func (b *AssistantTextBlock) Text() string {
	return b.content.String()
}

func (b *AssistantTextBlock) View(width int) string {
	head := b.renderSettled(width)

	tail := b.tail()
	if openFence(tail) {
		// Close the fence for display so a half-streamed code block renders
		// as code.
		tail += "\n" + fence
	}
	if strings.TrimSpace(tail) == "" {
		return head
	}
	body := b.renderer.Render(tail, width)
	if strings.TrimSpace(body) == "" {
		return head
	}
	if head == "" {
		return body
	}
	// The halves are rendered separately; rejoin them with exactly one
	// blank line, as a single render would.
	return strings.TrimRight(head, "\n") + "\n\n" + strings.TrimLeft(body, "\n")
}

// settle moves the settled boundary to the last "\n\n" whose prefix has
// every code fence closed.
func (b *AssistantTextBlock) settle() {
	raw := b.content.String()
	end := len(raw)
	for {
		i := strings.LastIndex(raw[:end], "\n\n")
		if i <= 0 {
			return
		}
		if prefix := raw[:i]; !openFence(prefix) {
			if prefix != b.settled {
				b.settled = prefix
				clear(b.rendered)
			}
			return
		}
		end = i
	}
}

func (b *AssistantTextBlock) renderSettled(width int) string {
	if width <= 0 || b.settled == "" {
		return ""
	}
	if s, ok := b.rendered[width]; ok {
		return s
	}
	s := b.renderer.Render(b.settled, width)
	b.rendered[width] = s
	return s
}

func (b *AssistantTextBlock) tail() string {
	raw := b.content.String()
	if b.settled == "" {
		return raw
	}
	return strings.TrimPrefix(raw, b.settled+"\n\n")
}

// openFence reports whether s has an odd number of code fences. Fences inside
// inline code spans are miscounted, which model output rarely contains.
func openFence(s string) bool {
	return strings.Count(s, fence)%2 == 1
}
