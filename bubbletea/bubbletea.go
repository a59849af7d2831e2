// Package bubbletea provides a Bubble Tea TUI for the streaming chat client.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/chat"
)

// SubmitFunc runs one turn for input, reporting progress through hooks. It
// blocks until the turn ends or ctx is cancelled.
type SubmitFunc func(ctx context.Context, input string, hooks chat.Hooks) error

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The context is used for graceful shutdown: when cancelled, the
// program quits.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(m, opts...)
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// DeltaMsg carries a text delta of the running turn.
type DeltaMsg struct {
	Text string
}

// CompleteMsg signals that the running turn finished with the given text.
type CompleteMsg struct {
	Full string
}

// ErrorMsg carries the error that failed the running turn.
type ErrorMsg struct {
	Err error
}

// FallbackMsg carries the reply to show in place of a failed response.
type FallbackMsg struct {
	Message chat.Message
}

// TurnDoneMsg signals that the submit function has returned.
type TurnDoneMsg struct {
	Err error
}
