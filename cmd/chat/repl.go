package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fwojciec/chat"
	"github.com/fwojciec/chat/controller"
	"github.com/fwojciec/chat/goldmark"
)

const exitCommand = "/exit"

// repl is the line-mode front end: one prompt per line of input, with
// replies printed as plain text while they stream.
type repl struct {
	ctrl *controller.Controller
	in   io.Reader
	out  io.Writer

	userPrompt      string
	assistantPrompt string
	fallback        lipgloss.Style
	muted           lipgloss.Style
}

func newREPL(ctrl *controller.Controller, in io.Reader, out io.Writer, theme chat.Theme) *repl {
	color := func(i int) lipgloss.Color { return lipgloss.Color(strconv.Itoa(i)) }
	return &repl{
		ctrl:            ctrl,
		in:              in,
		out:             out,
		userPrompt:      lipgloss.NewStyle().Foreground(color(theme.UserMsg)).Bold(true).Render("you> "),
		assistantPrompt: lipgloss.NewStyle().Foreground(color(theme.Accent)).Render("assistant> "),
		fallback:        lipgloss.NewStyle().Foreground(color(theme.Error)).Italic(true),
		muted:           lipgloss.NewStyle().Foreground(color(theme.Muted)).Faint(true),
	}
}

// run reads lines until EOF, /exit or ctx is cancelled.
func (r *repl) run(ctx context.Context) error {
	for _, msg := range r.ctrl.Log().Snapshot() {
		if msg.Role == chat.RoleAssistant {
			fmt.Fprintf(r.out, "%s%s\n\n", r.assistantPrompt, msg.Content)
		}
	}
	fmt.Fprintf(r.out, "%s\n\n", r.muted.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(r.out, r.userPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == exitCommand {
			break
		}

		err := r.ctrl.Submit(ctx, input, r.hooks())
		switch {
		case errors.Is(err, chat.ErrEmptyInput), errors.Is(err, chat.ErrBusy):
			continue
		case err != nil:
			return err
		}

		if ctx.Err() != nil {
			return nil
		}
	}
	return scanner.Err()
}

func (r *repl) hooks() chat.Hooks {
	return chat.Hooks{
		OnBusy: func(busy bool) {
			if busy {
				fmt.Fprint(r.out, r.assistantPrompt)
			}
		},
		OnDelta: func(delta string) {
			fmt.Fprint(r.out, goldmark.Sanitize(delta))
		},
		OnComplete: func(string) {
			fmt.Fprint(r.out, "\n\n")
		},
		OnError: func(err error) {
			fmt.Fprintf(r.out, "\n%s\n", r.muted.Render("Error: "+err.Error()))
		},
		OnFallback: func(msg chat.Message) {
			fmt.Fprintf(r.out, "%s\n\n", r.fallback.Render(msg.Content))
		},
	}
}
