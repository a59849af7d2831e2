package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/chat"
	"github.com/fwojciec/chat/goldmark"
)

var _ tea.Model = Model{}

const (
	// maxInputHeight caps how far the input grows with its content.
	maxInputHeight = 8
	statusHeight   = 1
	// newlines between viewport, status line and input.
	separatorHeight = 2
)

// Model is the Bubble Tea model for the chat TUI.
type Model struct {
	// Input is the message editor. Exported for test access.
	Input textarea.Model
	// Viewport is the scrollable conversation. Exported for test access.
	Viewport viewport.Model
	// Spinner is the typing indicator shown while a turn runs.
	Spinner spinner.Model

	submit   SubmitFunc
	log      *chat.Log
	styles   Styles
	renderer *goldmark.Renderer

	blocks []MessageBlock
	// active receives the deltas of the running turn; nil until the first
	// delta arrives.
	active *AssistantTextBlock

	running bool
	cancel  context.CancelFunc
	eventCh chan tea.Msg
	doneCh  chan error
	err     error
	ready   bool
	height  int
}

// New creates a TUI Model that runs turns through submit and renders the
// existing contents of log on start.
func New(submit SubmitFunc, log *chat.Log, theme chat.Theme) Model {
	styles := NewStyles(theme)

	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = styles.Accent

	return Model{
		Input:    ta,
		Spinner:  sp,
		submit:   submit,
		log:      log,
		styles:   styles,
		renderer: goldmark.New(theme),
	}
}

// Running returns whether a turn is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the error of the last failed turn, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case DeltaMsg:
		if m.active == nil {
			m.active = NewAssistantTextBlock(m.renderer)
			m.blocks = append(m.blocks, m.active)
		}
		m.active.Append(msg.Text)
		return m.refresh(), m.listen()

	case CompleteMsg:
		m.active = nil
		return m, m.listen()

	case ErrorMsg:
		if !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
		}
		return m, m.listen()

	case FallbackMsg:
		m.blocks = append(m.blocks, NewErrorBlock(msg.Message.Content, m.err, m.styles))
		return m.refresh(), m.listen()

	case TurnDoneMsg:
		if m.cancel != nil {
			m.cancel()
		}
		m.running = false
		m.cancel = nil
		m.eventCh = nil
		m.doneCh = nil
		m.active = nil
		if msg.Err != nil && !errors.Is(msg.Err, chat.ErrBusy) && !errors.Is(msg.Err, chat.ErrEmptyInput) {
			m.err = msg.Err
		}
		cmd := m.Input.Focus()
		return m.refresh(), cmd

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	// Viewport always receives remaining messages for mouse scrolling.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	m.height = msg.Height
	m.Input.SetWidth(msg.Width)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, 1)
		m = m.renderLog()
		m.ready = true
	}
	m.Viewport.Width = msg.Width
	m = m.layout()
	return m.refresh()
}

// layout sizes the viewport to the space the input leaves.
func (m Model) layout() Model {
	m.Viewport.Height = max(m.height-m.Input.Height()-statusHeight-separatorHeight, 1)
	return m
}

// growInput fits the input's height to its content.
func (m Model) growInput() Model {
	h := min(max(m.Input.LineCount(), 1), maxInputHeight)
	if h == m.Input.Height() {
		return m
	}
	m.Input.SetHeight(h)
	return m.layout()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if msg.Alt {
			break
		}
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)
	}

	// Only non-character keys scroll the viewport, so typing 'j' or 'k'
	// never moves the conversation.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
		m = m.growInput()
	}
	return m, tea.Batch(cmds...)
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.Reset()
	m = m.growInput()
	m.err = nil

	m.blocks = append(m.blocks, NewUserMessageBlock(text, m.styles))
	m.active = nil

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan tea.Msg, 256)
	m.doneCh = make(chan error, 1)
	m.running = true
	m.Input.Blur()

	return m.refresh(), tea.Batch(
		startTurn(ctx, m.submit, text, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
		m.Spinner.Tick,
	)
}

// renderLog creates blocks for the messages already in the log, such as the
// greeting.
func (m Model) renderLog() Model {
	for _, msg := range m.log.Snapshot() {
		switch msg.Role {
		case chat.RoleUser:
			m.blocks = append(m.blocks, NewUserMessageBlock(msg.Content, m.styles))
		case chat.RoleAssistant:
			b := NewAssistantTextBlock(m.renderer)
			b.Append(msg.Content)
			m.blocks = append(m.blocks, b)
		}
	}
	return m
}

func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) renderContent() string {
	views := make([]string, 0, len(m.blocks))
	for _, block := range m.blocks {
		views = append(views, block.View(m.Viewport.Width))
	}
	return strings.Join(views, "\n\n")
}

func (m Model) statusLine() string {
	switch {
	case m.running && m.active == nil:
		return m.Spinner.View() + " " + m.styles.Muted.Render("Thinking...")
	case m.running:
		return m.Spinner.View() + " " + m.styles.Muted.Render("Ctrl+C to stop")
	case m.err != nil:
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	default:
		return m.styles.Muted.Render("Enter to send, Alt+Enter for a new line, Ctrl+C to quit")
	}
}

func (m Model) listen() tea.Cmd {
	if m.eventCh == nil {
		return nil
	}
	return listenForEvent(m.eventCh, m.doneCh)
}

// startTurn runs submit in a goroutine, forwarding hook calls as messages.
func startTurn(ctx context.Context, submit SubmitFunc, input string, eventCh chan<- tea.Msg, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		send := func(msg tea.Msg) {
			select {
			case eventCh <- msg:
			case <-ctx.Done():
			}
		}
		err := submit(ctx, input, chat.Hooks{
			OnDelta:    func(s string) { send(DeltaMsg{Text: s}) },
			OnComplete: func(s string) { send(CompleteMsg{Full: s}) },
			OnError:    func(err error) { send(ErrorMsg{Err: err}) },
			OnFallback: func(msg chat.Message) { send(FallbackMsg{Message: msg}) },
		})
		close(eventCh)
		doneCh <- err
		return nil
	}
}

// listenForEvent waits for the next message from the channel. When the
// channel closes, it reads the result from doneCh and returns TurnDoneMsg.
func listenForEvent(ch <-chan tea.Msg, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return TurnDoneMsg{Err: <-doneCh}
		}
		return msg
	}
}
