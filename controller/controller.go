// Package controller drives streaming turns: it sends the conversation to a
// Transport, decodes the server-sent-event body into text deltas and records
// the result in the conversation log.
package controller

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/chat"
	"github.com/fwojciec/chat/delta"
	"go.uber.org/zap"
)

// DefaultFallback is shown to the user in place of a failed response.
const DefaultFallback = "Sorry, something went wrong while processing your request."

// DefaultStallTimeout is how long a turn may go without receiving data.
const DefaultStallTimeout = 60 * time.Second

// Controller runs one streaming turn at a time against a Transport.
type Controller struct {
	transport    chat.Transport
	log          *chat.Log
	extractor    *delta.Extractor
	logger       *zap.Logger
	stallTimeout time.Duration
	fallback     string

	mu    sync.Mutex
	state chat.State
}

// Option configures a [Controller].
type Option func(*Controller)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithExtractor sets the delta extractor. The default uses
// [delta.DefaultStrategies].
func WithExtractor(e *delta.Extractor) Option {
	return func(c *Controller) { c.extractor = e }
}

// WithStallTimeout sets how long a turn may go without data before it fails
// with [chat.ErrStalled]. Zero disables the watchdog.
func WithStallTimeout(d time.Duration) Option {
	return func(c *Controller) { c.stallTimeout = d }
}

// WithFallback sets the text shown to the user when a turn fails.
func WithFallback(text string) Option {
	return func(c *Controller) { c.fallback = text }
}

// New creates a Controller that sends log's messages through transport.
func New(transport chat.Transport, log *chat.Log, opts ...Option) *Controller {
	c := &Controller{
		transport:    transport,
		log:          log,
		extractor:    delta.New(),
		logger:       zap.NewNop(),
		stallTimeout: DefaultStallTimeout,
		fallback:     DefaultFallback,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State returns the phase of the current or most recent turn.
func (c *Controller) State() chat.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Log returns the conversation log the controller appends to.
func (c *Controller) Log() *chat.Log {
	return c.log
}

func (c *Controller) setState(s chat.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// acquire moves the controller into Sending unless a turn is in flight.
func (c *Controller) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Busy() {
		return false
	}
	c.state = chat.StateSending
	return true
}

// Submit runs one turn for input and blocks until it ends.
//
// Blank input returns [chat.ErrEmptyInput] and input received while another
// turn is in flight returns [chat.ErrBusy]. Neither touches the log or fires
// a hook. An accepted turn returns nil: its outcome is reported through hooks
// and [Controller.State].
//
// On success the accumulated text is appended to the log as an assistant
// message when non-empty. On failure the partial text is discarded, OnError
// receives the cause and OnFallback receives the fallback message, which is
// never added to the log. Cancellation of ctx fails the turn without a
// fallback.
func (c *Controller) Submit(ctx context.Context, input string, hooks chat.Hooks) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return chat.ErrEmptyInput
	}
	if !c.acquire() {
		return chat.ErrBusy
	}

	hooks.Busy(true)
	defer hooks.Busy(false)

	c.log.Append(chat.UserMessage(input))

	full, err := c.turn(ctx, hooks)
	if err != nil {
		c.fail(err, hooks)
		return nil
	}

	if full != "" {
		c.log.Append(chat.AssistantMessage(full))
	}
	c.setState(chat.StateCompleted)
	hooks.Complete(full)
	return nil
}

func (c *Controller) turn(ctx context.Context, hooks chat.Hooks) (string, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var w *watchdog
	if c.stallTimeout > 0 {
		w = newWatchdog(c.stallTimeout, func() { cancel(chat.ErrStalled) })
		defer w.stop()
	}

	msgs := c.log.Snapshot()
	c.logger.Debug("starting turn",
		zap.String("conversation", c.log.ID()),
		zap.Int("messages", len(msgs)),
	)

	body, err := c.transport.Send(ctx, msgs)
	if err != nil {
		return "", stallCause(ctx, err)
	}
	if body == nil {
		return "", chat.ErrNoBody
	}
	defer body.Close()

	c.setState(chat.StateStreaming)

	var r io.Reader = body
	if w != nil {
		r = &watchedReader{r: body, w: w}
	}
	full, err := c.Run(ctx, r, hooks)
	if err != nil {
		return "", stallCause(ctx, err)
	}
	return full, nil
}

func (c *Controller) fail(err error, hooks chat.Hooks) {
	c.setState(chat.StateFailed)
	if errors.Is(err, context.Canceled) {
		c.logger.Info("turn canceled")
		hooks.Error(err)
		return
	}
	c.logger.Error("turn failed", zap.Error(err))
	hooks.Error(err)
	hooks.Fallback(chat.AssistantMessage(c.fallback))
}

// stallCause replaces the cancellation error produced by the watchdog with
// [chat.ErrStalled].
func stallCause(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); errors.Is(cause, chat.ErrStalled) {
		return cause
	}
	return err
}
