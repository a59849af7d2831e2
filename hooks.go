package chat

// Hooks observes a streaming turn. Every field is optional: a zero Hooks runs
// a turn headlessly, which is how tests drive the controller.
type Hooks struct {
	// OnBusy is called with true when a turn starts and with false when it
	// ends, on every exit path.
	OnBusy func(busy bool)

	// OnDelta receives each non-empty text delta in arrival order.
	OnDelta func(delta string)

	// OnComplete receives the full accumulated text, which may be empty.
	OnComplete func(full string)

	// OnError receives the error that failed the turn.
	OnError func(err error)

	// OnFallback receives the assistant message to show the user in place of
	// a failed response.
	OnFallback func(msg Message)
}

// Busy calls OnBusy if set.
func (h Hooks) Busy(busy bool) {
	if h.OnBusy != nil {
		h.OnBusy(busy)
	}
}

// Delta calls OnDelta if set.
func (h Hooks) Delta(delta string) {
	if h.OnDelta != nil {
		h.OnDelta(delta)
	}
}

// Complete calls OnComplete if set.
func (h Hooks) Complete(full string) {
	if h.OnComplete != nil {
		h.OnComplete(full)
	}
}

// Error calls OnError if set.
func (h Hooks) Error(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}

// Fallback calls OnFallback if set.
func (h Hooks) Fallback(msg Message) {
	if h.OnFallback != nil {
		h.OnFallback(msg)
	}
}
