package chat

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrEmptyInput indicates a submission that is blank after trimming.
	ErrEmptyInput = errors.New("empty input")

	// ErrBusy indicates a submission while another turn is in flight.
	ErrBusy = errors.New("turn already in progress")

	// ErrNoBody indicates a successful response that carried no readable body.
	ErrNoBody = errors.New("response has no body")

	// ErrStalled indicates the transport stopped delivering data for longer
	// than the configured stall timeout.
	ErrStalled = errors.New("stream stalled")
)

// StatusError reports a non-success HTTP status returned by a Transport.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}
