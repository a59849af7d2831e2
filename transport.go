package chat

import (
	"context"
	"io"
)

// Transport sends the conversation context to the model API and returns the
// raw server-sent-event body of the response.
//
// Implementations return an error for network failures, a *StatusError for
// non-success statuses and ErrNoBody when the response has nothing to read.
// The caller closes the returned body. Cancellation flows through ctx, which
// must stay bound to the body for its whole lifetime.
type Transport interface {
	Send(ctx context.Context, msgs []Message) (io.ReadCloser, error)
}
