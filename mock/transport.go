// Package mock provides test doubles for chat interfaces using function fields.
package mock

import (
	"context"
	"io"

	"github.com/fwojciec/chat"
)

// Interface compliance check.
var _ chat.Transport = (*Transport)(nil)

// Transport is a test double for chat.Transport.
// Set SendFn before calling Send.
type Transport struct {
	SendFn func(ctx context.Context, msgs []chat.Message) (io.ReadCloser, error)
}

// Send delegates to SendFn.
func (t *Transport) Send(ctx context.Context, msgs []chat.Message) (io.ReadCloser, error) {
	return t.SendFn(ctx, msgs)
}
