package controller

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/fwojciec/chat"
	"github.com/fwojciec/chat/sse"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const readSize = 4096

// Run reads an event stream from body until it ends and returns the
// concatenated text of its deltas.
//
// Bytes are decoded as UTF-8 across read boundaries, so a multi-byte
// character split between reads is reassembled and invalid bytes become
// U+FFFD. A leading byte order mark is dropped. Each non-empty delta is
// passed to OnDelta as it arrives. Payloads that are not JSON are logged and
// skipped. The [sse.Sentinel] payload ends the stream at once and anything
// after it is ignored, as is an unterminated frame at EOF.
//
// Run does not close body and does not change the controller state.
func (c *Controller) Run(ctx context.Context, body io.Reader, hooks chat.Hooks) (string, error) {
	r := transform.NewReader(body, unicode.UTF8BOM.NewDecoder())
	buf := make([]byte, readSize)

	var (
		dec    sse.Decoder
		full   strings.Builder
		deltas int
	)
	for {
		if err := ctx.Err(); err != nil {
			return "", context.Cause(ctx)
		}

		n, err := r.Read(buf)
		if n > 0 {
			for _, data := range dec.Feed(string(buf[:n])) {
				if data == sse.Sentinel {
					c.logDone(deltas, full.Len(), "sentinel")
					return full.String(), nil
				}
				text, xerr := c.extractor.Extract(data)
				if xerr != nil {
					c.logger.Warn("skipping payload",
						zap.String("payload", data),
						zap.Error(xerr),
					)
					continue
				}
				if text == "" {
					continue
				}
				deltas++
				full.WriteString(text)
				hooks.Delta(text)
			}
		}
		if errors.Is(err, io.EOF) {
			if rest := dec.Buffered(); rest != "" {
				c.logger.Debug("discarding unterminated frame", zap.String("rest", rest))
			}
			c.logDone(deltas, full.Len(), "eof")
			return full.String(), nil
		}
		if err != nil {
			return "", err
		}
	}
}

func (c *Controller) logDone(deltas, size int, reason string) {
	c.logger.Debug("stream finished",
		zap.String("reason", reason),
		zap.Int("deltas", deltas),
		zap.Int("bytes", size),
	)
}
