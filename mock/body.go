package mock

import (
	"io"
	"sync"
)

// Body is a response body that returns one chunk per Read, so tests control
// exactly where the stream is split. After the last chunk it returns Err, or
// io.EOF when Err is nil.
type Body struct {
	Chunks [][]byte
	Err    error

	mu     sync.Mutex
	closed bool
}

// NewBody returns a Body that yields each string as a separate chunk.
func NewBody(chunks ...string) *Body {
	b := &Body{}
	for _, c := range chunks {
		b.Chunks = append(b.Chunks, []byte(c))
	}
	return b
}

// Read returns the next chunk. A chunk larger than p is split across calls.
func (b *Body) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, io.ErrClosedPipe
	}
	if len(b.Chunks) == 0 {
		if b.Err != nil {
			return 0, b.Err
		}
		return 0, io.EOF
	}
	n := copy(p, b.Chunks[0])
	if n == len(b.Chunks[0]) {
		b.Chunks = b.Chunks[1:]
	} else {
		b.Chunks[0] = b.Chunks[0][n:]
	}
	return n, nil
}

// Close marks the body closed.
func (b *Body) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (b *Body) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
