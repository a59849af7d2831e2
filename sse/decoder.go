package sse

// Decoder owns the carry-over buffer for one stream. The zero value is ready
// to use. A Decoder is not safe for concurrent use.
type Decoder struct {
	buf string
}

// Feed appends chunk to the carry-over buffer and returns the data payloads
// of every frame the buffer now completes.
func (d *Decoder) Feed(chunk string) []string {
	var events []string
	events, d.buf = Decode(d.buf + chunk)
	return events
}

// Buffered returns the text held back waiting for a frame terminator.
func (d *Decoder) Buffered() string { return d.buf }

// Reset discards the carry-over buffer.
func (d *Decoder) Reset() { d.buf = "" }
