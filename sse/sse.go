// Package sse decodes server-sent-event streams into their data payloads.
//
// Decoding is incremental. Input may arrive split at any byte, and the
// unterminated tail of the stream is carried over until the rest of its frame
// arrives. Only "data:" fields are interpreted; event names, ids, retry hints
// and comments are dropped.
//
// See https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import (
	"strings"
	"unicode"
)

// Sentinel is the data payload that marks the end of a stream.
const Sentinel = "[DONE]"

const dataField = "data:"

// Decode extracts every complete frame from buf and returns the data payload
// of each, in order, together with the unconsumed remainder. The remainder is
// meant to be prefixed to the next chunk of input.
//
// CRLF, CR and LF are all line terminators. A frame ends at the first blank
// line. Within a frame, each "data:" line contributes its value with leading
// whitespace removed, and multiple values are joined with "\n". A frame with
// no "data:" line yields nothing.
func Decode(buf string) (events []string, rest string) {
	// A trailing CR may be the first half of a CRLF split across chunks, so
	// it stays raw until the next byte decides what it is.
	held := ""
	if strings.HasSuffix(buf, "\r") {
		buf, held = buf[:len(buf)-1], "\r"
	}
	rest = normalize(buf)

	for {
		frame, after, ok := strings.Cut(rest, "\n\n")
		if !ok {
			return events, rest + held
		}
		rest = after
		if data, ok := frameData(frame); ok {
			events = append(events, data)
		}
	}
}

func normalize(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// frameData joins the values of the "data:" lines in frame. The second result
// is false when the frame has no "data:" line at all.
func frameData(frame string) (string, bool) {
	var values []string
	for _, line := range strings.Split(frame, "\n") {
		value, ok := strings.CutPrefix(line, dataField)
		if !ok {
			continue
		}
		// Left trim only: whitespace inside or at the end of the payload is
		// content.
		values = append(values, strings.TrimLeftFunc(value, unicode.IsSpace))
	}
	if len(values) == 0 {
		return "", false
	}
	return strings.Join(values, "\n"), true
}
