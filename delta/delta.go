// Package delta extracts incremental response text from streamed JSON
// fragments.
//
// Model APIs disagree on where a streamed fragment carries its text. An
// Extractor holds an ordered list of strategies, each naming one location,
// and the first strategy that yields text wins. The order is policy: callers
// that want different precedence build their own list.
package delta

import (
	"errors"

	"github.com/tidwall/gjson"
)

// ErrMalformed indicates a payload that is not valid JSON.
var ErrMalformed = errors.New("malformed payload")

// Strategy locates the text of a fragment at a gjson path.
type Strategy struct {
	Name string
	Path string
}

// Recognized fragment shapes.
var (
	// ResponseField reads {"response": "..."}, as streamed by Workers AI.
	ResponseField = Strategy{Name: "response", Path: "response"}

	// ChoiceDelta reads {"choices": [{"delta": {"content": "..."}}]}, as
	// streamed by OpenAI-compatible chat completion APIs.
	ChoiceDelta = Strategy{Name: "choice-delta", Path: "choices.0.delta.content"}

	// TextDelta reads {"delta": {"text": "..."}}, as streamed by the
	// Anthropic Messages API. It is not part of the default list.
	TextDelta = Strategy{Name: "text-delta", Path: "delta.text"}

	// CandidateText reads the first part of the first candidate of a Gemini
	// response chunk. It is not part of the default list.
	CandidateText = Strategy{Name: "candidate-text", Path: "candidates.0.content.parts.0.text"}
)

// DefaultStrategies returns the built-in precedence: ResponseField, then
// ChoiceDelta.
func DefaultStrategies() []Strategy {
	return []Strategy{ResponseField, ChoiceDelta}
}

// Extractor pulls text out of fragments using an ordered list of strategies.
type Extractor struct {
	strategies []Strategy
}

// New creates an Extractor that tries strategies in the given order. With no
// strategies it uses DefaultStrategies.
func New(strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Extractor{strategies: strategies}
}

// Strategies returns the extractor's strategies in precedence order.
func (e *Extractor) Strategies() []Strategy {
	out := make([]Strategy, len(e.strategies))
	copy(out, e.strategies)
	return out
}

// Extract returns the text carried by payload. It returns ErrMalformed when
// payload is not a JSON object, and an empty string with a nil error when no strategy
// finds text. Only string and number values count as text; empty strings
// fall through to the next strategy.
func (e *Extractor) Extract(payload string) (string, error) {
	if !gjson.Valid(payload) || !gjson.Parse(payload).IsObject() {
		return "", ErrMalformed
	}
	for _, s := range e.strategies {
		r := gjson.Get(payload, s.Path)
		switch r.Type {
		case gjson.String, gjson.Number:
			if text := r.String(); text != "" {
				return text, nil
			}
		}
	}
	return "", nil
}
