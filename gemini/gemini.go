// Package gemini implements [chat.Transport] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK. The SDK's streaming iterator is
// re-emitted as an event stream of Gemini response chunks, one per "data:"
// frame and terminated by "[DONE]", so the controller decodes it like any
// other provider. Pair it with [delta.CandidateText].
package gemini

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 8192
)
