package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"

	"github.com/fwojciec/chat"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ chat.Transport = (*Client)(nil)

// Client implements [chat.Transport] for the Google Gemini API.
type Client struct {
	client    *genai.Client
	model     string
	maxTokens int
	system    string
	logger    *zap.Logger

	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Empty keeps the default.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens caps the length of each response.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithSystemPrompt sets the system instruction sent with every request.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) { c.system = prompt }
}

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	c := &Client{
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  c.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c.client = gc
	return c, nil
}

// Send starts a streaming generation for msgs. Errors the API reports before
// the first chunk are returned here; later ones surface as read errors on
// the body.
func (c *Client) Send(ctx context.Context, msgs []chat.Message) (io.ReadCloser, error) {
	c.logger.Debug("sending request", zap.String("model", c.model), zap.Int("messages", len(msgs)))

	seq := c.client.Models.GenerateContentStream(ctx, c.model, convertMessages(msgs), c.config())
	next, stop := iter.Pull2(seq)

	first, err, ok := next()
	if err != nil {
		stop()
		return nil, fmt.Errorf("gemini: %w", statusError(err))
	}
	if !ok {
		stop()
		return nil, chat.ErrNoBody
	}

	pr, pw := io.Pipe()
	go func() {
		defer stop()
		for resp := first; ; {
			if err := writeFrame(pw, resp); err != nil {
				// The reader was closed.
				return
			}
			resp, err, ok = next()
			if !ok {
				break
			}
			if err != nil {
				pw.CloseWithError(fmt.Errorf("gemini: %w", err))
				return
			}
		}
		if _, err := io.WriteString(pw, "data: [DONE]\n\n"); err != nil {
			return
		}
		pw.Close()
	}()
	return pr, nil
}

func (c *Client) config() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(c.maxTokens),
	}
	if c.system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: c.system}},
		}
	}
	return config
}

func writeFrame(w io.Writer, resp *genai.GenerateContentResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

// convertMessages maps the log to Gemini contents. Gemini conversations
// start with a user turn, so leading assistant messages such as the
// greeting are dropped. Consecutive messages of one role share a content.
func convertMessages(msgs []chat.Message) []*genai.Content {
	var result []*genai.Content
	for _, msg := range msgs {
		role := "user"
		if msg.Role == chat.RoleAssistant {
			role = "model"
		}
		if len(result) == 0 && role == "model" {
			continue
		}
		part := &genai.Part{Text: msg.Content}
		if n := len(result); n > 0 && result[n-1].Role == role {
			result[n-1].Parts = append(result[n-1].Parts, part)
			continue
		}
		result = append(result, &genai.Content{Role: role, Parts: []*genai.Part{part}})
	}
	return result
}

// statusError converts an API error into a [chat.StatusError].
func statusError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &chat.StatusError{StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	return err
}
