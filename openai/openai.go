// Package openai implements [chat.Transport] for OpenAI-compatible chat
// completion APIs.
//
// Requests always ask for a streamed response. The body is a server-sent-event
// stream of chat.completion.chunk objects whose text lives at
// choices[0].delta.content, terminated by a [DONE] payload.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fwojciec/chat"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "gpt-4o-mini"
	completionPath = "/v1/chat/completions"
	maxErrorBody   = 4096
)

// Interface compliance check.
var _ chat.Transport = (*Client)(nil)

// Client sends conversations to an OpenAI-compatible API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest and for
// compatible servers such as Ollama or vLLM.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithModel sets the model ID. Empty keeps the default.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a [Client] authenticating with apiKey. An empty key sends no
// Authorization header, which local compatible servers accept.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Model returns the model ID requests are sent with.
func (c *Client) Model() string { return c.model }

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiRequest struct {
	Model    string       `json:"model"`
	Messages []apiMessage `json:"messages"`
	Stream   bool         `json:"stream"`
}

// apiErrorResponse is the JSON body returned on non-2xx responses.
type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Send posts msgs as a streaming chat completion request and returns the
// event-stream body.
func (c *Client) Send(ctx context.Context, msgs []chat.Message) (io.ReadCloser, error) {
	req := apiRequest{
		Model:    c.model,
		Messages: make([]apiMessage, len(msgs)),
		Stream:   true,
	}
	for i, m := range msgs {
		req.Messages[i] = apiMessage{Role: string(m.Role), Content: m.Content}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	url := c.baseURL + completionPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("sending request",
		zap.String("url", url),
		zap.String("model", c.model),
		zap.Int("messages", len(msgs)),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, fmt.Errorf("openai: %w", chat.ErrNoBody)
	}
	return resp.Body, nil
}

// parseHTTPError keeps the API's error message as the status body when the
// response carries one, and the raw body otherwise.
func parseHTTPError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	statusErr := &chat.StatusError{
		StatusCode: resp.StatusCode,
		Body:       string(bytes.TrimSpace(body)),
	}
	var apiErr apiErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		statusErr.Body = apiErr.Error.Message
	}
	return fmt.Errorf("openai: %w", statusErr)
}
