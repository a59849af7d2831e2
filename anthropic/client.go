package anthropic

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

// Interface compliance check.
var _ chat.Transport = (*Client)(nil)

// Client implements [chat.Transport] for the Anthropic Messages API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	system     string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
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

// WithMaxTokens caps the length of each response.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithSystemPrompt sets the system prompt sent with every request.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) { c.system = prompt }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new Anthropic [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		maxTokens:  defaultMaxTokens,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Send posts msgs to the Messages API as a streaming request and returns the
// event-stream body.
func (c *Client) Send(ctx context.Context, msgs []chat.Message) (io.ReadCloser, error) {
	body, err := json.Marshal(apiRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Stream:    true,
		System:    c.system,
		Messages:  convertMessages(msgs),
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	url := c.baseURL + messagesPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", apiVersion)

	c.logger.Debug("sending request",
		zap.String("url", url),
		zap.String("model", c.model),
		zap.Int("messages", len(msgs)),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, fmt.Errorf("anthropic: %w", chat.ErrNoBody)
	}
	return resp.Body, nil
}

// convertMessages maps the log onto the API's alternating roles. The API
// requires the first message to come from the user, so leading assistant
// messages such as a greeting are dropped. Consecutive messages with the same
// role, left behind by failed turns, are merged.
func convertMessages(msgs []chat.Message) []apiMessage {
	var result []apiMessage
	for _, m := range msgs {
		if len(result) == 0 && m.Role != chat.RoleUser {
			continue
		}
		if n := len(result); n > 0 && result[n-1].Role == string(m.Role) {
			result[n-1].Content += "\n\n" + m.Content
			continue
		}
		result = append(result, apiMessage{Role: string(m.Role), Content: m.Content})
	}
	return result
}

func parseHTTPError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	statusErr := &chat.StatusError{
		StatusCode: resp.StatusCode,
		Body:       string(bytes.TrimSpace(body)),
	}
	var apiErr apiErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		statusErr.Body = apiErr.Error.Type + ": " + apiErr.Error.Message
	}
	return fmt.Errorf("anthropic: %w", statusErr)
}
