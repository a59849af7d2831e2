// Package workers implements [chat.Transport] for a Cloudflare Workers AI
// chat endpoint.
//
// The endpoint accepts the whole conversation as {"messages": [...]} and
// answers with a server-sent-event stream of {"response": "..."} fragments
// terminated by a [DONE] payload.
package workers

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
	defaultBaseURL = "http://localhost:8787"
	chatPath       = "/api/chat"

	// maxErrorBody caps how much of a failed response is kept in a
	// [chat.StatusError].
	maxErrorBody = 4096
)

// Interface compliance check.
var _ chat.Transport = (*Client)(nil)

// Client sends conversations to a Workers AI chat endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the endpoint base URL. Useful for testing with httptest.
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

// New creates a Workers AI [Client].
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiRequest struct {
	Messages []apiMessage `json:"messages"`
}

// Send posts msgs to the chat endpoint and returns the event-stream body.
func (c *Client) Send(ctx context.Context, msgs []chat.Message) (io.ReadCloser, error) {
	req := apiRequest{Messages: make([]apiMessage, len(msgs))}
	for i, m := range msgs {
		req.Messages[i] = apiMessage{Role: string(m.Role), Content: m.Content}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("workers: %w", err)
	}

	url := c.baseURL + chatPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("workers: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	c.logger.Debug("sending request", zap.String("url", url), zap.Int("messages", len(msgs)))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("workers: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, fmt.Errorf("workers: %w", chat.ErrNoBody)
	}
	return resp.Body, nil
}

func parseHTTPError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("workers: %w", &chat.StatusError{
		StatusCode: resp.StatusCode,
		Body:       string(bytes.TrimSpace(body)),
	})
}
