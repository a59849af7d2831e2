package anthropic_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/chat"
	"github.com/fwojciec/chat/anthropic"
	"github.com/fwojciec/chat/controller"
	"github.com/fwojciec/chat/delta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messageStream = "event: message_start\n" +
	"data: {\"type\":\"message_start\",\"message\":{\"id\":\"msg_1\",\"type\":\"message\",\"role\":\"assistant\",\"content\":[],\"model\":\"m\",\"usage\":{\"input_tokens\":3,\"output_tokens\":1}}}\n\n" +
	"event: content_block_start\n" +
	"data: {\"type\":\"content_block_start\",\"index\":0,\"content_block\":{\"type\":\"text\",\"text\":\"\"}}\n\n" +
	"event: ping\n" +
	"data: {\"type\":\"ping\"}\n\n" +
	"event: content_block_delta\n" +
	"data: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\"Hello\"}}\n\n" +
	"event: content_block_delta\n" +
	"data: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\" world\"}}\n\n" +
	"event: content_block_stop\n" +
	"data: {\"type\":\"content_block_stop\",\"index\":0}\n\n" +
	"event: message_delta\n" +
	"data: {\"type\":\"message_delta\",\"delta\":{\"stop_reason\":\"end_turn\"},\"usage\":{\"output_tokens\":2}}\n\n" +
	"event: message_stop\n" +
	"data: {\"type\":\"message_stop\"}\n\n"

func TestClient_RequestFormat(t *testing.T) {
	t.Parallel()

	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)

		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "test-api-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("Anthropic-Version"))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(messageStream))
	}))
	defer srv.Close()

	client := anthropic.New("test-api-key",
		anthropic.WithBaseURL(srv.URL),
		anthropic.WithModel("claude-opus-4-20250514"),
		anthropic.WithMaxTokens(1024),
		anthropic.WithSystemPrompt("You are helpful."),
	)
	body, err := client.Send(context.Background(), []chat.Message{
		chat.AssistantMessage("Hi! How can I help?"),
		chat.UserMessage("Hello"),
		chat.AssistantMessage("Hi"),
		chat.UserMessage("Thanks"),
	})
	require.NoError(t, err)
	require.NoError(t, body.Close())

	var req map[string]any
	require.NoError(t, json.Unmarshal(captured, &req))
	assert.Equal(t, "claude-opus-4-20250514", req["model"])
	assert.Equal(t, float64(1024), req["max_tokens"])
	assert.Equal(t, true, req["stream"])
	assert.Equal(t, "You are helpful.", req["system"])

	msgs := req["messages"].([]any)
	require.Len(t, msgs, 3)
	msg0 := msgs[0].(map[string]any)
	assert.Equal(t, "user", msg0["role"])
	assert.Equal(t, "Hello", msg0["content"])
}

func TestClient_StreamsThroughController(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(messageStream))
	}))
	defer srv.Close()

	log := chat.NewLog("c1")
	client := anthropic.New("k", anthropic.WithBaseURL(srv.URL))
	ex := delta.New(append(delta.DefaultStrategies(), delta.TextDelta)...)
	c := controller.New(client, log, controller.WithExtractor(ex))

	var full string
	err := c.Submit(context.Background(), "hi", chat.Hooks{
		OnComplete: func(s string) { full = s },
	})
	require.NoError(t, err)
	assert.Equal(t, chat.StateCompleted, c.State())
	assert.Equal(t, "Hello world", full)
	assert.Equal(t, 2, log.Len())
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"Rate limited"}}`))
	}))
	defer srv.Close()

	client := anthropic.New("k", anthropic.WithBaseURL(srv.URL))
	_, err := client.Send(context.Background(), []chat.Message{chat.UserMessage("hi")})

	var statusErr *chat.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.EqualError(t, err, "anthropic: HTTP 429: rate_limit_error: Rate limited")
}

func TestConvertMessages(t *testing.T) {
	t.Parallel()

	t.Run("drops leading assistant messages", func(t *testing.T) {
		t.Parallel()
		got := anthropic.ConvertMessagesForTest([]chat.Message{
			chat.AssistantMessage("greeting"),
			chat.UserMessage("q"),
		})
		assert.Equal(t, [][2]string{{"user", "q"}}, got)
	})

	t.Run("merges consecutive roles", func(t *testing.T) {
		t.Parallel()
		got := anthropic.ConvertMessagesForTest([]chat.Message{
			chat.UserMessage("first try"),
			chat.UserMessage("second try"),
			chat.AssistantMessage("answer"),
		})
		assert.Equal(t, [][2]string{
			{"user", "first try\n\nsecond try"},
			{"assistant", "answer"},
		}, got)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, anthropic.ConvertMessagesForTest(nil))
	})
}
