package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/chat"
	"github.com/fwojciec/chat/controller"
	"github.com/fwojciec/chat/mock"
)

func replyTransport(replies ...string) *mock.Transport {
	var i int
	return &mock.Transport{
		SendFn: func(_ context.Context, _ []chat.Message) (io.ReadCloser, error) {
			reply := replies[i%len(replies)]
			i++
			return mock.NewBody("data: {\"response\":\""+reply+"\"}\n\n", "data: [DONE]\n\n"), nil
		},
	}
}

func TestREPL_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints greeting and streamed replies", func(t *testing.T) {
		t.Parallel()

		log := chat.NewLog("test", chat.AssistantMessage("Hello there!"))
		ctrl := controller.New(replyTransport("first reply", "second reply"), log)
		var out bytes.Buffer

		err := newREPL(ctrl, strings.NewReader("one\ntwo\n"), &out, chat.DefaultTheme()).run(context.Background())
		require.NoError(t, err)

		got := out.String()
		assert.Contains(t, got, "assistant> Hello there!")
		assert.Contains(t, got, "assistant> first reply")
		assert.Contains(t, got, "assistant> second reply")
		assert.Less(t, strings.Index(got, "first reply"), strings.Index(got, "second reply"))
		assert.Equal(t, 5, log.Len())
	})

	t.Run("blank lines are skipped", func(t *testing.T) {
		t.Parallel()

		var sends int
		transport := &mock.Transport{
			SendFn: func(_ context.Context, _ []chat.Message) (io.ReadCloser, error) {
				sends++
				return mock.NewBody("data: {\"response\":\"ok\"}\n\n"), nil
			},
		}
		log := chat.NewLog("test")
		ctrl := controller.New(transport, log)

		err := newREPL(ctrl, strings.NewReader("\n   \nhi\n\n"), io.Discard, chat.DefaultTheme()).run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, sends)
		assert.Equal(t, 2, log.Len())
	})

	t.Run("exit command stops reading", func(t *testing.T) {
		t.Parallel()

		log := chat.NewLog("test")
		ctrl := controller.New(replyTransport("ok"), log)

		err := newREPL(ctrl, strings.NewReader("/exit\nhi\n"), io.Discard, chat.DefaultTheme()).run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 0, log.Len())
	})

	t.Run("failure prints fallback and continues", func(t *testing.T) {
		t.Parallel()

		calls := 0
		transport := &mock.Transport{
			SendFn: func(_ context.Context, _ []chat.Message) (io.ReadCloser, error) {
				calls++
				if calls == 1 {
					return nil, errors.New("connection refused")
				}
				return mock.NewBody("data: {\"response\":\"recovered\"}\n\n"), nil
			},
		}
		log := chat.NewLog("test")
		ctrl := controller.New(transport, log, controller.WithFallback("Sorry."))
		var out bytes.Buffer

		err := newREPL(ctrl, strings.NewReader("one\ntwo\n"), &out, chat.DefaultTheme()).run(context.Background())
		require.NoError(t, err)

		got := out.String()
		assert.Contains(t, got, "Error: connection refused")
		assert.Contains(t, got, "Sorry.")
		assert.Contains(t, got, "recovered")
	})

	t.Run("cancelled context stops after the turn", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		transport := &mock.Transport{
			SendFn: func(_ context.Context, _ []chat.Message) (io.ReadCloser, error) {
				cancel()
				return nil, context.Canceled
			},
		}
		log := chat.NewLog("test")
		ctrl := controller.New(transport, log)
		var out bytes.Buffer

		err := newREPL(ctrl, strings.NewReader("one\ntwo\n"), &out, chat.DefaultTheme()).run(ctx)
		require.NoError(t, err)

		// Only the first line was sent; cancellation shows no fallback.
		assert.Equal(t, 1, log.Len())
		assert.NotContains(t, out.String(), controller.DefaultFallback)
	})
}
