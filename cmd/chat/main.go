// Command chat is a terminal client for streaming chat models.
//
// Usage:
//
//	chat [flags]
//	OPENAI_API_KEY=sk-... chat --provider openai
//	ANTHROPIC_API_KEY=sk-... chat --provider anthropic
//	GEMINI_API_KEY=gk-...    chat --provider gemini
//
// Settings are read from ~/.chat/config.toml; flags override the file.
// CHAT_API_KEY applies to any provider and takes precedence over the
// provider's own variable.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Env vars are read here and passed down as values.
	env := environment{
		chatKey:      os.Getenv("CHAT_API_KEY"),
		openAIKey:    os.Getenv("OPENAI_API_KEY"),
		anthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		geminiKey:    os.Getenv("GEMINI_API_KEY"),
	}

	if err := newRootCmd(env).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "chat: %v\n", err)
		stop()
		os.Exit(1)
	}
}
