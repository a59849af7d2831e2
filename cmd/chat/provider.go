package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fwojciec/chat"
	"github.com/fwojciec/chat/anthropic"
	"github.com/fwojciec/chat/config"
	"github.com/fwojciec/chat/delta"
	"github.com/fwojciec/chat/gemini"
	"github.com/fwojciec/chat/openai"
	"github.com/fwojciec/chat/workers"
)

// environment carries the env vars the command reads. They are read in main
// and passed down as values.
type environment struct {
	chatKey      string
	openAIKey    string
	anthropicKey string
	geminiKey    string
}

// resolveTransport constructs the transport for cfg.Provider. The key
// precedence is the --api-key flag, then CHAT_API_KEY, then the provider's
// own variable.
func resolveTransport(ctx context.Context, cfg *config.Config, apiKeyFlag string, env environment, log *zap.Logger) (chat.Transport, error) {
	key := apiKeyFlag
	if key == "" {
		key = env.chatKey
	}

	switch cfg.Provider {
	case config.ProviderWorkers:
		opts := []workers.Option{workers.WithLogger(log)}
		if cfg.BaseURL != "" {
			opts = append(opts, workers.WithBaseURL(cfg.BaseURL))
		}
		return workers.New(opts...), nil

	case config.ProviderOpenAI:
		if key == "" {
			key = env.openAIKey
		}
		// Self-hosted compatible servers often run without auth.
		if key == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set (use --api-key, CHAT_API_KEY or --base-url for a local server)")
		}
		opts := []openai.Option{openai.WithModel(cfg.Model), openai.WithLogger(log)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(key, opts...), nil

	case config.ProviderAnthropic:
		if key == "" {
			key = env.anthropicKey
		}
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set (use --api-key or CHAT_API_KEY)")
		}
		opts := []anthropic.Option{
			anthropic.WithModel(cfg.Model),
			anthropic.WithSystemPrompt(cfg.SystemPrompt),
			anthropic.WithLogger(log),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		return anthropic.New(key, opts...), nil

	case config.ProviderGemini:
		if key == "" {
			key = env.geminiKey
		}
		if key == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set (use --api-key or CHAT_API_KEY)")
		}
		opts := []gemini.Option{
			gemini.WithModel(cfg.Model),
			gemini.WithSystemPrompt(cfg.SystemPrompt),
			gemini.WithLogger(log),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(cfg.BaseURL))
		}
		client, err := gemini.New(ctx, key, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// newExtractor returns the fragment extractor for cfg: the built-in shapes,
// the provider's own shape when it has one, then any configured paths.
func newExtractor(cfg *config.Config) *delta.Extractor {
	strategies := delta.DefaultStrategies()
	switch cfg.Provider {
	case config.ProviderAnthropic:
		strategies = append(strategies, delta.TextDelta)
	case config.ProviderGemini:
		strategies = append(strategies, delta.CandidateText)
	}
	for _, path := range cfg.ExtraPaths {
		strategies = append(strategies, delta.Strategy{Name: path, Path: path})
	}
	return delta.New(strategies...)
}
