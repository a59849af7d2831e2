package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/fwojciec/chat"
	bt "github.com/fwojciec/chat/bubbletea"
	"github.com/fwojciec/chat/config"
	"github.com/fwojciec/chat/controller"
	"github.com/fwojciec/chat/logger"
)

const rootLongDesc = `Chat with a language model from the terminal.

Replies stream in as they are generated and are rendered as markdown with
highlighted code. Press Enter to send, Alt+Enter for a new line and Ctrl+C to
stop a reply or quit.

Providers:
  workers    Cloudflare Workers AI chat endpoint (default)
  openai     OpenAI-compatible chat completions
  anthropic  Anthropic Messages API
  gemini     Google Gemini API

Examples:
  chat
  chat --provider openai --model gpt-4o-mini
  chat --provider workers --base-url https://chat.example.workers.dev
  chat --plain < questions.txt`

// commander holds the flag values and the resolved configuration of one
// invocation.
type commander struct {
	env environment

	configPath   string
	provider     string
	baseURL      string
	model        string
	systemPrompt string
	apiKey       string
	stallTimeout time.Duration
	logFile      string
	plain        bool
	debug        bool

	cfg *config.Config
}

func newRootCmd(env environment) *cobra.Command {
	c := &commander{env: env}
	return c.command()
}

func (c *commander) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chat",
		Short:         "Stream replies from a chat model in the terminal",
		Long:          rootLongDesc,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.resolveConfig(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	defaults := config.Default()
	flags := cmd.Flags()
	flags.StringVarP(&c.configPath, "config", "c", config.DefaultPath(), "Path to the TOML config file")
	flags.StringVarP(&c.provider, "provider", "p", defaults.Provider, "Provider: workers, openai, anthropic, gemini")
	flags.StringVar(&c.baseURL, "base-url", defaults.BaseURL, "Endpoint base URL (default: provider default)")
	flags.StringVarP(&c.model, "model", "m", defaults.Model, "Model ID (default: provider default)")
	flags.StringVar(&c.systemPrompt, "system-prompt", defaults.SystemPrompt, "System prompt for providers that accept one")
	flags.StringVar(&c.apiKey, "api-key", "", "API key (overrides CHAT_API_KEY and the provider's env var)")
	flags.DurationVar(&c.stallTimeout, "stall-timeout", defaults.StallTimeout, "Fail a reply that receives no data for this long (0 disables)")
	flags.StringVar(&c.logFile, "log-file", defaults.LogFile, "Log file used while the terminal UI runs")
	flags.BoolVar(&c.plain, "plain", false, "Line mode: read prompts from stdin and print plain replies")
	flags.BoolVarP(&c.debug, "debug", "d", false, "Enable debug logging")

	return cmd
}

// resolveConfig loads the config file and applies the flags the user set
// explicitly on top of it.
func (c *commander) resolveConfig(flags *pflag.FlagSet) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	if flags.Changed("provider") {
		cfg.Provider = c.provider
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = c.baseURL
	}
	if flags.Changed("model") {
		cfg.Model = c.model
	}
	if flags.Changed("system-prompt") {
		cfg.SystemPrompt = c.systemPrompt
	}
	if flags.Changed("stall-timeout") {
		cfg.StallTimeout = c.stallTimeout
	}
	if flags.Changed("log-file") {
		cfg.LogFile = c.logFile
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.cfg = cfg
	return nil
}

func (c *commander) run(ctx context.Context, in io.Reader, out io.Writer) error {
	logOut, closeLog, err := c.logWriter()
	if err != nil {
		return err
	}
	defer closeLog()

	log := logger.NewLogger(c.debug, logOut)
	defer func() { _ = log.Sync() }()

	transport, err := resolveTransport(ctx, c.cfg, c.apiKey, c.env, log)
	if err != nil {
		return err
	}

	var seed []chat.Message
	if c.cfg.Greeting != "" {
		seed = append(seed, chat.AssistantMessage(c.cfg.Greeting))
	}
	conversation := chat.NewLog(uuid.NewString(), seed...)

	ctrl := controller.New(transport, conversation,
		controller.WithLogger(log),
		controller.WithExtractor(newExtractor(c.cfg)),
		controller.WithStallTimeout(c.cfg.StallTimeout),
		controller.WithFallback(c.cfg.Fallback),
	)

	log.Info("starting chat",
		zap.String("conversation", conversation.ID()),
		zap.String("provider", c.cfg.Provider),
		zap.Bool("plain", c.plain),
	)

	theme := chat.DefaultTheme()
	if c.plain {
		return newREPL(ctrl, in, out, theme).run(ctx)
	}

	if err := bt.Run(ctx, bt.New(ctrl.Submit, conversation, theme)); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

// logWriter returns stderr in plain mode. The terminal UI owns the screen, so
// otherwise logs go to the configured file.
func (c *commander) logWriter() (io.Writer, func(), error) {
	if c.plain {
		return os.Stderr, func() {}, nil
	}
	path := c.cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
