// Package config loads the chat client's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Supported providers.
const (
	ProviderWorkers   = "workers"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Providers lists every supported provider name.
var Providers = []string{ProviderWorkers, ProviderOpenAI, ProviderAnthropic, ProviderGemini}

const (
	dirName  = ".chat"
	fileName = "config.toml"
)

// Default conversation text.
const (
	DefaultGreeting = "Hello! I'm an AI assistant. How can I help you today?"
	DefaultFallback = "Sorry, something went wrong while processing your request."
)

// DefaultStallTimeout is how long a turn may go without data by default.
const DefaultStallTimeout = 60 * time.Second

// Config is the client configuration. Zero values in a loaded file never
// clear defaults unless the key is present.
type Config struct {
	// Provider selects the transport by name. See Providers.
	Provider string `toml:"provider"`

	// BaseURL overrides the provider's endpoint. Empty uses the provider
	// default.
	BaseURL string `toml:"base_url"`

	// Model is the model ID for providers that take one.
	Model string `toml:"model"`

	// SystemPrompt is sent by providers that accept one out of band.
	SystemPrompt string `toml:"system_prompt"`

	// StallTimeout fails a turn that receives no data for this long. Zero
	// disables the watchdog.
	StallTimeout time.Duration `toml:"stall_timeout"`

	// Greeting seeds a new conversation as the assistant's first message.
	// Empty starts with an empty log.
	Greeting string `toml:"greeting"`

	// Fallback is shown in place of a failed response.
	Fallback string `toml:"fallback"`

	// ExtraPaths are gjson paths tried after the built-in fragment shapes.
	ExtraPaths []string `toml:"extra_paths"`

	// LogFile receives logs while the terminal UI owns the screen. A leading
	// "~/" expands to the home directory.
	LogFile string `toml:"log_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Provider:     ProviderWorkers,
		StallTimeout: DefaultStallTimeout,
		Greeting:     DefaultGreeting,
		Fallback:     DefaultFallback,
		LogFile:      filepath.Join("~", dirName, "chat.log"),
	}
}

// DefaultPath returns the configuration file location under the user's home
// directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, dirName, fileName)
}

// Load reads the configuration at path on top of the defaults. A missing file
// yields the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg, overwriting only the keys present.
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("parsing config: unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !slices.Contains(Providers, c.Provider) {
		return fmt.Errorf("unknown provider %q: must be one of %s", c.Provider, strings.Join(Providers, ", "))
	}
	if c.StallTimeout < 0 {
		return fmt.Errorf("stall_timeout must not be negative, got %s", c.StallTimeout)
	}
	for i, p := range c.ExtraPaths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("extra_paths[%d] is empty", i)
		}
	}
	return nil
}

// LogPath returns LogFile with a leading "~/" expanded.
func (c *Config) LogPath() string {
	rest, ok := strings.CutPrefix(c.LogFile, "~"+string(filepath.Separator))
	if !ok {
		return c.LogFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return c.LogFile
	}
	return filepath.Join(home, rest)
}
