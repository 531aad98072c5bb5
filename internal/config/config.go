// Package config handles configuration for dixit.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dixit-research/dixit/internal/models"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	// Endpoint is the backend base URL. A bare origin gets the backend's
	// default path appended; a URL with a path is used as is.
	Endpoint string `json:"endpoint"`
	// Backend selects the request contract: "ask" or "chat".
	Backend string `json:"backend"`
	// HealthEndpoint overrides the health probe URL.
	HealthEndpoint string `json:"health_endpoint,omitempty"`
	// TimeoutSeconds bounds a single request. Zero means no client-side timeout.
	TimeoutSeconds int    `json:"timeout_seconds"`
	Greeting       string `json:"greeting,omitempty"`
	BotName        string `json:"bot_name,omitempty"`
	// Verbose enables diagnostic output on stderr.
	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"` // TUI color theme
	Suggestions     []string       `json:"suggestions,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultSuggestions returns the starter prompts offered by the chat UI
func DefaultSuggestions() []string {
	return []string{
		"What is quantum entanglement?",
		"Summarize recent work on retrieval-augmented generation",
		"Find survey papers on graph neural networks",
		"Explain diffusion models for image generation",
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:        models.DefaultEndpoint,
		Backend:         string(models.BackendAsk),
		TimeoutSeconds:  60,
		Greeting:        models.DefaultGreeting,
		BotName:         models.DefaultBotName,
		Verbose:         false,
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		Suggestions:     DefaultSuggestions(),
		Markdown:        DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	if dir := os.Getenv("DIXIT_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(home, ".dixit")
	return configDir, nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the values that the client cannot recover from
func (c Config) Validate() error {
	if c.Endpoint != "" {
		u, err := url.Parse(c.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid endpoint %q: expected http(s)://host[:port][/path]", c.Endpoint)
		}
	}
	if _, err := models.ParseBackend(c.Backend); err != nil {
		return err
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", c.TimeoutSeconds)
	}
	return nil
}

// setters maps config keys to functions that parse and assign a value
var setters = map[string]func(*Config, string) error{
	"endpoint":        func(c *Config, v string) error { c.Endpoint = strings.TrimSpace(v); return nil },
	"backend":         func(c *Config, v string) error { c.Backend = strings.ToLower(strings.TrimSpace(v)); return nil },
	"health_endpoint": func(c *Config, v string) error { c.HealthEndpoint = strings.TrimSpace(v); return nil },
	"timeout_seconds": func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("timeout_seconds must be an integer: %w", err)
		}
		c.TimeoutSeconds = n
		return nil
	},
	"greeting":          func(c *Config, v string) error { c.Greeting = v; return nil },
	"bot_name":          func(c *Config, v string) error { c.BotName = v; return nil },
	"verbose":           boolSetter(func(c *Config) *bool { return &c.Verbose }),
	"copy_to_clipboard": boolSetter(func(c *Config) *bool { return &c.CopyToClipboard }),
	"tui_theme":         func(c *Config, v string) error { c.TUITheme = strings.TrimSpace(v); return nil },
	"suggestions": func(c *Config, v string) error {
		var out []string
		for _, s := range strings.Split(v, "|") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		c.Suggestions = out
		return nil
	},
	"markdown.style":              func(c *Config, v string) error { c.Markdown.Style = strings.TrimSpace(v); return nil },
	"markdown.enable_emoji":       boolSetter(func(c *Config) *bool { return &c.Markdown.EnableEmoji }),
	"markdown.preserve_newlines":  boolSetter(func(c *Config) *bool { return &c.Markdown.PreserveNewLines }),
	"markdown.table_wrap":         boolSetter(func(c *Config) *bool { return &c.Markdown.TableWrap }),
	"markdown.inline_table_links": boolSetter(func(c *Config) *bool { return &c.Markdown.InlineTableLinks }),
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", v)
		}
		*field(c) = b
		return nil
	}
}

// Set assigns value to the named key and validates the result.
// Suggestions are given as a single value separated by "|".
func (c *Config) Set(key, value string) error {
	setter, ok := setters[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("unknown config key %q (available: %s)", key, strings.Join(Keys(), ", "))
	}

	next := *c
	if err := setter(&next, value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}

	*c = next
	return nil
}

// Keys returns the settable config keys in sorted order
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BackendKind returns the parsed backend, falling back to the default
func (c Config) BackendKind() models.Backend {
	b, err := models.ParseBackend(c.Backend)
	if err != nil {
		return models.BackendAsk
	}
	return b
}

// DisplayBotName returns the bot label used in transcripts
func (c Config) DisplayBotName() string {
	if strings.TrimSpace(c.BotName) == "" {
		return models.DefaultBotName
	}
	return c.BotName
}
