package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	chaterr "github.com/abdul-hamid-achik/pplxchat/internal/errors"
)

// Provider selects the remote completion API
type Provider string

const (
	ProviderPerplexity Provider = "perplexity"
	ProviderAnthropic  Provider = "anthropic"
)

// Store backends for the key/value persistence
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Opener choices for surfacing a written file
const (
	OpenPreview = "preview" // highlighted preview in the active UI
	OpenEditor  = "editor"  // $VISUAL / $EDITOR
	OpenNone    = "none"
)

// Chat modes as sent by the UIs
const (
	ModeChat    = "chat"
	ModeAgentic = "agentic"
)

// Secret keys used in the key/value store
const (
	KeyAPIKey      = "perplexityApiKey"
	KeyChatHistory = "perplexityChatHistory"
)

// RateLimitConfig holds client-side throttling for the completion API
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

// StoreConfig selects where the credential and history are persisted
type StoreConfig struct {
	Backend string `yaml:"backend"` // file, sqlite, memory
	Path    string `yaml:"path"`    // file: JSON file; sqlite: database file
}

// WorkspaceConfig controls where materialized files land
type WorkspaceConfig struct {
	Roots          []string `yaml:"roots"`            // first root receives bare filenames
	RestrictToRoot bool     `yaml:"restrict_to_root"` // refuse paths outside the first root
	OpenWith       string   `yaml:"open_with"`        // preview, editor, none
	Editor         string   `yaml:"editor"`           // overrides $VISUAL / $EDITOR
	Overwrite      string   `yaml:"overwrite"`        // ask, always, never
}

// ChatConfig holds conversation behaviour
type ChatConfig struct {
	DefaultMode              string `yaml:"default_mode"`                // chat or agentic
	SuppressResponseOnAction bool   `yaml:"suppress_response_on_action"` // hide reply when a file was written
}

// ServerConfig holds the web UI listener
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config holds the application configuration
type Config struct {
	APIKey       string          `yaml:"-"` // From environment or --token only
	Provider     Provider        `yaml:"provider"`
	DefaultModel string          `yaml:"default_model"`
	BaseURL      string          `yaml:"base_url"`
	MaxTokens    int             `yaml:"max_tokens"`
	Timeout      time.Duration   `yaml:"timeout"`
	LogLevel     string          `yaml:"log_level"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
	Store        StoreConfig     `yaml:"store"`
	Workspace    WorkspaceConfig `yaml:"workspace"`
	Chat         ChatConfig      `yaml:"chat"`
	Server       ServerConfig    `yaml:"server"`

	// Internal: where config was loaded from
	configPath string
}

// LoadOptions tweaks Load for command-line overrides
type LoadOptions struct {
	Path          string // explicit config file; skips the search path
	TokenOverride string // --token flag
	CreateDefault bool   // write .pplxchat/config.yaml when nothing was found
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Provider:     ProviderPerplexity,
		DefaultModel: "sonar-pro",
		BaseURL:      "https://api.perplexity.ai",
		MaxTokens:    4096,
		Timeout:      120 * time.Second,
		LogLevel:     "warn",
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerMinute: 20,
		},
		Store: StoreConfig{
			Backend: BackendFile,
			Path:    defaultStorePath(),
		},
		Workspace: WorkspaceConfig{
			OpenWith:  OpenPreview,
			Overwrite: "ask",
		},
		Chat: ChatConfig{
			DefaultMode:              ModeChat,
			SuppressResponseOnAction: true,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8765",
		},
	}
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions loads .env, the first config file found, then environment overrides
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	cfg := DefaultConfig()

	if opts.Path != "" {
		if err := cfg.loadFromFile(opts.Path); err != nil {
			return nil, chaterr.ConfigLoadFailed(opts.Path, err)
		}
		cfg.configPath = opts.Path
	} else {
		for _, path := range getConfigPaths() {
			if _, err := os.Stat(path); err == nil {
				if err := cfg.loadFromFile(path); err != nil {
					return nil, chaterr.ConfigLoadFailed(path, err)
				}
				cfg.configPath = path
				break
			}
		}
	}

	if cfg.configPath == "" && opts.CreateDefault {
		if err := cfg.createDefault(); err != nil {
			// Non-fatal: just use defaults
			fmt.Fprintf(os.Stderr, "Warning: could not create default config: %v\n", err)
		}
	}

	cfg.applyEnv()
	if opts.TokenOverride != "" {
		cfg.APIKey = opts.TokenOverride
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the loaded values
func (c *Config) applyEnv() {
	if v := os.Getenv("PPLXCHAT_PROVIDER"); v != "" {
		c.Provider = Provider(strings.ToLower(v))
	}
	if v := os.Getenv("PPLXCHAT_MODEL"); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv("PPLXCHAT_STORE"); v != "" {
		c.Store.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("PPLXCHAT_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}

	switch c.Provider {
	case ProviderAnthropic:
		c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if c.BaseURL == DefaultConfig().BaseURL {
			c.BaseURL = ""
		}
	default:
		c.APIKey = os.Getenv("PPLX_API_KEY")
	}
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderPerplexity, ProviderAnthropic:
	default:
		return chaterr.ConfigInvalid("provider", fmt.Sprintf("%q (want perplexity or anthropic)", c.Provider))
	}
	switch c.Store.Backend {
	case BackendFile, BackendSQLite:
		if c.Store.Path == "" {
			return chaterr.ConfigInvalid("store.path", "cannot be empty")
		}
	case BackendMemory:
	default:
		return chaterr.ConfigInvalid("store.backend", fmt.Sprintf("%q (want file, sqlite or memory)", c.Store.Backend))
	}
	switch c.Workspace.OpenWith {
	case OpenPreview, OpenEditor, OpenNone:
	default:
		return chaterr.ConfigInvalid("workspace.open_with", fmt.Sprintf("%q (want preview, editor or none)", c.Workspace.OpenWith))
	}
	switch c.Workspace.Overwrite {
	case "ask", "always", "never":
	default:
		return chaterr.ConfigInvalid("workspace.overwrite", fmt.Sprintf("%q (want ask, always or never)", c.Workspace.Overwrite))
	}
	switch c.Chat.DefaultMode {
	case ModeChat, ModeAgentic:
	default:
		return chaterr.ConfigInvalid("chat.default_mode", fmt.Sprintf("%q (want chat or agentic)", c.Chat.DefaultMode))
	}
	if c.DefaultModel == "" {
		return chaterr.ConfigInvalid("default_model", "cannot be empty")
	}
	if c.Timeout <= 0 {
		return chaterr.ConfigInvalid("timeout", "must be > 0")
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return chaterr.ConfigInvalid("rate_limit.requests_per_minute", "must be > 0 when rate limiting is enabled")
	}
	return nil
}

// getConfigPaths returns config file paths in priority order
func getConfigPaths() []string {
	paths := []string{
		"pplxchat.yaml",
		".pplxchat/config.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "pplxchat", "config.yaml"))
	}

	return paths
}

func defaultStorePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".pplxchat", "secrets.json")
	}
	return filepath.Join(".pplxchat", "secrets.json")
}

// loadFromFile loads config from a YAML file
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// createDefault creates a default config file
func (c *Config) createDefault() error {
	dir := ".pplxchat"
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(dir, "config.yaml")
	c.configPath = path

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	content := "# pplxchat configuration\n\n" + string(data)
	return os.WriteFile(path, []byte(content), 0644)
}

// Models returns the model names the provider is known to accept
func (c *Config) Models() []string {
	switch c.Provider {
	case ProviderAnthropic:
		return []string{"claude-haiku-4-5", "claude-sonnet-4-5", "claude-opus-4-5"}
	default:
		return []string{"sonar", "sonar-pro", "sonar-reasoning", "sonar-reasoning-pro", "sonar-deep-research"}
	}
}

// IsKnownModel reports whether model is in Models()
func (c *Config) IsKnownModel(model string) bool {
	return slices.Contains(c.Models(), model)
}

// WorkspaceRoot returns the first configured root, or "" when none is open
func (c *Config) WorkspaceRoot() string {
	if len(c.Workspace.Roots) == 0 {
		return ""
	}
	return c.Workspace.Roots[0]
}

// ConfigPath returns where the config was loaded from
func (c *Config) ConfigPath() string {
	return c.configPath
}
