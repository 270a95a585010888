package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/m4xw311/brainstorm/errors"
	"gopkg.in/yaml.v3"
)

// Supported generation providers.
const (
	ProviderLocal     = "local"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderBedrock   = "bedrock"
)

var providers = []string{ProviderLocal, ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderBedrock}

// Dir is the per-user and per-project configuration directory name.
const Dir = ".brainstorm"

// Env holds settings that only come from the environment, credentials
// included. It is never written to disk.
type Env struct {
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
	OpenAIModel      string `env:"OPENAI_MODEL"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL string `env:"ANTHROPIC_BASE_URL"`
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	BedrockEndpoint  string `env:"BEDROCK_ENDPOINT_URL"`

	LLM         string `env:"BRAINSTORM_LLM"`
	Model       string `env:"BRAINSTORM_MODEL"`
	SessionsDir string `env:"BRAINSTORM_SESSIONS_DIR"`
	LogLevel    string `env:"BRAINSTORM_LOG_LEVEL"`
	Local       bool   `env:"BRAINSTORM_LOCAL"`
}

type Config struct {
	LLMClient   string  `yaml:"llm"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	SessionsDir string  `yaml:"sessions_dir"`
	Autosave    bool    `yaml:"autosave"`
	LogLevel    string  `yaml:"log_level"`
	Local       bool    `yaml:"local"`
	ServeAddr   string  `yaml:"serve_addr"`

	Env Env `yaml:"-"`
}

// LoadOptions locates the configuration sources. Empty directories are
// skipped; a nil Environ means the process environment.
type LoadOptions struct {
	HomeDir string
	WorkDir string
	Environ map[string]string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Temperature: 0.7,
		SessionsDir: "sessions",
		Autosave:    true,
		LogLevel:    "warn",
		ServeAddr:   "localhost:8080",
	}
}

// LoadConfig loads configuration from the user's home directory and the current
// working directory, with the latter taking precedence, then applies the
// environment.
func LoadConfig() (*Config, error) {
	opts := LoadOptions{}
	if home, err := os.UserHomeDir(); err == nil {
		opts.HomeDir = home
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrapf(err, "could not get working directory")
	}
	opts.WorkDir = wd
	return Load(opts)
}

func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.HomeDir != "" {
		if err := loadIfExists(filepath.Join(opts.HomeDir, Dir, "config.yaml"), cfg); err != nil {
			return nil, errors.Wrapf(err, "error loading user config")
		}
	}
	if opts.WorkDir != "" {
		if err := loadIfExists(filepath.Join(opts.WorkDir, Dir, "config.yaml"), cfg); err != nil {
			return nil, errors.Wrapf(err, "error loading project config")
		}
	}

	if err := env.ParseWithOptions(&cfg.Env, env.Options{Environment: opts.Environ}); err != nil {
		return nil, errors.Wrapf(err, "error parsing environment")
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadIfExists(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	// Unmarshal only overwrites fields present in the YAML, so a later file
	// replaces just the keys it sets.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "invalid YAML in %s", path)
	}
	return nil
}

func (c *Config) applyEnv() {
	if c.Env.LLM != "" {
		c.LLMClient = c.Env.LLM
	}
	if c.Env.Model != "" {
		c.Model = c.Env.Model
	}
	if c.Env.SessionsDir != "" {
		c.SessionsDir = c.Env.SessionsDir
	}
	if c.Env.LogLevel != "" {
		c.LogLevel = c.Env.LogLevel
	}
	if c.Env.Local {
		c.Local = true
	}
}

// Validate rejects settings the rest of the program cannot act on.
func (c *Config) Validate() error {
	c.LLMClient = strings.ToLower(strings.TrimSpace(c.LLMClient))
	if c.LLMClient != "" && !slices.Contains(providers, c.LLMClient) {
		return errors.New("unknown llm provider %q (valid: %s)", c.LLMClient, strings.Join(providers, ", "))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("temperature must be between 0 and 2, got %v", c.Temperature)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a level name onto slog levels.
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if level == "" {
		return slog.LevelWarn, nil
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, errors.New("unknown log level %q", level)
	}
	return l, nil
}

// ModelFor returns the model to use for provider, falling back to the
// provider-specific environment default.
func (c *Config) ModelFor(provider string) string {
	if c.Model != "" {
		return c.Model
	}
	if provider == ProviderOpenAI {
		return c.Env.OpenAIModel
	}
	return ""
}

// NewLogger builds the text logger used for diagnostics. Conversation output
// never goes through it.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
