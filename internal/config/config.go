// Package config loads mathstep settings from YAML, environment variables
// and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/mathstep/internal/llm"
	"github.com/abhisek/mathstep/internal/symbolic"
)

// Config is the full mathstep configuration.
type Config struct {
	// DB is the SQLite path. Empty means the store's default location.
	DB      string          `mapstructure:"db" yaml:"db"`
	Log     LogConfig       `mapstructure:"log" yaml:"log"`
	Engine  symbolic.Config `mapstructure:"engine" yaml:"engine"`
	Server  ServerConfig    `mapstructure:"server" yaml:"server"`
	History HistoryConfig   `mapstructure:"history" yaml:"history"`
	LLM     llm.Config      `mapstructure:"llm" yaml:"llm"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr" validate:"required,hostname_port"`
	// SolveTimeout bounds a single /api/solve or /api/upload request.
	SolveTimeout    time.Duration `mapstructure:"solve_timeout" yaml:"solve_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
}

// HistoryConfig controls how long recorded events are kept.
type HistoryConfig struct {
	// Retention is the age after which events are pruned. Zero keeps
	// everything.
	Retention time.Duration `mapstructure:"retention" yaml:"retention" validate:"gte=0"`
	// PruneInterval is how often a running server prunes.
	PruneInterval time.Duration `mapstructure:"prune_interval" yaml:"prune_interval" validate:"gt=0"`
}

// DefaultConfig returns the built-in defaults. API keys reference the
// providers' standard environment variables.
func DefaultConfig() *Config {
	llmCfg := llm.DefaultConfig()
	llmCfg.Anthropic.APIKey = "${ANTHROPIC_API_KEY}"
	llmCfg.OpenAI.APIKey = "${OPENAI_API_KEY}"
	llmCfg.Gemini.APIKey = "${GEMINI_API_KEY}"
	llmCfg.OpenRouter.APIKey = "${OPENROUTER_API_KEY}"

	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:            ":3000",
			SolveTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		History: HistoryConfig{
			PruneInterval: time.Hour,
		},
		LLM: llmCfg,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints. Missing API keys are not an error
// here; they only matter when text detection is used.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

var envRefPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envRefPattern.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// resolve expands env references in API keys and applies the
// MATHSTEP_<PROVIDER>_* overrides.
func (c *Config) resolve() {
	c.LLM.Anthropic.APIKey = ResolveEnvVars(c.LLM.Anthropic.APIKey)
	c.LLM.OpenAI.APIKey = ResolveEnvVars(c.LLM.OpenAI.APIKey)
	c.LLM.Gemini.APIKey = ResolveEnvVars(c.LLM.Gemini.APIKey)
	c.LLM.OpenRouter.APIKey = ResolveEnvVars(c.LLM.OpenRouter.APIKey)
	llm.ApplyEnv(&c.LLM)
}

// DefaultPath returns $XDG_CONFIG_HOME/mathstep/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "mathstep", "config.yaml")
}

// searchPaths lists the config files tried when none is given.
func searchPaths() []string {
	return []string{"mathstep.yaml", DefaultPath()}
}
