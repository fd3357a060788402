package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider reads problem images.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string `mapstructure:"provider" yaml:"provider" validate:"omitempty,oneof=anthropic openai gemini openrouter mock"`

	Anthropic  AnthropicConfig  `mapstructure:"anthropic" yaml:"anthropic"`
	OpenAI     OpenAIConfig     `mapstructure:"openai" yaml:"openai"`
	Gemini     GeminiConfig     `mapstructure:"gemini" yaml:"gemini"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter" yaml:"openrouter"`
	Retry      RetryConfig      `mapstructure:"retry" yaml:"retry"`

	// Timeout is the maximum duration for a single LLM request
	// (including retries). Default: 30s.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gte=0"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
	// Model defaults to "claude-haiku".
	Model string `mapstructure:"model" yaml:"model"`
	// BaseURL is optional, for proxies and gateways.
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
	// Model defaults to "gpt-4o-mini".
	Model string `mapstructure:"model" yaml:"model"`
	// BaseURL is optional. Override for compatible APIs.
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
	// Model defaults to "gemini-flash".
	Model string `mapstructure:"model" yaml:"model"`
	// BaseURL is optional, for proxies and gateways.
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
	// Model defaults to "google/gemini-2.5-flash".
	Model string `mapstructure:"model" yaml:"model"`
	// BaseURL defaults to "https://openrouter.ai/api/v1".
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts" validate:"gte=1"`
	InitialWait time.Duration `mapstructure:"initial_wait" yaml:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait" yaml:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier" yaml:"multiplier" validate:"gte=1"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "anthropic",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.5-flash",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// providerKey ties a provider name to its credential field and the
// environment variables that can supply it. Order is discovery priority.
type providerKey struct {
	name     string
	key      func(*Config) *string
	envKey   string // vendor convention, used for discovery
	override string // MATHSTEP_ prefix for the overrides
}

var providerKeys = []providerKey{
	{"gemini", func(c *Config) *string { return &c.Gemini.APIKey }, "GEMINI_API_KEY", "MATHSTEP_GEMINI"},
	{"openai", func(c *Config) *string { return &c.OpenAI.APIKey }, "OPENAI_API_KEY", "MATHSTEP_OPENAI"},
	{"anthropic", func(c *Config) *string { return &c.Anthropic.APIKey }, "ANTHROPIC_API_KEY", "MATHSTEP_ANTHROPIC"},
	{"openrouter", func(c *Config) *string { return &c.OpenRouter.APIKey }, "OPENROUTER_API_KEY", "MATHSTEP_OPENROUTER"},
}

func lookupProvider(name string) (providerKey, bool) {
	for _, p := range providerKeys {
		if p.name == name {
			return p, true
		}
	}
	return providerKey{}, false
}

// ApplyEnv overrides cfg with any MATHSTEP_* variables that are set.
func ApplyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	set(&cfg.Provider, "MATHSTEP_LLM_PROVIDER")
	for _, p := range providerKeys {
		set(p.key(cfg), p.override+"_API_KEY")
	}

	set(&cfg.Anthropic.Model, "MATHSTEP_ANTHROPIC_MODEL")
	set(&cfg.Anthropic.BaseURL, "MATHSTEP_ANTHROPIC_BASE_URL")
	set(&cfg.OpenAI.Model, "MATHSTEP_OPENAI_MODEL")
	set(&cfg.OpenAI.BaseURL, "MATHSTEP_OPENAI_BASE_URL")
	set(&cfg.Gemini.Model, "MATHSTEP_GEMINI_MODEL")
	set(&cfg.Gemini.BaseURL, "MATHSTEP_GEMINI_BASE_URL")
	set(&cfg.OpenRouter.Model, "MATHSTEP_OPENROUTER_MODEL")
}

// DiscoverConfig returns defaults for the first provider whose vendor key
// (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY)
// is set, in that order.
func DiscoverConfig() (Config, bool) {
	for _, p := range providerKeys {
		k := os.Getenv(p.envKey)
		if k == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = p.name
		*p.key(&cfg) = k
		return cfg, true
	}
	return Config{}, false
}

// HasKey reports whether the selected provider has credentials.
func (c Config) HasKey() bool {
	return c.Validate() == nil
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	p, ok := lookupProvider(c.Provider)
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if *p.key(&c) == "" {
		return fmt.Errorf("%s_API_KEY is required for the %s provider", p.override, p.name)
	}
	return nil
}
