package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/mathstep/internal/store"
)

var constructors = map[string]func(context.Context, Config) (Provider, error){
	"anthropic": func(_ context.Context, c Config) (Provider, error) { return NewAnthropicProvider(c.Anthropic) },
	"openai":    func(_ context.Context, c Config) (Provider, error) { return NewOpenAIProvider(c.OpenAI) },
	"gemini":    func(ctx context.Context, c Config) (Provider, error) { return NewGeminiProvider(ctx, c.Gemini) },
	"openrouter": func(_ context.Context, c Config) (Provider, error) {
		return NewOpenRouterProvider(c.OpenRouter)
	},
}

// NewProvider builds the configured provider. Calls go through retry first
// and then logging, so every attempt is recorded as its own event. The
// mock provider is returned bare.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *slog.Logger) (Provider, error) {
	if cfg.Provider == "mock" {
		return NewMockProvider(), nil
	}
	build, ok := constructors[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	base, err := build(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return WithRetry(WithLogging(base, cfg.Provider, eventRepo, logger), cfg.Retry, cfg.Timeout), nil
}
