package llm

import "testing"

func TestDiscoverConfig_Priority(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}

	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no provider without keys")
	}

	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != "anthropic" || cfg.Anthropic.APIKey != "ant-key" {
		t.Fatalf("got provider %q key %q, want anthropic", cfg.Provider, cfg.Anthropic.APIKey)
	}
	if cfg.OpenRouter.APIKey != "" {
		t.Error("only the discovered provider should get a key")
	}
	if cfg.Retry.MaxAttempts != DefaultConfig().Retry.MaxAttempts {
		t.Error("discovered config should carry defaults")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("MATHSTEP_LLM_PROVIDER", "openai")
	t.Setenv("MATHSTEP_OPENAI_API_KEY", "sk-env")
	t.Setenv("MATHSTEP_OPENAI_BASE_URL", "http://localhost:8080/v1")

	cfg := DefaultConfig()
	cfg.OpenAI.APIKey = "sk-file"
	ApplyEnv(&cfg)

	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-env" {
		t.Fatalf("env did not override: %+v", cfg)
	}
	if cfg.OpenAI.BaseURL != "http://localhost:8080/v1" {
		t.Errorf("base url = %q", cfg.OpenAI.BaseURL)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("unset variables must keep defaults, model = %q", cfg.OpenAI.Model)
	}
}

func TestValidate_NamesVariable(t *testing.T) {
	err := Config{Provider: "gemini"}.Validate()
	if err == nil || err.Error() != "MATHSTEP_GEMINI_API_KEY is required for the gemini provider" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, false},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, true},
		{"openai without key", Config{Provider: "openai"}, false},
		{"openai with key", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}}, true},
		{"openrouter without key", Config{Provider: "openrouter"}, false},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "g-test"}}, true},
		{"other provider's key", Config{Provider: "gemini", OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"mock needs no key", Config{Provider: "mock"}, true},
		{"unknown provider", Config{Provider: "unknown"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v, want ok=%v", err, tt.ok)
			}
			if tt.cfg.HasKey() != tt.ok {
				t.Errorf("HasKey() = %v", !tt.ok)
			}
		})
	}
}
