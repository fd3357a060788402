package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func openRouterServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server.URL + "/api/v1"
}

func chatCompletion(content string) map[string]any {
	return map[string]any{
		"id":      "gen-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "google/gemini-2.5-flash",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 1200, "completion_tokens": 18, "total_tokens": 1218},
	}
}

func TestNewOpenRouterProvider(t *testing.T) {
	t.Run("empty API key", func(t *testing.T) {
		_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "google/gemini-2.5-flash"})
		if err == nil {
			t.Fatal("expected error for empty API key")
		}
	})

	t.Run("model passes through", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "anthropic/claude-3-haiku"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "anthropic/claude-3-haiku" {
			t.Errorf("model = %q, want %q", p.ModelID(), "anthropic/claude-3-haiku")
		}
	})

	t.Run("default model", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "google/gemini-2.5-flash" {
			t.Errorf("model = %q, want default", p.ModelID())
		}
	})
}

func TestOpenRouterProvider_SendsAttributionHeaders(t *testing.T) {
	var referer, title, auth string
	url := openRouterServer(t, func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("HTTP-Referer")
		title = r.Header.Get("X-Title")
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"found":true,"text":"3x = 12"}`))
	})

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", BaseURL: url})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Transcribe."}},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if referer != openRouterReferer {
		t.Errorf("HTTP-Referer = %q", referer)
	}
	if title != "mathstep" {
		t.Errorf("X-Title = %q", title)
	}
	if auth != "Bearer sk-or-test" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestOpenRouterProvider_UnwrapsFencedJSON(t *testing.T) {
	url := openRouterServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion("```json\n{\"found\":true,\"text\":\"lim x->0 sin(x)/x\"}\n```"))
	})

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", BaseURL: url, Model: "meta-llama/llama-4-scout"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Transcribe."}},
		Schema:   detectionTestSchema(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out struct {
		Found bool   `json:"found"`
		Text  string `json:"text"`
	}
	if err := Decode(resp, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Found || out.Text != "lim x->0 sin(x)/x" {
		t.Errorf("got %+v", out)
	}
}

func TestOpenRouterProvider_BadRequestIsRejected(t *testing.T) {
	url := openRouterServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "image exceeds size limit", "code": 400},
		})
	})

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", BaseURL: url})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Transcribe."}},
	})

	var rej *ErrRejected
	if !errors.As(err, &rej) {
		t.Fatalf("expected ErrRejected, got: %T (%v)", err, err)
	}
	if rej.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rej.StatusCode)
	}
}
