package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// anthropicServer serves a fixed Messages API reply and counts requests.
func anthropicServer(t *testing.T, status int, reply map[string]any, got *map[string]any) (*AnthropicProvider, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)

	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "test-key", Model: "claude-sonnet", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p, &hits
}

func anthropicMessage(stop string, text ...string) map[string]any {
	blocks := []map[string]any{}
	for _, s := range text {
		blocks = append(blocks, map[string]any{"type": "text", "text": s})
	}
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     blocks,
		"model":       "claude-sonnet-4-5-20250929",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func anthropicError(kind, msg string) map[string]any {
	return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": msg}}
}

func TestAnthropicProvider_ImageRequest(t *testing.T) {
	var body map[string]any
	p, _ := anthropicServer(t, http.StatusOK, anthropicMessage("end_turn", `{"found":true,`, `"text":"2 + 3 * 4"}`), &body)

	resp, err := p.Generate(context.Background(), Request{
		System:    "Transcribe the math problem.",
		Messages:  []Message{UserMessage("Read the problem in this image.", Image{MediaType: "image/png", Data: []byte("png-bytes")})},
		Schema:    detectionTestSchema(),
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"found":true,"text":"2 + 3 * 4"}` {
		t.Errorf("text blocks should be joined, got %s", resp.Content)
	}
	if resp.Usage.TotalTokens != 80 || resp.StopReason != StopEnd {
		t.Errorf("usage = %+v, stop = %q", resp.Usage, resp.StopReason)
	}

	if body["model"] != "claude-sonnet-4-5-20250929" {
		t.Errorf("friendly model name not resolved: %v", body["model"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	content, _ := msgs[0].(map[string]any)["content"].([]any)
	if len(content) != 2 {
		t.Fatalf("expected image and text blocks, got %d", len(content))
	}
	img, _ := content[0].(map[string]any)
	src, _ := img["source"].(map[string]any)
	if img["type"] != "image" || src["media_type"] != "image/png" || src["data"] != "cG5nLWJ5dGVz" {
		t.Errorf("unexpected image block: %v", img)
	}
}

func TestAnthropicProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  map[string]any
		check  func(error) bool
	}{
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			reply:  anthropicError("rate_limit_error", "Rate limit exceeded"),
			check:  func(err error) bool { var e *ErrRateLimit; return errors.As(err, &e) },
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			reply:  anthropicError("api_error", "Internal server error"),
			check:  func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) },
		},
		{
			name:   "bad request",
			status: http.StatusBadRequest,
			reply:  anthropicError("invalid_request_error", "image too large"),
			check:  func(err error) bool { var e *ErrRejected; return errors.As(err, &e) && e.StatusCode == 400 },
		},
		{
			name:   "refusal",
			status: http.StatusOK,
			reply:  anthropicMessage("refusal"),
			check:  func(err error) bool { var e *ErrRejected; return errors.As(err, &e) && e.StatusCode == 0 },
		},
		{
			name:   "truncated",
			status: http.StatusOK,
			reply:  anthropicMessage("max_tokens", `{"found":tr`),
			check:  func(err error) bool { var e *ErrMaxTokensExceeded; return errors.As(err, &e) },
		},
		{
			name:   "no text",
			status: http.StatusOK,
			reply:  anthropicMessage("end_turn"),
			check:  func(err error) bool { var e *ErrInvalidResponse; return errors.As(err, &e) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, hits := anthropicServer(t, tt.status, tt.reply, nil)
			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{UserMessage("test")},
				Schema:    detectionTestSchema(),
				MaxTokens: 100,
			})
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error: %T (%v)", err, err)
			}
			if n := hits.Load(); n != 1 {
				t.Errorf("SDK retries must be off, server saw %d requests", n)
			}
		})
	}
}

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider(AnthropicConfig{}); err == nil {
		t.Fatal("expected an error without an API key")
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"claude-sonnet", "claude-sonnet-4-5-20250929"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4-20250514"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, anthropicModels); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
