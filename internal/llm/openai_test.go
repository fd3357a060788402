package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func openaiServer(t *testing.T, status int, reply map[string]any) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func openaiCompletion(finish string, message map[string]any) map[string]any {
	message["role"] = "assistant"
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{{"index": 0, "message": message, "finish_reason": finish}},
		"usage":   map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIProvider_Generate(t *testing.T) {
	p := openaiServer(t, http.StatusOK, openaiCompletion("stop", map[string]any{
		"content": `{"found":true,"text":"x^2 + 2x = 8"}`,
	}))

	resp, err := p.Generate(context.Background(), Request{
		System:    "Transcribe the math problem.",
		Messages:  []Message{UserMessage("Read the problem.")},
		Schema:    detectionTestSchema(),
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage != (Usage{InputTokens: 40, OutputTokens: 25, TotalTokens: 65}) {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if resp.Model != "gpt-4o-mini-2024-07-18" || resp.StopReason != StopEnd {
		t.Errorf("model = %q, stop = %q", resp.Model, resp.StopReason)
	}
}

func TestOpenAIProvider_Errors(t *testing.T) {
	apiError := func(kind string) map[string]any {
		return map[string]any{"error": map[string]any{"type": kind, "message": kind}}
	}
	tests := []struct {
		name   string
		status int
		reply  map[string]any
		check  func(error) bool
	}{
		{"rate limited", http.StatusTooManyRequests, apiError("tokens"),
			func(err error) bool { var e *ErrRateLimit; return errors.As(err, &e) }},
		{"server error", http.StatusInternalServerError, apiError("server_error"),
			func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
		{"unauthorized", http.StatusUnauthorized, apiError("invalid_api_key"),
			func(err error) bool { var e *ErrRejected; return errors.As(err, &e) && e.StatusCode == 401 }},
		{"refusal", http.StatusOK, openaiCompletion("stop", map[string]any{"refusal": "I can't help with that."}),
			func(err error) bool { var e *ErrRejected; return errors.As(err, &e) }},
		{"content filter", http.StatusOK, openaiCompletion("content_filter", map[string]any{"content": ""}),
			func(err error) bool { var e *ErrRejected; return errors.As(err, &e) }},
		{"truncated", http.StatusOK, openaiCompletion("length", map[string]any{"content": `{"found":`}),
			func(err error) bool { var e *ErrMaxTokensExceeded; return errors.As(err, &e) }},
		{"schema mismatch", http.StatusOK, openaiCompletion("stop", map[string]any{"content": `{"found":"yes"}`}),
			func(err error) bool { var e *ErrInvalidResponse; return errors.As(err, &e) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := openaiServer(t, tt.status, tt.reply)
			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{UserMessage("test")},
				Schema:    detectionTestSchema(),
				MaxTokens: 100,
			})
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error: %T (%v)", err, err)
			}
		})
	}
}

func TestOpenAIRequest(t *testing.T) {
	req := Request{
		System: "sys",
		Messages: []Message{
			UserMessage("Read this.", Image{MediaType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}),
			{Role: RoleAssistant, Content: "ok"},
		},
		Schema:    detectionTestSchema(),
		MaxTokens: 64,
	}

	out, err := openaiRequest("gpt-4o", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Model != "gpt-4o" || out.MaxCompletionTokens != 64 {
		t.Errorf("model = %q, max tokens = %d", out.Model, out.MaxCompletionTokens)
	}
	if len(out.Messages) != 3 || out.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("messages = %+v", out.Messages)
	}

	user := out.Messages[1]
	if user.Content != "" || len(user.MultiContent) != 2 {
		t.Fatalf("image message must use parts only: %+v", user)
	}
	if part := user.MultiContent[0]; part.Type != openai.ChatMessagePartTypeImageURL || part.ImageURL.URL != "data:image/jpeg;base64,/9j/" {
		t.Errorf("image part = %+v", part)
	}
	if user.MultiContent[1].Text != "Read this." {
		t.Errorf("text part = %q", user.MultiContent[1].Text)
	}
	if a := out.Messages[2]; a.Content != "ok" || a.Role != openai.ChatMessageRoleAssistant {
		t.Errorf("assistant message = %+v", a)
	}

	rf := out.ResponseFormat
	if rf == nil || rf.Type != openai.ChatCompletionResponseFormatTypeJSONSchema {
		t.Fatalf("response format = %+v", rf)
	}
	if rf.JSONSchema.Name != "problem-text" || !rf.JSONSchema.Strict {
		t.Errorf("json schema = %+v", rf.JSONSchema)
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	if _, err := NewOpenAIProvider(OpenAIConfig{}); err == nil {
		t.Fatal("expected an error without an API key")
	}
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4.1-mini", BaseURL: "http://localhost:8080/v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gpt-4.1-mini" {
		t.Errorf("model = %q", p.ModelID())
	}
}
