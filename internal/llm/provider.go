package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a response from a language model. Implementations
// translate Request into the vendor API and normalize what comes back.
type Provider interface {
	// Generate sends req and returns the response. When req.Schema is set,
	// Content holds JSON validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model the provider is configured for.
	ModelID() string
}

// Request is a single model call.
type Request struct {
	System   string
	Messages []Message

	// Schema asks for structured output. Providers use their native JSON
	// mode where they have one. Nil means free text.
	Schema *Schema

	MaxTokens   int
	Temperature float64 // 0 is deterministic
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string

	// Images go before Content. Only user messages may carry them.
	Images []Image
}

// UserMessage builds a user turn with optional images.
func UserMessage(text string, images ...Image) Message {
	return Message{Role: RoleUser, Content: text, Images: images}
}

// Image is raw image bytes with their MIME type, e.g. "image/png".
type Image struct {
	MediaType string
	Data      []byte
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema for structured output.
type Schema struct {
	// Name is kebab-case, e.g. "problem-text". OpenAI requires it.
	Name        string
	Description string
	Definition  map[string]any
}

// Normalized stop reasons. Every provider maps its own finish states onto
// these.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
	StopError     = "error" // refused or filtered
)

// Response is what a provider returns.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string // the model that actually served the call
	StopReason string // one of the Stop* constants
}

// Usage is the token count of one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
