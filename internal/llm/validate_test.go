package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detectionTestSchema() *Schema {
	return &Schema{
		Name:        "problem-text",
		Description: "Problem text read from an image",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"found": map[string]any{"type": "boolean"},
				"text":  map[string]any{"type": "string", "maxLength": 200},
			},
			"required":             []string{"found", "text"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain object", `{"found":true,"text":"2x + 3 = 7"}`, `{"found":true,"text":"2x + 3 = 7"}`, false},
		{"json fence", "```json\n{\"found\":false,\"text\":\"\"}\n```", `{"found":false,"text":""}`, false},
		{"bare fence", "```\n{\"found\":true,\"text\":\"d/dx x^2\"}```", `{"found":true,"text":"d/dx x^2"}`, false},
		{"leading prose", `Here you go: {"found":true,"text":"1/2 + 1/3"} Hope that helps.`, `{"found":true,"text":"1/2 + 1/3"}`, false},
		{"missing required", `{"found":true}`, "", true},
		{"wrong type", `{"found":"yes","text":"1+1"}`, "", true},
		{"extra property", `{"found":true,"text":"1+1","answer":2}`, "", true},
		{"malformed", `{found: true}`, "", true},
		{"empty", ``, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validateResponse(detectionTestSchema(), json.RawMessage(tt.raw))
			if tt.wantErr {
				var inv *ErrInvalidResponse
				require.True(t, errors.As(err, &inv), "expected ErrInvalidResponse, got %T (%v)", err, err)
				assert.Equal(t, tt.raw, string(inv.Content))
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestValidateResponse_NilSchemaPassesThrough(t *testing.T) {
	raw := json.RawMessage("not json at all")
	got, err := validateResponse(nil, raw)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestValidateResponse_SameNameDifferentDefinition(t *testing.T) {
	loose := &Schema{Name: "shared", Definition: map[string]any{"type": "object"}}
	strict := &Schema{Name: "shared", Definition: map[string]any{
		"type":     "object",
		"required": []string{"text"},
	}}

	_, err := validateResponse(loose, json.RawMessage(`{}`))
	require.NoError(t, err)

	_, err = validateResponse(strict, json.RawMessage(`{}`))
	assert.Error(t, err, "strict schema must not reuse the loose compiled schema")
}

func TestDecode(t *testing.T) {
	var out struct {
		Text string `json:"text"`
	}
	err := Decode(&Response{Content: json.RawMessage("```json\n{\"text\":\"sqrt(16)\"}\n```")}, &out)
	require.NoError(t, err)
	assert.Equal(t, "sqrt(16)", out.Text)

	var inv *ErrInvalidResponse
	assert.True(t, errors.As(Decode(&Response{Content: json.RawMessage(`[1,2`)}, &out), &inv))
	assert.True(t, errors.As(Decode(nil, &out), &inv))
}

func TestFinishResponse(t *testing.T) {
	partial := json.RawMessage(`{"found":true,"text":"\\int_0^1 x^2 d`)

	_, err := finishResponse(Request{Schema: detectionTestSchema()}, partial, "max_tokens")
	var maxTok *ErrMaxTokensExceeded
	require.True(t, errors.As(err, &maxTok), "got %T", err)
	assert.Equal(t, partial, maxTok.Content)

	// Free text may legitimately stop early.
	got, err := finishResponse(Request{}, json.RawMessage("x^2 +"), "max_tokens")
	require.NoError(t, err)
	assert.Equal(t, "x^2 +", string(got))

	_, err = finishResponse(Request{Schema: detectionTestSchema()}, nil, "error")
	var rej *ErrRejected
	require.True(t, errors.As(err, &rej), "got %T", err)
	assert.Zero(t, rej.StatusCode)

	got, err = finishResponse(Request{Schema: detectionTestSchema()}, json.RawMessage(`{"found":false,"text":""}`), "end")
	require.NoError(t, err)
	assert.JSONEq(t, `{"found":false,"text":""}`, string(got))
}
