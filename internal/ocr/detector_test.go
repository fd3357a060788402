package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathstep/internal/llm"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestLLMDetector_DetectText(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"text":"d/dx(x^2)","found":true}`),
	})
	d := NewLLMDetector(mock, DefaultDetectorConfig())

	text, err := d.DetectText(context.Background(), pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "d/dx(x^2)", text)
	assert.Equal(t, "llm:mock", d.Name())

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Same(t, ProblemTextSchema, req.Schema)
	require.Len(t, req.Messages, 1)
	require.Len(t, req.Messages[0].Images, 1)
	assert.Equal(t, "image/png", req.Messages[0].Images[0].MediaType)
	assert.Equal(t, pngHeader, req.Messages[0].Images[0].Data)
}

func TestLLMDetector_NotFound(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"text":"a cat","found":false}`),
	})
	d := NewLLMDetector(mock, DefaultDetectorConfig())

	text, err := d.DetectText(context.Background(), pngHeader)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestLLMDetector_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	d := NewLLMDetector(mock, DefaultDetectorConfig())

	_, err := d.DetectText(context.Background(), pngHeader)
	var rl *llm.ErrRateLimit
	assert.True(t, errors.As(err, &rl), "got %v", err)
}

func TestLLMDetector_MalformedResponse(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`not json`)})
	d := NewLLMDetector(mock, DefaultDetectorConfig())

	_, err := d.DetectText(context.Background(), pngHeader)
	assert.Error(t, err)
}

func TestLLMDetector_RejectsBeforeCallingProvider(t *testing.T) {
	mock := llm.NewMockProvider()
	d := NewLLMDetector(mock, DefaultDetectorConfig())

	_, err := d.DetectText(context.Background(), []byte("plain text, not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.Zero(t, mock.CallCount())
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr error
	}{
		{"png", pngHeader, "image/png", nil},
		{"jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), "image/jpeg", nil},
		{"gif", []byte("GIF89a\x01\x00\x01\x00"), "image/gif", nil},
		{"webp", []byte("RIFF\x24\x00\x00\x00WEBPVP8 "), "image/webp", nil},
		{"empty", nil, "", ErrEmptyImage},
		{"text", []byte("2 + 2"), "", ErrUnsupportedImage},
		{"too large", append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, MaxImageBytes)...), "", ErrImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateImage(tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("type = %q, want %q", got, tt.want)
			}
		})
	}
}
