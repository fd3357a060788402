// Package ocr reads math problems out of images using a vision-capable LLM.
package ocr

import (
	"context"
	"fmt"

	"github.com/abhisek/mathstep/internal/llm"
)

// Detector extracts problem text from an image. An image with no readable
// problem yields "" and a nil error.
type Detector interface {
	Name() string
	DetectText(ctx context.Context, image []byte) (string, error)
}

// DetectorConfig holds generation settings for the LLM detector.
type DetectorConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultDetectorConfig returns sensible defaults.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MaxTokens:   512,
		Temperature: 0,
	}
}

// LLMDetector transcribes images through an llm.Provider.
type LLMDetector struct {
	provider llm.Provider
	cfg      DetectorConfig
}

// NewLLMDetector creates a detector backed by provider.
func NewLLMDetector(provider llm.Provider, cfg DetectorConfig) *LLMDetector {
	return &LLMDetector{provider: provider, cfg: cfg}
}

func (d *LLMDetector) Name() string {
	return "llm:" + d.provider.ModelID()
}

type detectionOutput struct {
	Text  string `json:"text"`
	Found bool   `json:"found"`
}

// DetectText validates the image and asks the provider to transcribe it.
func (d *LLMDetector) DetectText(ctx context.Context, image []byte) (string, error) {
	mediaType, err := ValidateImage(image)
	if err != nil {
		return "", err
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeOCR)

	req := llm.Request{
		System: detectionSystemPrompt,
		Messages: []llm.Message{
			llm.UserMessage("Transcribe the math problem in this image.",
				llm.Image{MediaType: mediaType, Data: image}),
		},
		Schema:      ProblemTextSchema,
		MaxTokens:   d.cfg.MaxTokens,
		Temperature: d.cfg.Temperature,
	}

	resp, err := d.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("LLM text detection failed: %w", err)
	}

	var out detectionOutput
	if err := llm.Decode(resp, &out); err != nil {
		return "", fmt.Errorf("failed to parse detection response: %w", err)
	}
	if !out.Found {
		return "", nil
	}
	return out.Text, nil
}

const detectionSystemPrompt = `You transcribe handwritten or printed math problems from photos.

Instructions:
- Copy the problem exactly; do not solve it or add commentary.
- Use plain text math: ^ for powers, * for multiplication, sqrt() for roots.
- Keep symbols such as ∫, d/dx, lim and = when they appear.
- If several problems are visible, transcribe only the first one.
- If there is no math problem, return found=false and an empty text.`
