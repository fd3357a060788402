package llm

import "context"

// Purpose labels recorded with each LLM request event.
const (
	PurposeOCR     = "ocr"
	PurposeUnknown = "unknown"
)

type purposeKey struct{}

// WithPurpose labels calls made with ctx.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) string {
	if v, _ := ctx.Value(purposeKey{}).(string); v != "" {
		return v
	}
	return PurposeUnknown
}
