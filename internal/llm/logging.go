package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/abhisek/mathstep/internal/store"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mathstep",
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "LLM requests by provider, purpose and outcome",
		},
		[]string{"provider", "purpose", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mathstep",
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "LLM request latency",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"provider"},
	)

	tokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mathstep",
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Tokens consumed by direction",
		},
		[]string{"provider", "direction"},
	)
)

// LoggingProvider is a decorator that records every LLM request as an event.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
	logger    *slog.Logger
}

// WithLogging wraps a Provider with event logging. A nil repo skips
// persistence; a nil logger discards log output.
func WithLogging(p Provider, provider string, repo store.EventRepo, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LoggingProvider{inner: p, provider: provider, eventRepo: repo, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	elapsed := time.Since(start)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   elapsed.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}

	outcome := errorReason(err)
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	requestsTotal.WithLabelValues(l.provider, purpose, outcome).Inc()
	requestDuration.WithLabelValues(l.provider).Observe(elapsed.Seconds())
	tokensTotal.WithLabelValues(l.provider, "input").Add(float64(data.InputTokens))
	tokensTotal.WithLabelValues(l.provider, "output").Add(float64(data.OutputTokens))

	attrs := []any{
		slog.String("provider", l.provider),
		slog.String("model", data.Model),
		slog.String("purpose", purpose),
		slog.Int64("latency_ms", data.LatencyMs),
		slog.Int("input_tokens", data.InputTokens),
		slog.Int("output_tokens", data.OutputTokens),
	}
	if err != nil {
		l.logger.WarnContext(ctx, "llm request failed", append(attrs, slog.Any("error", err))...)
	} else {
		l.logger.DebugContext(ctx, "llm request", attrs...)
	}

	// Log the event but don't fail the request if logging fails.
	if l.eventRepo != nil {
		if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
			l.logger.WarnContext(ctx, "failed to record LLM request event", slog.Any("error", logErr))
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
// Image bytes are summarized, never stored.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		b.WriteString(fmt.Sprintf("[%s]\n", m.Role))
		for _, img := range m.Images {
			b.WriteString(fmt.Sprintf("[image: %s, %d bytes]\n", img.MediaType, len(img.Data)))
		}
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			b.WriteString(fmt.Sprintf("[schema: %s]\n", req.Schema.Name))
			b.WriteString(string(schemaDef))
			b.WriteString("\n")
		}
	}

	return b.String()
}
