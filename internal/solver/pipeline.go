package solver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/abhisek/mathstep/internal/classify"
	"github.com/abhisek/mathstep/internal/normalize"
	"github.com/abhisek/mathstep/internal/problem"
)

var tracer = otel.Tracer(tracerName)

// TextDetector reads problem text out of an image.
type TextDetector interface {
	DetectText(ctx context.Context, image []byte) (string, error)
}

// Event describes one finished solve for a Sink.
type Event struct {
	RequestID string
	Result    problem.Result
	Latency   time.Duration
}

// Sink receives an Event after every solve. Sink errors are logged, never
// returned to the caller.
type Sink interface {
	RecordSolve(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev Event) error

func (f SinkFunc) RecordSolve(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Pipeline classifies, dispatches and reports. It is safe for concurrent use.
type Pipeline struct {
	dispatcher *Dispatcher
	rules      []classify.Rule
	detector   TextDetector
	sink       Sink
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithDetector(d TextDetector) Option { return func(p *Pipeline) { p.detector = d } }

func WithSink(s Sink) Option { return func(p *Pipeline) { p.sink = s } }

func WithLogger(l *slog.Logger) Option { return func(p *Pipeline) { p.logger = l } }

// WithRules replaces the classification rule chain.
func WithRules(rules []classify.Rule) Option { return func(p *Pipeline) { p.rules = rules } }

func NewPipeline(d *Dispatcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		dispatcher: d,
		rules:      classify.DefaultRules(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Solve solves a typed problem.
func (p *Pipeline) Solve(ctx context.Context, raw string) (problem.Result, error) {
	return p.solve(ctx, raw, problem.SourceText)
}

// SolveImage reads the problem from an image and solves it. The cleaned
// text becomes the result's Problem.
func (p *Pipeline) SolveImage(ctx context.Context, image []byte) (problem.Result, error) {
	if p.detector == nil {
		return problem.Result{}, ErrNoDetector
	}
	ctx, span := tracer.Start(ctx, "solver.Pipeline.SolveImage")
	defer span.End()
	span.SetAttributes(attribute.Int("image.bytes", len(image)))

	text, err := p.detector.DetectText(ctx, image)
	if err != nil {
		textDetections.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return problem.Result{}, fmt.Errorf("detecting text: %w", err)
	}
	text = normalize.CleanOCRText(text)
	if text == "" {
		textDetections.WithLabelValues("empty").Inc()
		return problem.Result{}, ErrNoText
	}
	textDetections.WithLabelValues("text").Inc()
	p.logger.Debug("text detected", "chars", len(text))
	return p.solve(ctx, text, problem.SourceImage)
}

func (p *Pipeline) solve(ctx context.Context, raw string, src problem.Source) (problem.Result, error) {
	if strings.TrimSpace(raw) == "" {
		return problem.Result{}, ErrInvalidInput
	}
	ctx, span := tracer.Start(ctx, "solver.Pipeline.Solve")
	defer span.End()

	requestID := RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	start := time.Now()
	typ, rule := classify.Run(p.rules, raw)
	res := p.dispatcher.Solve(ctx, raw, typ)
	res.Source = src
	elapsed := time.Since(start)

	recordSolveMetrics(res, elapsed)
	span.SetAttributes(
		attribute.String("request_id", requestID),
		attribute.String("problem.type", string(res.Type)),
		attribute.String("classify.rule", rule),
		attribute.String("source", string(src)),
		attribute.Bool("solved", res.Solved()),
		attribute.Int("steps", len(res.Steps)),
	)

	if res.Solved() {
		p.logger.Debug("solve",
			"request_id", requestID,
			"type", res.Type,
			"solution", res.SolutionString(),
			"steps", len(res.Steps),
			"elapsed", elapsed)
	} else {
		last, _ := res.LastStep()
		span.SetStatus(codes.Error, last.Explanation)
		p.logger.Warn("problem not solved",
			"request_id", requestID,
			"type", res.Type,
			"normalized", res.Normalized,
			"reason", last.Explanation)
	}

	if p.sink != nil {
		ev := Event{RequestID: requestID, Result: res, Latency: elapsed}
		if err := p.sink.RecordSolve(ctx, ev); err != nil {
			p.logger.Warn("failed to record solve", "request_id", requestID, "error", err)
		}
	}
	return res, nil
}
