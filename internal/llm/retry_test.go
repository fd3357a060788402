package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

var okContent = json.RawMessage(`{"found":true,"text":"5 * 6"}`)

func unavailable() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("connection reset")}}
}

func TestRetry_Attempts(t *testing.T) {
	tests := []struct {
		name      string
		responses []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{
			name:      "first attempt succeeds",
			responses: []MockResponse{{Content: okContent}},
			wantCalls: 1,
		},
		{
			name:      "outage then success",
			responses: []MockResponse{unavailable(), {Content: okContent}},
			wantCalls: 2,
		},
		{
			name:      "outage on every attempt",
			responses: []MockResponse{unavailable(), unavailable(), unavailable(), {Content: okContent}},
			wantErr:   true,
			wantCalls: 3,
		},
		{
			name: "rate limit honors retry-after",
			responses: []MockResponse{
				{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}},
				{Content: okContent},
			},
			wantCalls: 2,
		},
		{
			name: "rejected image is not retried",
			responses: []MockResponse{
				{Err: &ErrRejected{StatusCode: 413, Err: errors.New("payload too large")}},
				{Content: okContent},
			},
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name: "truncated transcription is not retried",
			responses: []MockResponse{
				{Err: &ErrMaxTokensExceeded{Content: json.RawMessage(`{"found":true,"te`)}},
				{Content: okContent},
			},
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name: "invalid response is retried once",
			responses: []MockResponse{
				{Err: &ErrInvalidResponse{Content: json.RawMessage(`nope`), Err: errors.New("bad")}},
				{Err: &ErrInvalidResponse{Content: json.RawMessage(`nope`), Err: errors.New("bad")}},
				{Content: okContent},
			},
			wantErr:   true,
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			p := WithRetry(mock, retryConfig(), 0)

			resp, err := p.Generate(context.Background(), Request{})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.JSONEq(t, string(okContent), string(resp.Content))
			}
			assert.Equal(t, tt.wantCalls, mock.CallCount())
		})
	}
}

func TestRetry_CanceledContextStops(t *testing.T) {
	mock := NewMockProvider(unavailable(), unavailable(), MockResponse{Content: okContent})
	cfg := retryConfig()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour
	p := WithRetry(mock, cfg, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_TimeoutCoversAllAttempts(t *testing.T) {
	mock := NewMockProvider(
		unavailable(),
		MockResponse{Content: okContent, Delay: time.Second},
	)
	p := WithRetry(mock, retryConfig(), 20*time.Millisecond)

	start := time.Now()
	_, err := p.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRetry_CountsRetries(t *testing.T) {
	before := testutil.ToFloat64(retriesTotal.WithLabelValues("unavailable"))

	mock := NewMockProvider(unavailable(), unavailable(), MockResponse{Content: okContent})
	_, err := WithRetry(mock, retryConfig(), 0).Generate(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, before+2, testutil.ToFloat64(retriesTotal.WithLabelValues("unavailable")))
}

func TestRetry_ZeroAttemptsStillCallsOnce(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: okContent})
	_, err := WithRetry(mock, RetryConfig{}, 0).Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_Backoff(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: 300 * time.Millisecond, Multiplier: 2}}

	for attempt, base := range []time.Duration{100, 200, 300, 300} {
		base *= time.Millisecond
		got := r.backoff(attempt, errors.New("x"))
		assert.InDelta(t, float64(base), float64(got), float64(base)*0.2+1, "attempt %d", attempt)
	}

	got := r.backoff(0, &ErrRateLimit{RetryAfter: 7 * time.Second})
	assert.Equal(t, 7*time.Second, got)
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	mock := NewMockProvider()
	mock.Model = "vision-test"
	assert.Equal(t, "vision-test", WithRetry(mock, retryConfig(), 0).ModelID())
}

func TestErrorReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "success"},
		{context.Canceled, "canceled"},
		{context.DeadlineExceeded, "timeout"},
		{&ErrRateLimit{}, "rate_limit"},
		{&ErrRejected{StatusCode: 400}, "rejected"},
		{&ErrInvalidResponse{}, "invalid_response"},
		{&ErrMaxTokensExceeded{}, "max_tokens"},
		{&ErrProviderUnavailable{}, "unavailable"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorReason(tt.err))
	}
}

func TestMapStatusError(t *testing.T) {
	cause := errors.New("api error")

	var rl *ErrRateLimit
	assert.True(t, errors.As(mapStatusError(429, cause), &rl))

	var rej *ErrRejected
	require.True(t, errors.As(mapStatusError(401, cause), &rej))
	assert.Equal(t, 401, rej.StatusCode)
	assert.ErrorIs(t, rej, cause)

	var unavail *ErrProviderUnavailable
	assert.True(t, errors.As(mapStatusError(503, cause), &unavail))
}
