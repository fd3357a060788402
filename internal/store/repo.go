package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/mathstep/internal/problem"
)

// ErrNotFound is returned when an event ID does not exist.
var ErrNotFound = errors.New("event not found")

// QueryOpts configures event queries with filtering and pagination.
// Results are ordered newest first.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// SolveQuery narrows QueryOpts to solve events.
type SolveQuery struct {
	QueryOpts
	Type       problem.Type // empty = all types
	SolvedOnly bool
}

// SolveEventData captures one pipeline run.
type SolveEventData struct {
	RequestID    string
	Source       problem.Source
	Problem      string
	Normalized   string
	Type         problem.Type
	Solution     string
	Solved       bool
	Steps        []problem.Step
	LatencyMs    int64
	ErrorMessage string
}

// SolveEvent is a stored SolveEventData.
type SolveEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	SolveEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMQuery narrows QueryOpts to LLM request events.
type LLMQuery struct {
	QueryOpts
	Purpose    string // empty = all purposes
	FailedOnly bool
}

// LLMRequestEvent is a stored LLMRequestEventData.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData `yaml:",inline"`
}

// TypeStats aggregates solve events of one type.
type TypeStats struct {
	Type   problem.Type
	Total  int
	Solved int
}

// SolveStats aggregates all solve events.
type SolveStats struct {
	Total        int
	Solved       int
	AvgLatencyMs float64
	ByType       []TypeStats
}

// SolvedRatio returns Solved/Total, or 0 with no events.
func (s SolveStats) SolvedRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Solved) / float64(s.Total)
}

// EventRepo provides append and query access to events.
type EventRepo interface {
	// AppendSolve records a solve event.
	AppendSolve(ctx context.Context, data SolveEventData) error

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	QuerySolves(ctx context.Context, q SolveQuery) ([]SolveEvent, error)
	GetSolve(ctx context.Context, id int) (*SolveEvent, error)

	QueryLLMEvents(ctx context.Context, q LLMQuery) ([]LLMRequestEvent, error)
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// SolveStats aggregates every stored solve event.
	SolveStats(ctx context.Context) (SolveStats, error)

	LLMUsageReader
}

// LLMUsage aggregates LLM request events by purpose or by model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMUsageReader is the read side used by the llm stats command.
type LLMUsageReader interface {
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
