package server

import (
	"github.com/abhisek/mathstep/internal/problem"
	"github.com/abhisek/mathstep/internal/symbolic"
)

const (
	maxDisplayProblem = 100
	maxDisplayText    = 150
)

// SolveRequest is the body of POST /api/solve.
type SolveRequest struct {
	Problem string `json:"problem" binding:"required"`
}

// SolveResponse is returned for a solved text problem.
type SolveResponse struct {
	Type     problem.Type    `json:"type"`
	Problem  string          `json:"problem"`
	Solution *symbolic.Value `json:"solution"`
	Steps    []problem.Step  `json:"steps"`
	// FullProblem is set when Problem was truncated for display.
	FullProblem string `json:"fullProblem,omitempty"`
}

// UploadResponse is returned for an image upload, solved or not.
type UploadResponse struct {
	Type          problem.Type    `json:"type"`
	ExtractedText string          `json:"extractedText"`
	Solution      *symbolic.Value `json:"solution"`
	Steps         []problem.Step  `json:"steps"`
	FullText      string          `json:"fullText,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error      string         `json:"error"`
	Suggestion string         `json:"suggestion,omitempty"`
	Details    string         `json:"details,omitempty"`
	Problem    string         `json:"problem,omitempty"`
	Type       problem.Type   `json:"type,omitempty"`
	Steps      []problem.Step `json:"steps,omitempty"`
}

// HistoryItem is one entry of GET /api/history.
type HistoryItem struct {
	ID        int            `json:"id"`
	RequestID string         `json:"requestId"`
	Timestamp string         `json:"timestamp"`
	Source    problem.Source `json:"source"`
	Type      problem.Type   `json:"type"`
	Problem   string         `json:"problem"`
	Solution  string         `json:"solution,omitempty"`
	Solved    bool           `json:"solved"`
	Error     string         `json:"error,omitempty"`
}

// truncate shortens s to n runes plus "...", reporting whether it did.
func truncate(s string, n int) (string, bool) {
	r := []rune(s)
	if len(r) <= n {
		return s, false
	}
	return string(r[:n]) + "...", true
}
