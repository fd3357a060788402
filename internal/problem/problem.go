package problem

import (
	"fmt"

	"github.com/abhisek/mathstep/internal/symbolic"
)

// Type is the category a problem is classified into.
type Type string

const (
	TypeArithmetic      Type = "arithmetic"
	TypeDifferentiation Type = "differentiation"
	TypeIntegration     Type = "integration"
	TypeAlgebra         Type = "algebra"
	TypeLimit           Type = "limit"
)

// AllTypes lists every problem type in display order.
var AllTypes = []Type{
	TypeArithmetic,
	TypeDifferentiation,
	TypeIntegration,
	TypeAlgebra,
	TypeLimit,
}

// ParseType converts a type name into a Type.
func ParseType(s string) (Type, error) {
	for _, t := range AllTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown problem type %q", s)
}

func (t Type) String() string { return string(t) }

// Source records where a problem came from.
type Source string

const (
	SourceText  Source = "text"
	SourceImage Source = "image"
)

// Error step actions. A result without a solution ends in one of these.
const (
	ActionParseError      = "Parse Error"
	ActionProcessingError = "Processing Error"
)

// Step is one narrated step of a solution.
type Step struct {
	Action      string `json:"action" yaml:"action"`
	Math        string `json:"math" yaml:"math"`
	Explanation string `json:"explanation" yaml:"explanation"`
	Result      string `json:"result,omitempty" yaml:"result,omitempty"`
}

// IsError reports whether the step records a failure.
func (s Step) IsError() bool {
	return s.Action == ActionParseError || s.Action == ActionProcessingError
}

// Result is the outcome of solving one problem.
type Result struct {
	Type       Type            `json:"type" yaml:"type"`
	Problem    string          `json:"problem" yaml:"problem"`
	Normalized string          `json:"normalized" yaml:"normalized"`
	Source     Source          `json:"source,omitempty" yaml:"source,omitempty"`
	Solution   *symbolic.Value `json:"solution" yaml:"solution"`
	Steps      []Step          `json:"steps" yaml:"steps"`
}

// Solved reports whether a solution was produced.
func (r Result) Solved() bool { return r.Solution != nil }

// SolutionString returns the solution text, or "" when unsolved.
func (r Result) SolutionString() string {
	if r.Solution == nil {
		return ""
	}
	return r.Solution.String()
}

// LastStep returns the final step, if any.
func (r Result) LastStep() (Step, bool) {
	if len(r.Steps) == 0 {
		return Step{}, false
	}
	return r.Steps[len(r.Steps)-1], true
}
