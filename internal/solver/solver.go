// Package solver routes a classified problem to the strategy for its type
// and collects the narrated steps into a problem.Result.
package solver

import (
	"errors"

	"github.com/abhisek/mathstep/internal/problem"
	"github.com/abhisek/mathstep/internal/symbolic"
	"github.com/abhisek/mathstep/internal/trace"
)

var (
	// ErrInvalidInput is returned for an empty problem.
	ErrInvalidInput = errors.New("invalid input: problem must be a non-empty string")

	// ErrNoText is returned when no text could be read from an image.
	ErrNoText = errors.New("no text found in image")

	// ErrNoDetector is returned by SolveImage when no text detector is configured.
	ErrNoDetector = errors.New("no text detector configured")

	// The messages below are shown to users inside a Processing Error step.
	ErrNoSolutions       = errors.New("No solutions found")
	ErrInvalidArithmetic = errors.New("Invalid arithmetic expression")
	ErrNoFunction        = errors.New("No function to differentiate")
	ErrNotReal           = errors.New("The result is not a real number")
)

// Engine is the symbolic and numeric capability the strategies call.
type Engine interface {
	trace.Engine
	Differentiate(expr, v string) (string, error)
	Integrate(expr, v string) (string, error)
	Expand(expr string) (string, error)
	SolveFor(equation, v string) ([]string, error)
	EvaluateLimit(expr string) (symbolic.Value, error)
}

var _ Engine = (*symbolic.Engine)(nil)

// Input is a problem as a strategy sees it.
type Input struct {
	Raw        string
	Normalized string
}

// Recorder accumulates steps in order.
type Recorder struct {
	steps []problem.Step
}

// Add appends a step without a result.
func (r *Recorder) Add(action, math, explanation string) {
	r.steps = append(r.steps, problem.Step{Action: action, Math: math, Explanation: explanation})
}

// Append appends complete steps.
func (r *Recorder) Append(steps ...problem.Step) {
	r.steps = append(r.steps, steps...)
}

// Steps returns the recorded steps.
func (r *Recorder) Steps() []problem.Step {
	return r.steps
}

func (r *Recorder) Len() int { return len(r.steps) }

// Strategy solves one type of problem. A nil solution with a nil error is
// treated as a failure by the Dispatcher.
type Strategy interface {
	Type() problem.Type
	Solve(in Input, steps *Recorder) (*symbolic.Value, error)
}

// DefaultStrategies returns one strategy per problem type, all backed by engine.
func DefaultStrategies(engine Engine) []Strategy {
	return []Strategy{
		&Differentiation{engine: engine},
		&Integration{engine: engine},
		&Algebra{engine: engine},
		&Limit{engine: engine},
		&Arithmetic{engine: engine, tracer: trace.New(engine)},
	}
}
