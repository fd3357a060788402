package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/mathstep/internal/normalize"
	"github.com/abhisek/mathstep/internal/problem"
	"github.com/abhisek/mathstep/internal/symbolic"
)

// Dispatcher selects the strategy for a problem type and turns every
// strategy failure into a Processing Error step.
type Dispatcher struct {
	strategies map[problem.Type]Strategy
}

// NewDispatcher registers the given strategies. Later registrations for the
// same type replace earlier ones.
func NewDispatcher(strategies ...Strategy) *Dispatcher {
	d := &Dispatcher{strategies: make(map[problem.Type]Strategy, len(strategies))}
	for _, s := range strategies {
		d.strategies[s.Type()] = s
	}
	return d
}

// NewDefaultDispatcher returns a Dispatcher with DefaultStrategies.
func NewDefaultDispatcher(engine Engine) *Dispatcher {
	return NewDispatcher(DefaultStrategies(engine)...)
}

// Strategy returns the strategy for t, falling back to arithmetic.
func (d *Dispatcher) Strategy(t problem.Type) (Strategy, bool) {
	if s, ok := d.strategies[t]; ok {
		return s, true
	}
	s, ok := d.strategies[problem.TypeArithmetic]
	return s, ok
}

// Solve normalizes raw and runs the strategy for t. It never fails: errors
// end the step list with a Processing Error and leave Solution nil.
func (d *Dispatcher) Solve(ctx context.Context, raw string, t problem.Type) problem.Result {
	in := Input{Raw: raw, Normalized: normalize.Normalize(raw)}
	res := problem.Result{Type: t, Problem: raw, Normalized: in.Normalized}

	rec := &Recorder{}
	s, ok := d.Strategy(t)
	var (
		sol *symbolic.Value
		err error
	)
	if !ok {
		err = fmt.Errorf("no strategy registered for %s", t)
	} else {
		res.Type = s.Type()
		sol, err = run(ctx, s, in, rec)
	}
	if err != nil {
		rec.Add(problem.ActionProcessingError, raw, "Could not process this problem: "+err.Error())
		sol = nil
	}
	res.Solution = sol
	res.Steps = rec.Steps()
	return res
}

func run(ctx context.Context, s Strategy, in Input, rec *Recorder) (sol *symbolic.Value, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			sol, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()
	sol, err = s.Solve(in, rec)
	if err == nil && sol == nil {
		err = errors.New("no solution produced")
	}
	return sol, err
}
