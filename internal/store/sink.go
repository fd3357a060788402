package store

import (
	"context"

	"github.com/abhisek/mathstep/internal/problem"
	"github.com/abhisek/mathstep/internal/solver"
	"github.com/abhisek/mathstep/internal/symbolic"
)

// SolveSink adapts an EventRepo to the pipeline's history sink.
func SolveSink(repo EventRepo) solver.Sink {
	return solver.SinkFunc(func(ctx context.Context, ev solver.Event) error {
		res := ev.Result
		data := SolveEventData{
			RequestID:  ev.RequestID,
			Source:     res.Source,
			Problem:    res.Problem,
			Normalized: res.Normalized,
			Type:       res.Type,
			Solution:   res.SolutionString(),
			Solved:     res.Solved(),
			Steps:      res.Steps,
			LatencyMs:  ev.Latency.Milliseconds(),
		}
		if !res.Solved() {
			if last, ok := res.LastStep(); ok {
				data.ErrorMessage = last.Explanation
			}
		}
		return repo.AppendSolve(ctx, data)
	})
}

// EventResult rebuilds the pipeline result recorded in ev. Numeric
// solutions come back as numbers.
func EventResult(ev SolveEvent) problem.Result {
	res := problem.Result{
		Type:       ev.Type,
		Problem:    ev.Problem,
		Normalized: ev.Normalized,
		Source:     ev.Source,
		Steps:      ev.Steps,
	}
	if ev.Solved {
		v := symbolic.ParseValue(ev.Solution)
		res.Solution = &v
	}
	return res
}
