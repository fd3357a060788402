// Package trace narrates the evaluation of an arithmetic expression one
// operator at a time.
package trace

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abhisek/mathstep/internal/problem"
	"github.com/abhisek/mathstep/internal/symbolic"
)

const (
	ActionSubExpression = "Evaluate Sub-expression"
	ActionFunction      = "Evaluate Function"
	ActionFinal         = "Final Evaluation"
)

// Engine is the part of the expression engine the tracer needs.
type Engine interface {
	Parse(expr string) (symbolic.Node, error)
	Evaluate(expr string) (symbolic.Value, error)
	EvaluateNode(n symbolic.Node) (symbolic.Value, error)
}

// Tracer walks a parsed expression bottom-up, recording a step for every
// operator and function application.
type Tracer struct {
	engine Engine
}

func New(engine Engine) *Tracer {
	return &Tracer{engine: engine}
}

// Trace returns the steps for evaluating expr and the final value. A parse
// failure yields a single Parse Error step and a nil error; an evaluation
// failure returns the steps recorded so far along with the error.
func (t *Tracer) Trace(expr string) ([]problem.Step, symbolic.Value, error) {
	node, err := t.engine.Parse(expr)
	if err != nil {
		return []problem.Step{{
			Action:      problem.ActionParseError,
			Math:        expr,
			Explanation: "Could not parse the expression.",
		}}, symbolic.Value{}, nil
	}

	w := &walker{engine: t.engine}
	v, err := w.reduce(node)
	if err != nil {
		return w.steps, symbolic.Value{}, err
	}
	final := RoundValue(v)
	w.steps = append(w.steps, problem.Step{
		Action:      ActionFinal,
		Math:        fmt.Sprintf("%s = %s", expr, final),
		Explanation: fmt.Sprintf("The final computed result is %s.", final),
		Result:      final.String(),
	})
	return w.steps, final, nil
}

type walker struct {
	engine Engine
	steps  []problem.Step
}

func (w *walker) reduce(n symbolic.Node) (symbolic.Value, error) {
	switch v := n.(type) {
	case *symbolic.OperatorNode:
		l, err := w.reduce(v.Left)
		if err != nil {
			return symbolic.Value{}, err
		}
		r, err := w.reduce(v.Right)
		if err != nil {
			return symbolic.Value{}, err
		}
		sub := fmt.Sprintf("%s %s %s", operand(l), v.Op, operand(r))
		res, err := w.engine.Evaluate(sub)
		if err != nil {
			return symbolic.Value{}, fmt.Errorf("evaluating %s: %w", sub, err)
		}
		res = RoundValue(res)
		w.steps = append(w.steps, problem.Step{
			Action:      ActionSubExpression,
			Math:        fmt.Sprintf("%s = %s", sub, res),
			Explanation: fmt.Sprintf("Computed %s to yield %s.", sub, res),
			Result:      res.String(),
		})
		return res, nil

	case *symbolic.ConstantNode:
		f, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return symbolic.Value{}, fmt.Errorf("invalid number %q", v.Value)
		}
		return symbolic.Number(f), nil

	case *symbolic.ParenNode:
		return w.reduce(v.Content)

	case *symbolic.FunctionNode:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			av, err := w.reduce(a)
			if err != nil {
				return symbolic.Value{}, err
			}
			args[i] = av.String()
		}
		call := v.Name + "(" + strings.Join(args, ",") + ")"
		res, err := w.engine.Evaluate(call)
		if err != nil {
			return symbolic.Value{}, fmt.Errorf("evaluating %s: %w", call, err)
		}
		res = RoundValue(res)
		w.steps = append(w.steps, problem.Step{
			Action:      ActionFunction,
			Math:        fmt.Sprintf("%s = %s", call, res),
			Explanation: fmt.Sprintf("Computed %s to yield %s.", call, res),
			Result:      res.String(),
		})
		return res, nil

	case *symbolic.UnaryNode:
		// Negation is not narrated, but operators beneath it still are.
		inner, err := w.reduce(v.Operand)
		if err != nil {
			return symbolic.Value{}, err
		}
		res, err := w.engine.Evaluate(v.Op + operand(inner))
		if err != nil {
			return symbolic.Value{}, err
		}
		return RoundValue(res), nil
	}

	res, err := w.engine.EvaluateNode(n)
	if err != nil {
		return symbolic.Value{}, err
	}
	return RoundValue(res), nil
}

// operand renders a value for re-evaluation, parenthesizing negatives so
// "(-2) ^ 2" keeps its meaning.
func operand(v symbolic.Value) string {
	s := v.String()
	if strings.HasPrefix(s, "-") {
		return "(" + s + ")"
	}
	return s
}

// Round rounds to three decimal places.
func Round(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// RoundValue rounds numeric values; symbolic values pass through untouched.
func RoundValue(v symbolic.Value) symbolic.Value {
	if !v.IsNumeric() {
		return v
	}
	return symbolic.Number(Round(v.Float()))
}
