// Package symbolic is the expression engine behind mathstep: a parser for
// canonical math syntax, a float evaluator, and an exact rational algebra
// for derivatives, antiderivatives, equation roots and limits.
package symbolic

import (
	"fmt"
	"strings"
)

// Config controls parser behavior.
type Config struct {
	// CaseInsensitiveFunctions lets Sin(x) and COS(x) resolve to sin and cos.
	CaseInsensitiveFunctions bool `mapstructure:"case_insensitive_functions" yaml:"case_insensitive_functions"`
}

// Engine is safe for concurrent use; it holds only its configuration.
type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Parse parses expr into a Node tree.
func (e *Engine) Parse(expr string) (Node, error) {
	return parse(expr, e.cfg.CaseInsensitiveFunctions)
}

// Evaluate parses and numerically evaluates expr.
func (e *Engine) Evaluate(expr string) (Value, error) {
	n, err := e.Parse(expr)
	if err != nil {
		return Value{}, err
	}
	return e.EvaluateNode(n)
}

// EvaluateNode numerically evaluates a parsed tree.
func (e *Engine) EvaluateNode(n Node) (Value, error) {
	f, err := evalNode(n)
	if err != nil {
		return Value{}, err
	}
	return Number(f), nil
}

// ParseExpr parses expr into the exact algebra.
func (e *Engine) ParseExpr(expr string) (Expr, error) {
	n, err := e.Parse(expr)
	if err != nil {
		return nil, err
	}
	return toExpr(n)
}

// Differentiate returns d(expr)/d(v) as a string.
func (e *Engine) Differentiate(expr, v string) (string, error) {
	x, err := e.ParseExpr(expr)
	if err != nil {
		return "", err
	}
	d, err := x.Diff(v)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

// Integrate returns an antiderivative of expr in v, without "+ C".
func (e *Engine) Integrate(expr, v string) (string, error) {
	x, err := e.ParseExpr(expr)
	if err != nil {
		return "", err
	}
	r, err := Integrate(x, v)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

// Expand multiplies out products and small powers of sums.
func (e *Engine) Expand(expr string) (string, error) {
	x, err := e.ParseExpr(expr)
	if err != nil {
		return "", err
	}
	return Expand(x).String(), nil
}

// SolveFor returns the real roots of equation in v. An equation without '='
// is read as expr = 0. An empty slice means no real solution.
func (e *Engine) SolveFor(equation, v string) ([]string, error) {
	sides := strings.Split(equation, "=")
	if len(sides) > 2 {
		return nil, fmt.Errorf("expected a single '=' in %q", equation)
	}
	lhs, err := e.ParseExpr(sides[0])
	if err != nil {
		return nil, err
	}
	residual := lhs
	if len(sides) == 2 {
		rhs, err := e.ParseExpr(sides[1])
		if err != nil {
			return nil, err
		}
		residual = AddOf(lhs, MulOf(N(-1), rhs))
	}
	return Solve(residual, v)
}

// EvaluateLimit evaluates limit(E,V,A) or limit(E,A), with V defaulting to
// x. A may be Infinity or -Infinity.
func (e *Engine) EvaluateLimit(expr string) (Value, error) {
	n, err := e.Parse(expr)
	if err != nil {
		return Value{}, err
	}
	call, ok := n.(*FunctionNode)
	if !ok || (call.Name != "limit" && call.Name != "lim") {
		return Value{}, fmt.Errorf("expected limit(expr, var, point), got %s", n)
	}
	var body, target Node
	v := "x"
	switch len(call.Args) {
	case 2:
		body, target = call.Args[0], call.Args[1]
	case 3:
		sym, ok := call.Args[1].(*SymbolNode)
		if !ok {
			return Value{}, fmt.Errorf("limit variable must be a name, got %s", call.Args[1])
		}
		body, v, target = call.Args[0], sym.Name, call.Args[2]
	default:
		return Value{}, fmt.Errorf("limit expects 2 or 3 arguments, got %d", len(call.Args))
	}
	x, err := toExpr(body)
	if err != nil {
		return Value{}, err
	}
	if dir := infinityDirection(target); dir != 0 {
		return LimitAtInfinity(x, v, dir)
	}
	point, err := toExpr(target)
	if err != nil {
		return Value{}, err
	}
	return Limit(x, v, point)
}

func infinityDirection(n Node) int {
	for {
		p, ok := n.(*ParenNode)
		if !ok {
			break
		}
		n = p.Content
	}
	switch v := n.(type) {
	case *SymbolNode:
		if v.Name == "Infinity" || v.Name == "inf" || v.Name == "oo" {
			return 1
		}
	case *UnaryNode:
		return -infinityDirection(v.Operand)
	}
	return 0
}
