package solver

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/abhisek/mathstep/internal/problem"
	"github.com/abhisek/mathstep/internal/symbolic"
	"github.com/abhisek/mathstep/internal/trace"
)

const defaultVariable = "x"

var (
	variableRe     = regexp.MustCompile(`^[a-zA-Z]$`)
	derivWrapperRe = regexp.MustCompile(`^d/d([a-zA-Z])\(?(.+?)\)?$`)
	emptyDerivRe   = regexp.MustCompile(`^(?:d/d[a-zA-Z]?|diff\(,?[a-zA-Z]?\))?$`)
	solvePrefixRe  = regexp.MustCompile(`(?i)^solve:?`)
	solveForRe     = regexp.MustCompile(`(?i)\bfor\s+([a-zA-Z])\s*[.?]?\s*$`)
	solveLeadRe    = regexp.MustCompile(`(?i)^\s*solve\s+for\s+([a-zA-Z])\b`)
	solveLeadForRe = regexp.MustCompile(`(?i)^solvefor[a-zA-Z][:,]?`)
	limitArrowRe   = regexp.MustCompile(`^([a-zA-Z])(?:->|→)(.+)$`)
)

// Differentiation narrates diff(E,V).
type Differentiation struct {
	engine Engine
}

func (s *Differentiation) Type() problem.Type { return problem.TypeDifferentiation }

func (s *Differentiation) Solve(in Input, steps *Recorder) (*symbolic.Value, error) {
	fn, v := callTarget(in.Normalized, "diff")
	if m := derivWrapperRe.FindStringSubmatch(fn); m != nil && fn == in.Normalized {
		fn, v = m[2], m[1]
	}
	if emptyDerivRe.MatchString(fn) {
		return nil, ErrNoFunction
	}
	steps.Add("Original Function Identified",
		fmt.Sprintf("f(%s) = %s", v, in.Raw),
		"Recognized as a differentiation problem.")

	derivative, err := s.engine.Differentiate(fn, v)
	if err != nil {
		return nil, err
	}
	steps.Append(problem.Step{
		Action:      "Apply Differentiation Rules",
		Math:        fmt.Sprintf("Applying d/d%s to %s", v, fn),
		Explanation: "Using standard differentiation rules.",
		Result:      derivative,
	})

	simplified, err := s.engine.Expand(derivative)
	if err != nil {
		return nil, err
	}
	steps.Add("Simplify Result",
		fmt.Sprintf("f'(%s) = %s", v, simplified),
		"Simplified the derivative expression.")

	sol := symbolic.Symbolic(simplified)
	return &sol, nil
}

// Integration narrates integrate(E,V). The solution always carries one
// trailing " + C".
type Integration struct {
	engine Engine
}

func (s *Integration) Type() problem.Type { return problem.TypeIntegration }

func (s *Integration) Solve(in Input, steps *Recorder) (*symbolic.Value, error) {
	fn, v := callTarget(in.Normalized, "integrate", "int")
	steps.Add("Integral Identified",
		fmt.Sprintf("∫%s d%s", in.Raw, v),
		"Recognized as an integration problem.")

	antiderivative, err := s.engine.Integrate(fn, v)
	if err != nil {
		return nil, err
	}
	steps.Append(problem.Step{
		Action:      "Apply Integration Rules",
		Math:        "Finding antiderivative of " + fn,
		Explanation: "Using standard integration techniques.",
		Result:      antiderivative,
	})

	simplified, err := s.engine.Expand(antiderivative)
	if err != nil {
		return nil, err
	}
	withC := WithConstant(simplified)
	steps.Add("Simplify Result",
		fmt.Sprintf("∫%s d%s = %s", fn, v, withC),
		"Simplified the integral expression.")

	sol := symbolic.Symbolic(withC)
	return &sol, nil
}

// WithConstant appends " + C" unless it is already there.
func WithConstant(s string) string {
	return strings.TrimSuffix(s, " + C") + " + C"
}

// Algebra solves an equation for the variable named by "for V", either
// leading ("solve for y: ...") or trailing ("... for y"), or x.
type Algebra struct {
	engine Engine
}

func (s *Algebra) Type() problem.Type { return problem.TypeAlgebra }

func (s *Algebra) Solve(in Input, steps *Recorder) (*symbolic.Value, error) {
	steps.Add("Equation Identified", in.Raw, "Recognized as an algebraic equation.")

	equation, v := equationTarget(in)
	roots, err := s.engine.SolveFor(equation, v)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, ErrNoSolutions
	}
	text := strings.Join(roots, ", ")
	steps.Append(problem.Step{
		Action:      "Equation Solved",
		Math:        fmt.Sprintf("%s = %s", v, text),
		Explanation: "Applied algebraic manipulation to isolate the variable.",
		Result:      text,
	})

	sol := symbolic.Symbolic(text)
	return &sol, nil
}

// equationTarget strips the solve keyword and any "for V" from the
// normalized text.
func equationTarget(in Input) (string, string) {
	if m := solveLeadRe.FindStringSubmatch(in.Raw); m != nil {
		return solveLeadForRe.ReplaceAllString(in.Normalized, ""), m[1]
	}
	eq := solvePrefixRe.ReplaceAllString(in.Normalized, "")
	v := defaultVariable
	if m := solveForRe.FindStringSubmatch(in.Raw); m != nil {
		v = m[1]
		eq = strings.TrimSuffix(eq, "for"+v)
	}
	return eq, v
}

// Limit evaluates limit(E,V,A), accepting lim(E,A) and lim(E,V→A) too.
type Limit struct {
	engine Engine
}

func (s *Limit) Type() problem.Type { return problem.TypeLimit }

func (s *Limit) Solve(in Input, steps *Recorder) (*symbolic.Value, error) {
	steps.Add("Limit Identified", "lim "+in.Raw, "Recognized as a limit problem.")

	expr, err := CanonicalLimit(in.Normalized)
	if err != nil {
		return nil, err
	}
	v, err := s.engine.EvaluateLimit(expr)
	if err != nil {
		return nil, err
	}
	v = trace.RoundValue(v)
	steps.Append(problem.Step{
		Action:      "Limit Evaluated",
		Math:        fmt.Sprintf("lim %s = %s", in.Raw, v),
		Explanation: "Applied limit laws and substitution.",
		Result:      v.String(),
	})
	return &v, nil
}

// CanonicalLimit rewrites a normalized limit call into limit(E,V,A).
func CanonicalLimit(s string) (string, error) {
	args, ok := splitCall(s, "limit", "lim")
	if !ok {
		return "", fmt.Errorf("expected lim(expression, point), got %q", s)
	}
	switch len(args) {
	case 2:
		if m := limitArrowRe.FindStringSubmatch(args[1]); m != nil {
			return fmt.Sprintf("limit(%s,%s,%s)", args[0], m[1], m[2]), nil
		}
		return fmt.Sprintf("limit(%s,%s,%s)", args[0], defaultVariable, args[1]), nil
	case 3:
		return fmt.Sprintf("limit(%s,%s,%s)", args[0], args[1], args[2]), nil
	}
	return "", fmt.Errorf("limit expects 2 or 3 arguments, got %d", len(args))
}

// Arithmetic traces the evaluation step by step, then evaluates the whole
// expression once more for the authoritative answer.
type Arithmetic struct {
	engine Engine
	tracer *trace.Tracer
}

func (s *Arithmetic) Type() problem.Type { return problem.TypeArithmetic }

func (s *Arithmetic) Solve(in Input, steps *Recorder) (*symbolic.Value, error) {
	steps.Add("Expression Parsed", in.Raw, "Evaluating the arithmetic expression step by step.")

	traced, _, err := s.tracer.Trace(in.Normalized)
	steps.Append(traced...)
	if err != nil {
		return nil, err
	}

	v, err := s.engine.Evaluate(in.Normalized)
	if err != nil {
		return nil, ErrInvalidArithmetic
	}
	if v.IsNaN() {
		return nil, ErrNotReal
	}
	v = trace.RoundValue(v)
	return &v, nil
}

// callTarget extracts (E, V) from name(E,V), defaulting V to x. Text that
// is not such a call is returned whole.
func callTarget(s string, names ...string) (string, string) {
	args, ok := splitCall(s, names...)
	if !ok || args[0] == "" {
		return s, defaultVariable
	}
	if len(args) > 1 && variableRe.MatchString(args[1]) {
		return args[0], args[1]
	}
	return args[0], defaultVariable
}

// splitCall splits name(a,b,...) into its top-level arguments.
func splitCall(s string, names ...string) ([]string, bool) {
	for _, name := range names {
		if !strings.HasPrefix(s, name+"(") || !strings.HasSuffix(s, ")") {
			continue
		}
		if args, ok := splitArgs(s[len(name)+1 : len(s)-1]); ok {
			return args, true
		}
	}
	return nil, false
}

func splitArgs(body string) ([]string, bool) {
	var args []string
	depth, start := 0, 0
	for i, r := range body {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, false
			}
		case ',':
			if depth == 0 {
				args = append(args, body[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, false
	}
	return append(args, body[start:]), true
}
