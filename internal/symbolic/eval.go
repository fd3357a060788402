package symbolic

import (
	"fmt"
	"math"
	"strconv"
)

type numericFunc func(args []float64) (float64, error)

func unary(f func(float64) float64) numericFunc {
	return func(args []float64) (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		return f(args[0]), nil
	}
}

// knownFunctions maps every function name the parser treats as a call. A nil
// entry is a symbolic-only operation that cannot be evaluated numerically.
var knownFunctions = map[string]numericFunc{
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"sec":   unary(func(x float64) float64 { return 1 / math.Cos(x) }),
	"csc":   unary(func(x float64) float64 { return 1 / math.Sin(x) }),
	"cot":   unary(func(x float64) float64 { return 1 / math.Tan(x) }),
	"asin":  unary(math.Asin),
	"acos":  unary(math.Acos),
	"atan":  unary(math.Atan),
	"sinh":  unary(math.Sinh),
	"cosh":  unary(math.Cosh),
	"tanh":  unary(math.Tanh),
	"exp":   unary(math.Exp),
	"ln":    unary(math.Log),
	"log10": unary(math.Log10),
	"sqrt":  unary(math.Sqrt),
	"abs":   unary(math.Abs),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"round": unary(math.Round),
	"log": func(args []float64) (float64, error) {
		switch len(args) {
		case 1:
			return math.Log(args[0]), nil
		case 2:
			return math.Log(args[0]) / math.Log(args[1]), nil
		}
		return 0, fmt.Errorf("expected 1 or 2 arguments, got %d", len(args))
	},

	"diff":      nil,
	"integrate": nil,
	"int":       nil,
	"limit":     nil,
	"lim":       nil,
}

var namedConstants = map[string]float64{
	"pi":       math.Pi,
	"e":        math.E,
	"Infinity": math.Inf(1),
	"NaN":      math.NaN(),
}

func evalNode(n Node) (float64, error) {
	switch v := n.(type) {
	case *ConstantNode:
		f, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", v.Value)
		}
		return f, nil
	case *SymbolNode:
		if c, ok := namedConstants[v.Name]; ok {
			return c, nil
		}
		return 0, fmt.Errorf("undefined symbol %s", v.Name)
	case *ParenNode:
		return evalNode(v.Content)
	case *UnaryNode:
		x, err := evalNode(v.Operand)
		if err != nil {
			return 0, err
		}
		return -x, nil
	case *OperatorNode:
		l, err := evalNode(v.Left)
		if err != nil {
			return 0, err
		}
		r, err := evalNode(v.Right)
		if err != nil {
			return 0, err
		}
		return applyOperator(v.Op, l, r)
	case *FunctionNode:
		fn, ok := knownFunctions[v.Name]
		if !ok {
			return 0, fmt.Errorf("undefined function %s", v.Name)
		}
		if fn == nil {
			return 0, fmt.Errorf("%s cannot be evaluated numerically", v.Name)
		}
		args := make([]float64, len(v.Args))
		for i, a := range v.Args {
			x, err := evalNode(a)
			if err != nil {
				return 0, err
			}
			args[i] = x
		}
		out, err := fn(args)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", v.Name, err)
		}
		return out, nil
	}
	return 0, fmt.Errorf("unsupported node %T", n)
}

func applyOperator(op string, l, r float64) (float64, error) {
	switch op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		return l / r, nil
	case "^":
		return math.Pow(l, r), nil
	}
	return 0, fmt.Errorf("unknown operator %q", op)
}
