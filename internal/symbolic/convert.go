package symbolic

import (
	"fmt"
	"math/big"
)

// toExpr lowers a parse tree into the exact algebra.
func toExpr(n Node) (Expr, error) {
	switch v := n.(type) {
	case *ConstantNode:
		r, ok := new(big.Rat).SetString(v.Value)
		if !ok {
			return nil, fmt.Errorf("invalid number %q", v.Value)
		}
		return &Num{val: r}, nil
	case *SymbolNode:
		if v.Name == "Infinity" || v.Name == "NaN" {
			return nil, fmt.Errorf("%s is not supported in symbolic expressions", v.Name)
		}
		return S(v.Name), nil
	case *ParenNode:
		return toExpr(v.Content)
	case *UnaryNode:
		x, err := toExpr(v.Operand)
		if err != nil {
			return nil, err
		}
		return MulOf(N(-1), x), nil
	case *OperatorNode:
		l, err := toExpr(v.Left)
		if err != nil {
			return nil, err
		}
		r, err := toExpr(v.Right)
		if err != nil {
			return nil, err
		}
		switch v.Op {
		case "+":
			return AddOf(l, r), nil
		case "-":
			return AddOf(l, MulOf(N(-1), r)), nil
		case "*":
			return MulOf(l, r), nil
		case "/":
			if isZero(r) {
				return nil, fmt.Errorf("division by zero")
			}
			return MulOf(l, PowOf(r, N(-1))), nil
		case "^":
			return PowOf(l, r), nil
		}
		return nil, fmt.Errorf("unknown operator %q", v.Op)
	case *FunctionNode:
		return funcToExpr(v)
	}
	return nil, fmt.Errorf("unsupported node %T", n)
}

func funcToExpr(fn *FunctionNode) (Expr, error) {
	args := make([]Expr, len(fn.Args))
	for i, a := range fn.Args {
		x, err := toExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = x
	}
	if fn.Name == "log" && len(args) == 2 {
		return MulOf(FuncOf("ln", args[0]), PowOf(FuncOf("ln", args[1]), N(-1))), nil
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("%s: expected 1 argument, got %d", fn.Name, len(args))
	}
	u := args[0]
	switch fn.Name {
	case "sqrt":
		return PowOf(u, F(1, 2)), nil
	case "log", "ln":
		return FuncOf("ln", u), nil
	case "log10":
		return MulOf(FuncOf("ln", u), PowOf(FuncOf("ln", N(10)), N(-1))), nil
	case "sin", "cos", "tan", "sec", "csc", "cot", "asin", "acos", "atan",
		"sinh", "cosh", "tanh", "exp", "abs", "floor", "ceil", "round":
		return FuncOf(fn.Name, u), nil
	}
	return nil, fmt.Errorf("%s is not supported in symbolic expressions", fn.Name)
}
