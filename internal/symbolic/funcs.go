package symbolic

import (
	"fmt"
	"math"
	"math/big"
)

// Func is a single-argument elementary function application.
type Func struct {
	name string
	arg  Expr
}

func FuncOf(name string, arg Expr) Expr { return (&Func{name: name, arg: arg}).Simplify() }

// Simplify only folds values that are exact; sin(1) stays sin(1).
func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	out := &Func{name: f.name, arg: arg}
	if n, ok := arg.(*Num); ok {
		switch {
		case n.IsZero():
			switch f.name {
			case "sin", "tan", "asin", "atan", "sinh", "tanh":
				return N(0)
			case "cos", "cosh", "exp", "sec":
				return N(1)
			}
		case n.IsOne():
			switch f.name {
			case "ln":
				return N(0)
			case "asin":
				return MulOf(F(1, 2), S("pi"))
			case "atan":
				return MulOf(F(1, 4), S("pi"))
			}
		}
		if f.name == "abs" {
			return ratNum(new(big.Rat).Abs(n.val))
		}
		return out
	}
	switch a := arg.(type) {
	case *Sym:
		switch {
		case f.name == "ln" && a.name == "e":
			return N(1)
		case f.name == "sin" && a.name == "pi":
			return N(0)
		case f.name == "cos" && a.name == "pi":
			return N(-1)
		}
	case *Func:
		if f.name == "exp" && a.name == "ln" {
			return a.arg
		}
		if f.name == "ln" && a.name == "exp" {
			return a.arg
		}
		if f.name == "abs" && a.name == "abs" {
			return a
		}
	}
	return out
}

func (f *Func) String() string   { return f.name + "(" + f.arg.String() + ")" }
func (f *Func) exprType() string { return "func" }
func (f *Func) Name() string     { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

func (f *Func) Sub(name string, value Expr) Expr {
	return FuncOf(f.name, f.arg.Sub(name, value))
}

// Diff applies the chain rule.
func (f *Func) Diff(name string) (Expr, error) {
	du, err := f.arg.Diff(name)
	if err != nil {
		return nil, err
	}
	if isZero(du) {
		return N(0), nil
	}
	u := f.arg
	var outer Expr
	switch f.name {
	case "sin":
		outer = FuncOf("cos", u)
	case "cos":
		outer = MulOf(N(-1), FuncOf("sin", u))
	case "tan":
		outer = PowOf(FuncOf("sec", u), N(2))
	case "sec":
		outer = MulOf(FuncOf("sec", u), FuncOf("tan", u))
	case "csc":
		outer = MulOf(N(-1), FuncOf("csc", u), FuncOf("cot", u))
	case "cot":
		outer = MulOf(N(-1), PowOf(FuncOf("csc", u), N(2)))
	case "asin":
		outer = PowOf(AddOf(N(1), MulOf(N(-1), PowOf(u, N(2)))), F(-1, 2))
	case "acos":
		outer = MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(u, N(2)))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(u, N(2))), N(-1))
	case "sinh":
		outer = FuncOf("cosh", u)
	case "cosh":
		outer = FuncOf("sinh", u)
	case "tanh":
		outer = PowOf(FuncOf("cosh", u), N(-2))
	case "exp":
		outer = FuncOf("exp", u)
	case "ln":
		outer = PowOf(u, N(-1))
	case "abs":
		outer = MulOf(u, PowOf(FuncOf("abs", u), N(-1)))
	default:
		return nil, fmt.Errorf("cannot differentiate %s", f.name)
	}
	return MulOf(outer, du), nil
}

func (f *Func) Eval(env map[string]float64) (float64, error) {
	x, err := f.arg.Eval(env)
	if err != nil {
		return 0, err
	}
	fn := knownFunctions[f.name]
	if fn == nil {
		return 0, fmt.Errorf("undefined function %s", f.name)
	}
	return fn([]float64{x})
}

// ---------------------------------------------------------------------------
// exact powers of rationals

const maxExactExponent = 256

// numPow computes b^e exactly when the result is rational, or pulls square
// factors out of an integer square root (sqrt(8) = 2*sqrt(2)).
func numPow(b, e *Num) (Expr, bool) {
	if e.IsInteger() {
		if !e.val.Num().IsInt64() {
			return nil, false
		}
		n := e.val.Num().Int64()
		if n > maxExactExponent || n < -maxExactExponent {
			return nil, false
		}
		if n < 0 && b.IsZero() {
			return nil, false
		}
		neg := n < 0
		if neg {
			n = -n
		}
		num := new(big.Int).Exp(b.val.Num(), big.NewInt(n), nil)
		den := new(big.Int).Exp(b.val.Denom(), big.NewInt(n), nil)
		r := new(big.Rat).SetFrac(num, den)
		if neg {
			r.Inv(r)
		}
		return &Num{val: r}, true
	}

	p, q := e.val.Num(), e.val.Denom()
	if !q.IsInt64() || q.Int64() > 12 || !p.IsInt64() {
		return nil, false
	}
	root := q.Int64()
	if b.IsNegative() && root%2 == 0 {
		return nil, false
	}
	rn, okN := intRoot(new(big.Int).Abs(b.val.Num()), root)
	rd, okD := intRoot(b.val.Denom(), root)
	if okN && okD {
		if b.IsNegative() {
			rn.Neg(rn)
		}
		return numPow(&Num{val: new(big.Rat).SetFrac(rn, rd)}, N(p.Int64()))
	}
	if root == 2 && p.Int64() == 1 && b.IsInteger() && b.IsPositive() {
		if k, rest, ok := splitSquare(b.val.Num()); ok {
			return MulOf(&Num{val: new(big.Rat).SetInt(k)}, &Pow{base: &Num{val: new(big.Rat).SetInt(rest)}, exp: F(1, 2)}), true
		}
	}
	return nil, false
}

// intRoot returns the exact k-th root of a non-negative x, if there is one.
func intRoot(x *big.Int, k int64) (*big.Int, bool) {
	if x.Sign() == 0 {
		return new(big.Int), true
	}
	if k == 2 {
		r := new(big.Int).Sqrt(x)
		return r, new(big.Int).Mul(r, r).Cmp(x) == 0
	}
	f, _ := new(big.Float).SetInt(x).Float64()
	guess := int64(math.Round(math.Pow(f, 1/float64(k))))
	for _, c := range []int64{guess - 1, guess, guess + 1} {
		if c < 0 {
			continue
		}
		r := big.NewInt(c)
		if new(big.Int).Exp(r, big.NewInt(k), nil).Cmp(x) == 0 {
			return r, true
		}
	}
	return nil, false
}

// splitSquare writes n as k^2 * rest with k > 1, for n small enough to
// factor by trial division.
func splitSquare(n *big.Int) (k, rest *big.Int, ok bool) {
	if !n.IsInt64() || n.Int64() > 1e12 {
		return nil, nil, false
	}
	v := n.Int64()
	kk := int64(1)
	for d := int64(2); d*d <= v; d++ {
		for v%(d*d) == 0 {
			v /= d * d
			kk *= d
		}
	}
	if kk == 1 {
		return nil, nil, false
	}
	return big.NewInt(kk), big.NewInt(v), true
}
