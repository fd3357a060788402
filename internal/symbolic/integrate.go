package symbolic

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrNoAntiderivative is wrapped when no integration rule matches.
var ErrNoAntiderivative = errors.New("no antiderivative rule matches")

// Integrate returns an antiderivative of e with respect to v, without the
// constant of integration.
func Integrate(e Expr, v string) (Expr, error) {
	out, ok := integrate(e.Simplify(), v, true)
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrNoAntiderivative, e)
	}
	return out, nil
}

func integrate(e Expr, v string, tryExpand bool) (Expr, bool) {
	x := S(v)
	if !dependsOn(e, v) {
		return MulOf(e, x), true
	}
	switch t := e.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(x, N(2))), true
	case *Add:
		terms := make([]Expr, len(t.terms))
		for i, term := range t.terms {
			r, ok := integrate(term, v, tryExpand)
			if !ok {
				return nil, false
			}
			terms[i] = r
		}
		return AddOf(terms...), true
	case *Mul:
		var consts, rest []Expr
		for _, f := range t.factors {
			if dependsOn(f, v) {
				rest = append(rest, f)
			} else {
				consts = append(consts, f)
			}
		}
		if len(consts) > 0 {
			var inner Expr
			if len(rest) == 1 {
				inner = rest[0]
			} else {
				inner = &Mul{factors: rest}
			}
			if r, ok := integrate(inner, v, tryExpand); ok {
				return MulOf(append(consts, r)...), true
			}
			return nil, false
		}
		if r, ok := integrateProduct(t, v); ok {
			return r, true
		}
	case *Pow:
		if r, ok := integratePow(t, v); ok {
			return r, true
		}
	case *Func:
		if r, ok := integrateFunc(t, v); ok {
			return r, true
		}
	}
	if tryExpand {
		if expanded := Expand(e); expanded.String() != e.String() {
			return integrate(expanded, v, false)
		}
	}
	return nil, false
}

// linear reports e = a*v + b with rational a != 0.
func linear(e Expr, v string) (a, b *big.Rat, ok bool) {
	coeffs, ok := polyCoeffs(e, v)
	if !ok || polyDegree(coeffs) != 1 {
		return nil, nil, false
	}
	b = new(big.Rat)
	if c, exists := coeffs[0]; exists {
		b = c
	}
	return coeffs[1], b, true
}

func integratePow(p *Pow, v string) (Expr, bool) {
	// (a*v + b)^n
	if a, _, ok := linear(p.base, v); ok && !dependsOn(p.exp, v) {
		inv := ratNum(new(big.Rat).Inv(a))
		if n, isNum := p.exp.(*Num); isNum && n.val.Cmp(big.NewRat(-1, 1)) == 0 {
			return MulOf(inv, FuncOf("ln", FuncOf("abs", p.base))), true
		}
		next := AddOf(p.exp, N(1))
		return MulOf(inv, PowOf(p.base, next), PowOf(next, N(-1))), true
	}
	// c^(a*v + b)
	if !dependsOn(p.base, v) {
		if a, _, ok := linear(p.exp, v); ok {
			return MulOf(ratNum(new(big.Rat).Inv(a)), p, PowOf(FuncOf("ln", p.base), N(-1))), true
		}
	}
	return nil, false
}

func integrateFunc(f *Func, v string) (Expr, bool) {
	a, _, ok := linear(f.arg, v)
	if !ok {
		return nil, false
	}
	u := f.arg
	inv := ratNum(new(big.Rat).Inv(a))
	var r Expr
	switch f.name {
	case "sin":
		r = MulOf(N(-1), FuncOf("cos", u))
	case "cos":
		r = FuncOf("sin", u)
	case "tan":
		r = MulOf(N(-1), FuncOf("ln", FuncOf("abs", FuncOf("cos", u))))
	case "sec":
		r = FuncOf("ln", FuncOf("abs", AddOf(FuncOf("sec", u), FuncOf("tan", u))))
	case "csc":
		r = MulOf(N(-1), FuncOf("ln", FuncOf("abs", AddOf(FuncOf("csc", u), FuncOf("cot", u)))))
	case "cot":
		r = FuncOf("ln", FuncOf("abs", FuncOf("sin", u)))
	case "exp":
		r = FuncOf("exp", u)
	case "sinh":
		r = FuncOf("cosh", u)
	case "cosh":
		r = FuncOf("sinh", u)
	case "ln":
		r = AddOf(MulOf(u, FuncOf("ln", u)), MulOf(N(-1), u))
	case "atan":
		r = AddOf(
			MulOf(u, FuncOf("atan", u)),
			MulOf(F(-1, 2), FuncOf("ln", AddOf(N(1), PowOf(u, N(2))))),
		)
	case "asin":
		r = AddOf(
			MulOf(u, FuncOf("asin", u)),
			PowOf(AddOf(N(1), MulOf(N(-1), PowOf(u, N(2)))), F(1, 2)),
		)
	default:
		return nil, false
	}
	return MulOf(inv, r), true
}

// integrateProduct handles u-substitution for c*u'*g(u), where g is one of
// the elementary functions integrateFunc knows.
func integrateProduct(m *Mul, v string) (Expr, bool) {
	if len(m.factors) != 2 {
		return nil, false
	}
	for i, f := range m.factors {
		fn, ok := f.(*Func)
		if !ok {
			continue
		}
		other := m.factors[1-i]
		du, err := fn.arg.Diff(v)
		if err != nil || isZero(du) {
			continue
		}
		ratio := MulOf(other, PowOf(du, N(-1)))
		if dependsOn(ratio, v) {
			continue
		}
		outer, ok := integrateFunc(&Func{name: fn.name, arg: S("_u")}, "_u")
		if !ok {
			continue
		}
		return MulOf(ratio, outer.Sub("_u", fn.arg)), true
	}
	return nil, false
}
