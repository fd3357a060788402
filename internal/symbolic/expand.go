package symbolic

import "math/big"

const maxExpandPower = 10

// Expand distributes products over sums and multiplies out small integer
// powers of sums.
func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			a, ok := f.(*Add)
			if !ok {
				continue
			}
			rest := make([]Expr, 0, len(expanded)-1)
			for j, ef := range expanded {
				if j != i {
					rest = append(rest, ef)
				}
			}
			terms := make([]Expr, len(a.terms))
			for k, t := range a.terms {
				terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
			}
			return expandExpr(AddOf(terms...))
		}
		return MulOf(expanded...)
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = expandExpr(t)
		}
		return AddOf(terms...)
	case *Pow:
		if n, ok := v.exp.(*Num); ok && n.IsInteger() && n.IsPositive() {
			if k := n.val.Num().Int64(); k <= maxExpandPower {
				base := expandExpr(v.base)
				if _, isSum := base.(*Add); !isSum {
					return PowOf(base, n)
				}
				result := Expr(N(1))
				for i := int64(0); i < k; i++ {
					result = distribute(result, base)
				}
				return result
			}
		}
		return PowOf(expandExpr(v.base), v.exp)
	case *Func:
		return FuncOf(v.name, expandExpr(v.arg))
	}
	return e
}

// distribute multiplies two expanded expressions term by term. MulOf alone
// would fold (x+1)*(x+1) back into (x+1)^2.
func distribute(a, b Expr) Expr {
	var out []Expr
	for _, ta := range sumTerms(a) {
		for _, tb := range sumTerms(b) {
			out = append(out, MulOf(ta, tb))
		}
	}
	return AddOf(out...)
}

func sumTerms(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// polyCoeffs returns the rational coefficients of e as a polynomial in name,
// indexed by degree. ok is false when e is not a polynomial in name with
// numeric coefficients.
func polyCoeffs(e Expr, name string) (coeffs map[int]*big.Rat, ok bool) {
	coeffs = make(map[int]*big.Rat)
	add := func(deg int, c *big.Rat) {
		if cur, exists := coeffs[deg]; exists {
			cur.Add(cur, c)
			return
		}
		coeffs[deg] = new(big.Rat).Set(c)
	}
	expanded := Expand(e)
	terms := []Expr{expanded}
	if a, isSum := expanded.(*Add); isSum {
		terms = a.terms
	}
	for _, t := range terms {
		if n, isNum := t.(*Num); isNum {
			add(0, n.val)
			continue
		}
		c, rest := splitCoeff(t)
		deg, isMonomial := monomialDegree(rest, name)
		if !isMonomial {
			return nil, false
		}
		add(deg, c)
	}
	for d, c := range coeffs {
		if c.Sign() == 0 {
			delete(coeffs, d)
		}
	}
	return coeffs, true
}

func monomialDegree(e Expr, name string) (int, bool) {
	switch v := e.(type) {
	case *Sym:
		return 1, v.name == name
	case *Pow:
		s, ok := v.base.(*Sym)
		if !ok || s.name != name {
			return 0, false
		}
		n, ok := v.exp.(*Num)
		if !ok || !n.IsInteger() || n.IsNegative() || !n.val.Num().IsInt64() {
			return 0, false
		}
		return int(n.val.Num().Int64()), true
	}
	return 0, false
}

func polyDegree(coeffs map[int]*big.Rat) int {
	deg := 0
	for d := range coeffs {
		if d > deg {
			deg = d
		}
	}
	return deg
}

// coeffSlice returns coefficients in ascending degree order.
func coeffSlice(coeffs map[int]*big.Rat) []*big.Rat {
	deg := polyDegree(coeffs)
	out := make([]*big.Rat, deg+1)
	for i := range out {
		if c, ok := coeffs[i]; ok {
			out[i] = new(big.Rat).Set(c)
		} else {
			out[i] = new(big.Rat)
		}
	}
	return out
}
