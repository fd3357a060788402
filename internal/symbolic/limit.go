package symbolic

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

// ErrNoLimit is returned when the limit does not exist or cannot be found.
var ErrNoLimit = errors.New("limit could not be determined")

const (
	maxLhopital = 5
	zeroTol     = 1e-12
)

// Limit computes the limit of e as v approaches a finite point.
func Limit(e Expr, v string, point Expr) (Value, error) {
	if len(FreeSymbols(point)) > 0 {
		return Value{}, fmt.Errorf("limit point %s must be a constant", point)
	}
	a, err := point.Eval(nil)
	if err != nil {
		return Value{}, err
	}
	return limitAt(e.Simplify(), v, a, maxLhopital)
}

func limitAt(e Expr, v string, a float64, depth int) (Value, error) {
	num, den := quotient(e)
	env := map[string]float64{v: a}
	nv, nErr := evalStrict(num, env)
	dv, dErr := evalStrict(den, env)
	if nErr == nil && dErr == nil {
		switch {
		case math.Abs(dv) > zeroTol:
			return Number(nv / dv), nil
		case math.Abs(nv) <= zeroTol && depth > 0:
			dn, err := num.Diff(v)
			if err != nil {
				return Value{}, err
			}
			dd, err := den.Diff(v)
			if err != nil {
				return Value{}, err
			}
			return limitAt(MulOf(dn, PowOf(dd, N(-1))), v, a, depth-1)
		}
	}
	return probeFinite(e, v, a)
}

var errNotFinite = errors.New("not finite")

// evalStrict evaluates e and fails if any sub-expression is not finite, so
// forms like 1^(1/0) are not mistaken for 1.
func evalStrict(e Expr, env map[string]float64) (float64, error) {
	var children []Expr
	switch v := e.(type) {
	case *Add:
		children = v.terms
	case *Mul:
		children = v.factors
	case *Pow:
		children = []Expr{v.base, v.exp}
	case *Func:
		children = []Expr{v.arg}
	}
	for _, c := range children {
		if _, err := evalStrict(c, env); err != nil {
			return 0, err
		}
	}
	y, err := e.Eval(env)
	if err != nil {
		return 0, err
	}
	if !isFinite(y) {
		return 0, errNotFinite
	}
	return y, nil
}

// quotient splits e into numerator and denominator on negative powers.
func quotient(e Expr) (num, den Expr) {
	var nums, dens []Expr
	factors := []Expr{e}
	if m, ok := e.(*Mul); ok {
		factors = m.factors
	}
	for _, f := range factors {
		if p, ok := f.(*Pow); ok {
			if n, isNum := p.exp.(*Num); isNum && n.IsNegative() {
				dens = append(dens, invertPow(p))
				continue
			}
		}
		nums = append(nums, f)
	}
	return MulOf(nums...), MulOf(dens...)
}

// probeFinite approaches a from both sides numerically.
func probeFinite(e Expr, v string, a float64) (Value, error) {
	at := func(x float64) float64 {
		y, err := e.Eval(map[string]float64{v: x})
		if err != nil {
			return math.NaN()
		}
		return y
	}
	const h = 1e-7
	left, right := at(a-h), at(a+h)
	if math.IsNaN(left) || math.IsNaN(right) {
		return Value{}, ErrNoLimit
	}
	if huge := 1e6; math.Abs(left) > huge && math.Abs(right) > huge {
		if (left > 0) == (right > 0) {
			return Number(math.Copysign(math.Inf(1), right)), nil
		}
		return Value{}, fmt.Errorf("%w: one-sided limits differ", ErrNoLimit)
	}
	if math.Abs(left-right) > 1e-4*(1+math.Abs(right)) {
		return Value{}, fmt.Errorf("%w: one-sided limits differ", ErrNoLimit)
	}
	return Number(snapLimit((left + right) / 2)), nil
}

// LimitAtInfinity computes the limit of e as v grows without bound in the
// direction of dir (+1 or -1).
func LimitAtInfinity(e Expr, v string, dir int) (Value, error) {
	e = e.Simplify()
	num, den := quotient(e)
	nc, okN := polyCoeffs(num, v)
	dc, okD := polyCoeffs(den, v)
	if okN && okD && len(dc) > 0 {
		if len(nc) == 0 {
			return Number(0), nil
		}
		dn, dd := polyDegree(nc), polyDegree(dc)
		ratio := new(big.Rat).Quo(nc[dn], dc[dd])
		switch {
		case dn < dd:
			return Number(0), nil
		case dn == dd:
			f, _ := ratio.Float64()
			return Number(f), nil
		}
		sign := ratio.Sign()
		if dir < 0 && (dn-dd)%2 == 1 {
			sign = -sign
		}
		return Number(math.Inf(sign)), nil
	}
	return probeInfinite(e, v, dir)
}

func probeInfinite(e Expr, v string, dir int) (Value, error) {
	var ys []float64
	for _, x := range []float64{1e4, 1e6, 1e8} {
		y, err := e.Eval(map[string]float64{v: float64(dir) * x})
		if err != nil {
			return Value{}, err
		}
		if math.IsNaN(y) {
			return Value{}, ErrNoLimit
		}
		ys = append(ys, y)
	}
	last, prev := ys[2], ys[1]
	if math.IsInf(last, 0) {
		return Number(last), nil
	}
	if math.Abs(last-prev) <= 1e-5*(1+math.Abs(last)) {
		return Number(snapLimit(last)), nil
	}
	if math.Abs(last) > 1e6 && math.Abs(last) > math.Abs(prev) && math.Abs(prev) > math.Abs(ys[0]) &&
		(last > 0) == (prev > 0) {
		return Number(math.Copysign(math.Inf(1), last)), nil
	}
	return Value{}, ErrNoLimit
}

func snapLimit(f float64) float64 {
	if r := math.Round(f); math.Abs(f-r) < 1e-6 {
		return r
	}
	return snap(f)
}
