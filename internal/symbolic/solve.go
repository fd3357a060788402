package symbolic

import (
	"errors"
	"math"
	"math/big"
	"sort"
)

// ErrIdentity is returned when every value of the variable satisfies the
// equation.
var ErrIdentity = errors.New("equation holds for every value")

const (
	scanLow        = -100.0
	scanHigh       = 100.0
	scanStep       = 0.05
	bisectRounds   = 200
	maxRationalDiv = 1_000_000
)

// Solve returns the real roots of residual = 0 in v, sorted ascending and
// formatted. An empty slice means there are none.
func Solve(residual Expr, v string) ([]string, error) {
	residual = Expand(residual)
	if !dependsOn(residual, v) {
		if isZero(residual) {
			return nil, ErrIdentity
		}
		if len(FreeSymbols(residual)) == 0 {
			return []string{}, nil
		}
	}
	if coeffs, ok := polyCoeffs(residual, v); ok {
		roots := solvePoly(coeffSlice(coeffs))
		return formatRoots(roots), nil
	}
	return scanRoots(residual, v)
}

// solvePoly finds real roots of the polynomial with ascending coefficients.
func solvePoly(c []*big.Rat) []Expr {
	c = trimPoly(c)
	var roots []Expr
	// Pull out x = 0 roots.
	for len(c) > 1 && c[0].Sign() == 0 {
		roots = appendUnique(roots, N(0))
		c = c[1:]
	}
	switch len(c) - 1 {
	case 0:
		return roots
	case 1:
		return appendUnique(roots, ratNum(new(big.Rat).Quo(new(big.Rat).Neg(c[0]), c[1])))
	case 2:
		return append(roots, solveQuadratic(c[2], c[1], c[0])...)
	}
	for _, r := range rationalRoots(c) {
		roots = appendUnique(roots, ratNum(r))
		c = deflate(c, r)
		if len(c)-1 <= 2 {
			break
		}
	}
	switch len(c) - 1 {
	case 1, 2:
		for _, r := range solvePoly(c) {
			roots = appendUnique(roots, r)
		}
		return roots
	}
	for _, f := range scanPoly(c) {
		roots = appendUnique(roots, floatRoot(f))
	}
	return roots
}

func trimPoly(c []*big.Rat) []*big.Rat {
	for len(c) > 1 && c[len(c)-1].Sign() == 0 {
		c = c[:len(c)-1]
	}
	return c
}

func solveQuadratic(a, b, c *big.Rat) []Expr {
	// D = b^2 - 4ac
	d := new(big.Rat).Mul(b, b)
	d.Sub(d, new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, c)))
	twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
	negB := new(big.Rat).Neg(b)
	switch d.Sign() {
	case -1:
		return nil
	case 0:
		return []Expr{ratNum(new(big.Rat).Quo(negB, twoA))}
	}
	sqrtD := PowOf(ratNum(d), F(1, 2))
	inv := ratNum(new(big.Rat).Inv(twoA))
	r1 := Expand(MulOf(inv, AddOf(ratNum(negB), MulOf(N(-1), sqrtD))))
	r2 := Expand(MulOf(inv, AddOf(ratNum(negB), sqrtD)))
	return []Expr{r1, r2}
}

// rationalRoots applies the rational root theorem to a polynomial with
// rational coefficients.
func rationalRoots(c []*big.Rat) []*big.Rat {
	ints := integerCoeffs(c)
	lead := new(big.Int).Abs(ints[len(ints)-1])
	constant := new(big.Int).Abs(ints[0])
	if !lead.IsInt64() || !constant.IsInt64() ||
		lead.Int64() > maxRationalDiv || constant.Int64() > maxRationalDiv || constant.Sign() == 0 {
		return nil
	}
	var found []*big.Rat
	for _, p := range divisors(constant.Int64()) {
		for _, q := range divisors(lead.Int64()) {
			for _, sign := range []int64{1, -1} {
				r := big.NewRat(sign*p, q)
				if evalPoly(c, r).Sign() == 0 && !containsRat(found, r) {
					found = append(found, r)
				}
			}
		}
	}
	return found
}

func integerCoeffs(c []*big.Rat) []*big.Int {
	lcm := big.NewInt(1)
	for _, r := range c {
		d := r.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	out := make([]*big.Int, len(c))
	for i, r := range c {
		v := new(big.Rat).Mul(r, new(big.Rat).SetInt(lcm))
		out[i] = new(big.Int).Set(v.Num())
	}
	return out
}

func divisors(n int64) []int64 {
	var small, large []int64
	for d := int64(1); d*d <= n; d++ {
		if n%d == 0 {
			small = append(small, d)
			if d != n/d {
				large = append(large, n/d)
			}
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}

func evalPoly(c []*big.Rat, x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(c) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, c[i])
	}
	return acc
}

// deflate divides the polynomial by (x - r) using synthetic division.
func deflate(c []*big.Rat, r *big.Rat) []*big.Rat {
	n := len(c) - 1
	out := make([]*big.Rat, n)
	carry := new(big.Rat)
	for i := n; i >= 1; i-- {
		carry = new(big.Rat).Add(c[i], new(big.Rat).Mul(carry, r))
		out[i-1] = carry
	}
	return out
}

func containsRat(rs []*big.Rat, r *big.Rat) bool {
	for _, x := range rs {
		if x.Cmp(r) == 0 {
			return true
		}
	}
	return false
}

func appendUnique(roots []Expr, r Expr) []Expr {
	for _, x := range roots {
		if x.String() == r.String() {
			return roots
		}
	}
	return append(roots, r)
}

func scanPoly(c []*big.Rat) []float64 {
	fc := make([]float64, len(c))
	for i, r := range c {
		fc[i], _ = r.Float64()
	}
	return scan(func(x float64) (float64, error) {
		acc := 0.0
		for i := len(fc) - 1; i >= 0; i-- {
			acc = acc*x + fc[i]
		}
		return acc, nil
	})
}

func scanRoots(residual Expr, v string) ([]string, error) {
	f := func(x float64) (float64, error) {
		return residual.Eval(map[string]float64{v: x})
	}
	if _, err := f(1); err != nil {
		return nil, err
	}
	var roots []Expr
	for _, r := range scan(f) {
		roots = appendUnique(roots, floatRoot(r))
	}
	return formatRoots(roots), nil
}

// scan locates sign changes of f on a fixed grid and refines each by
// bisection. Points where f is not finite are skipped.
func scan(f func(float64) (float64, error)) []float64 {
	var roots []float64
	prevX := scanLow
	prevY, err := f(prevX)
	prevOK := err == nil && isFinite(prevY)
	steps := int((scanHigh - scanLow) / scanStep)
	for i := 1; i <= steps; i++ {
		x := scanLow + float64(i)*scanStep
		y, err := f(x)
		ok := err == nil && isFinite(y)
		if ok && y == 0 {
			roots = append(roots, x)
		} else if ok && prevOK && prevY != 0 && (prevY < 0) != (y < 0) {
			if r, good := bisect(f, prevX, x, prevY); good {
				roots = append(roots, r)
			}
		}
		prevX, prevY, prevOK = x, y, ok
	}
	return roots
}

func bisect(f func(float64) (float64, error), lo, hi, flo float64) (float64, bool) {
	for i := 0; i < bisectRounds; i++ {
		mid := (lo + hi) / 2
		fm, err := f(mid)
		if err != nil || !isFinite(fm) {
			return 0, false
		}
		if fm == 0 || hi-lo < 1e-13 {
			lo, hi = mid, mid
			break
		}
		if (fm < 0) == (flo < 0) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	root := (lo + hi) / 2
	// A pole also changes sign; keep only points where f is small.
	if y, err := f(root); err != nil || math.Abs(y) > 1e-6 {
		return 0, false
	}
	return root, true
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// floatRoot snaps a numeric root to an exact value when it is within
// rounding noise of one.
func floatRoot(f float64) Expr {
	if r := math.Round(f); math.Abs(f-r) < 1e-9 {
		return N(int64(r))
	}
	return &floatNum{val: snap(f)}
}

func formatRoots(roots []Expr) []string {
	sort.SliceStable(roots, func(i, j int) bool {
		a, _ := roots[i].Eval(nil)
		b, _ := roots[j].Eval(nil)
		return a < b
	})
	out := make([]string, len(roots))
	for i, r := range roots {
		out[i] = r.String()
	}
	return out
}

// snap trims float noise to ten significant digits.
func snap(f float64) float64 {
	if f == 0 || !isFinite(f) {
		return f
	}
	mag := math.Pow(10, 9-math.Floor(math.Log10(math.Abs(f))))
	return math.Round(f*mag) / mag
}

// floatNum is an inexact root found numerically.
type floatNum struct{ val float64 }

func (f *floatNum) Simplify() Expr                         { return f }
func (f *floatNum) String() string                         { return FormatNumber(f.val) }
func (f *floatNum) Sub(string, Expr) Expr                  { return f }
func (f *floatNum) Diff(string) (Expr, error)              { return N(0), nil }
func (f *floatNum) Eval(map[string]float64) (float64, error) { return f.val, nil }
func (f *floatNum) exprType() string                       { return "float" }
