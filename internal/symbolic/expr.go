package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"
)

// Expr is an exact symbolic expression. Constructors (AddOf, MulOf, PowOf,
// FuncOf) return simplified, canonically ordered trees, so two equal
// expressions print identically.
type Expr interface {
	Simplify() Expr
	String() string
	Sub(name string, value Expr) Expr
	Diff(name string) (Expr, error)
	Eval(env map[string]float64) (float64, error)
	exprType() string
}

// ---------------------------------------------------------------------------
// Num is an exact rational number

type Num struct{ val *big.Rat }

func N(n int64) *Num         { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num      { return &Num{val: big.NewRat(p, q)} }
func ratNum(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Simplify() Expr                          { return n }
func (n *Num) Sub(string, Expr) Expr                   { return n }
func (n *Num) Diff(string) (Expr, error)               { return N(0), nil }
func (n *Num) Eval(map[string]float64) (float64, error) { return n.Float64(), nil }
func (n *Num) exprType() string                        { return "num" }
func (n *Num) Float64() float64                        { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool                            { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool                             { return n.val.Cmp(ratOne) == 0 }
func (n *Num) IsInteger() bool                         { return n.val.IsInt() }
func (n *Num) IsPositive() bool                        { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool                        { return n.val.Sign() < 0 }

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

var (
	ratOne  = big.NewRat(1, 1)
	ratHalf = big.NewRat(1, 2)
)

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }

// numRecip returns 1/a. Callers check a is non-zero.
func numRecip(a *Num) *Num { return &Num{val: new(big.Rat).Inv(a.val)} }

// ---------------------------------------------------------------------------
// Sym is a named variable or constant

type Sym struct{ name string }

func S(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Simplify() Expr   { return s }
func (s *Sym) String() string   { return s.name }
func (s *Sym) exprType() string { return "sym" }
func (s *Sym) Name() string     { return s.name }

func (s *Sym) Sub(name string, value Expr) Expr {
	if s.name == name {
		return value
	}
	return s
}

func (s *Sym) Diff(name string) (Expr, error) {
	if s.name == name {
		return N(1), nil
	}
	return N(0), nil
}

func (s *Sym) Eval(env map[string]float64) (float64, error) {
	if v, ok := env[s.name]; ok {
		return v, nil
	}
	switch s.name {
	case "pi":
		return math.Pi, nil
	case "e":
		return math.E, nil
	}
	return 0, fmt.Errorf("undefined symbol %s", s.name)
}

func isConstantSym(name string) bool { return name == "pi" || name == "e" }

// ---------------------------------------------------------------------------
// Add is a sum of terms

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Simplify() Expr {
	var flat []Expr
	for _, t := range a.terms {
		t = t.Simplify()
		if inner, ok := t.(*Add); ok {
			flat = append(flat, inner.terms...)
			continue
		}
		flat = append(flat, t)
	}

	type group struct {
		coeff *big.Rat
		rest  Expr
	}
	constant := new(big.Rat)
	groups := make(map[string]*group)
	var order []string
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			constant.Add(constant, n.val)
			continue
		}
		c, rest := splitCoeff(t)
		key := rest.String()
		if g, ok := groups[key]; ok {
			g.coeff.Add(g.coeff, c)
			continue
		}
		groups[key] = &group{coeff: new(big.Rat).Set(c), rest: rest}
		order = append(order, key)
	}

	var terms []Expr
	for _, key := range order {
		g := groups[key]
		if g.coeff.Sign() == 0 {
			continue
		}
		terms = append(terms, MulOf(ratNum(g.coeff), g.rest))
	}
	sort.SliceStable(terms, func(i, j int) bool {
		di, dj := degree(terms[i]), degree(terms[j])
		if di != dj {
			return di > dj
		}
		return terms[i].String() < terms[j].String()
	})
	if constant.Sign() != 0 {
		terms = append(terms, ratNum(constant))
	}
	switch len(terms) {
	case 0:
		return N(0)
	case 1:
		return terms[0]
	}
	return &Add{terms: terms}
}

func (a *Add) String() string {
	var b strings.Builder
	for i, t := range a.terms {
		if i == 0 {
			b.WriteString(t.String())
			continue
		}
		if isNegativeTerm(t) {
			b.WriteString(" - ")
			b.WriteString(MulOf(N(-1), t).String())
			continue
		}
		b.WriteString(" + ")
		b.WriteString(t.String())
	}
	return b.String()
}

func (a *Add) Sub(name string, value Expr) Expr {
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		terms[i] = t.Sub(name, value)
	}
	return AddOf(terms...)
}

func (a *Add) Diff(name string) (Expr, error) {
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		d, err := t.Diff(name)
		if err != nil {
			return nil, err
		}
		terms[i] = d
	}
	return AddOf(terms...), nil
}

func (a *Add) Eval(env map[string]float64) (float64, error) {
	sum := 0.0
	for _, t := range a.terms {
		v, err := t.Eval(env)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum, nil
}

func (a *Add) exprType() string { return "add" }
func (a *Add) Terms() []Expr    { return a.terms }

// ---------------------------------------------------------------------------
// Mul is a product of factors. A numeric coefficient, when present, comes first

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Simplify() Expr {
	coeff := big.NewRat(1, 1)
	var flat []Expr
	for _, f := range m.factors {
		f = f.Simplify()
		switch v := f.(type) {
		case *Num:
			coeff.Mul(coeff, v.val)
		case *Mul:
			for _, g := range v.factors {
				if n, ok := g.(*Num); ok {
					coeff.Mul(coeff, n.val)
					continue
				}
				flat = append(flat, g)
			}
		default:
			flat = append(flat, f)
		}
	}
	if coeff.Sign() == 0 {
		return N(0)
	}

	type power struct {
		base Expr
		exps []Expr
		orig Expr
	}
	groups := make(map[string]*power)
	var order []string
	for _, f := range flat {
		base, exp := splitPow(f)
		key := base.String()
		if p, ok := groups[key]; ok {
			p.exps = append(p.exps, exp)
			continue
		}
		groups[key] = &power{base: base, exps: []Expr{exp}, orig: f}
		order = append(order, key)
	}

	var rebuilt []Expr
	again := false
	for _, key := range order {
		p := groups[key]
		if len(p.exps) == 1 {
			rebuilt = append(rebuilt, p.orig)
			continue
		}
		r := PowOf(p.base, AddOf(p.exps...))
		switch v := r.(type) {
		case *Num:
			coeff.Mul(coeff, v.val)
		case *Mul:
			again = true
			rebuilt = append(rebuilt, r)
		default:
			rebuilt = append(rebuilt, r)
		}
	}
	if again {
		return MulOf(append([]Expr{ratNum(coeff)}, rebuilt...)...)
	}

	sort.SliceStable(rebuilt, func(i, j int) bool {
		ri, rj := factorRank(rebuilt[i]), factorRank(rebuilt[j])
		if ri != rj {
			return ri < rj
		}
		return rebuilt[i].String() < rebuilt[j].String()
	})
	if len(rebuilt) == 0 {
		return ratNum(coeff)
	}
	if coeff.Cmp(ratOne) == 0 {
		if len(rebuilt) == 1 {
			return rebuilt[0]
		}
		return &Mul{factors: rebuilt}
	}
	return &Mul{factors: append([]Expr{ratNum(coeff)}, rebuilt...)}
}

// String renders negative powers as a denominator, so x*y^(-1) prints as x/y.
func (m *Mul) String() string {
	coeff := new(big.Rat).Set(ratOne)
	var num, den []string
	for _, f := range m.factors {
		switch v := f.(type) {
		case *Num:
			coeff.Set(v.val)
			continue
		case *Pow:
			if e, ok := v.exp.(*Num); ok && e.IsNegative() {
				den = append(den, factorString(invertPow(v)))
				continue
			}
		}
		num = append(num, factorString(f))
	}
	sign := ""
	if coeff.Sign() < 0 {
		sign = "-"
		coeff.Neg(coeff)
	}
	if p := coeff.Num(); p.Cmp(big.NewInt(1)) != 0 {
		num = append([]string{p.String()}, num...)
	}
	if q := coeff.Denom(); q.Cmp(big.NewInt(1)) != 0 {
		den = append([]string{q.String()}, den...)
	}
	numStr := strings.Join(num, "*")
	if numStr == "" {
		numStr = "1"
	}
	if len(den) == 0 {
		return sign + numStr
	}
	denStr := strings.Join(den, "*")
	if len(den) > 1 {
		denStr = "(" + denStr + ")"
	}
	return sign + numStr + "/" + denStr
}

func (m *Mul) Sub(name string, value Expr) Expr {
	fs := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.Sub(name, value)
	}
	return MulOf(fs...)
}

// Diff applies the product rule.
func (m *Mul) Diff(name string) (Expr, error) {
	terms := make([]Expr, 0, len(m.factors))
	for i := range m.factors {
		d, err := m.factors[i].Diff(name)
		if err != nil {
			return nil, err
		}
		fs := make([]Expr, len(m.factors))
		copy(fs, m.factors)
		fs[i] = d
		terms = append(terms, MulOf(fs...))
	}
	return AddOf(terms...), nil
}

func (m *Mul) Eval(env map[string]float64) (float64, error) {
	prod := 1.0
	for _, f := range m.factors {
		v, err := f.Eval(env)
		if err != nil {
			return 0, err
		}
		prod *= v
	}
	return prod, nil
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) Factors() []Expr  { return m.factors }

// ---------------------------------------------------------------------------
// Pow is base^exp.

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()
	e, expNum := exp.(*Num)
	if expNum {
		if e.IsZero() {
			return N(1)
		}
		if e.IsOne() {
			return base
		}
	}
	switch b := base.(type) {
	case *Num:
		if b.IsOne() {
			return N(1)
		}
		if expNum {
			if b.IsZero() && e.IsPositive() {
				return N(0)
			}
			if r, ok := numPow(b, e); ok {
				return r
			}
		}
	case *Sym:
		if b.name == "e" {
			return FuncOf("exp", exp)
		}
	case *Pow:
		if expNum && e.IsInteger() {
			return PowOf(b.base, MulOf(b.exp, e))
		}
	case *Mul:
		if expNum && e.IsInteger() {
			fs := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				fs[i] = PowOf(f, e)
			}
			return MulOf(fs...)
		}
	case *Func:
		if b.name == "exp" {
			return FuncOf("exp", MulOf(b.arg, exp))
		}
	}
	return &Pow{base: base, exp: exp}
}

func (p *Pow) String() string {
	if e, ok := p.exp.(*Num); ok {
		if e.val.Cmp(ratHalf) == 0 {
			return "sqrt(" + p.base.String() + ")"
		}
		if e.IsNegative() {
			return "1/" + factorString(invertPow(p))
		}
	}
	return wrapBase(p.base) + "^" + wrapExp(p.exp)
}

func (p *Pow) Sub(name string, value Expr) Expr {
	return PowOf(p.base.Sub(name, value), p.exp.Sub(name, value))
}

func (p *Pow) Diff(name string) (Expr, error) {
	db, err := p.base.Diff(name)
	if err != nil {
		return nil, err
	}
	if n, ok := p.exp.(*Num); ok {
		// n * b^(n-1) * b'
		return MulOf(n, PowOf(p.base, numAdd(n, N(-1))), db), nil
	}
	de, err := p.exp.Diff(name)
	if err != nil {
		return nil, err
	}
	if isZero(db) {
		// b^u * ln(b) * u'
		return MulOf(p, FuncOf("ln", p.base), de), nil
	}
	// general: b^u * (u' ln b + u b'/b)
	return MulOf(p, AddOf(
		MulOf(de, FuncOf("ln", p.base)),
		MulOf(p.exp, db, PowOf(p.base, N(-1))),
	)), nil
}

func (p *Pow) Eval(env map[string]float64) (float64, error) {
	b, err := p.base.Eval(env)
	if err != nil {
		return 0, err
	}
	e, err := p.exp.Eval(env)
	if err != nil {
		return 0, err
	}
	if n, ok := p.exp.(*Num); ok && b < 0 && !n.IsInteger() {
		// Odd roots of negative numbers stay real.
		if n.val.Denom().Bit(0) == 1 {
			r := math.Pow(-b, e)
			if n.val.Num().Bit(0) == 1 {
				return -r, nil
			}
			return r, nil
		}
	}
	return math.Pow(b, e), nil
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) Base() Expr       { return p.base }
func (p *Pow) Exp() Expr        { return p.exp }

// ---------------------------------------------------------------------------
// helpers

func isZero(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsZero()
}

func isNegativeTerm(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.IsNegative()
	case *Mul:
		if n, ok := v.factors[0].(*Num); ok {
			return n.IsNegative()
		}
	}
	return false
}

// splitCoeff separates the numeric coefficient of a term from the rest.
func splitCoeff(e Expr) (*big.Rat, Expr) {
	m, ok := e.(*Mul)
	if !ok {
		return ratOne, e
	}
	n, ok := m.factors[0].(*Num)
	if !ok {
		return ratOne, e
	}
	rest := m.factors[1:]
	if len(rest) == 1 {
		return n.val, rest[0]
	}
	return n.val, &Mul{factors: rest}
}

func splitPow(e Expr) (base, exp Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, N(1)
}

// invertPow returns base^(-exp) for a power with a negative numeric exponent.
func invertPow(p *Pow) Expr {
	e := numNeg(p.exp.(*Num))
	if e.IsOne() {
		return p.base
	}
	return &Pow{base: p.base, exp: e}
}

func factorString(e Expr) string {
	if _, ok := e.(*Add); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func wrapBase(e Expr) string {
	switch v := e.(type) {
	case *Add, *Mul, *Pow:
		return "(" + e.String() + ")"
	case *Num:
		if v.IsNegative() || !v.IsInteger() {
			return "(" + e.String() + ")"
		}
	}
	return e.String()
}

func wrapExp(e Expr) string {
	switch v := e.(type) {
	case *Sym, *Func:
		return e.String()
	case *Num:
		if v.IsInteger() && !v.IsNegative() {
			return e.String()
		}
	}
	return "(" + e.String() + ")"
}

// degree orders sum terms: higher polynomial degree first, constants last.
func degree(e Expr) float64 {
	switch v := e.(type) {
	case *Sym:
		if isConstantSym(v.name) {
			return 0
		}
		return 1
	case *Pow:
		if n, ok := v.exp.(*Num); ok {
			return degree(v.base) * n.Float64()
		}
		return degree(v.base)
	case *Mul:
		d := 0.0
		for _, f := range v.factors {
			d += degree(f)
		}
		return d
	case *Add:
		d := 0.0
		for i, t := range v.terms {
			if td := degree(t); i == 0 || td > d {
				d = td
			}
		}
		return d
	case *Func:
		if len(FreeSymbols(v)) > 0 {
			return 0.5
		}
	}
	return 0
}

func factorRank(e Expr) int {
	switch v := e.(type) {
	case *Sym:
		return 0
	case *Pow:
		if _, ok := v.base.(*Sym); ok {
			return 0
		}
	}
	return 1
}

// FreeSymbols returns the sorted variable names in e, excluding pi and e.
func FreeSymbols(e Expr) []string {
	seen := make(map[string]bool)
	var walk func(Expr)
	walk = func(e Expr) {
		switch v := e.(type) {
		case *Sym:
			if !isConstantSym(v.name) {
				seen[v.name] = true
			}
		case *Add:
			for _, t := range v.terms {
				walk(t)
			}
		case *Mul:
			for _, f := range v.factors {
				walk(f)
			}
		case *Pow:
			walk(v.base)
			walk(v.exp)
		case *Func:
			walk(v.arg)
		}
	}
	walk(e)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func dependsOn(e Expr, name string) bool {
	for _, s := range FreeSymbols(e) {
		if s == name {
			return true
		}
	}
	return false
}
