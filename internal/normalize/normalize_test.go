package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"arithmetic", "2 + 3 * 4", "2+3*4"},
		{"multiline", "2 +\n 3\t* 4", "2+3*4"},
		{"derivative parens", "d/dx(x^2)", "diff(x^2,x)"},
		{"derivative brackets", "d/dx[x^3 + 1]", "diff(x^3+1,x)"},
		{"derivative nested", "d/dx(sin(x)*(x+1))", "diff(sin(x)*(x+1),x)"},
		{"derivative other var", "d/dt(t^2)", "diff(t^2,t)"},
		{"derivative bare", "d/dx x^2", "diff(x^2,x)"},
		{"derivative spaced", "d / dx (x^2)", "diff(x^2,x)"},
		{"derivative spaced var", "d/d x(x^3)", "diff(x^3,x)"},
		{"derivative phrase", "derivative of x^2", "diff(x^2,x)"},
		{"derivative phrase var", "Find the derivative of t^3 with respect to t", "diff(t^3,t)"},
		{"differentiate", "differentiate sin(x)", "diff(sin(x),x)"},
		{"integral symbol", "∫x^2 dx", "integrate(x^2,x)"},
		{"integral symbol var", "∫ 2t dt", "integrate(2t,t)"},
		{"integral no differential", "∫ x^2", "integrate(x^2,x)"},
		{"integral phrase", "integral of x^2 with respect to y", "integrate(x^2,y)"},
		{"integrate phrase", "integrate 3x dx", "integrate(3x,x)"},
		{"limit phrase", "limit of sin(x)/x as x approaches 0", "limit(sin(x)/x,x,0)"},
		{"limit arrow", "lim x→0 sin(x)/x", "limit(sin(x)/x,x,0)"},
		{"limit subscript", "lim_{x→∞} 1/x", "limit(1/x,x,Infinity)"},
		{"limit call", "lim(sin(x)/x, x→0)", "limit(sin(x)/x,x,0)"},
		{"limit call spaced", "lim (x^2, x->2)", "limit(x^2,x,2)"},
		{"times glyph", "6 × 7", "6*7"},
		{"x between numbers", "3 x 4", "3*4"},
		{"x chain", "2x3x4", "2*3*4"},
		{"x variable kept", "2x + 4 = 10", "2x+4=10"},
		{"division glyph", "8 ÷ 2", "8/2"},
		{"unicode minus", "5 − 3 – 1", "5-3-1"},
		{"dot product", "2·3", "2*3"},
		{"superscript", "x² + x³", "x^2+x^3"},
		{"trailing period", "2 + 2.", "2+2"},
		{"decimal kept", "2.5 + 1", "2.5+1"},
		{"empty", "", ""},
		{"whitespace only", "  \n ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"2 + 3 * 4",
		"d/dx(x^2)",
		"d/dx (x^2",
		"∫ x dx = 4",
		"∫ ∫ y",
		"derivative of x^2 with respect to t.",
		"lim x→0 sin(x)/x",
		"3 x 4 x 5",
		"2. .",
		"the derivative of x^2, please",
		"solve 2x + 4 = 10",
		"x² + 1",
		"d / dx (x^2)",
		"d/d x(x^3)",
		"lim (x^2, x->2)",
		"d / dt t^2",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

// Phrase rules need the single spaces left by collapse-whitespace and must
// run before whitespace is stripped; running the rules backwards breaks them.
func TestRuleOrder(t *testing.T) {
	var names []string
	for _, r := range Rules() {
		names = append(names, r.Name)
		assert.NotEmpty(t, r.Intent, r.Name)
	}
	assert.Equal(t, []string{
		"collapse-whitespace",
		"derivative",
		"integral",
		"limit",
		"operators",
		"trailing-period",
		"strip-whitespace",
	}, names)

	in := "derivative of x^2 with respect to t"
	forward := Normalize(in)
	reversed := in
	rs := Rules()
	for i := len(rs) - 1; i >= 0; i-- {
		reversed = rs[i].Apply(reversed)
	}
	assert.Equal(t, "diff(x^2,t)", forward)
	assert.NotEqual(t, forward, reversed)
}

func TestCleanOCRText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2 +  3\n* 4", "2+3*4"},
		{"x  =  5", "x=5"},
		{"[x + 1] {2}", "(x + 1) (2)"},
		{"  12 / 4 ", "12/4"},
		{"1 - 2 - 3 + 4", "1-2-3+4"},
		{"x + 1 = 2 ^ 3", "x + 1=2^3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanOCRText(tt.in), tt.in)
	}
}
