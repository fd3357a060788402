package symbolic

import (
	"errors"
	"testing"
)

func TestParse_Precedence(t *testing.T) {
	e := New(Config{})
	n, err := e.Parse("2+3*4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root, ok := n.(*OperatorNode)
	if !ok || root.Op != "+" {
		t.Fatalf("root = %#v, want + operator", n)
	}
	right, ok := root.Right.(*OperatorNode)
	if !ok || right.Op != "*" {
		t.Fatalf("right = %#v, want * operator", root.Right)
	}
	if got := CountOperators(n); got != 2 {
		t.Errorf("CountOperators = %d, want 2", got)
	}
}

func TestParse_PowerIsRightAssociative(t *testing.T) {
	n, err := New(Config{}).Parse("2^3^2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := n.(*OperatorNode)
	if _, ok := root.Right.(*OperatorNode); !ok {
		t.Fatalf("exponent should be the nested power, got %s", root.Right)
	}
}

func TestParse_ImplicitMultiplication(t *testing.T) {
	tests := []string{"2x", "2(x+1)", "(x+1)(x-1)", "3sin(x)"}
	for _, src := range tests {
		n, err := New(Config{}).Parse(src)
		if err != nil {
			t.Errorf("Parse(%q): %v", src, err)
			continue
		}
		op, ok := n.(*OperatorNode)
		if !ok || op.Op != "*" || !op.Implicit {
			t.Errorf("Parse(%q) = %#v, want implicit multiplication", src, n)
		}
	}
}

func TestParse_NodeKinds(t *testing.T) {
	n, err := New(Config{}).Parse("-(x)+diff(x^2,x)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := n.(*OperatorNode)
	u, ok := root.Left.(*UnaryNode)
	if !ok {
		t.Fatalf("left = %T, want *UnaryNode", root.Left)
	}
	if _, ok := u.Operand.(*ParenNode); !ok {
		t.Errorf("operand = %T, want *ParenNode", u.Operand)
	}
	fn, ok := root.Right.(*FunctionNode)
	if !ok || fn.Name != "diff" || len(fn.Args) != 2 {
		t.Fatalf("right = %#v, want diff call with 2 args", root.Right)
	}
	if _, ok := fn.Args[1].(*SymbolNode); !ok {
		t.Errorf("second arg = %T, want *SymbolNode", fn.Args[1])
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []string{"", "2++3", "2+", "(2+3", "2+3)", "2 $ 3", "*2", "sin(1,", "2."}
	for _, src := range tests {
		_, err := New(Config{}).Parse(src)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Parse(%q) error = %v, want *ParseError", src, err)
		}
	}
}

func TestParse_CaseInsensitiveFunctions(t *testing.T) {
	n, err := New(Config{CaseInsensitiveFunctions: true}).Parse("Sin(0)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn, ok := n.(*FunctionNode)
	if !ok || fn.Name != "sin" {
		t.Fatalf("got %#v, want sin call", n)
	}

	if _, err := New(Config{}).Evaluate("Sin(0)"); err == nil {
		t.Error("Sin should be an undefined symbol without case folding")
	}
}

func TestNode_String(t *testing.T) {
	tests := []string{"2+3*4", "2x", "sin(x)^2", "-(1+2)", "limit(1/x,x,Infinity)"}
	for _, src := range tests {
		n, err := New(Config{}).Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		if got := n.String(); got != src {
			t.Errorf("String() = %q, want %q", got, src)
		}
	}
}
