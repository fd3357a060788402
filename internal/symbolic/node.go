package symbolic

import "strings"

// Node is a parsed expression tree. The set of implementations is closed:
// OperatorNode, ConstantNode, ParenNode, FunctionNode, SymbolNode and
// UnaryNode.
type Node interface {
	String() string
	node()
}

// OperatorNode is a binary operator application.
type OperatorNode struct {
	Op    string // one of + - * / ^
	Left  Node
	Right Node
	// Implicit marks multiplication written by juxtaposition, as in 2x.
	Implicit bool
}

// ConstantNode is a numeric literal, kept as written.
type ConstantNode struct {
	Value string
}

// ParenNode is a parenthesized sub-expression.
type ParenNode struct {
	Content Node
}

// FunctionNode is a call such as sin(x) or diff(x^2,x).
type FunctionNode struct {
	Name string
	Args []Node
}

// SymbolNode is a variable or named constant (pi, e, Infinity).
type SymbolNode struct {
	Name string
}

// UnaryNode is a prefix minus.
type UnaryNode struct {
	Op      string
	Operand Node
}

func (*OperatorNode) node() {}
func (*ConstantNode) node() {}
func (*ParenNode) node()    {}
func (*FunctionNode) node() {}
func (*SymbolNode) node()   {}
func (*UnaryNode) node()    {}

func (n *OperatorNode) String() string {
	if n.Implicit {
		return n.Left.String() + n.Right.String()
	}
	return n.Left.String() + n.Op + n.Right.String()
}

func (n *ConstantNode) String() string { return n.Value }

func (n *ParenNode) String() string { return "(" + n.Content.String() + ")" }

func (n *FunctionNode) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return n.Name + "(" + strings.Join(args, ",") + ")"
}

func (n *SymbolNode) String() string { return n.Name }

func (n *UnaryNode) String() string { return n.Op + n.Operand.String() }

// CountOperators returns the number of binary operator nodes in the tree.
func CountOperators(n Node) int {
	switch v := n.(type) {
	case *OperatorNode:
		return 1 + CountOperators(v.Left) + CountOperators(v.Right)
	case *ParenNode:
		return CountOperators(v.Content)
	case *UnaryNode:
		return CountOperators(v.Operand)
	case *FunctionNode:
		total := 0
		for _, a := range v.Args {
			total += CountOperators(a)
		}
		return total
	}
	return 0
}
