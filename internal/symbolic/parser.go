package symbolic

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseError reports where in the input parsing failed.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(src string) ([]token, error) {
	var toks []token
	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			start := i
			seenDot := false
			for i < len(runes) && (unicode.IsDigit(runes[i]) ||
				(runes[i] == '.' && !seenDot && i+1 < len(runes) && unicode.IsDigit(runes[i+1]))) {
				if runes[i] == '.' {
					seenDot = true
				}
				i++
			}
			// Exponent: 1e+21. A bare "2e" stays 2 times e.
			if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
				j := i + 1
				if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
					j++
				}
				if j < len(runes) && unicode.IsDigit(runes[j]) {
					for j < len(runes) && unicode.IsDigit(runes[j]) {
						j++
					}
					i = j
				}
			}
			toks = append(toks, token{kind: tokNumber, text: string(runes[start:i]), pos: start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(runes[start:i]), pos: start})
		case r == '*' && i+1 < len(runes) && runes[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "^", pos: i})
			i += 2
		case strings.ContainsRune("+-*/^", r):
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		default:
			return nil, &ParseError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(runes)})
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
	fold bool
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &ParseError{Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

// parse parses a complete expression.
func parse(src string, foldCase bool) (Node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, fold: foldCase}
	if p.peek().kind == tokEOF {
		return nil, p.errorf(p.peek(), "empty expression")
	}
	n, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %q", t.text)
	}
	return n, nil
}

func (p *parser) parseSum() (Node, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = &OperatorNode{Op: t.text, Left: left, Right: right}
	}
}

func (p *parser) parseProduct() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		switch {
		case t.kind == tokOp && (t.text == "*" || t.text == "/"):
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &OperatorNode{Op: t.text, Left: left, Right: right}
		case t.kind == tokNumber || t.kind == tokIdent || t.kind == tokLParen:
			right, err := p.parsePower()
			if err != nil {
				return nil, err
			}
			left = &OperatorNode{Op: "*", Left: left, Right: right, Implicit: true}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (Node, error) {
	t := p.peek()
	if t.kind == tokOp {
		switch t.text {
		case "-":
			p.next()
			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return &UnaryNode{Op: "-", Operand: operand}, nil
		default:
			return nil, p.errorf(t, "unexpected operator %q", t.text)
		}
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind == tokOp && t.text == "^" {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &OperatorNode{Op: "^", Left: base, Right: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return &ConstantNode{Value: t.text}, nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			if name, ok := p.functionName(t.text); ok {
				return p.parseCall(name)
			}
		}
		return &SymbolNode{Name: t.text}, nil
	case tokLParen:
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if r := p.next(); r.kind != tokRParen {
			return nil, p.errorf(r, "expected ')'")
		}
		return &ParenNode{Content: inner}, nil
	case tokEOF:
		return nil, p.errorf(t, "unexpected end of expression")
	}
	return nil, p.errorf(t, "unexpected %q", t.text)
}

func (p *parser) functionName(ident string) (string, bool) {
	if _, ok := knownFunctions[ident]; ok {
		return ident, true
	}
	if p.fold {
		lower := strings.ToLower(ident)
		if _, ok := knownFunctions[lower]; ok {
			return lower, true
		}
	}
	return "", false
}

func (p *parser) parseCall(name string) (Node, error) {
	p.next() // (
	fn := &FunctionNode{Name: name}
	if p.peek().kind == tokRParen {
		p.next()
		return fn, nil
	}
	for {
		arg, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		fn.Args = append(fn.Args, arg)
		t := p.next()
		switch t.kind {
		case tokComma:
			continue
		case tokRParen:
			return fn, nil
		default:
			return nil, p.errorf(t, "expected ',' or ')' in call to %s", name)
		}
	}
}
