// Package parser turns condition and effect source text into typed
// expression trees. The grammar is fixed and small: no calls, no loops,
// no access to anything but variable paths. Nothing here executes code.
package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is matched by every parse and evaluation failure.
var ErrMalformed = errors.New("malformed expression")

// Input limits. Parsing is linear in the input and recursion is capped,
// so any source terminates quickly.
const (
	MaxSourceLength = 1024
	MaxDepth        = 32
)

// SyntaxError reports where and why src failed to parse.
type SyntaxError struct {
	Source string
	Pos    int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("malformed expression %q at offset %d: %s", e.Source, e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrMalformed }

type parser struct {
	src   string
	toks  []token
	i     int
	depth int
}

func newParser(src string) (*parser, error) {
	if len(src) > MaxSourceLength {
		return nil, &SyntaxError{Source: src[:32] + "...", Pos: MaxSourceLength, Msg: "expression too long"}
	}
	if strings.TrimSpace(src) == "" {
		return nil, &SyntaxError{Source: src, Pos: 0, Msg: "empty expression"}
	}
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	return &parser{src: src, toks: toks}, nil
}

// ParseCondition parses a boolean condition expression.
func ParseCondition(src string) (Node, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, p.errorf(p.peek().pos, "unexpected %q", p.peek().text)
	}
	return n, nil
}

// ParseEffect parses one or more ";"-separated effect statements.
func ParseEffect(src string) ([]Statement, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	var stmts []Statement
	for p.peek().kind != tokEOF {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		if p.isOp(";") {
			p.next()
			continue
		}
		if p.peek().kind != tokEOF {
			return nil, p.errorf(p.peek().pos, "expected \";\" or end of effect, got %q", p.peek().text)
		}
	}
	if len(stmts) == 0 {
		return nil, p.errorf(0, "empty effect")
	}
	return stmts, nil
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) isOp(op string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == op
}

func (p *parser) isKeyword(kw string) bool {
	t := p.peek()
	return t.kind == tokIdent && t.text == kw
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return &SyntaxError{Source: p.src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) nest(pos int) error {
	p.depth++
	if p.depth > MaxDepth {
		return p.errorf(pos, "expression nested too deeply")
	}
	return nil
}

func (p *parser) unnest() { p.depth-- }

func (p *parser) parseOr() (Node, error) {
	x, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isOp("||") || p.isKeyword("or") {
		t := p.next()
		y, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		x = &Binary{Op: "||", X: x, Y: y, At: t.pos}
	}
	return x, nil
}

func (p *parser) parseAnd() (Node, error) {
	x, err := p.parseCompare()
	if err != nil {
		return nil, err
	}
	for p.isOp("&&") || p.isKeyword("and") {
		t := p.next()
		y, err := p.parseCompare()
		if err != nil {
			return nil, err
		}
		x = &Binary{Op: "&&", X: x, Y: y, At: t.pos}
	}
	return x, nil
}

var comparisons = map[string]string{
	"==": "==", "===": "==",
	"!=": "!=", "!==": "!=",
	"<": "<", "<=": "<=", ">": ">", ">=": ">=",
}

func (p *parser) parseCompare() (Node, error) {
	x, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if t.kind == tokOp {
		if op, ok := comparisons[t.text]; ok {
			p.next()
			y, err := p.parseSum()
			if err != nil {
				return nil, err
			}
			return &Binary{Op: op, X: x, Y: y, At: t.pos}, nil
		}
	}
	return x, nil
}

func (p *parser) parseSum() (Node, error) {
	x, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		t := p.next()
		y, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		x = &Binary{Op: t.text, X: x, Y: y, At: t.pos}
	}
	return x, nil
}

func (p *parser) parseTerm() (Node, error) {
	x, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.isOp("*") || p.isOp("/") || p.isOp("%") {
		t := p.next()
		y, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		x = &Binary{Op: t.text, X: x, Y: y, At: t.pos}
	}
	return x, nil
}

func (p *parser) parseFactor() (Node, error) {
	if p.isOp("-") || p.isOp("+") || p.isOp("!") || p.isKeyword("not") {
		t := p.next()
		op := t.text
		if op == "not" {
			op = "!"
		}
		if err := p.nest(t.pos); err != nil {
			return nil, err
		}
		defer p.unnest()
		x, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: op, X: x, At: t.pos}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.next()
		return &Literal{Value: t.num, At: t.pos}, nil

	case tokIdent:
		switch t.text {
		case "true":
			p.next()
			return &Literal{Value: true, At: t.pos}, nil
		case "false":
			p.next()
			return &Literal{Value: false, At: t.pos}, nil
		case "and", "or", "not":
			return nil, p.errorf(t.pos, "unexpected %q", t.text)
		}
		return p.parsePath()

	case tokOp:
		if t.text == "(" {
			p.next()
			if err := p.nest(t.pos); err != nil {
				return nil, err
			}
			defer p.unnest()
			x, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if !p.isOp(")") {
				return nil, p.errorf(p.peek().pos, "expected \")\"")
			}
			p.next()
			return x, nil
		}
		return nil, p.errorf(t.pos, "unexpected %q", t.text)

	case tokString:
		return nil, p.errorf(t.pos, "string literals are only allowed as [\"key\"] selectors")

	default:
		return nil, p.errorf(t.pos, "unexpected end of expression")
	}
}

func (p *parser) parsePath() (*Path, error) {
	t := p.next()
	if t.kind != tokIdent {
		return nil, p.errorf(t.pos, "expected variable name")
	}
	path := &Path{Segments: []string{t.text}, At: t.pos}
	for {
		switch {
		case p.isOp("."):
			p.next()
			seg := p.next()
			if seg.kind != tokIdent {
				return nil, p.errorf(seg.pos, "expected key after \".\"")
			}
			path.Segments = append(path.Segments, seg.text)
		case p.isOp("["):
			p.next()
			seg := p.next()
			if seg.kind != tokString {
				return nil, p.errorf(seg.pos, "expected quoted key inside [ ]")
			}
			if !p.isOp("]") {
				return nil, p.errorf(p.peek().pos, "expected \"]\"")
			}
			p.next()
			path.Segments = append(path.Segments, seg.text)
		default:
			return path, nil
		}
	}
}

func (p *parser) parseStatement() (Statement, error) {
	if p.peek().kind != tokIdent {
		return nil, p.errorf(p.peek().pos, "effect must start with a variable path")
	}
	target, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	op := p.next()
	if op.kind != tokOp {
		return nil, p.errorf(op.pos, "expected =, += or -= after %s", target)
	}
	switch op.text {
	case "+=", "-=":
		n, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		return &Increment{Target: target, Op: op.text, Amount: n}, nil
	case "=":
		if p.isKeyword("true") || p.isKeyword("false") {
			t := p.next()
			return &Assign{Target: target, Value: &Literal{Value: t.text == "true", At: t.pos}}, nil
		}
		pos := p.peek().pos
		n, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		return &Assign{Target: target, Value: &Literal{Value: n, At: pos}}, nil
	default:
		return nil, p.errorf(op.pos, "expected =, += or -= after %s, got %q", target, op.text)
	}
}

func (p *parser) parseNumber() (float64, error) {
	sign := 1.0
	if p.isOp("-") || p.isOp("+") {
		if p.next().text == "-" {
			sign = -1
		}
	}
	t := p.next()
	if t.kind != tokNumber {
		return 0, p.errorf(t.pos, "expected a number")
	}
	return sign * t.num, nil
}
