package treeio

import (
	"fmt"
	"strings"
	"unicode"

	"lazyres/internal/decl"
)

// exprParser reads the expression language of tree files:
//
//	expr  = literal | path [ "(" [ expr { "," expr } ] ")" ]
//	path  = ident { "." ident }
//
// Literals are numbers (with an optional L or f suffix), "strings",
// 'c' chars, true, false and null.
type exprParser struct {
	src string
	pos int
}

func parseExpr(src string) (*decl.Expr, error) {
	p := &exprParser{src: src}
	x, err := p.expr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return x, nil
}

func (p *exprParser) errorf(format string, args ...any) error {
	return fmt.Errorf("expression %q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *exprParser) expr() (*decl.Expr, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == 0:
		return nil, p.errorf("expression expected")
	case c == '"' || c == '\'':
		return p.quoted(c)
	case c == '-' || isDigit(c):
		return p.number()
	case isIdentStart(rune(c)) || c >= 0x80:
		return p.pathOrCall()
	default:
		return nil, p.errorf("unexpected %q", c)
	}
}

func (p *exprParser) quoted(q byte) (*decl.Expr, error) {
	start := p.pos
	p.pos++
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case q:
			p.pos++
			return &decl.Expr{Kind: decl.ExprLiteral, Value: p.src[start:p.pos]}, nil
		}
		p.pos++
	}
	return nil, p.errorf("unterminated literal")
}

func (p *exprParser) number() (*decl.Expr, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	digits := 0
	for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.' || p.src[p.pos] == '_') {
		p.pos++
		digits++
	}
	if digits == 0 {
		return nil, p.errorf("number expected")
	}
	switch p.peek() {
	case 'L', 'f', 'F':
		p.pos++
	}
	return &decl.Expr{Kind: decl.ExprLiteral, Value: p.src[start:p.pos]}, nil
}

func (p *exprParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r >= 0x80 {
			// multibyte names are allowed; the loader normalizes them
			p.pos++
			continue
		}
		if !isIdentStart(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *exprParser) pathOrCall() (*decl.Expr, error) {
	parts := []string{p.ident()}
	for p.peek() == '.' {
		p.pos++
		name := p.ident()
		if name == "" {
			return nil, p.errorf("name expected after '.'")
		}
		parts = append(parts, name)
	}
	path := normName(strings.Join(parts, "."))
	if len(parts) == 1 {
		switch path {
		case "true", "false", "null":
			return &decl.Expr{Kind: decl.ExprLiteral, Value: path}, nil
		}
	}
	p.skipSpace()
	if p.peek() != '(' {
		return &decl.Expr{Kind: decl.ExprRef, Value: path}, nil
	}
	p.pos++
	call := &decl.Expr{Kind: decl.ExprCall, Value: path}
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return call, nil
	}
	for {
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return call, nil
		default:
			return nil, p.errorf("',' or ')' expected")
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
