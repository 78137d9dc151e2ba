package assistant

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Evaluate computes a plain arithmetic expression: + - * / % ^, unary minus,
// parentheses, and a small set of math functions. Anything else is rejected
// so command text can never reach a general interpreter.
func Evaluate(expr string) (float64, error) {
	p := &exprParser{input: expr}
	p.next()
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.tok.kind != tokEOF {
		return 0, fmt.Errorf("unexpected %q", p.tok.text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("result is not a finite number")
	}
	return v, nil
}

var evalFuncs = map[string]func(float64) float64{
	"sqrt":  math.Sqrt,
	"log":   math.Log,
	"log10": math.Log10,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"abs":   math.Abs,
	"round": math.Round,
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokNumber
	tokIdent
	tokSymbol
)

type token struct {
	kind tokKind
	text string
	num  float64
}

type exprParser struct {
	input string
	pos   int
	tok   token
	err   error
}

func (p *exprParser) next() {
	if p.err != nil {
		return
	}
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
	if p.pos >= len(p.input) {
		p.tok = token{kind: tokEOF}
		return
	}

	c := p.input[p.pos]
	switch {
	case c >= '0' && c <= '9' || c == '.':
		start := p.pos
		for p.pos < len(p.input) && (p.input[p.pos] >= '0' && p.input[p.pos] <= '9' || p.input[p.pos] == '.') {
			p.pos++
		}
		n, err := strconv.ParseFloat(p.input[start:p.pos], 64)
		if err != nil {
			p.err = fmt.Errorf("bad number %q", p.input[start:p.pos])
			return
		}
		p.tok = token{kind: tokNumber, num: n}

	case unicode.IsLetter(rune(c)):
		start := p.pos
		for p.pos < len(p.input) {
			r := rune(p.input[p.pos])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			p.pos++
		}
		p.tok = token{kind: tokIdent, text: strings.ToLower(p.input[start:p.pos])}

	case strings.ContainsRune("+-*/%^()", rune(c)):
		p.pos++
		p.tok = token{kind: tokSymbol, text: string(c)}

	default:
		p.err = fmt.Errorf("character %q not allowed", string(c))
	}
}

func (p *exprParser) symbolIs(s string) bool {
	return p.tok.kind == tokSymbol && p.tok.text == s
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for p.symbolIs("+") || p.symbolIs("-") {
		op := p.tok.text
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			left += right
		} else {
			left -= right
		}
	}
	return left, p.err
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for p.symbolIs("*") || p.symbolIs("/") || p.symbolIs("%") {
		op := p.tok.text
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		switch op {
		case "*":
			left *= right
		case "/":
			left /= right
		case "%":
			left = math.Mod(left, right)
		}
	}
	return left, p.err
}

func (p *exprParser) parseUnary() (float64, error) {
	if p.symbolIs("-") {
		p.next()
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePower()
}

func (p *exprParser) parsePower() (float64, error) {
	base, err := p.parseAtom()
	if err != nil {
		return 0, err
	}
	if !p.symbolIs("^") {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary() // right-associative
	if err != nil {
		return 0, err
	}
	v := math.Pow(base, exp)
	if math.Abs(v) > 1e12 {
		return 0, errors.New("exponent too large")
	}
	return v, nil
}

func (p *exprParser) parseAtom() (float64, error) {
	if p.err != nil {
		return 0, p.err
	}
	switch p.tok.kind {
	case tokNumber:
		v := p.tok.num
		p.next()
		return v, p.err

	case tokIdent:
		fn, ok := evalFuncs[p.tok.text]
		if !ok {
			return 0, fmt.Errorf("function %q not permitted", p.tok.text)
		}
		p.next()
		if !p.symbolIs("(") {
			return 0, errors.New("expected '(' after function name")
		}
		p.next()
		arg, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if !p.symbolIs(")") {
			return 0, errors.New("expected ')'")
		}
		p.next()
		return fn(arg), p.err

	case tokSymbol:
		if p.tok.text == "(" {
			p.next()
			v, err := p.parseExpr()
			if err != nil {
				return 0, err
			}
			if !p.symbolIs(")") {
				return 0, errors.New("expected ')'")
			}
			p.next()
			return v, p.err
		}
	}
	return 0, fmt.Errorf("unexpected %q", p.tok.text)
}
