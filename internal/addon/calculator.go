package addon

import (
	"math"
	"strconv"
	"strings"
)

// Calculator recognizes arithmetic expressions typed straight into the
// query field. Anything that does not parse and evaluate cleanly is a
// decline, never an error item: the input falls through to the other
// addons and the fuzzy fallback.
type Calculator struct{}

// unary functions accepted by the grammar, each over a single argument.
var calcFuncs = map[string]func(float64) float64{
	"sqrt":  math.Sqrt,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"log":   math.Log10,
	"ln":    math.Log,
	"exp":   math.Exp,
	"abs":   math.Abs,
	"floor": math.Floor,
	"ceil":  math.Ceil,
}

// TryEvaluate evaluates input as an arithmetic expression. A bare numeric
// literal declines so numeric-named entries stay reachable through fuzzy
// match; everything else needs at least one operator, function, or
// parenthesis anyway.
func (Calculator) TryEvaluate(input string) (Item, bool) {
	expr := strings.TrimSpace(input)
	if expr == "" {
		return Item{}, false
	}
	if _, err := strconv.ParseFloat(expr, 64); err == nil {
		return Item{}, false
	}
	p := calcParser{src: expr}
	v, ok := p.parse()
	if !ok {
		return Item{}, false
	}
	result := formatNumber(v)
	return Item{
		Title:  expr + " = " + result,
		Value:  result,
		Action: copyAction(result),
	}, true
}

// formatNumber renders a result without float noise or a trailing ".0".
func formatNumber(v float64) string {
	rounded := math.Round(v*1e10) / 1e10
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// calcParser is a plain recursive-descent parser over the grammar
//
//	expr   = term (('+'|'-') term)*
//	term   = power (('*'|'/'|'%') power)*
//	power  = unary ('^' power)?            right associative
//	unary  = '-' unary | primary
//	primary = number | ident '(' expr ')' | '(' expr ')'
//
// All failure modes (syntax, unknown identifier, division by zero,
// non-finite results) report !ok.
type calcParser struct {
	src string
	pos int
	bad bool
}

func (p *calcParser) parse() (float64, bool) {
	v := p.expr()
	p.skipSpace()
	if p.bad || p.pos != len(p.src) {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (p *calcParser) fail() float64 {
	p.bad = true
	return 0
}

func (p *calcParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *calcParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *calcParser) expr() float64 {
	v := p.term()
	for !p.bad {
		switch p.peek() {
		case '+':
			p.pos++
			v += p.term()
		case '-':
			p.pos++
			v -= p.term()
		default:
			return v
		}
	}
	return 0
}

func (p *calcParser) term() float64 {
	v := p.power()
	for !p.bad {
		switch p.peek() {
		case '*':
			p.pos++
			v *= p.power()
		case '/':
			p.pos++
			rhs := p.power()
			if rhs == 0 {
				return p.fail()
			}
			v /= rhs
		case '%':
			p.pos++
			rhs := p.power()
			if rhs == 0 {
				return p.fail()
			}
			v = math.Mod(v, rhs)
		default:
			return v
		}
	}
	return 0
}

func (p *calcParser) power() float64 {
	v := p.unary()
	if p.bad {
		return 0
	}
	if p.peek() == '^' {
		p.pos++
		return math.Pow(v, p.power())
	}
	return v
}

func (p *calcParser) unary() float64 {
	if p.peek() == '-' {
		p.pos++
		return -p.unary()
	}
	return p.primary()
}

func (p *calcParser) primary() float64 {
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		v := p.expr()
		if p.peek() != ')' {
			return p.fail()
		}
		p.pos++
		return v
	case c >= '0' && c <= '9' || c == '.':
		return p.number()
	case isAlpha(c):
		return p.call()
	default:
		return p.fail()
	}
}

func (p *calcParser) number() float64 {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= '0' && c <= '9' || c == '.' {
			p.pos++
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return p.fail()
	}
	return v
}

func (p *calcParser) call() float64 {
	start := p.pos
	for p.pos < len(p.src) && isAlpha(p.src[p.pos]) {
		p.pos++
	}
	fn, ok := calcFuncs[strings.ToLower(p.src[start:p.pos])]
	if !ok {
		return p.fail()
	}
	if p.peek() != '(' {
		return p.fail()
	}
	p.pos++
	arg := p.expr()
	if p.peek() != ')' {
		return p.fail()
	}
	p.pos++
	return fn(arg)
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
