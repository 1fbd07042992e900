package formula

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// The evaluator is a recursive descent parser over the whitelisted
// grammar:
//
//	expr   := term (('+' | '-') term)*
//	term   := factor (('*' | '/') factor)*
//	factor := NUMBER | STRING | '-' factor | '(' expr ')'
//
// '+' concatenates when either operand is a string, matching how the
// substituted expressions behave for text columns; every other
// operator requires numbers.

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokString
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	num  float64
	str  string
}

type value struct {
	num   float64
	str   string
	isStr bool
}

func (v value) display() string {
	if v.isStr {
		return v.str
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}

type parser struct {
	tokens []token
	pos    int
}

// evaluate tokenizes and evaluates a whitelisted expression.
func evaluate(expr string) (value, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return value{}, err
	}

	p := &parser{tokens: tokens}
	result, err := p.parseExpr()
	if err != nil {
		return value{}, err
	}
	if p.peek().kind != tokEOF {
		return value{}, errors.New("unexpected trailing input")
	}
	return result, nil
}

func tokenize(expr string) ([]token, error) {
	var tokens []token
	runes := []rune(expr)
	i := 0

	for i < len(runes) {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			i++
		case r == '+':
			tokens = append(tokens, token{kind: tokPlus})
			i++
		case r == '-':
			tokens = append(tokens, token{kind: tokMinus})
			i++
		case r == '*':
			tokens = append(tokens, token{kind: tokStar})
			i++
		case r == '/':
			tokens = append(tokens, token{kind: tokSlash})
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen})
			i++
		case r == '"':
			str, next, err := scanString(runes, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokString, str: str})
			i = next
		case (r >= '0' && r <= '9') || r == '.':
			start := i
			for i < len(runes) && ((runes[i] >= '0' && runes[i] <= '9') || runes[i] == '.') {
				i++
			}
			n, err := strconv.ParseFloat(string(runes[start:i]), 64)
			if err != nil {
				return nil, errors.New("malformed number")
			}
			tokens = append(tokens, token{kind: tokNumber, num: n})
		default:
			return nil, errors.New("unexpected character")
		}
	}

	tokens = append(tokens, token{kind: tokEOF})
	return tokens, nil
}

func scanString(runes []rune, start int) (string, int, error) {
	var sb strings.Builder
	i := start + 1
	for i < len(runes) {
		switch runes[i] {
		case '\\':
			if i+1 >= len(runes) {
				return "", 0, errors.New("unterminated string")
			}
			sb.WriteRune(runes[i+1])
			i += 2
		case '"':
			return sb.String(), i + 1, nil
		default:
			sb.WriteRune(runes[i])
			i++
		}
	}
	return "", 0, errors.New("unterminated string")
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseExpr() (value, error) {
	left, err := p.parseTerm()
	if err != nil {
		return value{}, err
	}

	for {
		switch p.peek().kind {
		case tokPlus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return value{}, err
			}
			if left.isStr || right.isStr {
				left = value{str: left.display() + right.display(), isStr: true}
			} else {
				left = value{num: left.num + right.num}
			}
		case tokMinus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return value{}, err
			}
			if left.isStr || right.isStr {
				return value{}, errors.New("cannot subtract strings")
			}
			left = value{num: left.num - right.num}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (value, error) {
	left, err := p.parseFactor()
	if err != nil {
		return value{}, err
	}

	for {
		switch p.peek().kind {
		case tokStar:
			p.next()
			right, err := p.parseFactor()
			if err != nil {
				return value{}, err
			}
			if left.isStr || right.isStr {
				return value{}, errors.New("cannot multiply strings")
			}
			left = value{num: left.num * right.num}
		case tokSlash:
			p.next()
			right, err := p.parseFactor()
			if err != nil {
				return value{}, err
			}
			if left.isStr || right.isStr {
				return value{}, errors.New("cannot divide strings")
			}
			if right.num == 0 {
				return value{}, errors.New("division by zero")
			}
			quotient := left.num / right.num
			if math.IsNaN(quotient) || math.IsInf(quotient, 0) {
				return value{}, errors.New("result is not a finite number")
			}
			left = value{num: quotient}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseFactor() (value, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return value{num: tok.num}, nil
	case tokString:
		return value{str: tok.str, isStr: true}, nil
	case tokMinus:
		operand, err := p.parseFactor()
		if err != nil {
			return value{}, err
		}
		if operand.isStr {
			return value{}, errors.New("cannot negate a string")
		}
		return value{num: -operand.num}, nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return value{}, err
		}
		if p.next().kind != tokRParen {
			return value{}, errors.New("missing closing parenthesis")
		}
		return inner, nil
	default:
		return value{}, errors.New("unexpected token")
	}
}
