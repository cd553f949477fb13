package engine

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// The formula language is deliberately tiny: numbers, + - * /, parentheses
// and the three built-in calls below. Context variables are substituted
// textually before parsing, so nothing caller-supplied ever reaches an
// executable code path.

var builtins = map[string]struct{}{
	"min":   {},
	"max":   {},
	"round": {},
}

// EvalFormula substitutes numeric context variables into formula and
// evaluates the resulting arithmetic expression. Unresolved identifiers,
// invalid grammar and division by zero all return an error; callers map that
// to a null action value.
func EvalFormula(formula string, ctx Context) (float64, error) {
	substituted := substituteVariables(formula, ctx)

	toks, err := tokenize(substituted)
	if err != nil {
		return 0, err
	}

	p := &parser{toks: toks}
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return 0, fmt.Errorf("unexpected %q after expression", tok.text)
	}
	return value, nil
}

// substituteVariables replaces whole-word occurrences of every numeric
// context key with its value. Word-boundary matching keeps partial
// identifiers (e.g. "rate" inside "tax_rate") intact. Built-in names are
// never substituted.
func substituteVariables(formula string, ctx Context) string {
	for key, raw := range ctx {
		if _, reserved := builtins[key]; reserved {
			continue
		}
		value, ok := numericValue(raw)
		if !ok {
			continue
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(key) + `\b`)
		if err != nil {
			continue
		}
		formula = re.ReplaceAllString(formula, strconv.FormatFloat(value, 'f', -1, 64))
	}
	return formula
}

// --- Tokenizer ---

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

func tokenize(input string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '+':
			toks = append(toks, token{kind: tokPlus, text: "+"})
			i++
		case c == '-':
			toks = append(toks, token{kind: tokMinus, text: "-"})
			i++
		case c == '*':
			toks = append(toks, token{kind: tokStar, text: "*"})
			i++
		case c == '/':
			toks = append(toks, token{kind: tokSlash, text: "/"})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "("})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")"})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ","})
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			for i < len(input) && (input[i] >= '0' && input[i] <= '9' || input[i] == '.') {
				i++
			}
			text := input[start:i]
			num, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q", text)
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: num})
		case isIdentStart(c):
			start := i
			for i < len(input) && isIdentPart(input[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: input[start:i]})
		default:
			return nil, fmt.Errorf("unexpected character %q in formula", string(c))
		}
	}
	return append(toks, token{kind: tokEOF}), nil
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

// --- Parser ---

// Grammar:
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/') unary)*
//	unary   := '-' unary | primary
//	primary := NUMBER | '(' expr ')' | BUILTIN '(' expr (',' expr)* ')'
type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind, what string) error {
	if tok := p.next(); tok.kind != kind {
		return fmt.Errorf("expected %s, found %q", what, tok.text)
	}
	return nil
}

func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek().kind {
		case tokPlus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case tokMinus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek().kind {
		case tokStar:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case tokSlash:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (float64, error) {
	if p.peek().kind == tokMinus {
		p.next()
		value, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (float64, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return tok.num, nil
	case tokLParen:
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return 0, err
		}
		return value, nil
	case tokIdent:
		if _, ok := builtins[strings.ToLower(tok.text)]; !ok {
			return 0, fmt.Errorf("unresolved identifier %q", tok.text)
		}
		return p.parseCall(strings.ToLower(tok.text))
	default:
		return 0, fmt.Errorf("unexpected %q in formula", tok.text)
	}
}

func (p *parser) parseCall(name string) (float64, error) {
	if err := p.expect(tokLParen, "'('"); err != nil {
		return 0, err
	}

	var args []float64
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		args = append(args, arg)
		if p.peek().kind != tokComma {
			break
		}
		p.next()
	}
	if err := p.expect(tokRParen, "')'"); err != nil {
		return 0, err
	}

	switch name {
	case "min":
		if len(args) != 2 {
			return 0, fmt.Errorf("min expects 2 arguments, got %d", len(args))
		}
		return math.Min(args[0], args[1]), nil
	case "max":
		if len(args) != 2 {
			return 0, fmt.Errorf("max expects 2 arguments, got %d", len(args))
		}
		return math.Max(args[0], args[1]), nil
	default: // round
		if len(args) < 1 || len(args) > 2 {
			return 0, fmt.Errorf("round expects 1 or 2 arguments, got %d", len(args))
		}
		decimals := 0.0
		if len(args) == 2 {
			decimals = args[1]
		}
		pow := math.Pow(10, decimals)
		return math.Round(args[0]*pow) / pow, nil
	}
}
