// Package ucum parses UCUM unit expressions and reduces them to a canonical
// SI form: a dimension vector, a multiplier and, for a lone affine unit, an
// additive offset.
//
// The data flow is Parse -> Resolve -> Canonicalize. All three operate on an
// immutable *units.Table and keep no state between calls, so an Engine may be
// used from any number of goroutines.
package ucum

import (
	"strconv"
	"strings"

	"github.com/ontodev/units-demo/pkg/units"
)

// Term is one factor of an expression: an optional prefix, an atomic unit
// and a signed integer exponent. The sign of a term that follows "/" is
// already applied. A numeric factor such as "1000" has an empty Unit and a
// non-zero Factor.
type Term struct {
	Prefix   *units.Prefix
	Unit     units.Unit
	Exponent int
	Factor   int64
}

// IsFactor reports whether the term is a pure number.
func (t Term) IsFactor() bool {
	return t.Factor != 0
}

// Symbol returns the prefixed unit symbol without the exponent.
func (t Term) Symbol() string {
	if t.IsFactor() {
		return strconv.FormatInt(t.Factor, 10)
	}
	if t.Prefix != nil {
		return t.Prefix.Symbol + t.Unit.Symbol
	}
	return t.Unit.Symbol
}

// String renders the term in UCUM syntax, omitting an exponent of 1.
func (t Term) String() string {
	if t.Exponent == 1 {
		return t.Symbol()
	}
	return t.Symbol() + strconv.Itoa(t.Exponent)
}

// Expression is a parsed code. Terms keep their input order; multiplication
// commutes, so order only matters for rendering.
type Expression struct {
	Code  string
	Terms []Term
}

// String renders the normalized UCUM code: every term joined by "." with
// division folded into negative exponents ("kW/h" -> "kW.h-1").
func (e *Expression) String() string {
	parts := make([]string, len(e.Terms))
	for index, term := range e.Terms {
		parts[index] = term.String()
	}
	return strings.Join(parts, ".")
}

// Parser splits codes into terms against a unit table.
type Parser struct {
	table *units.Table
}

// NewParser creates a parser over table.
func NewParser(table *units.Table) *Parser {
	return &Parser{table: table}
}

// Parse converts a code into an expression. It fails with *SyntaxError for
// characters outside the UCUM alphabet or malformed terms, and with
// *UnknownUnitError when a term matches no prefix/unit split.
func (p *Parser) Parse(code string) (*Expression, error) {
	if code == "" {
		return nil, &SyntaxError{Code: code, Reason: "empty code"}
	}
	for position := 0; position < len(code); position++ {
		if !isCodeChar(code[position]) {
			return nil, &SyntaxError{
				Code:     code,
				Position: position,
				Reason:   "unexpected character " + strconv.QuoteRune(rune(code[position])),
			}
		}
	}

	expression := &Expression{Code: code}
	start := 0
	divide := false

	switch code[0] {
	case '/':
		divide = true
		start = 1
	case '.':
		return nil, &SyntaxError{Code: code, Position: 0, Reason: "code cannot start with '.'"}
	}

	for position := start; position <= len(code); position++ {
		if position < len(code) && !isSeparator(code[position]) {
			continue
		}

		segment := code[start:position]
		if segment == "" {
			return nil, &SyntaxError{Code: code, Position: position, Reason: "empty term"}
		}

		term, err := p.parseSegment(code, segment, start)
		if err != nil {
			return nil, err
		}
		// Division binds only to the term immediately after the slash.
		if divide {
			term.Exponent = -term.Exponent
		}
		expression.Terms = append(expression.Terms, term)

		if position < len(code) {
			divide = code[position] == '/'
		}
		start = position + 1
	}

	return expression, nil
}

func (p *Parser) parseSegment(code, segment string, offset int) (Term, error) {
	if isAllDigits(segment) {
		factor, err := strconv.ParseInt(segment, 10, 64)
		if err != nil || factor == 0 {
			return Term{}, &SyntaxError{Code: code, Position: offset, Reason: "invalid numeric factor " + strconv.Quote(segment)}
		}
		return Term{Factor: factor, Exponent: 1}, nil
	}

	digitsStart := len(segment)
	for digitsStart > 0 && isDigit(segment[digitsStart-1]) {
		digitsStart--
	}
	symbolEnd := digitsStart
	if symbolEnd > 0 && segment[symbolEnd-1] == '-' {
		symbolEnd--
	}

	symbol := segment[:symbolEnd]
	exponentText := segment[symbolEnd:]

	if exponentText == "-" {
		return Term{}, &SyntaxError{Code: code, Position: offset + symbolEnd, Reason: "sign without exponent digits"}
	}
	if symbol == "" {
		return Term{}, &SyntaxError{Code: code, Position: offset, Reason: "exponent without unit"}
	}
	if index := strings.IndexFunc(symbol, func(char rune) bool { return char == '-' || (char >= '0' && char <= '9') }); index >= 0 {
		return Term{}, &SyntaxError{Code: code, Position: offset + index, Reason: "term " + strconv.Quote(segment) + " is not of the form prefix, unit, exponent"}
	}

	exponent := 1
	if exponentText != "" {
		parsed, err := strconv.Atoi(exponentText)
		if err != nil || parsed < -units.MaxExponent || parsed > units.MaxExponent {
			return Term{}, &SyntaxError{Code: code, Position: offset + symbolEnd, Reason: "exponent out of range"}
		}
		exponent = parsed
	}

	prefix, unit, ok := p.split(symbol)
	if !ok {
		return Term{}, &UnknownUnitError{Code: code, Symbol: symbol}
	}

	return Term{Prefix: prefix, Unit: unit, Exponent: exponent}, nil
}

// split resolves the prefix/unit ambiguity of a symbol. The whole symbol is
// tried as a unit first, then progressively shorter suffixes with the
// remainder as a prefix. Only metric units accept a prefix.
func (p *Parser) split(symbol string) (*units.Prefix, units.Unit, bool) {
	if unit, ok := p.table.Unit(symbol); ok {
		return nil, unit, true
	}

	for cut := 1; cut < len(symbol) && cut <= p.table.MaxPrefixLen(); cut++ {
		prefix, ok := p.table.Prefix(symbol[:cut])
		if !ok {
			continue
		}
		unit, ok := p.table.Unit(symbol[cut:])
		if !ok || !unit.Metric {
			continue
		}
		return &prefix, unit, true
	}

	return nil, units.Unit{}, false
}

func isCodeChar(char byte) bool {
	return isLetter(char) || isDigit(char) || char == '.' || char == '/' || char == '-' || char == '%'
}

func isSeparator(char byte) bool {
	return char == '.' || char == '/'
}

func isLetter(char byte) bool {
	return (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z')
}

func isDigit(char byte) bool {
	return char >= '0' && char <= '9'
}

func isAllDigits(text string) bool {
	for index := 0; index < len(text); index++ {
		if !isDigit(text[index]) {
			return false
		}
	}
	return text != ""
}
