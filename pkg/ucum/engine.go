package ucum

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/ontodev/units-demo/pkg/units"
)

// Engine bundles a table with its parser and resolver. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	table    *units.Table
	parser   *Parser
	resolver *Resolver
}

// NewEngine creates an engine over table.
func NewEngine(table *units.Table, opts ...Option) *Engine {
	return &Engine{
		table:    table,
		parser:   NewParser(table),
		resolver: NewResolver(table, opts...),
	}
}

// Table returns the snapshot the engine was built with.
func (e *Engine) Table() *units.Table {
	return e.table
}

// Parse splits code into terms.
func (e *Engine) Parse(code string) (*Expression, error) {
	return e.parser.Parse(code)
}

// Resolve returns the SI meaning of one term.
func (e *Engine) Resolve(term Term) (Resolution, error) {
	return e.resolver.Resolve(term)
}

// Canonicalize parses code and reduces it to its canonical SI form.
func (e *Engine) Canonicalize(code string) (*Canonical, error) {
	expression, err := e.parser.Parse(code)
	if err != nil {
		return nil, err
	}
	return e.CanonicalizeExpression(expression)
}

// CanonicalizeExpression reduces a parsed expression. At most one affine term
// is allowed. It keeps its offset only when it is the sole factor; combined
// with other factors the offset is dropped and OffsetDropped is set.
func (e *Engine) CanonicalizeExpression(expression *Expression) (*Canonical, error) {
	canonical := &Canonical{
		Source:     expression.String(),
		Multiplier: 1,
	}

	affineTerms := 0
	var offset float64
	for _, term := range expression.Terms {
		resolution, err := e.resolver.Resolve(term)
		if err != nil {
			var composition *UnsupportedCompositionError
			if errors.As(err, &composition) && composition.Code == "" {
				composition.Code = expression.Code
			}
			return nil, err
		}

		if resolution.Affine {
			affineTerms++
			if affineTerms > 1 {
				return nil, &UnsupportedCompositionError{
					Code:   expression.Code,
					Reason: "more than one affine unit",
				}
			}
			offset = resolution.Offset
		}

		dimensions, ok := canonical.Dimensions.CheckedAdd(resolution.Dimensions)
		if !ok {
			return nil, exponentRangeError(expression.Code)
		}
		canonical.Dimensions = dimensions
		canonical.Multiplier *= resolution.Multiplier
	}

	switch {
	case affineTerms == 1 && len(expression.Terms) == 1:
		canonical.Offset = offset
		canonical.Affine = true
	case affineTerms == 1:
		canonical.OffsetDropped = true
	}

	canonical.Code = canonical.Dimensions.String()
	return canonical, nil
}

// ValidateTable resolves every unit of table and reports all definitions
// that fail, e.g. cycles or references to unknown symbols.
func ValidateTable(table *units.Table, opts ...Option) error {
	resolver := NewResolver(table, opts...)

	var result *multierror.Error
	for _, unit := range table.Units() {
		if _, err := resolver.Resolve(Term{Unit: unit, Exponent: 1}); err != nil {
			result = multierror.Append(result, fmt.Errorf("unit %q: %w", unit.Symbol, err))
		}
	}
	return result.ErrorOrNil()
}

var defaultEngine = sync.OnceValues(func() (*Engine, error) {
	table, err := units.Default()
	if err != nil {
		return nil, err
	}
	return NewEngine(table), nil
})

// DefaultEngine returns an engine over the embedded UCUM table.
func DefaultEngine() (*Engine, error) {
	return defaultEngine()
}

// Parse parses code against the embedded UCUM table.
func Parse(code string) (*Expression, error) {
	engine, err := defaultEngine()
	if err != nil {
		return nil, err
	}
	return engine.Parse(code)
}

// Canonicalize canonicalizes code against the embedded UCUM table.
func Canonicalize(code string) (*Canonical, error) {
	engine, err := defaultEngine()
	if err != nil {
		return nil, err
	}
	return engine.Canonicalize(code)
}
