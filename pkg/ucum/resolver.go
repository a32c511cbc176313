package ucum

import (
	"fmt"
	"math"

	"github.com/ontodev/units-demo/pkg/units"
)

// DefaultMaxDepth bounds the length of a derived-unit resolution chain.
const DefaultMaxDepth = 32

// Resolution is the SI meaning of one term or unit: SI value =
// value * Multiplier + Offset. Offset is only meaningful when Affine is set.
type Resolution struct {
	Dimensions units.Vector
	Multiplier float64
	Offset     float64
	Affine     bool
}

// Resolver maps terms to dimension vectors and scale factors by following
// derived-unit definitions down to base units.
type Resolver struct {
	table    *units.Table
	parser   *Parser
	maxDepth int
}

// Option configures a Resolver or an Engine.
type Option func(*options)

type options struct {
	maxDepth int
}

// WithMaxDepth bounds the derived-unit chain length. Values <= 0 select
// DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(opts *options) {
		opts.maxDepth = depth
	}
}

func buildOptions(opts []Option) options {
	resolved := options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&resolved)
	}
	if resolved.maxDepth <= 0 {
		resolved.maxDepth = DefaultMaxDepth
	}
	return resolved
}

// NewResolver creates a resolver over table.
func NewResolver(table *units.Table, opts ...Option) *Resolver {
	resolved := buildOptions(opts)
	return &Resolver{
		table:    table,
		parser:   NewParser(table),
		maxDepth: resolved.maxDepth,
	}
}

// resolution path of one top-level Resolve call
type resolvePath struct {
	symbols []string
	onPath  map[string]bool
}

func (path *resolvePath) push(symbol string) {
	path.symbols = append(path.symbols, symbol)
	path.onPath[symbol] = true
}

func (path *resolvePath) pop() {
	last := path.symbols[len(path.symbols)-1]
	path.symbols = path.symbols[:len(path.symbols)-1]
	delete(path.onPath, last)
}

func (path *resolvePath) cycle(symbol string) []string {
	cycle := make([]string, len(path.symbols)+1)
	copy(cycle, path.symbols)
	cycle[len(path.symbols)] = symbol
	return cycle
}

// Resolve returns the SI meaning of a single term. A definition that
// revisits a symbol on its own resolution path fails with
// *CyclicDefinitionError instead of recursing without bound.
func (r *Resolver) Resolve(term Term) (Resolution, error) {
	path := &resolvePath{onPath: make(map[string]bool)}
	return r.resolveTerm(term, path)
}

func (r *Resolver) resolveTerm(term Term, path *resolvePath) (Resolution, error) {
	if term.IsFactor() {
		return Resolution{Multiplier: math.Pow(float64(term.Factor), float64(term.Exponent))}, nil
	}

	unitResolution, err := r.resolveUnit(term.Unit, path)
	if err != nil {
		return Resolution{}, err
	}

	prefixMultiplier := 1.0
	if term.Prefix != nil {
		prefixMultiplier = term.Prefix.Multiplier()
	}

	if unitResolution.Affine {
		if term.Exponent != 1 {
			return Resolution{}, &UnsupportedCompositionError{
				Reason: fmt.Sprintf("affine unit %q cannot be raised to the power %d", term.Symbol(), term.Exponent),
			}
		}
		unitResolution.Multiplier *= prefixMultiplier
		return unitResolution, nil
	}

	dimensions, ok := unitResolution.Dimensions.CheckedScale(term.Exponent)
	if !ok {
		return Resolution{}, exponentRangeError(term.String())
	}
	return Resolution{
		Dimensions: dimensions,
		Multiplier: math.Pow(prefixMultiplier*unitResolution.Multiplier, float64(term.Exponent)),
	}, nil
}

func (r *Resolver) resolveUnit(unit units.Unit, path *resolvePath) (Resolution, error) {
	if path.onPath[unit.Symbol] || len(path.symbols) >= r.maxDepth {
		return Resolution{}, &CyclicDefinitionError{Path: path.cycle(unit.Symbol)}
	}
	path.push(unit.Symbol)
	defer path.pop()

	if unit.IsBase() {
		return Resolution{
			Dimensions: units.UnitVector(*unit.Base),
			Multiplier: unit.Scale,
		}, nil
	}

	reference := Resolution{Multiplier: 1}
	if !unit.Dimensionless() {
		expression, err := r.parser.Parse(unit.Definition)
		if err != nil {
			return Resolution{}, fmt.Errorf("definition of %q: %w", unit.Symbol, err)
		}
		reference, err = r.combine(expression, path)
		if err != nil {
			return Resolution{}, err
		}
	}

	if reference.Affine && unit.IsAffine() {
		return Resolution{}, &UnsupportedCompositionError{
			Code:   unit.Definition,
			Reason: fmt.Sprintf("affine unit %q is defined in terms of another affine unit", unit.Symbol),
		}
	}

	resolution := Resolution{
		Dimensions: reference.Dimensions,
		Multiplier: unit.Scale * reference.Multiplier,
		Offset:     reference.Offset,
		Affine:     reference.Affine,
	}
	if unit.IsAffine() {
		resolution.Offset = unit.OffsetValue()
		resolution.Affine = true
	}
	return resolution, nil
}

// combine resolves the terms of a definition. An affine reference is only
// carried through when it is the sole term of the definition.
func (r *Resolver) combine(expression *Expression, path *resolvePath) (Resolution, error) {
	combined := Resolution{Multiplier: 1}
	for _, term := range expression.Terms {
		resolution, err := r.resolveTerm(term, path)
		if err != nil {
			return Resolution{}, err
		}
		if resolution.Affine {
			if len(expression.Terms) > 1 {
				return Resolution{}, &UnsupportedCompositionError{
					Code:   expression.Code,
					Reason: fmt.Sprintf("affine unit %q combined with other units in a definition", term.Symbol()),
				}
			}
			combined.Offset = resolution.Offset
			combined.Affine = true
		}
		dimensions, ok := combined.Dimensions.CheckedAdd(resolution.Dimensions)
		if !ok {
			return Resolution{}, exponentRangeError(expression.Code)
		}
		combined.Dimensions = dimensions
		combined.Multiplier *= resolution.Multiplier
	}
	return combined, nil
}

func exponentRangeError(code string) error {
	return &UnsupportedCompositionError{
		Code:   code,
		Reason: fmt.Sprintf("dimension exponent exceeds %d", units.MaxExponent),
	}
}
