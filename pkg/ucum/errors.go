package ucum

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure kinds of a conversion. Every kind also
// matches ErrInvalidCode, which is what hosts that report a single
// "not a valid UCUM code" message should test for.
var (
	ErrInvalidCode            = errors.New("invalid UCUM code")
	ErrSyntax                 = errors.New("syntax error")
	ErrUnknownUnit            = errors.New("unknown unit")
	ErrCyclicDefinition       = errors.New("cyclic unit definition")
	ErrUnsupportedComposition = errors.New("unsupported composition")
)

// SyntaxError reports a malformed code. Position is a byte offset into Code.
type SyntaxError struct {
	Code     string
	Position int
	Reason   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error in %q at position %d: %s", e.Code, e.Position, e.Reason)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax || target == ErrInvalidCode
}

// UnknownUnitError reports a segment that no prefix/unit split matches.
type UnknownUnitError struct {
	Code   string
	Symbol string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown unit %q in %q", e.Symbol, e.Code)
}

func (e *UnknownUnitError) Is(target error) bool {
	return target == ErrUnknownUnit || target == ErrInvalidCode
}

// CyclicDefinitionError reports a derived unit whose resolution revisits a
// symbol on its own path, or exceeds the depth bound.
type CyclicDefinitionError struct {
	Path []string
}

func (e *CyclicDefinitionError) Error() string {
	return fmt.Sprintf("cyclic unit definition: %s", strings.Join(e.Path, " -> "))
}

func (e *CyclicDefinitionError) Is(target error) bool {
	return target == ErrCyclicDefinition || target == ErrInvalidCode
}

// UnsupportedCompositionError reports an affine unit used where it cannot be
// represented: exponentiated, or combined with another affine unit.
type UnsupportedCompositionError struct {
	Code   string
	Reason string
}

func (e *UnsupportedCompositionError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("unsupported composition: %s", e.Reason)
	}
	return fmt.Sprintf("unsupported composition in %q: %s", e.Code, e.Reason)
}

func (e *UnsupportedCompositionError) Is(target error) bool {
	return target == ErrUnsupportedComposition || target == ErrInvalidCode
}

// IsInvalidCode reports whether err means the input is not a valid UCUM code.
func IsInvalidCode(err error) bool {
	return errors.Is(err, ErrInvalidCode)
}

// Kind returns a short label for the failure kind of err, suitable for
// metric labels and log fields.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrSyntax):
		return "syntax"
	case errors.Is(err, ErrUnknownUnit):
		return "unknown_unit"
	case errors.Is(err, ErrCyclicDefinition):
		return "cyclic_definition"
	case errors.Is(err, ErrUnsupportedComposition):
		return "unsupported_composition"
	default:
		return "error"
	}
}
