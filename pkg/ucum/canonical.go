package ucum

import "github.com/ontodev/units-demo/pkg/units"

// Canonical is the SI normal form of a code. Two codes with the same
// Dimensions render the same Code and are treated as the same unit kind.
type Canonical struct {
	// Code is the canonical SI text, e.g. "kg.m2.s-2". It is never empty;
	// a dimensionless result is "1".
	Code string
	// Source is the normalized UCUM form of the input, e.g. "m.s-1" for "m/s".
	Source     string
	Dimensions units.Vector
	Multiplier float64
	Offset     float64
	Affine     bool
	// OffsetDropped is set when an affine unit was combined with other
	// factors and is read as a difference quantity (Cel.d-1).
	OffsetDropped bool
}

// ToSI converts a value expressed in the source unit to the SI unit.
func (c *Canonical) ToSI(value float64) float64 {
	return value*c.Multiplier + c.Offset
}

// FromSI converts an SI value back to the source unit.
func (c *Canonical) FromSI(value float64) float64 {
	return (value - c.Offset) / c.Multiplier
}

// Commensurable reports whether both units measure the same kind of quantity.
func (c *Canonical) Commensurable(other *Canonical) bool {
	if c == nil || other == nil {
		return false
	}
	return c.Dimensions == other.Dimensions
}

func (c *Canonical) String() string {
	return c.Code
}
