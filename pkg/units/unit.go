package units

// Unit is an atomic unit symbol. A unit is either a base unit carrying one
// dimension, or a derived unit defined by a UCUM reference expression, a
// scale factor and an optional affine offset.
//
// For a base unit, Scale converts the UCUM base to the SI coherent unit
// (the gram has scale 0.001 because the SI mass unit is the kilogram).
// For a derived unit, one unit equals Scale times its Definition. Offset is
// added after scaling: SI value = value * multiplier + Offset.
type Unit struct {
	Symbol     string     `yaml:"symbol"`
	Name       string     `yaml:"name"`
	Property   string     `yaml:"property,omitempty"`
	Metric     bool       `yaml:"metric"`
	Base       *Dimension `yaml:"base,omitempty"`
	Definition string     `yaml:"definition,omitempty"`
	Scale      float64    `yaml:"scale,omitempty"`
	Offset     *float64   `yaml:"offset,omitempty"`
}

// IsBase reports whether the unit carries a base dimension directly.
func (u Unit) IsBase() bool {
	return u.Base != nil
}

// IsAffine reports whether converting the unit needs an additive offset.
func (u Unit) IsAffine() bool {
	return u.Offset != nil
}

// OffsetValue returns the affine offset, or zero for ratio-scale units.
func (u Unit) OffsetValue() float64 {
	if u.Offset == nil {
		return 0
	}
	return *u.Offset
}

// Dimensionless reports whether a derived unit has no reference units,
// e.g. "%" defined as 0.01 of unity.
func (u Unit) Dimensionless() bool {
	return !u.IsBase() && (u.Definition == "" || u.Definition == "1")
}
