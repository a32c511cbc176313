package units

import "math"

// Prefix is a decimal multiplier that may precede a metric unit symbol.
type Prefix struct {
	Symbol   string `yaml:"symbol"`
	Name     string `yaml:"name"`
	Exponent int    `yaml:"exponent"`
}

// Multiplier returns 10^Exponent.
func (p Prefix) Multiplier() float64 {
	return math.Pow10(p.Exponent)
}
