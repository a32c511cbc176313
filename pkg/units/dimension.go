// Package units holds the lexical tables of the UCUM grammar: base dimensions,
// decimal prefixes and atomic unit definitions.
//
// Tables are built once and are read-only afterwards, so a *Table can be shared
// by any number of concurrent conversions without locking.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dimension is one fundamental physical dimension. The numeric order of the
// constants is the canonical rendering order of a Vector.
type Dimension int

const (
	Mass Dimension = iota
	Length
	Time
	Current
	Temperature
	Amount
	Luminosity
	Angle
	Information

	numDimensions
)

// Dimensions lists every base dimension in canonical order.
var Dimensions = [numDimensions]Dimension{
	Mass, Length, Time, Current, Temperature, Amount, Luminosity, Angle, Information,
}

var dimensionNames = [numDimensions]string{
	"mass", "length", "time", "current", "temperature", "amount", "luminosity", "angle", "information",
}

// SI coherent base unit for each dimension.
var dimensionSymbols = [numDimensions]string{
	"kg", "m", "s", "A", "K", "mol", "cd", "rad", "bit",
}

// Name returns the lower-case dimension name used in tables and predicates.
func (d Dimension) Name() string {
	if !d.Valid() {
		return fmt.Sprintf("dimension(%d)", int(d))
	}
	return dimensionNames[d]
}

// Symbol returns the SI symbol used in canonical codes.
func (d Dimension) Symbol() string {
	if !d.Valid() {
		return ""
	}
	return dimensionSymbols[d]
}

// Valid reports whether d is one of the declared dimensions.
func (d Dimension) Valid() bool {
	return d >= 0 && d < numDimensions
}

func (d Dimension) String() string {
	return d.Name()
}

// ParseDimension maps a dimension name (case-insensitive) to its Dimension.
func ParseDimension(name string) (Dimension, error) {
	lowered := strings.ToLower(strings.TrimSpace(name))
	for index, candidate := range dimensionNames {
		if candidate == lowered {
			return Dimension(index), nil
		}
	}
	return 0, fmt.Errorf("unknown dimension %q", name)
}

// MarshalYAML writes the dimension by name.
func (d Dimension) MarshalYAML() (interface{}, error) {
	return d.Name(), nil
}

// UnmarshalYAML reads a dimension name.
func (d *Dimension) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseDimension(name)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Vector assigns an integer exponent to every base dimension. Absent
// dimensions are zero, and two vectors are equal exactly when == holds.
type Vector [numDimensions]int

// UnitVector returns the vector with exponent 1 on d and zero elsewhere.
func UnitVector(d Dimension) Vector {
	var v Vector
	if d.Valid() {
		v[d] = 1
	}
	return v
}

// Get returns the exponent of d.
func (v Vector) Get(d Dimension) int {
	if !d.Valid() {
		return 0
	}
	return v[d]
}

// With returns a copy of v with the exponent of d set to exponent.
func (v Vector) With(d Dimension, exponent int) Vector {
	if d.Valid() {
		v[d] = exponent
	}
	return v
}

// Add sums two vectors component-wise.
func (v Vector) Add(other Vector) Vector {
	for index := range v {
		v[index] += other[index]
	}
	return v
}

// Scale multiplies every exponent by factor.
func (v Vector) Scale(factor int) Vector {
	for index := range v {
		v[index] *= factor
	}
	return v
}

// MaxExponent bounds the magnitude of every exponent of a Vector.
const MaxExponent = math.MaxInt32

// CheckedAdd is Add that reports false when a component would leave
// [-MaxExponent, MaxExponent].
func (v Vector) CheckedAdd(other Vector) (Vector, bool) {
	for index := range v {
		if !exponentInRange(int64(v[index])) || !exponentInRange(int64(other[index])) {
			return Vector{}, false
		}
		sum := int64(v[index]) + int64(other[index])
		if !exponentInRange(sum) {
			return Vector{}, false
		}
		v[index] = int(sum)
	}
	return v, true
}

// CheckedScale is Scale that reports false when a component would leave
// [-MaxExponent, MaxExponent].
func (v Vector) CheckedScale(factor int) (Vector, bool) {
	if !exponentInRange(int64(factor)) {
		return Vector{}, false
	}
	for index := range v {
		if !exponentInRange(int64(v[index])) {
			return Vector{}, false
		}
		product := int64(v[index]) * int64(factor)
		if !exponentInRange(product) {
			return Vector{}, false
		}
		v[index] = int(product)
	}
	return v, true
}

func exponentInRange(exponent int64) bool {
	return exponent >= -MaxExponent && exponent <= MaxExponent
}

// IsZero reports whether v is dimensionless.
func (v Vector) IsZero() bool {
	return v == Vector{}
}

// Entry is one non-zero component of a Vector.
type Entry struct {
	Dimension Dimension
	Exponent  int
}

// Entries returns the non-zero components in canonical order.
func (v Vector) Entries() []Entry {
	var entries []Entry
	for _, d := range Dimensions {
		if v[d] != 0 {
			entries = append(entries, Entry{Dimension: d, Exponent: v[d]})
		}
	}
	return entries
}

// String renders the vector as a canonical SI code, e.g. "kg.m2.s-2".
// A dimensionless vector renders as the UCUM unity "1".
func (v Vector) String() string {
	entries := v.Entries()
	if len(entries) == 0 {
		return "1"
	}

	var builder strings.Builder
	for index, entry := range entries {
		if index > 0 {
			builder.WriteByte('.')
		}
		builder.WriteString(entry.Dimension.Symbol())
		if entry.Exponent != 1 {
			builder.WriteString(strconv.Itoa(entry.Exponent))
		}
	}
	return builder.String()
}
