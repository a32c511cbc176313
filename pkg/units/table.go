package units

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TableSpec is the YAML form of a unit table.
type TableSpec struct {
	Prefixes []Prefix `yaml:"prefixes"`
	Units    []Unit   `yaml:"units"`
}

// LoadSpec decodes a YAML table document.
func LoadSpec(reader io.Reader) (TableSpec, error) {
	var spec TableSpec
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		if err == io.EOF {
			return spec, nil
		}
		return TableSpec{}, fmt.Errorf("parsing YAML: %w", err)
	}
	return spec, nil
}

// LoadSpecFile decodes the YAML table document at path.
func LoadSpecFile(path string) (TableSpec, error) {
	file, err := os.Open(path)
	if err != nil {
		return TableSpec{}, fmt.Errorf("reading file: %w", err)
	}
	defer file.Close()

	spec, err := LoadSpec(file)
	if err != nil {
		return TableSpec{}, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// Table is an immutable snapshot of prefixes and atomic units.
type Table struct {
	prefixes     map[string]Prefix
	units        map[string]Unit
	maxPrefixLen int
}

// NewTable validates the definitions and builds a table. Symbols must be
// unique within prefixes and within units.
func NewTable(prefixes []Prefix, unitDefs []Unit) (*Table, error) {
	table := &Table{
		prefixes: make(map[string]Prefix, len(prefixes)),
		units:    make(map[string]Unit, len(unitDefs)),
	}

	for _, prefix := range prefixes {
		if err := validatePrefix(prefix); err != nil {
			return nil, err
		}
		if _, exists := table.prefixes[prefix.Symbol]; exists {
			return nil, fmt.Errorf("duplicate prefix %q", prefix.Symbol)
		}
		table.prefixes[prefix.Symbol] = prefix
		if len(prefix.Symbol) > table.maxPrefixLen {
			table.maxPrefixLen = len(prefix.Symbol)
		}
	}

	for _, unit := range unitDefs {
		if err := validateUnit(unit); err != nil {
			return nil, err
		}
		if _, exists := table.units[unit.Symbol]; exists {
			return nil, fmt.Errorf("duplicate unit %q", unit.Symbol)
		}
		if unit.Scale == 0 {
			unit.Scale = 1
		}
		table.units[unit.Symbol] = cloneUnit(unit)
	}

	return table, nil
}

// Build merges table specs into one table. A later spec replaces prefixes
// and units of an earlier one that share a symbol.
func Build(specs ...TableSpec) (*Table, error) {
	var prefixes []Prefix
	prefixIndex := make(map[string]int)
	var unitDefs []Unit
	unitIndex := make(map[string]int)

	for _, spec := range specs {
		for _, prefix := range spec.Prefixes {
			if position, exists := prefixIndex[prefix.Symbol]; exists {
				prefixes[position] = prefix
				continue
			}
			prefixIndex[prefix.Symbol] = len(prefixes)
			prefixes = append(prefixes, prefix)
		}
		for _, unit := range spec.Units {
			if position, exists := unitIndex[unit.Symbol]; exists {
				unitDefs[position] = unit
				continue
			}
			unitIndex[unit.Symbol] = len(unitDefs)
			unitDefs = append(unitDefs, unit)
		}
	}

	return NewTable(prefixes, unitDefs)
}

// Prefix looks up a prefix by symbol.
func (t *Table) Prefix(symbol string) (Prefix, bool) {
	prefix, ok := t.prefixes[symbol]
	return prefix, ok
}

// Unit looks up an atomic unit by symbol.
func (t *Table) Unit(symbol string) (Unit, bool) {
	unit, ok := t.units[symbol]
	if !ok {
		return Unit{}, false
	}
	return cloneUnit(unit), true
}

// MaxPrefixLen is the length of the longest prefix symbol.
func (t *Table) MaxPrefixLen() int {
	return t.maxPrefixLen
}

// Prefixes returns all prefixes ordered by descending exponent.
func (t *Table) Prefixes() []Prefix {
	prefixes := make([]Prefix, 0, len(t.prefixes))
	for _, prefix := range t.prefixes {
		prefixes = append(prefixes, prefix)
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if prefixes[i].Exponent != prefixes[j].Exponent {
			return prefixes[i].Exponent > prefixes[j].Exponent
		}
		return prefixes[i].Symbol < prefixes[j].Symbol
	})
	return prefixes
}

// Units returns all units sorted by symbol.
func (t *Table) Units() []Unit {
	unitDefs := make([]Unit, 0, len(t.units))
	for _, symbol := range sortedKeys(t.units) {
		unitDefs = append(unitDefs, cloneUnit(t.units[symbol]))
	}
	return unitDefs
}

// Len returns the number of atomic units.
func (t *Table) Len() int {
	return len(t.units)
}

// Spec returns the table in its YAML form.
func (t *Table) Spec() TableSpec {
	return TableSpec{Prefixes: t.Prefixes(), Units: t.Units()}
}

func (t *Table) String() string {
	return fmt.Sprintf("Table{prefixes: %d, units: %d}", len(t.prefixes), len(t.units))
}

func validatePrefix(prefix Prefix) error {
	if prefix.Symbol == "" {
		return fmt.Errorf("prefix symbol cannot be empty")
	}
	for _, char := range prefix.Symbol {
		if !isLetter(char) {
			return fmt.Errorf("prefix %q: symbol may contain letters only", prefix.Symbol)
		}
	}
	return nil
}

func validateUnit(unit Unit) error {
	if unit.Symbol == "" {
		return fmt.Errorf("unit symbol cannot be empty")
	}
	for _, char := range unit.Symbol {
		if !isLetter(char) && char != '%' {
			return fmt.Errorf("unit %q: symbol may contain letters and %% only", unit.Symbol)
		}
	}
	if unit.Base != nil {
		if !unit.Base.Valid() {
			return fmt.Errorf("unit %q: invalid base dimension", unit.Symbol)
		}
		if unit.Definition != "" {
			return fmt.Errorf("unit %q: base unit cannot have a definition", unit.Symbol)
		}
	}
	if unit.Scale < 0 {
		return fmt.Errorf("unit %q: scale must be positive", unit.Symbol)
	}
	if strings.TrimSpace(unit.Definition) != unit.Definition {
		return fmt.Errorf("unit %q: definition has surrounding whitespace", unit.Symbol)
	}
	return nil
}

func isLetter(char rune) bool {
	return (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z')
}

func cloneUnit(unit Unit) Unit {
	if unit.Base != nil {
		base := *unit.Base
		unit.Base = &base
	}
	if unit.Offset != nil {
		offset := *unit.Offset
		unit.Offset = &offset
	}
	return unit
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
