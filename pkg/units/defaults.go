package units

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"
)

//go:embed data/ucum.yaml
var defaultTableYAML []byte

var loadDefault = sync.OnceValues(func() (*Table, error) {
	spec, err := DefaultSpec()
	if err != nil {
		return nil, err
	}
	table, err := Build(spec)
	if err != nil {
		return nil, fmt.Errorf("building default table: %w", err)
	}
	return table, nil
})

// DefaultSpec decodes the embedded UCUM table.
func DefaultSpec() (TableSpec, error) {
	spec, err := LoadSpec(bytes.NewReader(defaultTableYAML))
	if err != nil {
		return TableSpec{}, fmt.Errorf("embedded table: %w", err)
	}
	return spec, nil
}

// Default returns the embedded UCUM table. It is built on first use and the
// same snapshot is returned to every caller.
func Default() (*Table, error) {
	return loadDefault()
}

// MustDefault is Default for program initialization.
func MustDefault() *Table {
	table, err := Default()
	if err != nil {
		panic(err)
	}
	return table
}
