package units

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dimension(d Dimension) *Dimension {
	return &d
}

func TestDefault_ContainsCoreUnits(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	for _, symbol := range []string{"m", "g", "s", "A", "K", "mol", "cd", "rad", "bit",
		"%", "L", "l", "lm", "lx", "Bq", "Wb", "T", "sr", "J", "W", "Cel", "d", "h"} {
		_, ok := table.Unit(symbol)
		assert.True(t, ok, "missing unit %q", symbol)
	}

	for _, symbol := range []string{"k", "m", "u", "n", "p", "da", "E", "a"} {
		_, ok := table.Prefix(symbol)
		assert.True(t, ok, "missing prefix %q", symbol)
	}
	assert.Equal(t, 2, table.MaxPrefixLen())
	assert.Len(t, table.Prefixes(), 20)
	assert.Len(t, table.Units(), 83)

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, table, again)
}

func TestDefault_Units(t *testing.T) {
	table := MustDefault()

	gram, ok := table.Unit("g")
	require.True(t, ok)
	assert.True(t, gram.IsBase())
	assert.Equal(t, Mass, *gram.Base)
	assert.Equal(t, 0.001, gram.Scale)
	assert.True(t, gram.Metric)

	celsius, ok := table.Unit("Cel")
	require.True(t, ok)
	assert.True(t, celsius.IsAffine())
	assert.Equal(t, 273.15, celsius.OffsetValue())
	assert.Equal(t, "K", celsius.Definition)

	percent, ok := table.Unit("%")
	require.True(t, ok)
	assert.True(t, percent.Dimensionless())
	assert.False(t, percent.Metric)

	hour, ok := table.Unit("h")
	require.True(t, ok)
	assert.False(t, hour.Metric)
	assert.Equal(t, 60.0, hour.Scale)
}

func TestTable_UnitReturnsCopy(t *testing.T) {
	table := MustDefault()

	celsius, _ := table.Unit("Cel")
	*celsius.Offset = 0

	again, _ := table.Unit("Cel")
	assert.Equal(t, 273.15, again.OffsetValue())
}

func TestTable_Prefixes_Order(t *testing.T) {
	prefixes := MustDefault().Prefixes()
	require.Len(t, prefixes, 20)
	assert.Equal(t, "Y", prefixes[0].Symbol)
	assert.Equal(t, "y", prefixes[len(prefixes)-1].Symbol)
	for index := 1; index < len(prefixes); index++ {
		assert.GreaterOrEqual(t, prefixes[index-1].Exponent, prefixes[index].Exponent)
	}
}

func TestTable_UnitsSorted(t *testing.T) {
	unitDefs := MustDefault().Units()
	for index := 1; index < len(unitDefs); index++ {
		assert.Less(t, unitDefs[index-1].Symbol, unitDefs[index].Symbol)
	}
}

func TestNewTable_Validation(t *testing.T) {
	tests := []struct {
		name     string
		prefixes []Prefix
		units    []Unit
		wantErr  string
	}{
		{
			name:     "empty prefix",
			prefixes: []Prefix{{Symbol: "", Exponent: 3}},
			wantErr:  "prefix symbol cannot be empty",
		},
		{
			name:     "prefix with digit",
			prefixes: []Prefix{{Symbol: "k2", Exponent: 3}},
			wantErr:  "letters only",
		},
		{
			name:     "duplicate prefix",
			prefixes: []Prefix{{Symbol: "k", Exponent: 3}, {Symbol: "k", Exponent: 3}},
			wantErr:  `duplicate prefix "k"`,
		},
		{
			name:    "empty unit",
			units:   []Unit{{Symbol: ""}},
			wantErr: "unit symbol cannot be empty",
		},
		{
			name:    "unit with separator",
			units:   []Unit{{Symbol: "m.s", Definition: "m"}},
			wantErr: "letters and % only",
		},
		{
			name:    "base with definition",
			units:   []Unit{{Symbol: "m", Base: dimension(Length), Definition: "m"}},
			wantErr: "base unit cannot have a definition",
		},
		{
			name:    "negative scale",
			units:   []Unit{{Symbol: "x", Definition: "m", Scale: -1}},
			wantErr: "scale must be positive",
		},
		{
			name:    "duplicate unit",
			units:   []Unit{{Symbol: "m", Base: dimension(Length)}, {Symbol: "m", Base: dimension(Length)}},
			wantErr: `duplicate unit "m"`,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := NewTable(testCase.prefixes, testCase.units)
			assert.ErrorContains(t, err, testCase.wantErr)
		})
	}
}

func TestNewTable_DefaultScale(t *testing.T) {
	table, err := NewTable(nil, []Unit{{Symbol: "x", Definition: "m"}})
	require.NoError(t, err)

	unit, ok := table.Unit("x")
	require.True(t, ok)
	assert.Equal(t, 1.0, unit.Scale)
}

func TestBuild_LaterSpecOverrides(t *testing.T) {
	base := TableSpec{
		Prefixes: []Prefix{{Symbol: "k", Name: "kilo", Exponent: 3}},
		Units: []Unit{
			{Symbol: "m", Name: "meter", Metric: true, Base: dimension(Length)},
			{Symbol: "ft", Name: "foot", Definition: "m", Scale: 0.3048},
		},
	}
	overlay := TableSpec{
		Units: []Unit{
			{Symbol: "ft", Name: "survey foot", Definition: "m", Scale: 0.3048006},
			{Symbol: "smoot", Name: "smoot", Definition: "m", Scale: 1.7018},
		},
	}

	table, err := Build(base, overlay)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	foot, _ := table.Unit("ft")
	assert.Equal(t, "survey foot", foot.Name)
	_, ok := table.Unit("smoot")
	assert.True(t, ok)
	_, ok = table.Prefix("k")
	assert.True(t, ok)
}

func TestLoadSpec(t *testing.T) {
	spec, err := LoadSpec(strings.NewReader(`
prefixes:
  - {symbol: "k", name: kilo, exponent: 3}
units:
  - {symbol: "m", name: meter, metric: true, base: length}
  - {symbol: "degF", name: degree Fahrenheit, definition: "K", scale: 0.5555555555555556, offset: 255.37222222222223}
`))
	require.NoError(t, err)
	require.Len(t, spec.Prefixes, 1)
	require.Len(t, spec.Units, 2)
	assert.Equal(t, Length, *spec.Units[0].Base)
	assert.True(t, spec.Units[1].IsAffine())

	empty, err := LoadSpec(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Units)

	_, err = LoadSpec(strings.NewReader("units:\n  - {symbol: m, colour: red}\n"))
	assert.ErrorContains(t, err, "parsing YAML")
}

func TestLoadSpecFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(path, []byte("units:\n  - {symbol: smoot, name: smoot, definition: m, scale: 1.7018}\n"), 0644))

	spec, err := LoadSpecFile(path)
	require.NoError(t, err)
	require.Len(t, spec.Units, 1)
	assert.Equal(t, "smoot", spec.Units[0].Symbol)

	_, err = LoadSpecFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading file")
}

func TestTable_SpecRoundTrip(t *testing.T) {
	table := MustDefault()
	rebuilt, err := Build(table.Spec())
	require.NoError(t, err)
	assert.Equal(t, table.Len(), rebuilt.Len())
	assert.Equal(t, table.Units(), rebuilt.Units())
}
