package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with an isolated home directory and an
// explicit config file.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("UCUM_LOG_LEVEL", "error")

	configPath := filepath.Join(home, "ucum.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log_level: error\n"), 0644))

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestConvert_Turtle(t *testing.T) {
	out, err := runCLI(t, "convert", "m/s", "m.s-1")
	require.NoError(t, err)

	assert.Contains(t, out, "@prefix units: <https://w3id.org/units/> .")
	assert.Contains(t, out, "units:m.s-1 a owl:NamedIndividual")
	assert.Contains(t, out, `"m/s"`)
	assert.Contains(t, out, `"m.s-1"`)
	assert.Contains(t, out, `units:length_exponent "1"^^xsd:integer`)
}

func TestConvert_Formats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"ttl", "@prefix owl:"},
		{"json-ld", `"@context"`},
		{"ntriples", `<https://w3id.org/units/kg> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#NamedIndividual> .`},
		{"rdfxml", `<rdf:Description rdf:about="https://w3id.org/units/kg">`},
		{"dot", "digraph"},
	}

	for _, testCase := range tests {
		t.Run(testCase.format, func(t *testing.T) {
			out, err := runCLI(t, "convert", "--format", testCase.format, "kg")
			require.NoError(t, err)
			assert.Contains(t, out, testCase.want)
		})
	}
}

func TestConvert_Errors(t *testing.T) {
	_, err := runCLI(t, "convert")
	assert.EqualError(t, err, "A UCUM code is required.")

	_, err = runCLI(t, "convert", "zzq7")
	assert.EqualError(t, err, "'zzq7' is not a valid UCUM code.")

	_, err = runCLI(t, "convert", "Cel2")
	assert.EqualError(t, err, "'Cel2' is not a valid UCUM code.")

	_, err = runCLI(t, "convert", "--format", "csv", "m")
	assert.EqualError(t, err, "'csv' is not a valid export format.")
}

func TestConvert_DecodesInput(t *testing.T) {
	tests := []struct {
		code    string
		subject string
		literal string
	}{
		{"m%2Fs", "<https://w3id.org/units/m.s-1>", `"m/s"`},
		{"%", "<https://w3id.org/units/1>", `"%"`},
		{"g%", "<https://w3id.org/units/kg.m-3>", `"g%"`},
		{"mg%", "<https://w3id.org/units/kg.m-3>", `"mg%"`},
		{"%25", "<https://w3id.org/units/1>", `"%"`},
	}

	for _, testCase := range tests {
		t.Run(testCase.code, func(t *testing.T) {
			out, err := runCLI(t, "convert", "--format", "nt", testCase.code)
			require.NoError(t, err)
			assert.Contains(t, out, testCase.subject+" <https://w3id.org/units/UCUM_code> "+testCase.literal+" .")
		})
	}
}

func TestUnquotePlus(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"m.s-1", "m.s-1"},
		{"m%2Fs", "m/s"},
		{"m%2fs", "m/s"},
		{"%", "%"},
		{"g%", "g%"},
		{"%2", "%2"},
		{"%zz", "%zz"},
		{"a+b", "a b"},
		{"%25%", "%%"},
	}

	for _, testCase := range tests {
		t.Run(testCase.input, func(t *testing.T) {
			assert.Equal(t, testCase.want, unquotePlus(testCase.input))
		})
	}
}

func TestConvert_InputGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("# speeds\nm/s\n\nkm/h  # same kind\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.txt"), []byte("zzq7\nN\n"), 0644))

	outPath := filepath.Join(dir, "out.nt")
	metricsPath := filepath.Join(dir, "ucum.prom")
	_, err := runCLI(t, "convert",
		"--input-glob", filepath.Join(dir, "**", "*.txt"),
		"--fail-on-error=false",
		"--format", "nt",
		"--output", outPath,
		"--metrics-file", metricsPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"km/h"`)
	assert.Contains(t, string(data), "<https://w3id.org/units/kg.m.s-2>")
	assert.NotContains(t, string(data), "zzq7")

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `ucum_conversions_total{outcome="ok"} 3`)
	assert.Contains(t, string(metrics), `ucum_conversions_total{outcome="unknown_unit"} 1`)
}

func TestConvert_DerivationLinksAndBase(t *testing.T) {
	out, err := runCLI(t, "convert", "--format", "nt",
		"--base-iri", "https://example.org/u/", "--derivation-links", "N")
	require.NoError(t, err)
	assert.Contains(t, out, "<https://example.org/u/kg.m.s-2> <https://example.org/u/derivedFrom> <https://example.org/u/kg> .")

	_, err = runCLI(t, "convert", "--base-iri", "https://example.org/u", "N")
	assert.ErrorContains(t, err, "base_iri must end in '/' or '#'")
}

func TestCanonicalize(t *testing.T) {
	out, err := runCLI(t, "canonicalize", "kW/h", "Cel", "Cel.d-1")
	require.NoError(t, err)
	assert.Contains(t, out, "kW.h-1")
	assert.Contains(t, out, "kg.m2.s-4")
	assert.Contains(t, out, "offset=273.15")
	assert.Contains(t, out, "(offset dropped)")

	_, err = runCLI(t, "canonicalize", "m//s")
	assert.EqualError(t, err, "'m//s' is not a valid UCUM code.")
}

func TestParse(t *testing.T) {
	out, err := runCLI(t, "parse", "cg3/h")
	require.NoError(t, err)
	assert.Contains(t, out, "Normalized: cg3.h-1")
	assert.Contains(t, out, "prefix=c (centi, 1e-2) unit=g (gram) exponent=3")
	assert.Contains(t, out, "prefix=- unit=h (hour) exponent=-1")
}

func TestExamples(t *testing.T) {
	out, err := runCLI(t, "examples")
	require.NoError(t, err)
	assert.Contains(t, out, "kW/h")
	assert.Contains(t, out, "m.s-1.d-1")
	assert.NotContains(t, out, "error:")
}

func TestUnitsAndPrefixes(t *testing.T) {
	out, err := runCLI(t, "units", "--property", "pressure")
	require.NoError(t, err)
	assert.Contains(t, out, "Pa")
	assert.Contains(t, out, "bar")
	assert.NotContains(t, out, "meter")

	out, err = runCLI(t, "prefixes")
	require.NoError(t, err)
	assert.Contains(t, out, "kilo")
	assert.Contains(t, out, "1e-24")
}

func TestTables(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(good, []byte("units:\n  - {symbol: smoot, name: smoot, definition: m, scale: 1.7018}\n"), 0644))
	require.NoError(t, os.WriteFile(bad, []byte("units:\n  - {symbol: X, name: x, definition: Y}\n  - {symbol: Y, name: y, definition: X}\n"), 0644))

	out, err := runCLI(t, "tables", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "OK:")

	_, err = runCLI(t, "tables", "validate", bad)
	assert.ErrorContains(t, err, "cyclic unit definition")

	_, err = runCLI(t, "--tables-dir", dir, "tables", "dump")
	assert.ErrorContains(t, err, "validating table")

	require.NoError(t, os.Remove(bad))
	out, err = runCLI(t, "--tables-dir", dir, "units")
	require.NoError(t, err)
	assert.Contains(t, out, "smoot")

	out, err = runCLI(t, "tables", "dump")
	require.NoError(t, err)
	assert.Contains(t, out, "symbol: Cel")

	_, err = runCLI(t, "tables", "watch")
	assert.ErrorContains(t, err, "tables_dir is not configured")
}
