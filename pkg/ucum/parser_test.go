package ucum

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontodev/units-demo/pkg/units"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	return NewParser(units.MustDefault())
}

func TestParser_Normalize(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"m", "m"},
		{"m/s", "m.s-1"},
		{"m.s-1", "m.s-1"},
		{"m/s/d", "m.s-1.d-1"},
		{"/g", "g-1"},
		{"/m3", "m-3"},
		{"/A/s3/cg3/T3", "A-1.s-3.cg-3.T-3"},
		{"kW/h", "kW.h-1"},
		{"dL/g", "dL.g-1"},
		{"mmol.mL-1", "mmol.mL-1"},
		{"m/s-2", "m.s2"},
		{"K2", "K2"},
		{"%", "%"},
		{"10.m", "10.m"},
		{"Cel.d-1", "Cel.d-1"},
	}

	parser := newTestParser(t)
	for _, testCase := range tests {
		t.Run(testCase.code, func(t *testing.T) {
			expression, err := parser.Parse(testCase.code)
			require.NoError(t, err)
			assert.Equal(t, testCase.code, expression.Code)
			assert.Equal(t, testCase.want, expression.String())
		})
	}
}

func TestParser_Terms(t *testing.T) {
	parser := newTestParser(t)

	expression, err := parser.Parse("cg3/kW")
	require.NoError(t, err)
	require.Len(t, expression.Terms, 2)

	centigram := expression.Terms[0]
	require.NotNil(t, centigram.Prefix)
	assert.Equal(t, "c", centigram.Prefix.Symbol)
	assert.Equal(t, "g", centigram.Unit.Symbol)
	assert.Equal(t, 3, centigram.Exponent)
	assert.Equal(t, "cg", centigram.Symbol())

	kilowatt := expression.Terms[1]
	require.NotNil(t, kilowatt.Prefix)
	assert.Equal(t, "k", kilowatt.Prefix.Symbol)
	assert.Equal(t, "W", kilowatt.Unit.Symbol)
	assert.Equal(t, -1, kilowatt.Exponent)
}

func TestParser_PrefixDisambiguation(t *testing.T) {
	tests := []struct {
		code       string
		wantPrefix string
		wantUnit   string
	}{
		// whole-symbol units win over a prefix split
		{"cd", "", "cd"},
		{"Pa", "", "Pa"},
		{"mol", "", "mol"},
		{"min", "", "min"},
		{"h", "", "h"},
		{"d", "", "d"},
		{"dm", "d", "m"},
		{"dam", "da", "m"},
		{"us", "u", "s"},
		{"dlm", "d", "lm"},
		{"aBq", "a", "Bq"},
		{"Em", "E", "m"},
		{"umol", "u", "mol"},
		{"kg", "k", "g"},
	}

	parser := newTestParser(t)
	for _, testCase := range tests {
		t.Run(testCase.code, func(t *testing.T) {
			expression, err := parser.Parse(testCase.code)
			require.NoError(t, err)
			require.Len(t, expression.Terms, 1)

			term := expression.Terms[0]
			if testCase.wantPrefix == "" {
				assert.Nil(t, term.Prefix)
			} else {
				require.NotNil(t, term.Prefix)
				assert.Equal(t, testCase.wantPrefix, term.Prefix.Symbol)
			}
			assert.Equal(t, testCase.wantUnit, term.Unit.Symbol)
		})
	}
}

func TestParser_NonMetricUnitsRejectPrefixes(t *testing.T) {
	parser := newTestParser(t)

	// "h" (hour) is not metric, so "kh" has no valid split.
	_, err := parser.Parse("kh")
	var unknown *UnknownUnitError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "kh", unknown.Symbol)
}

func TestParser_Factor(t *testing.T) {
	expression, err := newTestParser(t).Parse("1000/m")
	require.NoError(t, err)
	require.Len(t, expression.Terms, 2)

	factor := expression.Terms[0]
	assert.True(t, factor.IsFactor())
	assert.Equal(t, int64(1000), factor.Factor)
	assert.Equal(t, "1000", factor.String())
	assert.Equal(t, -1, expression.Terms[1].Exponent)
}

func TestParser_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name         string
		code         string
		wantPosition int
		wantReason   string
	}{
		{"empty", "", 0, "empty code"},
		{"space", "m s", 1, "unexpected character"},
		{"bracket", "[in_i]", 0, "unexpected character"},
		{"leading dot", ".m", 0, "cannot start with '.'"},
		{"double slash", "m//s", 2, "empty term"},
		{"trailing dot", "m.", 2, "empty term"},
		{"lone slash", "/", 1, "empty term"},
		{"dangling sign", "m-", 1, "sign without exponent digits"},
		{"exponent only", "-2", 0, "exponent without unit"},
		{"digit inside symbol", "2m", 0, "is not of the form prefix, unit, exponent"},
		{"double exponent", "m-1-1", 1, "is not of the form prefix, unit, exponent"},
		{"zero factor", "0", 0, "invalid numeric factor"},
		{"exponent above range", "m2147483648", 1, "exponent out of range"},
		{"exponent overflowing int64", "m9223372036854775807", 1, "exponent out of range"},
		{"negative exponent below range", "/s-2147483648", 2, "exponent out of range"},
	}

	parser := newTestParser(t)
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := parser.Parse(testCase.code)

			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, testCase.wantPosition, syntaxErr.Position)
			assert.Contains(t, syntaxErr.Reason, testCase.wantReason)
			assert.True(t, errors.Is(err, ErrSyntax))
			assert.True(t, IsInvalidCode(err))
		})
	}
}

func TestParser_UnknownUnit(t *testing.T) {
	_, err := newTestParser(t).Parse("zzq7")

	var unknown *UnknownUnitError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "zzq", unknown.Symbol)
	assert.Equal(t, "zzq7", unknown.Code)
	assert.ErrorIs(t, err, ErrUnknownUnit)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestParser_LargestExponent(t *testing.T) {
	expression, err := newTestParser(t).Parse("/m2147483647")
	require.NoError(t, err)
	require.Len(t, expression.Terms, 1)
	assert.Equal(t, -2147483647, expression.Terms[0].Exponent)
	assert.Equal(t, "m-2147483647", expression.String())
}
