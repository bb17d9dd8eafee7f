package value

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceStringToInteger(t *testing.T) {
	v, err := CoerceTo(NewString("42"), TypeInteger())
	require.NoError(t, err)
	i, ok := v.IntegerVal()
	require.True(t, ok)
	assert.Equal(t, int64(42), i)
}

func TestCoerceStringToIntegerOverflow(t *testing.T) {
	_, err := CoerceTo(NewString("99999999999999999999999"), TypeInteger())
	require.Error(t, err)
}

func TestCoerceStringToIntegerNonNumeric(t *testing.T) {
	_, err := CoerceTo(NewString("abc"), TypeInteger())
	require.Error(t, err)
}

func TestCoerceStringToDecimalPreservesScale(t *testing.T) {
	v, err := CoerceTo(NewString("1299.990"), TypeDecimal())
	require.NoError(t, err)
	d, _ := v.DecimalVal()
	assert.Equal(t, int32(3), d.Exponent()*-1)
}

func TestCoerceStringToBooleanLiterals(t *testing.T) {
	for in, want := range map[string]bool{
		"true": true, "FALSE": false, "1": true, "0": false, "Yes": true, "no": false,
	} {
		v, err := CoerceTo(NewString(in), TypeBoolean())
		require.NoError(t, err, in)
		b, _ := v.BooleanVal()
		assert.Equal(t, want, b, in)
	}
}

func TestCoerceStringToBooleanRejectsUnrecognized(t *testing.T) {
	_, err := CoerceTo(NewString("maybe"), TypeBoolean())
	require.Error(t, err)
}

func TestCoerceIntegerToDecimalAlwaysSucceeds(t *testing.T) {
	v, err := CoerceTo(NewInteger(7), TypeDecimal())
	require.NoError(t, err)
	d, _ := v.DecimalVal()
	assert.True(t, d.Equal(decimal.NewFromInt(7)))
}

func TestCoerceDecimalToIntegerFailsOnFraction(t *testing.T) {
	d, _ := decimal.NewFromString("3.5")
	_, err := CoerceTo(NewDecimal(d), TypeInteger())
	require.Error(t, err)
}

func TestCoerceDecimalToIntegerSucceedsWhenWhole(t *testing.T) {
	d, _ := decimal.NewFromString("3.0")
	v, err := CoerceTo(NewDecimal(d), TypeInteger())
	require.NoError(t, err)
	i, _ := v.IntegerVal()
	assert.Equal(t, int64(3), i)
}

func TestCanonicalStringForms(t *testing.T) {
	s, err := CanonicalString(NewBoolean(true))
	require.NoError(t, err)
	assert.Equal(t, "true", s)

	s, err = CanonicalString(NewDate(Date{Year: 2026, Month: 1, Day: 5}))
	require.NoError(t, err)
	assert.Equal(t, "2026-01-05", s)

	dt := time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC)
	s, err = CanonicalString(NewDateTime(dt))
	require.NoError(t, err)
	assert.Equal(t, "2026-01-05T10:30:00", s)

	d, _ := decimal.NewFromString("12.50")
	s, err = CanonicalString(NewDecimal(d))
	require.NoError(t, err)
	assert.Equal(t, "12.50", s)
}

func TestCanonicalStringRejectsNull(t *testing.T) {
	_, err := CanonicalString(Null())
	require.Error(t, err)
}

func TestNullCoercesToAnyType(t *testing.T) {
	v, err := CoerceTo(Null(), TypeInteger())
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestParseDateTimeLiteralAcceptsNaive(t *testing.T) {
	tm, ok := ParseDateTimeLiteral("2026-03-01T08:00:00")
	require.True(t, ok)
	assert.Equal(t, 2026, tm.Year())
}
