package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount_StripsThousandsSeparators(t *testing.T) {
	withComma, err := ParseAmount("1,234.50")
	require.NoError(t, err)

	plain, err := ParseAmount("1234.50")
	require.NoError(t, err)

	assert.Equal(t, Cents(123450), withComma)
	assert.Equal(t, withComma, plain)
}

func TestParseAmount_RoundsToCents(t *testing.T) {
	cases := map[string]Cents{
		"45":       4500,
		"45.00":    4500,
		"45.005":   4501,
		"45.004":   4500,
		"0":        0,
		"$20.00":   2000,
		" 19.99 ":  1999,
		"0.1":      10,
		"1,000":    100000,
		"2,345.67": 234567,
	}

	for input, want := range cases {
		got, err := ParseAmount(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestParseAmount_RejectsInvalidInput(t *testing.T) {
	invalid := []string{"", "abc", "-5.00", "-0.01", "NaN", "Inf", "+Inf", "-Inf", "12.3.4"}

	for _, input := range invalid {
		_, err := ParseAmount(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestParseAmount_NeverClampsNegativeToZero(t *testing.T) {
	_, err := ParseAmount("-45.00")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestCents_Format(t *testing.T) {
	assert.Equal(t, "1234.50", Cents(123450).Format())
	assert.Equal(t, "0.00", Cents(0).Format())
	assert.Equal(t, "0.05", Cents(5).Format())
	assert.Equal(t, "20.00", Cents(2000).Format())
}

func TestParseAmount_Idempotent(t *testing.T) {
	first, err := ParseAmount("1,234.50")
	require.NoError(t, err)

	again, err := ParseAmount(first.Format())
	require.NoError(t, err)

	assert.Equal(t, first, again)
}
