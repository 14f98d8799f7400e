package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericToCents(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
	}{
		{"whole units", "100", 10000},
		{"units with cents", "100.50", 10050},
		{"cents only", "0.99", 99},
		{"zero", "0", 0},
		{"zero with decimals", "0.00", 0},
		{"rounding up", "99.999", 10000},
		{"rounding down", "99.994", 9999},
		{"with whitespace", "  50.25  ", 5025},
		{"negative", "-10.50", -1050},
		{"single decimal", "5.5", 550},
		// Past 2^53 minor units a float64 round-trip silently drifts;
		// the digits must parse exactly across the NUMERIC(19,2) range.
		{"beyond float53 precision", "90071992547409.93", 9007199254740993},
		{"max int64 cents", "92233720368547758.07", 9223372036854775807},
		{"negative beyond float53", "-90071992547409.93", -9007199254740993},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := numericToCents(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNumericToCents_Errors(t *testing.T) {
	for _, input := range []string{"", "abc", "$100.00", "10.5.5"} {
		_, err := numericToCents(input)
		assert.Error(t, err, input)
	}
}

func TestCentsToNumeric(t *testing.T) {
	tests := []struct {
		name     string
		input    int64
		expected string
	}{
		{"whole units", 10000, "100.00"},
		{"units with cents", 10050, "100.50"},
		{"zero", 0, "0.00"},
		{"negative", -1050, "-10.50"},
		{"negative cent", -1, "-0.01"},
		{"single cent", 1, "0.01"},
		{"ten cents", 10, "0.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, centsToNumeric(tt.input))
		})
	}
}

func TestMoneyConversion_RoundTrip(t *testing.T) {
	for _, original := range []int64{0, 1, 10, 999, 12345, 999999999999, 9007199254740993, -100, -12345} {
		str := centsToNumeric(original)
		cents, err := numericToCents(str)
		require.NoError(t, err)
		assert.Equal(t, original, cents, "cents=%d str=%s", original, str)
	}
}

func TestNumericToMoney(t *testing.T) {
	m, err := numericToMoney("100.50", "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(10050), m.Amount)
	assert.Equal(t, "EUR", m.Currency)
}
