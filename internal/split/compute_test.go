package split

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestComputeSplit_FlatPercentage(t *testing.T) {
	// 100.00 at 20% -> 20.00
	got := ComputeSplit(dec(t, "100.00"), dec(t, "0.20"), false)
	assert.True(t, got.Equal(dec(t, "20.00")), "got %s", got)
}

func TestComputeSplit_VATExtraction(t *testing.T) {
	// 100.00 VAT-inclusive at 20% -> 100 - 100/1.2 = 16.67
	got := ComputeSplit(dec(t, "100.00"), dec(t, "0.20"), true)
	assert.True(t, got.Equal(dec(t, "16.67")), "got %s", got)
}

func TestComputeSplit_PercentNormalization(t *testing.T) {
	whole := ComputeSplit(dec(t, "150.40"), dec(t, "20"), false)
	fraction := ComputeSplit(dec(t, "150.40"), dec(t, "0.20"), false)
	assert.True(t, whole.Equal(fraction), "20 and 0.20 must mean the same rate")
}

func TestComputeSplit_ZeroPercent(t *testing.T) {
	// No division error in VAT mode: denominator becomes 1.
	assert.True(t, ComputeSplit(dec(t, "100.00"), decimal.Zero, false).IsZero())
	assert.True(t, ComputeSplit(dec(t, "100.00"), decimal.Zero, true).IsZero())
}

func TestComputeSplit_NegativeAmount(t *testing.T) {
	// Refunds are excluded upstream, but the arithmetic stays consistent.
	got := ComputeSplit(dec(t, "-100.00"), dec(t, "0.20"), false)
	assert.True(t, got.Equal(dec(t, "-20.00")), "got %s", got)
}

func TestComputeSplit_Rounding(t *testing.T) {
	tests := []struct {
		amount  string
		percent string
		vatMode bool
		want    string
	}{
		{"10.00", "0.333", false, "3.33"},
		{"10.05", "0.50", false, "5.03"}, // 5.025 rounds half up
		{"0.01", "0.20", true, "0.00"},
		{"1234.56", "0.20", true, "205.76"},
	}
	for _, tt := range tests {
		got := ComputeSplit(dec(t, tt.amount), dec(t, tt.percent), tt.vatMode)
		assert.True(t, got.Equal(dec(t, tt.want)), "%s at %s (vat=%v): got %s, want %s",
			tt.amount, tt.percent, tt.vatMode, got, tt.want)
	}
}

func TestComputeSplit_VATNeverExceedsFlat(t *testing.T) {
	amounts := []string{"0.01", "1.00", "99.99", "100.00", "1234.56", "100000.00"}
	percents := []string{"0.05", "0.10", "0.20", "0.55", "0.999"}

	for _, a := range amounts {
		for _, p := range percents {
			vat := ComputeSplit(dec(t, a), dec(t, p), true)
			flat := ComputeSplit(dec(t, a), dec(t, p), false)
			assert.True(t, vat.LessThanOrEqual(flat),
				"VAT split %s must not exceed flat split %s for amount=%s percent=%s", vat, flat, a, p)
		}
	}
}

func TestNormalizePercent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"20", "0.2"},
		{"0.20", "0.20"},
		{"1", "1"},
		{"100", "1"},
		{"0", "0"},
		{"1.5", "0.015"},
	}
	for _, tt := range tests {
		got := NormalizePercent(dec(t, tt.in))
		assert.True(t, got.Equal(dec(t, tt.want)), "NormalizePercent(%s) = %s, want %s", tt.in, got, tt.want)
	}
}
