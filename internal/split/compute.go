// Package split implements the transaction eligibility and split-computation
// pipeline: fetch income transactions per watched account, drop processed and
// excluded ones, compute the withdrawal portion per transaction, aggregate
// per-account totals, and execute one internal transfer per account.
package split

import "github.com/shopspring/decimal"

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// NormalizePercent maps a configured split percentage to a fraction.
// Values greater than 1 are treated as whole percentages, so 20 and 0.20
// both mean 20%.
func NormalizePercent(percent decimal.Decimal) decimal.Decimal {
	if percent.GreaterThan(one) {
		return percent.Div(hundred)
	}
	return percent
}

// ComputeSplit returns the portion of amount to withdraw, rounded to 2
// decimal places (round half away from zero).
//
// In VAT mode percent is treated as a tax rate embedded in a VAT-inclusive
// amount and the VAT portion is extracted: amount - amount/(percent+1).
// Otherwise the split is a flat percentage: amount * percent.
//
// A zero percent yields a zero split in both modes; negative amounts are
// computed consistently and are expected to be excluded upstream.
func ComputeSplit(amount, percent decimal.Decimal, vatMode bool) decimal.Decimal {
	p := NormalizePercent(percent)

	var split decimal.Decimal
	if vatMode {
		split = amount.Sub(amount.Div(p.Add(one)))
	} else {
		split = amount.Mul(p)
	}
	return split.Round(2)
}
