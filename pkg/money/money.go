// Package money holds the currency arithmetic shared by the cart, pricing and checkout.
// Amounts are major units (rupees) carried as decimal.Decimal.
package money

import "github.com/shopspring/decimal"

// MinorUnitDigits is the number of fractional digits of the currency's minor unit.
const MinorUnitDigits int32 = 2

func init() {
	// Amounts travel as plain JSON numbers on every wire we speak.
	decimal.MarshalJSONWithoutQuotes = true
}

// Zero is the zero amount.
var Zero = decimal.Zero

// Round rounds d half away from zero to minor-unit precision.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnitDigits)
}

// Line returns unitPrice * quantity rounded to minor units.
func Line(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return Round(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

// Clamp bounds d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}

// NonNegative reports whether d >= 0.
func NonNegative(d decimal.Decimal) bool {
	return !d.IsNegative()
}

// MinorUnits converts d to an integer count of minor units (paise), as payment
// gateways expect.
func MinorUnits(d decimal.Decimal) int64 {
	return Round(d).Shift(MinorUnitDigits).IntPart()
}
